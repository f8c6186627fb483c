package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"

	"github.com/EthanShoeDev/fressh-sub000"
)

func newKeysCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored private keys",
	}
	cmd.AddCommand(
		newKeysListCmd(a),
		newKeysGetCmd(a),
		newKeysPutCmd(a),
		newKeysRmCmd(a),
		newKeysDefaultCmd(a),
		newKeysPubkeyCmd(a),
	)
	return cmd
}

func newKeysListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List keys in priority order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keys, err := a.vault.Keys().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tCREATED\tLABEL\tDEFAULT")
			for _, k := range keys {
				def := ""
				if k.IsDefault {
					def = "*"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", k.ID, k.Priority, formatMs(k.CreatedAtMs), k.Label, def)
			}
			return w.Flush()
		},
	}
}

func newKeysGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print the private key material of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := a.vault.Keys().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(key.PrivateKey)
			return err
		},
	}
}

func newKeysPutCmd(a *app) *cobra.Command {
	var (
		file     string
		priority int
		label    string
		isDef    bool
	)
	cmd := &cobra.Command{
		Use:   "put <id>",
		Short: "Store a private key read from --file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pem, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			err = a.vault.Keys().Put(cmd.Context(), fressh.KeyInput{
				ID:         args[0],
				PrivateKey: pem,
				Priority:   priority,
				Label:      label,
				IsDefault:  isDef,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stored key %s\n", color.GreenString("✓"), args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "PEM file to read (- for stdin)")
	cmd.Flags().IntVar(&priority, "priority", 0, "sort priority, lower first")
	cmd.Flags().StringVar(&label, "label", "", "display label")
	cmd.Flags().BoolVar(&isDef, "default", false, "make this the default key")
	return cmd
}

func newKeysRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.vault.Keys().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted key %s\n", color.GreenString("✓"), args[0])
			return nil
		},
	}
}

func newKeysDefaultCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "default [id]",
		Short: "Show the default key, or make id the default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := a.vault.Keys()
			if len(args) == 1 {
				if err := keys.SetDefault(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s default key is now %s\n", color.GreenString("✓"), args[0])
				return nil
			}
			key, err := keys.Default(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.ID)
			return nil
		},
	}
}

func newKeysPubkeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey <id>",
		Short: "Print the public key in authorized_keys format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := a.vault.Keys().PublicKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(ssh.MarshalAuthorizedKey(pub))
			return err
		},
	}
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}

func formatMs(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
