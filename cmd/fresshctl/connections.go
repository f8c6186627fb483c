package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/EthanShoeDev/fressh-sub000"
)

func newConnectionsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "connections",
		Aliases: []string{"conn"},
		Short:   "Manage saved connection profiles",
	}
	cmd.AddCommand(
		newConnectionsListCmd(a),
		newConnectionsGetCmd(a),
		newConnectionsPutCmd(a),
		newConnectionsRmCmd(a),
	)
	return cmd
}

func newConnectionsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connections, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conns, err := a.vault.Connections().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tMODIFIED")
			for _, c := range conns {
				fmt.Fprintf(w, "%s\t%d\t%s\n", c.ID, c.Priority, formatMs(c.ModifiedAtMs))
			}
			return w.Flush()
		},
	}
}

func newConnectionsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := a.vault.Connections().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			c := rec.Connection
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "host:      %s\n", c.Host)
			fmt.Fprintf(out, "port:      %d\n", c.Port)
			fmt.Fprintf(out, "username:  %s\n", c.Username)
			fmt.Fprintf(out, "security:  %s\n", c.Security.Type)
			if c.Security.Type == fressh.SecurityKey {
				fmt.Fprintf(out, "key:       %s\n", c.Security.KeyID)
			}
			fmt.Fprintf(out, "created:   %s\n", formatMs(rec.CreatedAtMs))
			fmt.Fprintf(out, "modified:  %s\n", formatMs(rec.ModifiedAtMs))
			return nil
		},
	}
}

func newConnectionsPutCmd(a *app) *cobra.Command {
	var (
		conn     fressh.Connection
		password string
		keyID    string
		priority int
	)
	cmd := &cobra.Command{
		Use:   "put",
		Short: "Save a connection profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case keyID != "":
				conn.Security = fressh.Security{Type: fressh.SecurityKey, KeyID: keyID}
			case password != "":
				conn.Security = fressh.Security{Type: fressh.SecurityPassword, Password: password}
			}
			id, err := a.vault.Connections().Save(cmd.Context(), conn, priority)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved connection %s\n", color.GreenString("✓"), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&conn.Host, "host", "", "host name or IP address")
	cmd.Flags().IntVar(&conn.Port, "port", 22, "SSH port")
	cmd.Flags().StringVarP(&conn.Username, "user", "u", "", "login user")
	cmd.Flags().StringVar(&password, "password", "", "authenticate with a password")
	cmd.Flags().StringVar(&keyID, "key", "", "authenticate with the stored key of this id")
	cmd.Flags().IntVar(&priority, "priority", 0, "sort priority, lower first")
	cmd.MarkFlagsMutuallyExclusive("password", "key")
	return cmd
}

func newConnectionsRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a connection profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.vault.Connections().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s deleted connection %s\n", color.GreenString("✓"), args[0])
			return nil
		},
	}
}
