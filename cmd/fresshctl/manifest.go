package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/EthanShoeDev/fressh-sub000"
)

func newManifestCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:       "manifest <namespace>",
		Short:     "Show the manifest layout of a namespace",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{fressh.KeysNamespace, fressh.ConnectionsNamespace},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.vault.Manifest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(m)
			}
			fmt.Fprintf(out, "root v%d, %d chunk(s)\n", m.Root.Version, len(m.Chunks))
			for _, c := range m.Chunks {
				fmt.Fprintf(out, "%s %s  %d bytes  %d entries\n",
					color.CyanString("→"), c.ID, c.Size, len(c.Chunk.Entries))
				for _, d := range c.Chunk.Entries {
					comp := ""
					if d.Compression != "" {
						comp = " " + d.Compression
					}
					fmt.Fprintf(out, "    %s  %d slice(s)%s\n", d.ID, d.ChunkCount, comp)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the manifest as JSON")
	return cmd
}
