package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pixuli/pixuli-wasm/internal/host"
	"github.com/spf13/cobra"
)

type pluginInfo struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Capabilities []string  `json:"capabilities"`
	Exports      []string  `json:"exports"`
	Digest       string    `json:"digest"`
	Dir          string    `json:"dir"`
	LoadedAt     time.Time `json:"loaded_at"`
}

func listCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plugins found in the configured paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []pluginInfo
			err := a.withHost(cmd, func(h *host.Host) error {
				for _, p := range h.Plugins() {
					infos = append(infos, pluginInfo{
						Name:         p.Name(),
						Version:      p.Version(),
						Capabilities: p.Capabilities(),
						Exports:      p.Exports(),
						Digest:       p.Digest(),
						Dir:          p.Manifest.Dir(),
						LoadedAt:     p.LoadedAt,
					})
				}
				return nil
			})
			if err != nil {
				return err
			}

			if asJSON {
				if infos == nil {
					infos = []pluginInfo{}
				}
				return printJSON(cmd, infos)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tCAPABILITIES\tDIGEST")
			for _, p := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%.12s\n", p.Name, p.Version, strings.Join(p.Capabilities, ","), p.Digest)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print plugins as JSON")
	return cmd
}
