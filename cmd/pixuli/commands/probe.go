package commands

import (
	"fmt"

	"github.com/pixuli/pixuli-wasm/internal/host"
	"github.com/spf13/cobra"
)

func probeCmd(a *app) *cobra.Command {
	var pluginName string

	cmd := &cobra.Command{
		Use:   "probe <u32>",
		Short: "Call plus_100 in a plugin and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseUint32(args[0])
			if err != nil {
				return err
			}

			return a.withHost(cmd, func(h *host.Host) error {
				out, err := h.Plus100(cmd.Context(), pluginName, input)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&pluginName, "plugin", "", "plugin name (default: configured default or first probe plugin)")
	return cmd
}
