package commands

import (
	"fmt"

	"github.com/pixuli/pixuli-wasm/pkg/probe"
	"github.com/spf13/cobra"
)

func nativeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "native <u32>",
		Short: "Compute plus_100 in-process as a reference value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseUint32(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), probe.Plus100(input))
			return nil
		},
	}
}
