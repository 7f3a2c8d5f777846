package commands

import (
	"fmt"

	"github.com/pixuli/pixuli-wasm/internal/binding"
	"github.com/pixuli/pixuli-wasm/internal/host"
	"github.com/spf13/cobra"
)

func verifyCmd(a *app) *cobra.Command {
	var (
		pluginName string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check plus_100 in a plugin against the native result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report *binding.Report
			err := a.withHost(cmd, func(h *host.Host) error {
				var err error
				report, err = h.Verify(cmd.Context(), pluginName)
				return err
			})
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(cmd, report); err != nil {
					return err
				}
			} else {
				printReport(cmd, report)
			}

			if !report.Passed {
				return errChecksFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pluginName, "plugin", "", "plugin name (default: configured default or first probe plugin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report *binding.Report) {
	out := cmd.OutOrStdout()
	for _, c := range report.Checks {
		status := "ok"
		if !c.Passed {
			status = "FAIL"
		}
		note := ""
		if c.Wrapped {
			note = " (wraps)"
		}
		if c.Repeated {
			note += " (repeat)"
		}
		fmt.Fprintf(out, "%-4s plus_100(%d) = %d, want %d%s\n", status, c.Input, c.Got, c.Want, note)
	}
	if report.Passed {
		fmt.Fprintln(out, "PASS")
	} else {
		fmt.Fprintf(out, "FAIL: %d of %d checks failed\n", len(report.Failed()), len(report.Checks))
	}
}
