package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/attribution-cli/internal/attribution"
)

var reportFormat string

var reportCmd = &cobra.Command{
	Use:   "report <run-id>",
	Short: "Print the attribution report of a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "report")
		}
		if run.Report == nil {
			return eris.Errorf("run %s has no report (status: %s)", run.ID, run.Status)
		}

		switch reportFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run.Report)
		case "text":
			fmt.Print(attribution.FormatReport(run.Report))
			return nil
		default:
			return eris.Errorf("unknown output format %q (want text or json)", reportFormat)
		}
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "output format: text or json")
	rootCmd.AddCommand(reportCmd)
}
