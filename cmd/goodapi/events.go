package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodcast/goodapi/internal/cli"
	"github.com/goodcast/goodapi/internal/presentation/tui"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect Leafwatch events",
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print live events from a running server",
	Long: `Subscribes to /leafwatch/sse of a running server and prints one line
per event. A summary table is shown on exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		noSummary, _ := cmd.Flags().GetBool("no-summary")

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		printer := tui.NewEventPrinter(os.Stdout)
		err := cli.Tail(sigCtx, &http.Client{}, url, printer.Print)

		if !noSummary {
			out, rerr := tui.NewRenderer(0)(printer.Summary())
			if rerr != nil {
				out = printer.Summary()
			}
			fmt.Print(out)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(tailCmd)

	tailCmd.Flags().String("url", "http://localhost:4784", "Base URL of the API server")
	tailCmd.Flags().Bool("no-summary", false, "Do not print the totals table on exit")
}
