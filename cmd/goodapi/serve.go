package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goodcast/goodapi"
	"github.com/goodcast/goodapi/internal/cli"
	"github.com/goodcast/goodapi/internal/config"
	"github.com/goodcast/goodapi/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Connects the configured backends and serves the API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd, func(cfg *config.Config) {
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.ListenAddr = ":" + port
			}
		})
		if err != nil {
			return err
		}

		if term.IsTerminal(int(os.Stdout.Fd())) {
			tui.PrintBanner(os.Stdout, termenv.NewOutput(os.Stdout).ColorProfile())
		}

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		app, err := goodapi.New(sigCtx, cfg, goodapi.WithLogger(logger))
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		defer func() {
			if err := app.Close(); err != nil {
				logger.Error("Close failed", "err", err)
			}
		}()

		if err := app.Run(sigCtx); err != nil {
			return err
		}
		logger.Info("goodapi stopped gracefully", "signal", fmt.Sprint(sigCtx.Signal()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides listen_addr)")
}
