package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/goodcast/goodapi/internal/cli"
	"github.com/goodcast/goodapi/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "goodapi",
	Short: "goodapi is the Goodcast API server",
	Long: `goodapi serves the frame proxy, Leafwatch analytics, polls, preferences
and the signup webhook of the Goodcast client.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig reads the config file and environment, then applies the
// persistent flags. tweak, when set, applies command specific flags.
func loadConfig(cmd *cobra.Command, tweak ...func(*config.Config)) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	for _, fn := range tweak {
		fn(cfg)
	}

	logger, err := cli.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
