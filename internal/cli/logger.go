package cli

import (
	"log/slog"

	"github.com/goodcast/goodapi/internal/config"
	"github.com/goodcast/goodapi/internal/logging"
)

// NewLogger builds the process logger from cfg and installs it as the
// slog default.
func NewLogger(cfg *config.Config) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.New(level, cfg.LogFormat)
	slog.SetDefault(logger)
	return logger, nil
}
