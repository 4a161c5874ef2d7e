package main

import (
	"log/slog"
	"os"

	"github.com/ima-dev/ima/internal/config"
	"github.com/ima-dev/ima/internal/logutil"
	"github.com/ima-dev/ima/pkg/frame"
	"github.com/ima-dev/ima/pkg/ima"
)

// loadConfig loads the working directory config and applies the log flag.
func loadConfig(logLevel string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return nil, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger := logutil.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, logger, nil
}

// newEngine creates an engine configured from cfg and driven by frames.
func newEngine(cfg *config.Config, logger *slog.Logger, frames frame.Requester) (*ima.Engine, error) {
	policy, err := ima.ParsePolicy(cfg.Engine.FailurePolicy)
	if err != nil {
		return nil, err
	}
	return ima.New(
		ima.WithFrames(frames),
		ima.WithLogger(logger),
		ima.WithFailurePolicy(policy),
		ima.WithTextBindings(cfg.TextBindingsEnabled()),
	), nil
}
