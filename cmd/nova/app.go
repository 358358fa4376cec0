package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SharminSirajudeen/nova/internal/config"
	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/logging"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/tui"
)

// openCore loads configuration and builds the core. The returned func
// closes the core and flushes the log.
func openCore(ctx context.Context) (*core.Core, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logFile := cfg.Logging.File
	if logFile == "" {
		logFile = logging.DefaultFile(state.DataDir())
	}
	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, File: logFile})
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}

	c, err := core.Open(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	cleanup := func() {
		if err := c.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return c, cleanup, nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFromPath(configFile)
	}
	return config.Load()
}

// withCore adapts a command body that needs a core into a cobra RunE.
func withCore(fn func(cmd *cobra.Command, args []string, c *core.Core) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, cleanup, err := openCore(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()
		return fn(cmd, args, c)
	}
}

func runShell(cmd *cobra.Command, args []string, c *core.Core) error {
	if jsonOutput {
		return fmt.Errorf("the interactive shell does not support --json")
	}
	return tui.Run(cmd.Context(), c)
}
