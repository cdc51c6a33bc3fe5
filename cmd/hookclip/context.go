package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hookclip/internal/config"
	"hookclip/internal/logging"
	"hookclip/internal/pipeline"
	"hookclip/internal/services"
)

type globalFlags struct {
	config    string
	logLevel  string
	logFormat string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.flags != nil {
			path = strings.TrimSpace(c.flags.config)
		}
		cfg, resolved, _, err := config.Load(path)
		c.configPath = resolved
		if err != nil {
			c.configErr = err
			return
		}
		if c.flags != nil {
			if level := strings.TrimSpace(c.flags.logLevel); level != "" {
				cfg.Logging.Level = strings.ToLower(level)
			}
			if format := strings.TrimSpace(c.flags.logFormat); format != "" {
				cfg.Logging.Format = strings.ToLower(format)
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the session logger; console output goes to w.
func (c *commandContext) newLogger(w io.Writer) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := logging.OptionsFromConfig(cfg, uuid.NewString())
	opts.Console = w
	return logging.New(opts)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// formatError renders a failure for the terminal with a short hint.
func formatError(err error) string {
	var hint string
	switch {
	case errors.Is(err, pipeline.ErrBusy):
		hint = "another hookclip job is running; wait for it to finish"
	case errors.Is(err, services.ErrConfiguration):
		hint = "run `hookclip config validate` or `hookclip check`"
	case errors.Is(err, services.ErrTimeout):
		hint = "the speech service did not finish in time; try again"
	case errors.Is(err, services.ErrUpstream):
		hint = "an external service rejected the request"
	case errors.Is(err, services.ErrEncoding):
		hint = "ffmpeg failed; rerun with --log-level debug"
	}
	if hint == "" {
		return fmt.Sprintf("Error: %v", err)
	}
	return fmt.Sprintf("Error: %v\nHint: %s", err, hint)
}
