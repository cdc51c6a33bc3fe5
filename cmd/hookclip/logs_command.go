package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hookclip/internal/logging"
	"hookclip/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		jobID  string
		lines  int
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log entries, optionally for one job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			// Read everything when filtering so -n counts matching entries.
			limit := lines
			if jobID != "" {
				limit = 0
			}
			recent, offset, err := logs.ReadLast(path, limit)
			if err != nil {
				return err
			}
			entries := logs.Filter(recent, jobID)
			if lines > 0 && len(entries) > lines {
				entries = entries[len(entries)-lines:]
			}
			if len(entries) == 0 && !follow {
				fmt.Fprintln(out, "No log entries")
				return nil
			}
			printEntries(out, entries)
			if !follow {
				return nil
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			err = logs.Follow(runCtx, path, offset, 500*time.Millisecond, func(batch []string) {
				printEntries(out, logs.Filter(batch, jobID))
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&jobID, "job", "", "Only show entries whose job id starts with this value")
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new entries")
	return cmd
}

func printEntries(out io.Writer, entries []logs.Entry) {
	for _, e := range entries {
		fmt.Fprintln(out, e.Format())
	}
}
