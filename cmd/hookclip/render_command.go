package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hookclip/internal/compose"
	"hookclip/internal/config"
	"hookclip/internal/pipeline"
	"hookclip/internal/services"
)

type renderOptions struct {
	outputDir string
	strategy  string
	keep      bool
	quiet     bool
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render <video>",
		Short: "Produce a hook clip from a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runRender(cmd, ctx, applyRenderOverrides(cfg, opts), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Directory for the finished clip (defaults to paths.output_dir)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "Layout strategy override (relative, measured)")
	cmd.Flags().BoolVar(&opts.keep, "keep-workspace", false, "Leave the job workspace on disk for inspection")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress stage progress lines")
	return cmd
}

// applyRenderOverrides returns a copy of cfg with command-line overrides.
func applyRenderOverrides(cfg *config.Config, opts renderOptions) *config.Config {
	out := *cfg
	if s := strings.TrimSpace(opts.strategy); s != "" {
		out.Compose.Strategy = strings.ToLower(s)
	}
	if opts.keep {
		out.Engine.KeepWorkspace = true
	}
	if d := strings.TrimSpace(opts.outputDir); d != "" {
		if expanded, err := config.ExpandPath(d); err == nil {
			out.Paths.OutputDir = expanded
		}
	}
	return &out
}

func runRender(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, videoPath string, opts renderOptions) error {
	src, err := readSource(videoPath)
	if err != nil {
		return err
	}

	logger, err := ctx.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if !opts.quiet {
		pipeOpts = append(pipeOpts, pipeline.WithStatusSink(newLineSink(cmd.ErrOrStderr())))
	}
	p, err := pipeline.New(cfg, pipeOpts...)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := p.Run(runCtx, src)
	if err != nil {
		if runCtx.Err() != nil {
			return context.Canceled
		}
		return err
	}

	path, err := pipeline.SaveResult(cfg.Paths.OutputDir, res)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Saved %s\n", path)
	fmt.Fprintln(out, renderSummary("Clip", resultRows(res, p.Strategy())))
	return nil
}

func readSource(path string) (pipeline.Source, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return pipeline.Source{}, services.Wrap(services.ErrValidation, "render", "read source", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return pipeline.Source{}, services.Wrap(services.ErrValidation, "render", "read source", expanded, err)
	}
	return pipeline.Source{Path: expanded, MimeType: sourceMimeType(expanded), Data: data}, nil
}

func sourceMimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	}
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "video/") {
		return t
	}
	return ""
}

func resultRows(res *pipeline.Result, strategy compose.Strategy) []summaryRow {
	fade := "none"
	if res.Spec.Fade != nil {
		fade = fmt.Sprintf("%.3gs at %.3fs", res.Spec.Fade.Duration, res.Spec.Fade.Start)
	}
	return []summaryRow{
		{"Job", res.JobID},
		{"Caption", res.Caption},
		{"Strategy", string(strategy)},
		{"Caption lines", fmt.Sprintf("%d", res.Spec.Lines)},
		{"Audio", fmt.Sprintf("%.2fs", res.AudioSeconds)},
		{"TTS polls", fmt.Sprintf("%d", res.TTSAttempts)},
		{"Fade", fade},
		{"Size", fmt.Sprintf("%d bytes", len(res.Data))},
		{"Elapsed", res.Elapsed().Round(time.Millisecond).String()},
	}
}
