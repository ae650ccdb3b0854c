package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	blogbook "github.com/alnah/go-blogbook"
	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/metrics"
)

// ErrDocumentsFailed is returned when a run finished without converting
// any of the documents it attempted.
var ErrDocumentsFailed = errors.New("documents failed to convert")

// runConvertCmd converts an index artifact, or the content root when no
// index is given, into per-document PDFs and a merged PDF.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseConvertFlags("convert", args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %v", ErrUsage, positional)
	}

	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	mergeConvertFlags(f, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, f.common)
	_, err = convert(ctx, cfg, cfg.Content.RootIndex, env, logger)
	return err
}

// convert runs one pipeline over indexPath, or over the content root when
// indexPath is empty, and prints the summary.
func convert(ctx context.Context, cfg *config.Config, indexPath string, env *Environment, logger *slog.Logger) (*blogbook.Summary, error) {
	opts := []blogbook.PipelineOption{
		blogbook.WithPipelineLogger(logger),
		blogbook.WithConverterOptions(converterOptions(cfg)...),
		blogbook.WithStateHook(func(state blogbook.State, detail string) {
			logger.Debug("pipeline state", "state", state.String(), "detail", detail)
		}),
	}
	var prom *metrics.PrometheusRecorder
	if cfg.Metrics.TextFile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		opts = append(opts, blogbook.WithRecorder(prom))
	}

	runner, err := env.NewRunner(pipelineConfig(cfg), opts...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := runner.Close(); cerr != nil {
			logger.Warn("closing browsers", "error", cerr)
		}
	}()

	var sum *blogbook.Summary
	if indexPath != "" {
		sum, err = runner.RunIndexFile(ctx, indexPath)
	} else {
		sum, err = runner.Run(ctx, cfg.Content.Root)
	}

	if prom != nil {
		if werr := prom.WriteTextfile(cfg.Metrics.TextFile); werr != nil {
			logger.Warn("metrics not written", "error", werr)
		}
	}
	if err != nil {
		return sum, err
	}

	printSummary(env.Stdout, sum)
	return sum, summaryErr(sum)
}

// summaryErr reports a run where every attempted document failed. A run
// that converted at least one document succeeds; its failures are listed
// in the printed summary. The first failure's cause is kept so the exit
// code can tell browser problems apart.
func summaryErr(sum *blogbook.Summary) error {
	if sum == nil || sum.Failed == 0 || sum.Succeeded > 0 {
		return nil
	}
	if len(sum.Failures) > 0 {
		return fmt.Errorf("%w: %d of %d: %w", ErrDocumentsFailed, sum.Failed, sum.Attempted, sum.Failures[0].Err)
	}
	return fmt.Errorf("%w: %d of %d", ErrDocumentsFailed, sum.Failed, sum.Attempted)
}

func printSummary(w io.Writer, sum *blogbook.Summary) {
	if sum == nil {
		return
	}
	fmt.Fprintf(w, "Converted %d/%d documents", sum.Succeeded, sum.Attempted)
	if sum.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped", sum.Skipped)
	}
	if sum.Degraded > 0 {
		fmt.Fprintf(w, ", %d without diagrams", sum.Degraded)
	}
	fmt.Fprintf(w, " in %s\n", sum.Duration.Round(time.Millisecond))
	for _, f := range sum.Failures {
		fmt.Fprintf(w, "  failed: %s: %v\n", f.Path, f.Err)
	}
	if sum.MergedPath != "" {
		fmt.Fprintf(w, "Merged: %s\n", sum.MergedPath)
	}
}
