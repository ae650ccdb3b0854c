package main

import (
	"context"
	"io"
	"os"
	"time"

	blogbook "github.com/alnah/go-blogbook"
)

// Runner executes a conversion run.
type Runner interface {
	Run(ctx context.Context, root string) (*blogbook.Summary, error)
	RunIndexFile(ctx context.Context, indexPath string) (*blogbook.Summary, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Runner = (*blogbook.Pipeline)(nil)

// RunnerFactory creates the Runner for a conversion.
type RunnerFactory func(cfg blogbook.PipelineConfig, opts ...blogbook.PipelineOption) (Runner, error)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now       func() time.Time
	Stdout    io.Writer
	Stderr    io.Writer
	Getenv    func(string) string
	Environ   func() []string
	NewRunner RunnerFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewRunner: func(cfg blogbook.PipelineConfig, opts ...blogbook.PipelineOption) (Runner, error) {
			return blogbook.NewPipeline(cfg, opts...)
		},
	}
}
