package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-blogbook/internal/config"
)

// envPrefix marks the variables blogbook reads.
const envPrefix = "BLOGBOOK_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
// A .env file in the working directory is loaded at startup.
type envConfig struct {
	ConfigPath     string        // BLOGBOOK_CONFIG: config name or path
	Content        string        // BLOGBOOK_CONTENT: content root
	OutputDir      string        // BLOGBOOK_OUTPUT_DIR: PDF output directory
	Index          string        // BLOGBOOK_INDEX: index artifact to convert
	Style          string        // BLOGBOOK_STYLE: stylesheet name
	MetricsFile    string        // BLOGBOOK_METRICS_FILE: Prometheus textfile
	Timeout        time.Duration // BLOGBOOK_TIMEOUT: per-document timeout
	DiagramTimeout time.Duration // BLOGBOOK_DIAGRAM_TIMEOUT: diagram wait
	Concurrency    int           // BLOGBOOK_CONCURRENCY: documents per chunk
	diagramSet     bool
}

// knownEnvVars lists valid BLOGBOOK_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"BLOGBOOK_CONFIG":          true,
	"BLOGBOOK_CONTENT":         true,
	"BLOGBOOK_OUTPUT_DIR":      true,
	"BLOGBOOK_INDEX":           true,
	"BLOGBOOK_STYLE":           true,
	"BLOGBOOK_METRICS_FILE":    true,
	"BLOGBOOK_TIMEOUT":         true,
	"BLOGBOOK_DIAGRAM_TIMEOUT": true,
	"BLOGBOOK_CONCURRENCY":     true,
}

// loadEnvConfig reads configuration from environment variables. Values that
// do not parse are reported to w and ignored.
func loadEnvConfig(getenv func(string) string, w io.Writer) *envConfig {
	cfg := &envConfig{
		ConfigPath:  getenv("BLOGBOOK_CONFIG"),
		Content:     getenv("BLOGBOOK_CONTENT"),
		OutputDir:   getenv("BLOGBOOK_OUTPUT_DIR"),
		Index:       getenv("BLOGBOOK_INDEX"),
		Style:       getenv("BLOGBOOK_STYLE"),
		MetricsFile: getenv("BLOGBOOK_METRICS_FILE"),
	}

	if v := getenv("BLOGBOOK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		} else {
			fmt.Fprintf(w, "warning: ignoring BLOGBOOK_TIMEOUT=%q (want a positive duration)\n", v)
		}
	}

	// Zero is meaningful here: it disables the diagram wait.
	if v := getenv("BLOGBOOK_DIAGRAM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.DiagramTimeout = d
			cfg.diagramSet = true
		} else {
			fmt.Fprintf(w, "warning: ignoring BLOGBOOK_DIAGRAM_TIMEOUT=%q (want a duration)\n", v)
		}
	}

	if v := getenv("BLOGBOOK_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		} else {
			fmt.Fprintf(w, "warning: ignoring BLOGBOOK_CONCURRENCY=%q (want a positive integer)\n", v)
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized BLOGBOOK_* variables.
// Helps catch typos like BLOGBOOK_CONTNET instead of BLOGBOOK_CONTENT.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values over the loaded
// config. Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Content != "" {
		cfg.Content.Root = env.Content
	}
	if env.Index != "" {
		cfg.Content.RootIndex = env.Index
	}
	if env.OutputDir != "" {
		cfg.Output.Dir = env.OutputDir
	}
	if env.Style != "" {
		cfg.Convert.Style = env.Style
	}
	if env.MetricsFile != "" {
		cfg.Metrics.TextFile = env.MetricsFile
	}
	if env.Timeout > 0 {
		cfg.Convert.Timeout = env.Timeout
	}
	if env.diagramSet {
		cfg.Convert.DiagramTimeout = env.DiagramTimeout
	}
	if env.Concurrency > 0 {
		cfg.Convert.Concurrency = env.Concurrency
	}
}
