package main

// Notes:
// - loadEnvConfig: we inject getenv so tests stay parallel. Invalid values
//   are reported on the writer and ignored.
// - BLOGBOOK_DIAGRAM_TIMEOUT=0 is meaningful (skip the wait) and must be
//   applied, unlike a zero timeout.
// - warnUnknownEnvVars: we test typo detection and that known vars don't warn.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-blogbook/internal/config"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// ---------------------------------------------------------------------------
// TestLoadEnvConfig - Environment variable loading
// ---------------------------------------------------------------------------

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("all variables", func(t *testing.T) {
		t.Parallel()
		var w bytes.Buffer
		cfg := loadEnvConfig(mapEnv(map[string]string{
			"BLOGBOOK_CONFIG":          "work",
			"BLOGBOOK_CONTENT":         "/content",
			"BLOGBOOK_OUTPUT_DIR":      "/out",
			"BLOGBOOK_INDEX":           "/content/all.json",
			"BLOGBOOK_STYLE":           "technical",
			"BLOGBOOK_METRICS_FILE":    "/tmp/blogbook.prom",
			"BLOGBOOK_TIMEOUT":         "2m",
			"BLOGBOOK_DIAGRAM_TIMEOUT": "5s",
			"BLOGBOOK_CONCURRENCY":     "3",
		}), &w)

		if cfg.ConfigPath != "work" || cfg.Content != "/content" || cfg.OutputDir != "/out" {
			t.Errorf("paths = %+v", cfg)
		}
		if cfg.Index != "/content/all.json" || cfg.Style != "technical" || cfg.MetricsFile != "/tmp/blogbook.prom" {
			t.Errorf("names = %+v", cfg)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v, want 2m", cfg.Timeout)
		}
		if cfg.DiagramTimeout != 5*time.Second || !cfg.diagramSet {
			t.Errorf("DiagramTimeout = %v (set=%v), want 5s", cfg.DiagramTimeout, cfg.diagramSet)
		}
		if cfg.Concurrency != 3 {
			t.Errorf("Concurrency = %d, want 3", cfg.Concurrency)
		}
		if w.Len() != 0 {
			t.Errorf("unexpected warnings: %q", w.String())
		}
	})

	t.Run("invalid values are ignored with a warning", func(t *testing.T) {
		t.Parallel()
		var w bytes.Buffer
		cfg := loadEnvConfig(mapEnv(map[string]string{
			"BLOGBOOK_TIMEOUT":         "-1s",
			"BLOGBOOK_DIAGRAM_TIMEOUT": "soon",
			"BLOGBOOK_CONCURRENCY":     "zero",
		}), &w)

		if cfg.Timeout != 0 || cfg.diagramSet || cfg.Concurrency != 0 {
			t.Errorf("invalid values applied: %+v", cfg)
		}
		for _, name := range []string{"BLOGBOOK_TIMEOUT", "BLOGBOOK_DIAGRAM_TIMEOUT", "BLOGBOOK_CONCURRENCY"} {
			if !strings.Contains(w.String(), name) {
				t.Errorf("warning output missing %s: %q", name, w.String())
			}
		}
	})

	t.Run("zero diagram timeout is kept", func(t *testing.T) {
		t.Parallel()
		var w bytes.Buffer
		cfg := loadEnvConfig(mapEnv(map[string]string{"BLOGBOOK_DIAGRAM_TIMEOUT": "0s"}), &w)
		if !cfg.diagramSet || cfg.DiagramTimeout != 0 {
			t.Errorf("DiagramTimeout = %v (set=%v), want 0 (set)", cfg.DiagramTimeout, cfg.diagramSet)
		}
	})
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Env values over the loaded config
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("set values override", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		applyEnvConfig(&envConfig{
			Content:        "/content",
			Index:          "/content/all.json",
			OutputDir:      "/out",
			Style:          "academic",
			MetricsFile:    "m.prom",
			Timeout:        time.Minute,
			DiagramTimeout: 0,
			diagramSet:     true,
			Concurrency:    2,
		}, cfg)

		if cfg.Content.Root != "/content" || cfg.Content.RootIndex != "/content/all.json" {
			t.Errorf("content = %+v", cfg.Content)
		}
		if cfg.Output.Dir != "/out" || cfg.Convert.Style != "academic" || cfg.Metrics.TextFile != "m.prom" {
			t.Errorf("output/style/metrics not applied: %+v", cfg)
		}
		if cfg.Convert.Timeout != time.Minute || cfg.Convert.DiagramTimeout != 0 || cfg.Convert.Concurrency != 2 {
			t.Errorf("convert = %+v", cfg.Convert)
		}
	})

	t.Run("empty values keep config", func(t *testing.T) {
		t.Parallel()
		cfg := config.DefaultConfig()
		want := *config.DefaultConfig()
		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Content.Root != want.Content.Root || cfg.Output.Dir != want.Output.Dir {
			t.Errorf("paths changed: %+v", cfg)
		}
		if cfg.Convert.Timeout != want.Convert.Timeout || cfg.Convert.DiagramTimeout != want.Convert.DiagramTimeout {
			t.Errorf("timeouts changed: %+v", cfg.Convert)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var w bytes.Buffer
	warnUnknownEnvVars([]string{
		"BLOGBOOK_CONTNET=/typo",
		"BLOGBOOK_CONTENT=/ok",
		"PATH=/usr/bin",
		"BLOGBOOK_STYLE=default",
	}, &w)

	out := w.String()
	if !strings.Contains(out, "BLOGBOOK_CONTNET") {
		t.Errorf("expected warning for typo, got %q", out)
	}
	if strings.Contains(out, "BLOGBOOK_CONTENT ") || strings.Contains(out, "BLOGBOOK_STYLE") || strings.Contains(out, "PATH") {
		t.Errorf("unexpected warning: %q", out)
	}
}
