package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-blogbook/internal/fileutil"
	"github.com/alnah/go-blogbook/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrInvalidConfig   = errors.New("invalid config")
)

// AppName names the per-user config directory.
const AppName = "blogbook"

// Limits accepted for tunables.
const (
	MaxConcurrency = 64
	MaxTOCDepth    = 6
)

// Config holds all configuration for indexing and conversion.
type Config struct {
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Convert ConvertConfig `yaml:"convert"`
	TOC     TOCConfig     `yaml:"toc"`
	Assets  AssetsConfig  `yaml:"assets"`
	Dates   DatesConfig   `yaml:"dates"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ContentConfig describes the content tree and its index artifacts.
type ContentConfig struct {
	Root             string   `yaml:"root"`
	RootLabel        string   `yaml:"rootLabel"`
	FolderMeta       string   `yaml:"folderMeta"`
	IndexName        string   `yaml:"indexName"`
	RootIndex        string   `yaml:"rootIndex"` // Aggregated index path (empty = not written)
	ChecksumStore    string   `yaml:"checksumStore"`
	ExcludeFolders   []string `yaml:"excludeFolders"`
	ExcludeFiles     []string `yaml:"excludeFiles"`
	AcceptExtensions []string `yaml:"acceptExtensions"`
}

// OutputConfig defines where rendered artifacts go.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	MergedName string `yaml:"mergedName"`
	HTML       bool   `yaml:"html"`  // Also write the intermediate HTML
	Clean      bool   `yaml:"clean"` // Remove Dir before converting
}

// ConvertConfig tunes the conversion workers.
type ConvertConfig struct {
	Concurrency    int           `yaml:"concurrency"`
	Timeout        time.Duration `yaml:"timeout"`        // Per document
	DiagramTimeout time.Duration `yaml:"diagramTimeout"` // Wait for diagrams before printing
	RawHTML        bool          `yaml:"rawHTML"`
	Style          string        `yaml:"style"`
	Template       string        `yaml:"template"`
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Title      string `yaml:"title"`
	MinDepth   int    `yaml:"minDepth"`
	MaxDepth   int    `yaml:"maxDepth"`
	MarkerOnly bool   `yaml:"markerOnly"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// DatesConfig holds the date layouts written into file nodes.
type DatesConfig struct {
	Human    string `yaml:"human"`
	Sortable string `yaml:"sortable"`
}

// MetricsConfig controls metrics export.
type MetricsConfig struct {
	TextFile string `yaml:"textFile"` // Prometheus textfile path (empty = disabled)
}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if err := c.Content.Validate(); err != nil {
		return fmt.Errorf("%w: content: %v", ErrInvalidConfig, err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("%w: output: %v", ErrInvalidConfig, err)
	}
	if err := c.Convert.Validate(); err != nil {
		return fmt.Errorf("%w: convert: %v", ErrInvalidConfig, err)
	}
	if err := c.TOC.Validate(); err != nil {
		return fmt.Errorf("%w: toc: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RootLabel, validation.Required),
		validation.Field(&c.FolderMeta, validation.Required, validation.By(baseName)),
		validation.Field(&c.IndexName, validation.Required, validation.By(baseName)),
		validation.Field(&c.AcceptExtensions, validation.Required, validation.Each(validation.By(extension))),
	)
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.MergedName, validation.Required, validation.By(baseName)),
	)
}

// Validate validates the conversion configuration.
func (c *ConvertConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Required, validation.Min(1), validation.Max(MaxConcurrency)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.DiagramTimeout, validation.Min(time.Duration(0))),
	)
}

// Validate validates the TOC configuration. Depths only matter when enabled.
func (c *TOCConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MinDepth, validation.Min(1), validation.Max(MaxTOCDepth)),
		validation.Field(&c.MaxDepth, validation.Min(1), validation.Max(MaxTOCDepth)),
	); err != nil {
		return err
	}
	if c.MinDepth > c.MaxDepth {
		return fmt.Errorf("minDepth %d exceeds maxDepth %d", c.MinDepth, c.MaxDepth)
	}
	return nil
}

func baseName(value any) error {
	s, _ := value.(string)
	if s != "" && s != filepath.Base(s) {
		return errors.New("must be a file name, not a path")
	}
	return nil
}

func extension(value any) error {
	s, _ := value.(string)
	if !strings.HasPrefix(s, ".") || len(s) < 2 {
		return errors.New("must start with a dot")
	}
	return nil
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Content: ContentConfig{
			Root:             ".",
			RootLabel:        "blogs",
			FolderMeta:       "info.json",
			IndexName:        "index.json",
			ChecksumStore:    ".blog-checksum.json",
			ExcludeFolders:   []string{"images", ".git", "node_modules"},
			ExcludeFiles:     []string{"info.json", "index.json"},
			AcceptExtensions: []string{".md", ".json", ".txt", ".html"},
		},
		Output: OutputConfig{
			Dir:        "pdf",
			MergedName: "All-Blogs-Merged.pdf",
			Clean:      true,
		},
		Convert: ConvertConfig{
			Concurrency:    4,
			Timeout:        90 * time.Second,
			DiagramTimeout: 10 * time.Second,
		},
		TOC: TOCConfig{
			Enabled:  true,
			MinDepth: 2,
			MaxDepth: 6,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, <user config dir>/blogbook/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, AppName, name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
