package main

import (
	"errors"
	"os"

	blogbook "github.com/alnah/go-blogbook"
	"github.com/alnah/go-blogbook/internal/assets"
	"github.com/alnah/go-blogbook/internal/config"
	"github.com/alnah/go-blogbook/internal/tree"
)

// Exit codes for the blogbook CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Successful run
	ExitGeneral    = 1 // General/unexpected error, or every document failed
	ExitUsage      = 2 // Invalid flags, config, or options
	ExitIO         = 3 // Missing content root or index, permission denied
	ExitBrowser    = 4 // Browser/Chrome errors
	ExitValidation = 5 // Content tree failed validation
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Validation errors (exit 5)
	if errors.Is(err, tree.ErrInvalidTree) {
		return ExitValidation
	}

	// Browser errors (exit 4)
	if errors.Is(err, blogbook.ErrBrowserConnect) ||
		errors.Is(err, blogbook.ErrPageCreate) ||
		errors.Is(err, blogbook.ErrPageLoad) ||
		errors.Is(err, blogbook.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Usage/config errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, blogbook.ErrInvalidTOCDepth) ||
		errors.Is(err, blogbook.ErrInvalidConcurrency) ||
		errors.Is(err, blogbook.ErrInvalidAssetPath) ||
		errors.Is(err, assets.ErrStyleNotFound) ||
		errors.Is(err, assets.ErrTemplateNotFound) ||
		errors.Is(err, assets.ErrInvalidAssetName) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, tree.ErrRootNotFound) ||
		errors.Is(err, tree.ErrIndexNotFound) ||
		errors.Is(err, tree.ErrInvalidIndex) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
