package blogbook

import "errors"

// Sentinel errors for library operations.
var (
	// ErrConversion wraps every per-document failure.
	ErrConversion     = errors.New("document conversion failed")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// ErrSourceMissing marks a document listed in the index but absent on disk.
	ErrSourceMissing = errors.New("document source not found")
	// ErrPathEscape marks an index entry that resolves outside the content
	// root or the output directory.
	ErrPathEscape = errors.New("document path escapes its root")

	// Merge errors.
	ErrNothingToMerge = errors.New("no documents to merge")
	ErrMerge          = errors.New("PDF merge failed")

	// Configuration errors.
	ErrInvalidTOCDepth    = errors.New("invalid TOC depth")
	ErrInvalidConcurrency = errors.New("invalid concurrency")
	ErrInvalidAssetPath   = errors.New("invalid asset path")
	ErrPoolClosed         = errors.New("converter pool closed")
)
