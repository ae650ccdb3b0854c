package blogbook

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/alnah/go-blogbook/internal/fileutil"
)

// Merger concatenates rendered documents into one artifact.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) error
}

var _ Merger = (*PDFMerger)(nil)

// pdfcpu otherwise creates a config directory under the user's home.
var disablePDFConfigDir sync.Once

// PDFMerger merges PDF files with pdfcpu, keeping the order of inputs.
type PDFMerger struct {
	Logger *slog.Logger
}

// NewPDFMerger returns a PDFMerger. A nil logger discards output.
func NewPDFMerger(logger *slog.Logger) *PDFMerger {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PDFMerger{Logger: logger}
}

// Merge writes inputs, in order, into output. A single input is copied.
// Zero inputs return ErrNothingToMerge.
func (m *PDFMerger) Merge(ctx context.Context, inputs []string, output string) error {
	if len(inputs) == 0 {
		return ErrNothingToMerge
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(inputs) == 1 {
		if err := fileutil.CopyFile(inputs[0], output); err != nil {
			return fmt.Errorf("%w: %v", ErrMerge, err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		return fmt.Errorf("%w: creating output directory: %v", ErrMerge, err)
	}

	disablePDFConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	if err := api.MergeCreateFile(inputs, output, false, conf); err != nil {
		return fmt.Errorf("%w: %v", ErrMerge, err)
	}
	if m.Logger != nil {
		m.Logger.Debug("documents merged", "path", output, "inputs", len(inputs))
	}
	return nil
}
