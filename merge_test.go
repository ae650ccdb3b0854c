package blogbook

// Notes:
// - Real merges use tiny hand-built PDFs whose pages differ only by MediaBox,
//   so page order in the result is read back through pdfcpu's page dims.
// - pdfcpu's own validation rules are not exercised beyond what a minimal
//   one-page document needs.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// onePagePDF returns a valid single-page PDF whose MediaBox is w x h points.
func onePagePDF(w, h int) []byte {
	content := "BT /F1 12 Tf 10 10 Td (page) Tj ET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>", w, h),
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func writePDF(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, onePagePDF(w, h), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestPDFMerger_Merge(t *testing.T) {
	t.Parallel()

	t.Run("zero inputs", func(t *testing.T) {
		t.Parallel()

		err := NewPDFMerger(nil).Merge(context.Background(), nil, filepath.Join(t.TempDir(), "out.pdf"))
		if !errors.Is(err, ErrNothingToMerge) {
			t.Errorf("Merge() error = %v, want ErrNothingToMerge", err)
		}
	})

	t.Run("single input is copied", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeSource(t, dir, "one.pdf", "%PDF-1.4 only")
		out := filepath.Join(dir, "merged", "All.pdf")

		if err := NewPDFMerger(nil).Merge(context.Background(), []string{in}, out); err != nil {
			t.Fatalf("Merge() error = %v", err)
		}
		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("reading merged: %v", err)
		}
		if string(got) != "%PDF-1.4 only" {
			t.Errorf("merged = %q", got)
		}
	})

	t.Run("missing single input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := NewPDFMerger(nil).Merge(context.Background(), []string{filepath.Join(dir, "gone.pdf")}, filepath.Join(dir, "out.pdf"))
		if !errors.Is(err, ErrMerge) {
			t.Errorf("Merge() error = %v, want ErrMerge", err)
		}
	})

	t.Run("pages follow input order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		inputs := []string{
			writePDF(t, dir, "first.pdf", 100, 100),
			writePDF(t, dir, "second.pdf", 200, 300),
			writePDF(t, dir, "third.pdf", 400, 150),
		}
		out := filepath.Join(dir, "book", "All.pdf")

		if err := NewPDFMerger(nil).Merge(context.Background(), inputs, out); err != nil {
			t.Fatalf("Merge() error = %v", err)
		}

		dims, err := api.PageDimsFile(out)
		if err != nil {
			t.Fatalf("reading merged page dims: %v", err)
		}
		want := [][2]float64{{100, 100}, {200, 300}, {400, 150}}
		if len(dims) != len(want) {
			t.Fatalf("merged has %d pages, want %d", len(dims), len(want))
		}
		for i, d := range dims {
			if d.Width != want[i][0] || d.Height != want[i][1] {
				t.Errorf("page %d = %vx%v, want %vx%v", i+1, d.Width, d.Height, want[i][0], want[i][1])
			}
		}
	})

	t.Run("reversed inputs reverse the pages", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writePDF(t, dir, "a.pdf", 100, 100)
		b := writePDF(t, dir, "b.pdf", 200, 300)
		out := filepath.Join(dir, "All.pdf")

		if err := NewPDFMerger(nil).Merge(context.Background(), []string{b, a}, out); err != nil {
			t.Fatalf("Merge() error = %v", err)
		}

		dims, err := api.PageDimsFile(out)
		if err != nil {
			t.Fatalf("reading merged page dims: %v", err)
		}
		if len(dims) != 2 || dims[0].Width != 200 || dims[1].Width != 100 {
			t.Errorf("page dims = %+v, want b before a", dims)
		}
	})

	t.Run("invalid PDFs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		a := writeSource(t, dir, "a.pdf", "not a pdf")
		b := writeSource(t, dir, "b.pdf", "not a pdf either")
		err := NewPDFMerger(nil).Merge(context.Background(), []string{a, b}, filepath.Join(dir, "out.pdf"))
		if !errors.Is(err, ErrMerge) {
			t.Errorf("Merge() error = %v, want ErrMerge", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := writeSource(t, dir, "one.pdf", "%PDF-1.4")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := NewPDFMerger(nil).Merge(ctx, []string{in}, filepath.Join(dir, "out.pdf"))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Merge() error = %v, want context.Canceled", err)
		}
	})
}
