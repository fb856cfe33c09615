//go:build cgo && !nomupdf

package backend

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"
)

// MuPDFBackend extracts text with the MuPDF rendering library via go-fitz
type MuPDFBackend struct{}

// NewMuPDFBackend creates the MuPDF extraction backend
func NewMuPDFBackend() *MuPDFBackend {
	return &MuPDFBackend{}
}

// Name returns the backend identifier
func (m *MuPDFBackend) Name() string {
	return "mupdf"
}

// IsAvailable returns true - MuPDF is linked into cgo builds
func (m *MuPDFBackend) IsAvailable() bool {
	return true
}

// InstallHint is empty because the backend is compiled in
func (m *MuPDFBackend) InstallHint() string {
	return ""
}

// Extract reads every page of the PDF at path in document order
func (m *MuPDFBackend) Extract(ctx context.Context, path string) (*Result, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("mupdf: open %s: %w", path, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages := make([]string, 0, total)
	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("mupdf: %w", err)
		}

		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("mupdf: page %d: %w", n+1, err)
		}
		pages = append(pages, text)
	}

	return newResult(m.Name(), pages), nil
}
