//go:build !cgo || nomupdf

package backend

import (
	"context"
	"errors"
)

// MuPDFBackend is a stub used for builds without cgo (or with the "nomupdf"
// tag). It keeps the backend list stable while reporting itself unavailable.
type MuPDFBackend struct{}

// NewMuPDFBackend creates the stub MuPDF backend
func NewMuPDFBackend() *MuPDFBackend {
	return &MuPDFBackend{}
}

// Name returns the backend identifier
func (m *MuPDFBackend) Name() string {
	return "mupdf"
}

// IsAvailable returns false - MuPDF is not linked into this build
func (m *MuPDFBackend) IsAvailable() bool {
	return false
}

// InstallHint describes how to get a MuPDF-enabled binary
func (m *MuPDFBackend) InstallHint() string {
	return "rebuild with CGO_ENABLED=1 to link MuPDF (requires a C toolchain)"
}

// Extract always fails in this build
func (m *MuPDFBackend) Extract(ctx context.Context, path string) (*Result, error) {
	return nil, errors.New("mupdf: not available in this build")
}
