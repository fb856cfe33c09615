package backend

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// LedongthucBackend extracts text with the pure-Go ledongthuc/pdf reader
type LedongthucBackend struct{}

// NewLedongthucBackend creates the ledongthuc/pdf extraction backend
func NewLedongthucBackend() *LedongthucBackend {
	return &LedongthucBackend{}
}

// Name returns the backend identifier
func (l *LedongthucBackend) Name() string {
	return "ledongthuc"
}

// IsAvailable always returns true - the reader is pure Go and compiled in
func (l *LedongthucBackend) IsAvailable() bool {
	return true
}

// InstallHint is empty because the backend is always available
func (l *LedongthucBackend) InstallHint() string {
	return ""
}

// Extract reads every page of the PDF at path in document order.
// The library panics on some malformed files, so panics are converted to
// errors at this boundary.
func (l *LedongthucBackend) Extract(ctx context.Context, path string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("ledongthuc: panic while reading %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ledongthuc: open %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("ledongthuc: %w", err)
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			// Page exists but has no readable content stream
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("ledongthuc: page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return newResult(l.Name(), pages), nil
}
