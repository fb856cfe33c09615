package backend

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/byteowlz/pdfrip/internal/config"
)

// Result holds the output of one extraction attempt
type Result struct {
	Backend string
	Pages   int
	Chars   int
	Text    string // Full document text with page markers
}

// Backend is the interface for PDF text extraction backends
type Backend interface {
	// Name returns the unique identifier for this backend
	Name() string

	// Extract reads the PDF at path and returns its full text with page markers
	Extract(ctx context.Context, path string) (*Result, error)

	// IsAvailable checks if the backend is usable in the current environment
	IsAvailable() bool

	// InstallHint describes how to make an unavailable backend usable
	InstallHint() string
}

// All returns every known backend in its fixed attempt order.
// The order is insertion order, not a quality ranking.
func All(cfg *config.Config) []Backend {
	return []Backend{
		NewLedongthucBackend(),
		NewPopplerBackend(cfg.Poppler.Layout),
		NewMuPDFBackend(),
	}
}

// Detect partitions backends into available and missing, preserving order.
func Detect(all []Backend) (available, missing []Backend) {
	for _, b := range all {
		if b.IsAvailable() {
			available = append(available, b)
		} else {
			missing = append(missing, b)
		}
	}
	return available, missing
}

// Select filters backends by name, keeping the original order. Returns an
// error naming the valid choices if an unknown name is requested.
func Select(all []Backend, names []string) ([]Backend, error) {
	if len(names) == 0 {
		return all, nil
	}

	known := make(map[string]bool, len(all))
	var knownNames []string
	for _, b := range all {
		known[b.Name()] = true
		knownNames = append(knownNames, b.Name())
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		if !known[n] {
			return nil, fmt.Errorf("unknown backend: %s (available: %s)", n, strings.Join(knownNames, ", "))
		}
		wanted[n] = true
	}

	var selected []Backend
	for _, b := range all {
		if wanted[b.Name()] {
			selected = append(selected, b)
		}
	}
	return selected, nil
}

// joinPages concatenates page texts in document order, prefixing each page
// with its 1-based marker. A page without extractable text contributes only
// its marker. Zero pages yields an empty string.
func joinPages(pages []string) string {
	var b strings.Builder
	for i, text := range pages {
		fmt.Fprintf(&b, "\n\n=== PAGE %d ===\n", i+1)
		b.WriteString(text)
	}
	return b.String()
}

// newResult builds a Result from per-page texts
func newResult(name string, pages []string) *Result {
	text := joinPages(pages)
	return &Result{
		Backend: name,
		Pages:   len(pages),
		Chars:   utf8.RuneCountInString(text),
		Text:    text,
	}
}
