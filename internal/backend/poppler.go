package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PopplerBackend extracts text by shelling out to the poppler-utils CLIs
// (pdftotext for page text, pdfinfo for the page count)
type PopplerBackend struct {
	Layout bool // pass -layout to preserve physical text layout

	pdftotext string
	pdfinfo   string
}

// NewPopplerBackend creates the poppler-utils extraction backend
func NewPopplerBackend(layout bool) *PopplerBackend {
	return &PopplerBackend{
		Layout:    layout,
		pdftotext: "pdftotext",
		pdfinfo:   "pdfinfo",
	}
}

// Name returns the backend identifier
func (p *PopplerBackend) Name() string {
	return "poppler"
}

// IsAvailable checks that both poppler binaries are on PATH
func (p *PopplerBackend) IsAvailable() bool {
	if _, err := exec.LookPath(p.pdftotext); err != nil {
		return false
	}
	if _, err := exec.LookPath(p.pdfinfo); err != nil {
		return false
	}
	return true
}

// InstallHint names the system package that provides the binaries
func (p *PopplerBackend) InstallHint() string {
	return "install poppler-utils (apt install poppler-utils / brew install poppler)"
}

// Extract runs pdftotext once per page so each page lands behind its marker
func (p *PopplerBackend) Extract(ctx context.Context, path string) (*Result, error) {
	total, err := p.pageCount(ctx, path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, total)
	for n := 1; n <= total; n++ {
		text, err := p.pageText(ctx, path, n)
		if err != nil {
			return nil, fmt.Errorf("poppler: page %d: %w", n, err)
		}
		pages = append(pages, text)
	}

	return newResult(p.Name(), pages), nil
}

func (p *PopplerBackend) pageCount(ctx context.Context, path string) (int, error) {
	out, err := exec.CommandContext(ctx, p.pdfinfo, path).Output()
	if err != nil {
		return 0, fmt.Errorf("poppler: pdfinfo %s: %w", path, cliError(err))
	}
	return parsePageCount(string(out))
}

func (p *PopplerBackend) pageText(ctx context.Context, path string, page int) (string, error) {
	args := []string{"-f", strconv.Itoa(page), "-l", strconv.Itoa(page)}
	if p.Layout {
		args = append(args, "-layout")
	}
	args = append(args, path, "-")

	out, err := exec.CommandContext(ctx, p.pdftotext, args...).Output()
	if err != nil {
		return "", cliError(err)
	}
	return trimPageOutput(string(out)), nil
}

// parsePageCount finds the "Pages:" line in pdfinfo output
func parsePageCount(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("poppler: bad Pages line %q: %w", line, err)
		}
		return n, nil
	}
	return 0, errors.New("poppler: no Pages line in pdfinfo output")
}

// trimPageOutput strips the trailing form feed and newline pdftotext
// appends to every page
func trimPageOutput(out string) string {
	out = strings.TrimSuffix(out, "\f")
	return strings.TrimSuffix(out, "\n")
}

// cliError surfaces stderr from a failed command instead of just "exit status 1"
func cliError(err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if msg := strings.TrimSpace(string(ee.Stderr)); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
	}
	return err
}
