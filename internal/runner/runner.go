package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/byteowlz/pdfrip/internal/backend"
)

// Options controls where output lands and how much gets reported
type Options struct {
	OutputDir string
	Verbose   bool
	Quiet     bool
	Stderr    io.Writer
}

// Attempt records the outcome of one backend
type Attempt struct {
	Backend string
	Success bool
	Chars   int
	Output  string // path of the written text file, set on success
	Err     string // failure message, set on failure
}

// Summary collects the attempts of a run
type Summary struct {
	Attempts []Attempt
}

// Succeeded counts backends that produced an output file
func (s *Summary) Succeeded() int {
	n := 0
	for _, a := range s.Attempts {
		if a.Success {
			n++
		}
	}
	return n
}

// Run attempts each backend once, in order, against the PDF at pdfPath.
// Backends are independent: a failure never stops the remaining ones.
// Each success is written to its own file under opts.OutputDir.
func Run(ctx context.Context, pdfPath string, backends []backend.Backend, opts Options) (*Summary, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	summary := &Summary{}
	for _, b := range backends {
		if !opts.Quiet {
			fmt.Fprintf(stderr, "Trying %s...\n", b.Name())
		}

		result, err := b.Extract(ctx, pdfPath)
		if err != nil {
			if !opts.Quiet {
				fmt.Fprintf(stderr, "%s failed: %v\n", b.Name(), err)
			}
			summary.Attempts = append(summary.Attempts, Attempt{Backend: b.Name(), Err: err.Error()})
			continue
		}

		outPath := filepath.Join(outputDir, outputFilename(pdfPath, b.Name()))
		if err := writeFileAtomic(outPath, []byte(result.Text)); err != nil {
			if !opts.Quiet {
				fmt.Fprintf(stderr, "%s failed: %v\n", b.Name(), err)
			}
			summary.Attempts = append(summary.Attempts, Attempt{Backend: b.Name(), Err: err.Error()})
			continue
		}

		if !opts.Quiet {
			if opts.Verbose {
				fmt.Fprintf(stderr, "%s: %d pages\n", b.Name(), result.Pages)
			}
			fmt.Fprintf(stderr, "%s: extracted %d characters -> %s\n", b.Name(), result.Chars, outPath)
		}
		summary.Attempts = append(summary.Attempts, Attempt{
			Backend: b.Name(),
			Success: true,
			Chars:   result.Chars,
			Output:  outPath,
		})
	}

	if summary.Succeeded() == 0 && !opts.Quiet {
		fmt.Fprintln(stderr, "\nAll backends failed. The PDF might be:")
		fmt.Fprintln(stderr, "- password protected")
		fmt.Fprintln(stderr, "- scanned images (needs OCR)")
		fmt.Fprintln(stderr, "- using non-standard encoding")
	}

	return summary, nil
}

// outputFilename maps an input PDF and backend name to a distinct text file
func outputFilename(pdfPath, backendName string) string {
	base := filepath.Base(pdfPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "output"
	}
	return stem + "_" + backendName + ".txt"
}

// writeFileAtomic writes via a temp file in the target directory and renames
// into place, so a failed extraction or write never leaves a truncated file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
