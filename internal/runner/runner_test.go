package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/byteowlz/pdfrip/internal/backend"
)

// mockBackend for testing
type mockBackend struct {
	name  string
	text  string
	err   error
	calls int
}

func (m *mockBackend) Name() string        { return m.name }
func (m *mockBackend) IsAvailable() bool   { return true }
func (m *mockBackend) InstallHint() string { return "" }
func (m *mockBackend) Extract(ctx context.Context, path string) (*backend.Result, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &backend.Result{
		Backend: m.name,
		Pages:   1,
		Chars:   utf8.RuneCountInString(m.text),
		Text:    m.text,
	}, nil
}

func TestRun_WritesOutputFile(t *testing.T) {
	dir := t.TempDir()
	want := "\n\n=== PAGE 1 ===\nHello\n\n=== PAGE 2 ===\n"
	b := &mockBackend{name: "mock", text: want}

	summary, err := Run(context.Background(), "/docs/rulebook.pdf", []backend.Backend{b}, Options{
		OutputDir: dir,
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Succeeded() != 1 {
		t.Fatalf("expected 1 success, got %d", summary.Succeeded())
	}
	outPath := filepath.Join(dir, "rulebook_mock.txt")
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if string(got) != want {
		t.Errorf("output = %q, want %q", string(got), want)
	}

	a := summary.Attempts[0]
	if !a.Success || a.Backend != "mock" || a.Output != outPath {
		t.Errorf("unexpected attempt record: %+v", a)
	}
}

func TestRun_FailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	b := &mockBackend{name: "mock", err: errors.New("file is password protected")}

	summary, err := Run(context.Background(), "secret.pdf", []backend.Backend{b}, Options{
		OutputDir: dir,
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Succeeded() != 0 {
		t.Fatalf("expected 0 successes, got %d", summary.Succeeded())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed backend must not leave files behind, found %v", entries)
	}

	a := summary.Attempts[0]
	if a.Success || !strings.Contains(a.Err, "password protected") {
		t.Errorf("unexpected attempt record: %+v", a)
	}
}

func TestRun_BackendsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	failing := &mockBackend{name: "broken", err: errors.New("boom")}
	working := &mockBackend{name: "working", text: "\n\n=== PAGE 1 ===\nok"}

	summary, err := Run(context.Background(), "doc.pdf", []backend.Backend{failing, working}, Options{
		OutputDir: dir,
		Quiet:     true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if failing.calls != 1 || working.calls != 1 {
		t.Errorf("every backend must be attempted exactly once, got %d and %d", failing.calls, working.calls)
	}
	if summary.Succeeded() != 1 {
		t.Errorf("expected 1 success, got %d", summary.Succeeded())
	}
	if len(summary.Attempts) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(summary.Attempts))
	}
}

func TestRun_AllFailedDiagnostic(t *testing.T) {
	var stderr bytes.Buffer
	b := &mockBackend{name: "mock", err: errors.New("boom")}

	_, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, Options{
		OutputDir: t.TempDir(),
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := stderr.String()
	for _, hint := range []string{"All backends failed", "password protected", "OCR", "encoding"} {
		if !strings.Contains(out, hint) {
			t.Errorf("diagnostic should mention %q, got:\n%s", hint, out)
		}
	}
}

func TestRun_QuietSuppressesOutput(t *testing.T) {
	var stderr bytes.Buffer
	b := &mockBackend{name: "mock", err: errors.New("boom")}

	_, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, Options{
		OutputDir: t.TempDir(),
		Quiet:     true,
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stderr.Len() != 0 {
		t.Errorf("quiet mode must not write to stderr, got:\n%s", stderr.String())
	}
}

func TestRun_ReportsProgress(t *testing.T) {
	var stderr bytes.Buffer
	b := &mockBackend{name: "mock", text: "\n\n=== PAGE 1 ===\nhi"}

	_, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, Options{
		OutputDir: t.TempDir(),
		Stderr:    &stderr,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	out := stderr.String()
	if !strings.Contains(out, "Trying mock...") {
		t.Errorf("expected attempt announcement, got:\n%s", out)
	}
	if !strings.Contains(out, "extracted") {
		t.Errorf("expected success report, got:\n%s", out)
	}
}

func TestRun_OverwritesPriorOutput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "doc_mock.txt")
	if err := os.WriteFile(outPath, []byte("stale content from a previous run"), 0644); err != nil {
		t.Fatal(err)
	}

	want := "\n\n=== PAGE 1 ===\nfresh"
	b := &mockBackend{name: "mock", text: want}
	if _, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, Options{OutputDir: dir, Quiet: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Errorf("prior content must be fully overwritten, got %q", string(got))
	}
}

func TestRun_Idempotent(t *testing.T) {
	dir := t.TempDir()
	b := &mockBackend{name: "mock", text: "\n\n=== PAGE 1 ===\nsame"}
	opts := Options{OutputDir: dir, Quiet: true}

	for i := 0; i < 2; i++ {
		if _, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, opts); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "doc_mock.txt" {
		t.Errorf("re-running must leave exactly the one output file, found %v", entries)
	}
}

func TestRun_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	b := &mockBackend{name: "mock", text: "x"}

	if _, err := Run(context.Background(), "doc.pdf", []backend.Backend{b}, Options{OutputDir: dir, Quiet: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "doc_mock.txt")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestOutputFilename(t *testing.T) {
	tests := []struct {
		path    string
		backend string
		want    string
	}{
		{"/docs/Forge_Core_Rulebook.pdf", "ledongthuc", "Forge_Core_Rulebook_ledongthuc.txt"},
		{"doc.pdf", "poppler", "doc_poppler.txt"},
		{"no-extension", "mupdf", "no-extension_mupdf.txt"},
		{".pdf", "mupdf", "output_mupdf.txt"},
	}

	for _, tt := range tests {
		if got := outputFilename(tt.path, tt.backend); got != tt.want {
			t.Errorf("outputFilename(%q, %q) = %q, want %q", tt.path, tt.backend, got, tt.want)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	if err := writeFileAtomic(path, []byte("hello")); err != nil {
		t.Fatalf("writeFileAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Errorf("content = %q, want %q", string(got), "hello")
	}

	// No temp files may survive
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the output file, found %v", entries)
	}
}
