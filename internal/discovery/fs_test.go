package discovery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMatrixDefaultCandidates(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ci", "matrix.yml"))
	writeFile(t, filepath.Join(root, "matrix.yml"))

	got, err := Matrix(root, "")
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	if want := filepath.Join("ci", "matrix.yml"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMatrixNoneFound(t *testing.T) {
	_, err := Matrix(t.TempDir(), "")
	if !errors.Is(err, ErrNoMatrix) {
		t.Fatalf("expected ErrNoMatrix, got %v", err)
	}
}

func TestMatrixExplicit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "custom.yml"))

	got, err := Matrix(root, "custom.yml")
	if err != nil {
		t.Fatalf("Matrix returned error: %v", err)
	}
	if got != "custom.yml" {
		t.Fatalf("expected custom.yml, got %q", got)
	}
}

func TestMatrixExplicitMissing(t *testing.T) {
	if _, err := Matrix(t.TempDir(), "nope.yml"); err == nil {
		t.Fatalf("expected error for missing explicit matrix")
	}
}

func TestMatrixExplicitDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "ci"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := Matrix(root, "ci"); err == nil {
		t.Fatalf("expected error for directory path")
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("name: test"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}
