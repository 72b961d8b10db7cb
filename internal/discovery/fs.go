package discovery

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoMatrix indicates that no matrix definition file was found.
var ErrNoMatrix = errors.New("no matrix definition discovered")

// DefaultCandidates lists the matrix file locations probed, in order,
// when no explicit path is given.
var DefaultCandidates = []string{
	filepath.Join(".matrixci", "matrix.yml"),
	filepath.Join("ci", "matrix.yml"),
	"matrix.yml",
}

// Matrix returns the matrix definition path. An explicit path is
// validated and returned as given; otherwise the default candidates
// are probed in order and the first existing file wins.
func Matrix(root, explicit string) (string, error) {
	if explicit != "" {
		return resolveExplicit(root, explicit)
	}

	for _, candidate := range DefaultCandidates {
		full := filepath.Join(root, candidate)
		info, err := os.Stat(full)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %q: %w", candidate, err)
		}
		if info.IsDir() {
			continue
		}
		return candidate, nil
	}
	return "", ErrNoMatrix
}

func resolveExplicit(root, explicit string) (string, error) {
	cleaned := explicit
	if !filepath.IsAbs(cleaned) {
		cleaned = filepath.Join(root, cleaned)
	}
	info, err := os.Stat(cleaned)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("matrix %q not found", explicit)
		}
		return "", fmt.Errorf("stat %q: %w", explicit, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("matrix %q is a directory", explicit)
	}
	return mustRelOrClean(root, cleaned), nil
}

func mustRelOrClean(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.Clean(path)
	}
	rel = filepath.Clean(rel)
	if rel == "." || strings.HasPrefix(rel, "..") {
		return filepath.Clean(path)
	}
	return rel
}
