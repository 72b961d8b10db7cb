package filter

import (
	"testing"

	"matrixci/internal/matrix"
)

func sampleMatrix() *matrix.Matrix {
	return &matrix.Matrix{
		Name: "sample",
		Variants: []matrix.Variant{
			{ID: "py36"},
			{ID: "py27"},
			{ID: "checkqa"},
		},
		Steps: []matrix.Step{
			{Name: "Install", Run: "pip install tox"},
			{Name: "Lint", Run: "tox -e checkqa"},
			{Name: "Unit", Run: "tox -v"},
		},
	}
}

func TestFilterMatrixByVariant(t *testing.T) {
	patterns, err := Compile([]string{"py"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	filtered := FilterMatrix(sampleMatrix(), patterns, nil, nil)
	if len(filtered.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(filtered.Variants))
	}
	for _, variant := range filtered.Variants {
		if variant.ID == "checkqa" {
			t.Fatalf("checkqa should have been filtered out")
		}
	}
	if len(filtered.Steps) != 3 {
		t.Fatalf("steps must be untouched by variant filters, got %d", len(filtered.Steps))
	}
}

func TestFilterMatrixSteps(t *testing.T) {
	only, err := Compile([]string{"/tox/"})
	if err != nil {
		t.Fatalf("compile only: %v", err)
	}
	skip, err := Compile([]string{"unit"})
	if err != nil {
		t.Fatalf("compile skip: %v", err)
	}

	filtered := FilterMatrix(sampleMatrix(), nil, only, skip)
	if len(filtered.Steps) != 2 {
		t.Fatalf("expected 2 steps after filtering, got %d", len(filtered.Steps))
	}
	if filtered.Steps[0].Name != "Install" || filtered.Steps[1].Name != "Lint" {
		t.Fatalf("unexpected steps: %+v", filtered.Steps)
	}
	if len(filtered.Variants) != 3 {
		t.Fatalf("variants must be untouched by step filters")
	}
}

func TestFilterMatrixLeavesOriginalIntact(t *testing.T) {
	m := sampleMatrix()
	patterns, _ := Compile([]string{"py36"})
	_ = FilterMatrix(m, patterns, nil, nil)
	if len(m.Variants) != 3 {
		t.Fatalf("original matrix mutated")
	}
}

func TestCompileErrors(t *testing.T) {
	if _, err := Compile([]string{"/(/"}); err == nil {
		t.Fatalf("expected regexp compile error")
	}
}

func TestPatternMatch(t *testing.T) {
	patterns, err := Compile([]string{"PY36", "/^check/"})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if !patterns[0].Match("py36") {
		t.Fatalf("substring match should be case insensitive")
	}
	if !patterns[1].Match("checkqa") {
		t.Fatalf("regex pattern should match")
	}
	if patterns[1].Match("recheck") {
		t.Fatalf("anchored regex should not match")
	}
}
