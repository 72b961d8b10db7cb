package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"matrixci/internal/matrix"
	"matrixci/internal/report"
)

func sampleMatrix() *matrix.Matrix {
	return &matrix.Matrix{
		Path: "matrix.yml",
		Name: "covimerage",
		Variants: []matrix.Variant{
			{ID: "py36"},
			{ID: "checkqa"},
		},
		Steps: []matrix.Step{
			{Name: "Run tests", Run: "tox -v"},
			{Name: "Lint", Run: "tox -e checkqa", Only: []string{"checkqa"}},
		},
	}
}

func TestPrettyRenderList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderList(sampleMatrix()); err != nil {
		t.Fatalf("render list: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"covimerage", "Variant py36", "Variant checkqa", "Run tests", "Lint"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Count(out, "Lint") != 1 {
		t.Fatalf("conditional step should only list under its variant:\n%s", out)
	}
}

func TestPrettyRenderResults(t *testing.T) {
	m := sampleMatrix()
	results := map[string]*report.JobResult{
		"py36": {
			VariantID: "py36",
			Status:    report.StatusFailed,
			Steps: []report.StepResult{
				{StepName: "Run tests", Status: report.StepFailed, Stderr: "assertion failed", ExitCode: 1},
			},
			ReportWarnings: []string{"upload to coveralls: timeout"},
		},
		"checkqa": {
			VariantID: "checkqa",
			Status:    report.StatusSucceeded,
			Steps: []report.StepResult{
				{StepName: "Lint", Status: report.StepPassed, Duration: 120 * time.Millisecond},
			},
		},
	}
	summary := report.Summary{TotalVariants: 2, SucceededJobs: 1, FailedJobs: 1, Passed: 1, Failed: 1, ExitCode: 1}

	buf := &bytes.Buffer{}
	renderer := NewPretty(buf)
	if err := renderer.RenderResults(m, results, summary); err != nil {
		t.Fatalf("render results: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Job py36", "Job checkqa", "assertion failed", "upload to coveralls", "SUMMARY: 1/2 jobs succeeded"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{12 * time.Millisecond, "12ms"},
		{1500 * time.Millisecond, "1.5s"},
	}
	for _, c := range cases {
		if got := formatDuration(c.in); got != c.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
