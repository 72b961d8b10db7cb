package matrix

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCovimerageMatrix(t *testing.T) {
	root := projectRoot(t)
	parser := NewParser(root)

	m, warnings, err := parser.Parse(filepath.Join("testdata", "matrices", "covimerage.yml"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if m.Name != "covimerage" {
		t.Fatalf("expected matrix name covimerage, got %q", m.Name)
	}
	if len(m.Variants) != 8 {
		t.Fatalf("expected 8 variants, got %d", len(m.Variants))
	}
	if len(m.Steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(m.Steps))
	}

	py36, ok := m.Variant("py36")
	if !ok {
		t.Fatalf("py36 variant missing")
	}
	want := ReportPolicy{Coverage: true, CompatSink: true, PrimarySink: true}
	if py36.Report != want {
		t.Fatalf("py36 policy = %+v, want %+v", py36.Report, want)
	}

	compat5, _ := m.Variant("py37-coveragepy5")
	if compat5.Report.CompatSink || !compat5.Report.Coverage {
		t.Fatalf("unexpected py37-coveragepy5 policy: %+v", compat5.Report)
	}

	checkqa, _ := m.Variant("checkqa")
	if checkqa.Report != (ReportPolicy{}) {
		t.Fatalf("checkqa should carry an empty policy, got %+v", checkqa.Report)
	}

	py37, _ := m.Variant("py37")
	if py37.Report != (ReportPolicy{Coverage: true, CompatSink: true}) {
		t.Fatalf("default policy not applied: %+v", py37.Report)
	}

	if m.Report.Artifact != "coverage.xml" {
		t.Fatalf("expected artifact coverage.xml, got %q", m.Report.Artifact)
	}
	if m.Report.Primary.TokenEnv != "CODACY_PROJECT_TOKEN" {
		t.Fatalf("expected primary sink token env, got %q", m.Report.Primary.TokenEnv)
	}

	found := false
	for _, w := range warnings {
		if w.Variant == "py37-coveragepy5" && strings.Contains(w.Message, "exemption") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected compat exemption warning, got %+v", warnings)
	}
}

func TestParseDuplicateVariantID(t *testing.T) {
	path := writeMatrix(t, `
name: dup
variants:
  - id: py36
  - id: py36
steps:
  - name: Test
    run: echo hi
`)
	parser := NewParser(filepath.Dir(path))
	if _, _, err := parser.Parse(filepath.Base(path)); err == nil || !strings.Contains(err.Error(), "duplicate variant id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestParseNoVariants(t *testing.T) {
	path := writeMatrix(t, `
name: empty
steps:
  - name: Test
    run: echo hi
`)
	parser := NewParser(filepath.Dir(path))
	if _, _, err := parser.Parse(filepath.Base(path)); err == nil || !strings.Contains(err.Error(), "no variants") {
		t.Fatalf("expected no-variants error, got %v", err)
	}
}

func TestParseMultiplePrimarySinks(t *testing.T) {
	path := writeMatrix(t, `
name: twoprimary
variants:
  - id: a
    report: {primary: true}
  - id: b
    report: {primary: true}
steps:
  - name: Test
    run: echo hi
`)
	parser := NewParser(filepath.Dir(path))
	if _, _, err := parser.Parse(filepath.Base(path)); err == nil || !strings.Contains(err.Error(), "primary sink") {
		t.Fatalf("expected primary sink conflict error, got %v", err)
	}
}

func TestParseStepWarnings(t *testing.T) {
	path := writeMatrix(t, `
name: warnings
variants:
  - id: a
steps:
  - name: Empty
  - name: Ghost
    run: echo hi
    only: [missing]
`)
	parser := NewParser(filepath.Dir(path))
	m, warnings, err := parser.Parse(filepath.Base(path))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(m.Steps) != 1 {
		t.Fatalf("expected empty step dropped, got %d steps", len(m.Steps))
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %+v", warnings)
	}
	if !strings.Contains(warnings[1].Message, "unknown variant") {
		t.Fatalf("expected unknown variant warning, got %+v", warnings[1])
	}
}

func TestParseMissingFile(t *testing.T) {
	parser := NewParser(t.TempDir())
	if _, _, err := parser.Parse("nope.yml"); err == nil {
		t.Fatalf("expected error for missing matrix")
	}
}

func writeMatrix(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "matrix.yml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}
	return path
}

func projectRoot(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	return filepath.Join(wd, "..", "..")
}
