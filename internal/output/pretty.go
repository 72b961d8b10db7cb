package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"matrixci/internal/matrix"
	"matrixci/internal/report"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noteStyle   = lipgloss.NewStyle().Faint(true)
)

// PrettyRenderer renders matrix results in a human-friendly format.
type PrettyRenderer struct {
	out io.Writer
}

// NewPretty creates a PrettyRenderer writing to the provided writer.
func NewPretty(out io.Writer) *PrettyRenderer {
	return &PrettyRenderer{out: out}
}

// RenderList renders variants and their effective step sequences in list mode.
func (p *PrettyRenderer) RenderList(m *matrix.Matrix) error {
	if _, err := fmt.Fprintf(p.out, "Matrix %s\n", headerStyle.Render(decorateName(m.Name, m.Path))); err != nil {
		return err
	}
	for _, variant := range m.Variants {
		if _, err := fmt.Fprintf(p.out, "  Variant %s\n", variant.ID); err != nil {
			return err
		}
		for _, step := range m.Steps {
			if !step.AppliesTo(variant.ID) {
				continue
			}
			if _, err := fmt.Fprintf(p.out, "    • %s\n", stepLabel(step.Name, step.Run)); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderResults shows per-job outcomes in declared variant order with a summary.
func (p *PrettyRenderer) RenderResults(m *matrix.Matrix, results map[string]*report.JobResult, summary report.Summary) error {
	if _, err := fmt.Fprintf(p.out, "Matrix %s\n", headerStyle.Render(decorateName(m.Name, m.Path))); err != nil {
		return err
	}
	for _, variant := range m.Variants {
		res := results[variant.ID]
		if res == nil {
			continue
		}
		fmt.Fprintf(p.out, "  Job %s %s (%s)\n", variant.ID, jobGlyph(res.Status), formatDuration(res.Duration))
		for _, sr := range res.Steps {
			fmt.Fprintf(p.out, "    %s %s (%s)\n", statusGlyph(sr.Status), stepLabel(sr.StepName, sr.StepRun), formatDuration(sr.Duration))
			if sr.Status == report.StepFailed && sr.Stderr != "" {
				fmt.Fprintf(p.out, "      stderr: %s\n", indent(sr.Stderr, "      "))
			}
			if sr.DryRun {
				fmt.Fprintf(p.out, "      command: %s\n", noteStyle.Render(sr.StepRun))
			}
		}
		for _, warning := range res.ReportWarnings {
			fmt.Fprintf(p.out, "    %s report: %s\n", skipStyle.Render("!"), warning)
		}
	}

	fmt.Fprintf(p.out, "SUMMARY: %d/%d jobs succeeded, %d passed, %d failed, %d skipped (%s)\n",
		summary.SucceededJobs, summary.TotalVariants, summary.Passed, summary.Failed, summary.Skipped, formatDuration(summary.Duration))
	return nil
}

func decorateName(name, path string) string {
	if name == "" || name == path {
		return path
	}
	return fmt.Sprintf("%s (%s)", name, path)
}

func stepLabel(name, run string) string {
	if name == "" {
		return run
	}
	return name
}

func jobGlyph(status report.Status) string {
	switch status {
	case report.StatusSucceeded:
		return passStyle.Render("succeeded")
	case report.StatusFailed:
		return failStyle.Render("failed")
	default:
		return string(status)
	}
}

func statusGlyph(status string) string {
	switch status {
	case report.StepPassed:
		return passStyle.Render("✓")
	case report.StepFailed:
		return failStyle.Render("✗")
	case report.StepSkipped:
		return skipStyle.Render("-")
	default:
		return "?"
	}
}

func indent(s, pad string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		if i == 0 {
			continue
		}
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
