package output

import (
	"encoding/json"
	"io"

	"matrixci/internal/matrix"
	"matrixci/internal/report"
)

// JSONRenderer emits structured execution data.
type JSONRenderer struct {
	out io.Writer
}

// NewJSON creates a JSON renderer writing to out.
func NewJSON(out io.Writer) *JSONRenderer {
	return &JSONRenderer{out: out}
}

// Report captures JSON output schema. Jobs appear in declared variant order.
type Report struct {
	Matrix   string              `json:"matrix"`
	Variants []matrix.Variant    `json:"variants"`
	Jobs     []*report.JobResult `json:"jobs,omitempty"`
	Summary  report.Summary      `json:"summary"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Render encodes the report as JSON.
func (j *JSONRenderer) Render(report Report) error {
	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
