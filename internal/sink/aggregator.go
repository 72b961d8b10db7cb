package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"matrixci/internal/executor"
	"matrixci/internal/matrix"
	"matrixci/internal/report"
)

// AggregatorOptions configure post-job reporting.
type AggregatorOptions struct {
	RunID string
	Root  string
	Env   []string

	// Compat and Primary override the sinks built from the matrix
	// configuration; tests inject fakes here.
	Compat  Sink
	Primary Sink
}

// Aggregator performs reporting side effects after a job's result is
// finalized. Which effects run is decided entirely by the variant's
// resolved report policy; errors are recorded as warnings on the job
// and never alter its result.
type Aggregator struct {
	exec    *executor.Executor
	cfg     matrix.ReportConfig
	opts    AggregatorOptions
	compat  Sink
	primary Sink

	// mu serializes normalize and the artifact read: jobs report from
	// their own goroutines but share one artifact path in the run root.
	mu sync.Mutex
}

// NewAggregator wires the aggregator for one run.
func NewAggregator(exec *executor.Executor, cfg matrix.ReportConfig, opts AggregatorOptions) *Aggregator {
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	a := &Aggregator{exec: exec, cfg: cfg, opts: opts, compat: opts.Compat, primary: opts.Primary}
	if a.compat == nil && cfg.Compat.URL != "" {
		a.compat = NewHTTPSink(cfg.Compat)
	}
	if a.primary == nil && cfg.Primary.URL != "" {
		a.primary = NewHTTPSink(cfg.Primary)
	}
	return a
}

// Report runs the variant's reporting actions: normalize the coverage
// artifact, then upload to the sinks its policy admits. Jobs that did
// not succeed, and variants that produce no coverage artifact, report
// nothing.
func (a *Aggregator) Report(ctx context.Context, variant matrix.Variant, res *report.JobResult) {
	if res.Status != report.StatusSucceeded || !variant.Report.Coverage {
		return
	}
	if a.cfg.Normalize == "" && a.compat == nil && a.primary == nil {
		// Nothing configured to report to.
		return
	}

	body, err := a.collectArtifact(ctx, variant)
	if err != nil {
		res.ReportWarnings = append(res.ReportWarnings, err.Error())
		return
	}

	payload := Payload{RunID: a.opts.RunID, VariantID: variant.ID, Body: body}
	if variant.Report.CompatSink && a.compat != nil {
		if err := a.compat.Upload(ctx, payload); err != nil {
			res.ReportWarnings = append(res.ReportWarnings, fmt.Sprintf("upload to %s: %v", a.compat.Name(), err))
		}
	}
	if variant.Report.PrimarySink && a.primary != nil {
		if err := a.primary.Upload(ctx, payload); err != nil {
			res.ReportWarnings = append(res.ReportWarnings, fmt.Sprintf("upload to %s: %v", a.primary.Name(), err))
		}
	}
}

// collectArtifact runs the normalize command and reads back the
// artifact it produced, under the lock, so a concurrently reporting
// job cannot overwrite the artifact between the two.
func (a *Aggregator) collectArtifact(ctx context.Context, variant matrix.Variant) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.normalize(ctx, variant); err != nil {
		return nil, fmt.Errorf("normalize coverage: %w", err)
	}
	body, err := os.ReadFile(filepath.Join(a.opts.Root, a.cfg.Artifact))
	if err != nil {
		return nil, fmt.Errorf("read coverage artifact: %w", err)
	}
	return body, nil
}

func (a *Aggregator) normalize(ctx context.Context, variant matrix.Variant) error {
	if a.cfg.Normalize == "" {
		return nil
	}
	step := matrix.Step{Name: "normalize coverage", Run: a.cfg.Normalize}
	out := a.exec.Execute(ctx, step, executor.MergeEnv(a.opts.Env, variant.Env))
	if out.ExitCode != 0 {
		msg := strings.TrimSpace(out.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(out.Stdout)
		}
		return fmt.Errorf("exit %d: %s", out.ExitCode, msg)
	}
	return nil
}
