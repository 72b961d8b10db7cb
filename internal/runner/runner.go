package runner

import (
	"context"
	"time"

	"matrixci/internal/executor"
	"matrixci/internal/matrix"
	"matrixci/internal/report"
)

// Job is one variant's unit of execution: the variant identity, the
// shared step template, and the fully merged base environment.
type Job struct {
	Variant matrix.Variant
	Steps   []matrix.Step
	Env     []string
}

// Options configure job execution.
type Options struct {
	DryRun    bool
	TailLines int
	Now       func() time.Time
}

// Runner executes one job's steps sequentially, stopping at the first
// failing step.
type Runner struct {
	exec *executor.Executor
	opts Options
}

// New creates a runner that executes steps through exec.
func New(exec *executor.Executor, opts Options) *Runner {
	if opts.TailLines <= 0 {
		opts.TailLines = 20
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{exec: exec, opts: opts}
}

// Run executes the job and returns its finalized result. A job whose
// steps all pass or are skipped succeeds; the empty step sequence
// succeeds trivially.
func (r *Runner) Run(ctx context.Context, job Job) *report.JobResult {
	res := report.NewJobResult(job.Variant.ID)
	res.Advance(report.StatusRunning)
	start := r.opts.Now()

	for _, step := range job.Steps {
		sr := report.StepResult{
			VariantID: job.Variant.ID,
			StepName:  step.Name,
			StepRun:   step.Run,
			DryRun:    r.opts.DryRun,
		}

		if !step.AppliesTo(job.Variant.ID) {
			sr.Status = report.StepSkipped
			res.Steps = append(res.Steps, sr)
			continue
		}

		if r.opts.DryRun {
			sr.Status = report.StepSkipped
			res.Steps = append(res.Steps, sr)
			continue
		}

		out := r.exec.Execute(ctx, step, executor.MergeEnv(job.Env, step.Env))
		sr.Duration = out.Duration
		sr.DurationMS = out.Duration.Milliseconds()
		sr.ExitCode = out.ExitCode
		sr.Stdout = out.Stdout
		sr.Stderr = out.Stderr

		if out.ExitCode != 0 {
			sr.Status = report.StepFailed
			sr.Stdout = executor.Tail(sr.Stdout, r.opts.TailLines)
			sr.Stderr = executor.Tail(sr.Stderr, r.opts.TailLines)
			res.Steps = append(res.Steps, sr)
			res.Advance(report.StatusFailed)
			break
		}

		sr.Status = report.StepPassed
		res.Steps = append(res.Steps, sr)
	}

	res.Advance(report.StatusSucceeded)
	res.Duration = r.opts.Now().Sub(start)
	res.DurationMS = res.Duration.Milliseconds()
	return res
}
