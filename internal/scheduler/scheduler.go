package scheduler

import (
	"context"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"matrixci/internal/executor"
	"matrixci/internal/matrix"
	"matrixci/internal/report"
	"matrixci/internal/runner"
)

// Reporter receives each job's finalized result for post-run side
// effects. It is invoked from the job's own goroutine, after the
// result status is terminal and before the result is published.
type Reporter interface {
	Report(ctx context.Context, variant matrix.Variant, result *report.JobResult)
}

// Options configure matrix scheduling.
type Options struct {
	Parallel int
	Env      []string
	RunID    string
	Reporter Reporter
	Now      func() time.Time
}

// Scheduler expands a matrix into independent jobs and runs them
// concurrently. Jobs share no mutable state; one job's failure never
// affects another.
type Scheduler struct {
	runner *runner.Runner
	opts   Options
}

// New creates a scheduler dispatching jobs to r.
func New(r *runner.Runner, opts Options) *Scheduler {
	if opts.Parallel <= 0 {
		opts.Parallel = runtime.NumCPU()
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{runner: r, opts: opts}
}

// RunAll executes one job per declared variant and returns a result
// for every variant regardless of completion order, plus the run
// summary.
func (s *Scheduler) RunAll(ctx context.Context, m *matrix.Matrix) (map[string]*report.JobResult, report.Summary) {
	summary := report.Summary{RunID: s.opts.RunID, TotalVariants: len(m.Variants)}
	results := make(map[string]*report.JobResult, len(m.Variants))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.opts.Parallel)

	start := s.opts.Now()
	for _, variant := range m.Variants {
		variant := variant
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			job := runner.Job{
				Variant: variant,
				Steps:   m.Steps,
				Env:     executor.MergeEnv(s.opts.Env, m.Env, variant.Env),
			}
			res := s.runner.Run(ctx, job)
			if s.opts.Reporter != nil {
				s.opts.Reporter.Report(ctx, variant, res)
			}

			mu.Lock()
			results[variant.ID] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	summary.Duration = s.opts.Now().Sub(start)
	summary.DurationMS = summary.Duration.Milliseconds()

	for _, variant := range m.Variants {
		res := results[variant.ID]
		if res == nil {
			continue
		}
		switch res.Status {
		case report.StatusSucceeded:
			summary.SucceededJobs++
		case report.StatusFailed:
			summary.FailedJobs++
			summary.ExitCode = 1
		}
		for _, sr := range res.Steps {
			summary.TotalSteps++
			switch sr.Status {
			case report.StepPassed:
				summary.Passed++
			case report.StepFailed:
				summary.Failed++
			case report.StepSkipped:
				summary.Skipped++
			}
		}
	}

	return results, summary
}
