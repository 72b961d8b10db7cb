package report

import "time"

// Status tracks a job's lifecycle. Transitions are monotonic: a job
// never moves backwards, and succeeded/failed are terminal.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Step outcome labels.
const (
	StepPassed  = "passed"
	StepFailed  = "failed"
	StepSkipped = "skipped"
)

// StepResult captures the outcome of a single step.
type StepResult struct {
	VariantID  string        `json:"variant_id"`
	StepName   string        `json:"step_name"`
	StepRun    string        `json:"step_run"`
	Status     string        `json:"status"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Stdout     string        `json:"stdout,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`
	ExitCode   int           `json:"exit_code"`
	DryRun     bool          `json:"dry_run"`
}

// JobResult records one variant's job: its status, per-step outcomes,
// and any non-fatal reporting warnings collected after the run.
type JobResult struct {
	VariantID      string        `json:"variant_id"`
	Status         Status        `json:"status"`
	Steps          []StepResult  `json:"steps,omitempty"`
	ReportWarnings []string      `json:"report_warnings,omitempty"`
	Duration       time.Duration `json:"-"`
	DurationMS     int64         `json:"duration_ms"`
}

// NewJobResult returns a pending result for the given variant.
func NewJobResult(variantID string) *JobResult {
	return &JobResult{VariantID: variantID, Status: StatusPending}
}

// Advance moves the job status forward. Backward transitions and
// transitions out of a terminal status are ignored; it reports whether
// the status changed.
func (j *JobResult) Advance(next Status) bool {
	if j.Status == StatusSucceeded || j.Status == StatusFailed {
		return false
	}
	if statusRank(next) <= statusRank(j.Status) {
		return false
	}
	j.Status = next
	return true
}

func statusRank(s Status) int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	case StatusSucceeded:
		return 2
	case StatusFailed:
		return 3
	default:
		return -1
	}
}

// Summary aggregates a full matrix run.
type Summary struct {
	RunID         string        `json:"run_id"`
	TotalVariants int           `json:"total_variants"`
	TotalSteps    int           `json:"total_steps"`
	Passed        int           `json:"passed"`
	Failed        int           `json:"failed"`
	Skipped       int           `json:"skipped"`
	SucceededJobs int           `json:"succeeded_jobs"`
	FailedJobs    int           `json:"failed_jobs"`
	Duration      time.Duration `json:"-"`
	DurationMS    int64         `json:"duration_ms"`
	ExitCode      int           `json:"exit_code"`
}
