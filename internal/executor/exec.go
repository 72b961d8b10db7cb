package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"matrixci/internal/matrix"
)

// Options configure how commands are executed.
type Options struct {
	Root    string
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Now     func() time.Time
}

// Executor runs a single step command and captures its outcome.
type Executor struct {
	opts Options
}

// New creates an executor with the supplied options.
func New(opts Options) *Executor {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Root == "" {
		if wd, err := os.Getwd(); err == nil {
			opts.Root = wd
		}
	}
	return &Executor{opts: opts}
}

// Result captures one command execution: exit status plus captured output.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Execute runs the step's command in the given environment. Nonzero
// exits are reported as-is in the result; there are no retries and no
// internal timeout beyond ctx cancellation.
func (e *Executor) Execute(ctx context.Context, step matrix.Step, env []string) Result {
	args := commandArgs(step.Shell, step.Run)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = e.opts.Root
	cmd.Env = env

	var stdoutBuf, stderrBuf strings.Builder
	if e.opts.Verbose {
		cmd.Stdout = io.MultiWriter(e.opts.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(e.opts.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	start := e.opts.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: exitCode(err),
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: e.opts.Now().Sub(start),
	}
	if err != nil && res.Stderr == "" {
		res.Stderr = err.Error()
	}
	return res
}

func commandArgs(shellSpec, script string) []string {
	shellSpec = strings.TrimSpace(shellSpec)
	if shellSpec == "" {
		if runtime.GOOS == "windows" {
			return []string{"cmd", "/C", script}
		}
		return []string{"bash", "-c", script}
	}

	fields := strings.Fields(shellSpec)
	shell := fields[0]
	args := append([]string{}, fields[1:]...)

	switch strings.ToLower(filepath.Base(shell)) {
	case "bash", "zsh", "ksh", "sh", "fish":
		args = append(args, "-c", script)
	case "cmd", "cmd.exe":
		args = append(args, "/C", script)
	case "pwsh", "powershell", "powershell.exe":
		args = append(args, "-Command", script)
	case "python", "python3", "python.exe":
		args = append(args, "-c", script)
	default:
		args = append(args, script)
	}
	return append([]string{shell}, args...)
}

// MergeEnv layers overlays over a base environment; later overlays win
// and the result is sorted for deterministic command environments.
func MergeEnv(base []string, overlays ...map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(overlays)*4)
	for _, kv := range base {
		if idx := strings.Index(kv, "="); idx != -1 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for _, overlay := range overlays {
		for k, v := range overlay {
			envMap[k] = v
		}
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return out
}

// Tail returns the final maxLines lines of input.
func Tail(input string, maxLines int) string {
	if input == "" || maxLines <= 0 {
		return input
	}
	lines := strings.Split(strings.TrimRight(input, "\n"), "\n")
	if len(lines) <= maxLines {
		return strings.Join(lines, "\n")
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(interface{ ExitStatus() int }); ok {
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}
	if errors.Is(err, exec.ErrNotFound) {
		return 127
	}
	return 1
}
