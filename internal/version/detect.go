package version

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Info captures an interpreter version installed on the system.
type Info struct {
	Name    string
	Version string
}

var pythonRegex = regexp.MustCompile(`(?i)python\s+(\d+\.\d+(?:\.\d+)?)`)

// DetectPython returns the system Python version, preferring python3.
func DetectPython() (Info, error) {
	out, err := runCommand("python3", "--version")
	if err != nil {
		out, err = runCommand("python", "--version")
	}
	if err != nil {
		return Info{}, err
	}
	return parsePython(out)
}

func parsePython(out string) (Info, error) {
	match := pythonRegex.FindStringSubmatch(out)
	if len(match) < 2 {
		return Info{}, fmt.Errorf("unable to parse python version from %q", out)
	}
	return Info{Name: "python", Version: match[1]}, nil
}

func runCommand(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// CompareMajorMinor compares major.minor portions of two semver-like versions.
func CompareMajorMinor(desired, actual string) bool {
	d := semverPrefix(desired)
	a := semverPrefix(actual)
	if d == "" || a == "" {
		return false
	}
	return strings.EqualFold(d, a)
}

func semverPrefix(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) < 2 {
		return ""
	}
	return fmt.Sprintf("%s.%s", parts[0], parts[1])
}

// Missing reports whether executing the command returns a not-found error.
func Missing(cmdErr error) bool {
	return errors.Is(cmdErr, exec.ErrNotFound)
}
