package filter

import (
	"fmt"
	"regexp"
	"strings"

	"matrixci/internal/matrix"
)

// Pattern represents a compiled filter condition supporting substring and regex matching.
type Pattern struct {
	raw   string
	regex *regexp.Regexp
	lower string
}

// Compile transforms raw pattern strings into Pattern values.
func Compile(patterns []string) ([]Pattern, error) {
	result := make([]Pattern, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, "/") && strings.HasSuffix(raw, "/") && len(raw) >= 2 {
			expr := raw[1 : len(raw)-1]
			re, err := regexp.Compile(expr)
			if err != nil {
				return nil, fmt.Errorf("compile regexp %q: %w", raw, err)
			}
			result = append(result, Pattern{raw: raw, regex: re})
			continue
		}
		result = append(result, Pattern{raw: raw, lower: strings.ToLower(raw)})
	}
	return result, nil
}

// Match reports whether the pattern matches the supplied string.
func (p Pattern) Match(s string) bool {
	if s == "" {
		return false
	}
	if p.regex != nil {
		return p.regex.MatchString(s)
	}
	return strings.Contains(strings.ToLower(s), p.lower)
}

// FilterMatrix applies variant and step filters, returning a copy of
// the matrix containing only matches. The shared report configuration
// is preserved unchanged.
func FilterMatrix(m *matrix.Matrix, variantPatterns, onlyPatterns, skipPatterns []Pattern) *matrix.Matrix {
	out := *m

	if len(variantPatterns) > 0 {
		variants := make([]matrix.Variant, 0, len(m.Variants))
		for _, variant := range m.Variants {
			if matchesAny(variantPatterns, variant.ID) {
				variants = append(variants, variant)
			}
		}
		out.Variants = variants
	}

	if len(onlyPatterns) > 0 || len(skipPatterns) > 0 {
		steps := make([]matrix.Step, 0, len(m.Steps))
		for _, step := range m.Steps {
			if len(onlyPatterns) > 0 && !matchesStep(step, onlyPatterns) {
				continue
			}
			if len(skipPatterns) > 0 && matchesStep(step, skipPatterns) {
				continue
			}
			steps = append(steps, step)
		}
		out.Steps = steps
	}

	return &out
}

func matchesAny(patterns []Pattern, s string) bool {
	for _, pattern := range patterns {
		if pattern.Match(s) {
			return true
		}
	}
	return false
}

func matchesStep(step matrix.Step, patterns []Pattern) bool {
	for _, pattern := range patterns {
		if pattern.Match(step.Name) || pattern.Match(step.Run) {
			return true
		}
	}
	return false
}
