package matrix

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Warning captures non-fatal findings from parsing a matrix file.
type Warning struct {
	Variant string `json:"variant,omitempty"`
	Message string `json:"message"`
}

// Parser loads matrix definition files from disk.
type Parser struct {
	Root string
}

// NewParser constructs a Parser that resolves matrix paths relative to root.
func NewParser(root string) *Parser {
	return &Parser{Root: root}
}

// Parse reads the matrix file at path and produces the matrix data model.
func (p *Parser) Parse(path string) (*Matrix, []Warning, error) {
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(p.Root, path)
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, nil, fmt.Errorf("open matrix %q: %w", path, err)
	}
	defer f.Close()
	return decodeMatrix(f, path)
}

func decodeMatrix(r io.Reader, displayPath string) (*Matrix, []Warning, error) {
	decoder := yaml.NewDecoder(r)

	var doc matrixDocument
	if err := decoder.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("parse matrix %q: %w", displayPath, err)
	}

	m := &Matrix{
		Path: displayPath,
		Name: doc.Name,
		Env:  convertEnv(doc.Env),
		Report: ReportConfig{
			Normalize: doc.Report.Normalize,
			Artifact:  doc.Report.Artifact,
			Compat: SinkConfig{
				Name:     doc.Report.Compat.Name,
				URL:      doc.Report.Compat.URL,
				TokenEnv: doc.Report.Compat.TokenEnv,
			},
			Primary: SinkConfig{
				Name:     doc.Report.Primary.Name,
				URL:      doc.Report.Primary.URL,
				TokenEnv: doc.Report.Primary.TokenEnv,
			},
		},
	}
	if m.Name == "" {
		m.Name = filepath.Base(displayPath)
	}
	if m.Report.Artifact == "" {
		m.Report.Artifact = "coverage.xml"
	}

	warnings := make([]Warning, 0)

	if len(doc.Variants) == 0 {
		return nil, nil, fmt.Errorf("matrix %q declares no variants", displayPath)
	}

	seen := make(map[string]struct{}, len(doc.Variants))
	primaryOwner := ""
	m.Variants = make([]Variant, 0, len(doc.Variants))
	for idx, vDoc := range doc.Variants {
		if vDoc.ID == "" {
			return nil, nil, fmt.Errorf("matrix %q: variant %d has no id", displayPath, idx+1)
		}
		if _, dup := seen[vDoc.ID]; dup {
			return nil, nil, fmt.Errorf("matrix %q: duplicate variant id %q", displayPath, vDoc.ID)
		}
		seen[vDoc.ID] = struct{}{}

		variant := Variant{
			ID:          vDoc.ID,
			Interpreter: vDoc.Interpreter,
			Env:         convertEnv(vDoc.Env),
			Report:      resolvePolicy(vDoc.Report),
		}

		// Sink exemptions are historical, tool-version-driven data;
		// surface each one so operators can review whether it still holds.
		if variant.Report.Coverage && !variant.Report.CompatSink {
			warnings = append(warnings, Warning{
				Variant: variant.ID,
				Message: "compat sink disabled; review whether the exemption is still required",
			})
		}
		if variant.Report.PrimarySink {
			if primaryOwner != "" {
				return nil, nil, fmt.Errorf("matrix %q: primary sink assigned to both %q and %q", displayPath, primaryOwner, variant.ID)
			}
			primaryOwner = variant.ID
		}

		m.Variants = append(m.Variants, variant)
	}

	m.Steps = make([]Step, 0, len(doc.Steps))
	for idx, sDoc := range doc.Steps {
		step := Step{
			Name:  sDoc.Name,
			Run:   sDoc.Run,
			Shell: sDoc.Shell,
			Env:   convertEnv(sDoc.Env),
			Only:  append([]string{}, sDoc.Only...),
			Skip:  append([]string{}, sDoc.Skip...),
		}
		if step.Name == "" {
			step.Name = fmt.Sprintf("step %d", idx+1)
		}
		if step.Run == "" {
			warnings = append(warnings, Warning{
				Message: fmt.Sprintf("step %q has no run command and will be ignored", step.Name),
			})
			continue
		}
		for _, id := range append(append([]string{}, step.Only...), step.Skip...) {
			if _, ok := seen[id]; !ok {
				warnings = append(warnings, Warning{
					Message: fmt.Sprintf("step %q references unknown variant %q", step.Name, id),
				})
			}
		}
		m.Steps = append(m.Steps, step)
	}

	return m, warnings, nil
}

// resolvePolicy applies the default reporting capabilities when the
// variant omits them: coverage and the compat sink on, primary off.
func resolvePolicy(doc *policyDocument) ReportPolicy {
	policy := ReportPolicy{Coverage: true, CompatSink: true}
	if doc == nil {
		return policy
	}
	if doc.Coverage != nil {
		policy.Coverage = *doc.Coverage
	}
	if !policy.Coverage {
		// A variant that produces no coverage artifact feeds no sinks.
		return ReportPolicy{}
	}
	if doc.Compat != nil {
		policy.CompatSink = *doc.Compat
	}
	if doc.Primary != nil {
		policy.PrimarySink = *doc.Primary
	}
	return policy
}

type matrixDocument struct {
	Name     string                 `yaml:"name"`
	Env      map[string]interface{} `yaml:"env"`
	Variants []variantDocument      `yaml:"variants"`
	Steps    []stepDocument         `yaml:"steps"`
	Report   reportDocument         `yaml:"report"`
}

type variantDocument struct {
	ID          string                 `yaml:"id"`
	Interpreter string                 `yaml:"interpreter"`
	Env         map[string]interface{} `yaml:"env"`
	Report      *policyDocument        `yaml:"report"`
}

type policyDocument struct {
	Coverage *bool `yaml:"coverage"`
	Compat   *bool `yaml:"compat"`
	Primary  *bool `yaml:"primary"`
}

type stepDocument struct {
	Name  string                 `yaml:"name"`
	Run   string                 `yaml:"run"`
	Shell string                 `yaml:"shell"`
	Env   map[string]interface{} `yaml:"env"`
	Only  []string               `yaml:"only"`
	Skip  []string               `yaml:"skip"`
}

type reportDocument struct {
	Normalize string       `yaml:"normalize"`
	Artifact  string       `yaml:"artifact"`
	Compat    sinkDocument `yaml:"compat"`
	Primary   sinkDocument `yaml:"primary"`
}

type sinkDocument struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	TokenEnv string `yaml:"token_env"`
}

func convertEnv(input map[string]interface{}) map[string]string {
	if len(input) == 0 {
		return nil
	}
	out := make(map[string]string, len(input))
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out[k] = fmt.Sprint(input[k])
	}
	return out
}
