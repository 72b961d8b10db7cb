package matrix

// Matrix represents a parsed test matrix: a set of variants that share
// one step template and a reporting configuration.
type Matrix struct {
	Path     string            `json:"path"`
	Name     string            `json:"name"`
	Env      map[string]string `json:"env,omitempty"`
	Variants []Variant         `json:"variants"`
	Steps    []Step            `json:"steps"`
	Report   ReportConfig      `json:"report"`
}

// Variant is one point in the matrix: an identifier plus the
// environment overlay selecting its dependency configuration.
type Variant struct {
	ID          string            `json:"id"`
	Interpreter string            `json:"interpreter,omitempty"`
	Env         map[string]string `json:"env,omitempty"`
	Report      ReportPolicy      `json:"report"`
}

// ReportPolicy captures the reporting capabilities resolved for a
// variant at parse time. Report-time behaviour keys off these flags,
// never off the variant identifier.
type ReportPolicy struct {
	Coverage    bool `json:"coverage"`
	CompatSink  bool `json:"compat_sink"`
	PrimarySink bool `json:"primary_sink"`
}

// Step is a single command in the shared template.
type Step struct {
	Name  string            `json:"name"`
	Run   string            `json:"run"`
	Shell string            `json:"shell,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	Only  []string          `json:"only,omitempty"`
	Skip  []string          `json:"skip,omitempty"`
}

// AppliesTo reports whether the step's condition admits the given variant.
func (s Step) AppliesTo(variantID string) bool {
	if len(s.Only) > 0 && !containsID(s.Only, variantID) {
		return false
	}
	return !containsID(s.Skip, variantID)
}

// ReportConfig names the coverage normalization command and the
// external sinks used after a successful job.
type ReportConfig struct {
	Normalize string     `json:"normalize,omitempty"`
	Artifact  string     `json:"artifact,omitempty"`
	Compat    SinkConfig `json:"compat"`
	Primary   SinkConfig `json:"primary"`
}

// SinkConfig describes one external reporting endpoint. TokenEnv names
// the environment variable holding the sink's secret; the secret
// itself never appears in configuration.
type SinkConfig struct {
	Name     string `json:"name,omitempty"`
	URL      string `json:"url,omitempty"`
	TokenEnv string `json:"token_env,omitempty"`
}

// Variant returns the declared variant with the given identifier.
func (m *Matrix) Variant(id string) (Variant, bool) {
	for _, v := range m.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
