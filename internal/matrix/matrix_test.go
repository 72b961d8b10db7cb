package matrix

import "testing"

func TestStepAppliesTo(t *testing.T) {
	cases := []struct {
		name    string
		step    Step
		variant string
		want    bool
	}{
		{"no condition", Step{Run: "echo"}, "py36", true},
		{"only match", Step{Run: "echo", Only: []string{"py36"}}, "py36", true},
		{"only miss", Step{Run: "echo", Only: []string{"py36"}}, "py27", false},
		{"skip match", Step{Run: "echo", Skip: []string{"checkqa"}}, "checkqa", false},
		{"skip miss", Step{Run: "echo", Skip: []string{"checkqa"}}, "py36", true},
		{"only and skip", Step{Run: "echo", Only: []string{"py36", "py27"}, Skip: []string{"py27"}}, "py27", false},
	}
	for _, c := range cases {
		if got := c.step.AppliesTo(c.variant); got != c.want {
			t.Fatalf("%s: AppliesTo(%q) = %v, want %v", c.name, c.variant, got, c.want)
		}
	}
}

func TestMatrixVariantLookup(t *testing.T) {
	m := Matrix{Variants: []Variant{{ID: "py36"}, {ID: "checkqa"}}}
	if _, ok := m.Variant("py36"); !ok {
		t.Fatalf("expected py36 to be found")
	}
	if _, ok := m.Variant("py99"); ok {
		t.Fatalf("expected py99 lookup to fail")
	}
}
