package visibility

import (
	"testing"

	"github.com/abhisek/talentflow/internal/assessment"
)

func dependent(op assessment.Operator, value string) assessment.Question {
	return assessment.Question{
		ID:               "q2",
		Type:             assessment.TypeShortText,
		ConditionalLogic: &assessment.ConditionalLogic{DependsOn: "q1", Condition: op, Value: value},
	}
}

func TestIsVisible_NoLogicAlwaysVisible(t *testing.T) {
	q := assessment.Question{ID: "q1", Type: assessment.TypeShortText}
	maps := []assessment.Responses{
		nil,
		{},
		{"q1": assessment.Text("")},
		{"other": assessment.Multi("a")},
	}
	for i, r := range maps {
		if !IsVisible(q, r) {
			t.Errorf("case %d: question without logic hidden", i)
		}
	}
}

func TestIsVisible_AbsentDependencyHidden(t *testing.T) {
	ops := append(assessment.AllOperators(), "unknown_op")
	for _, op := range ops {
		q := dependent(op, "x")
		if IsVisible(q, assessment.Responses{"q9": assessment.Text("x")}) {
			t.Errorf("%s: visible with absent dependency", op)
		}
	}
}

// Q2 depends on Q1 equals "yes".
func TestIsVisible_EqualsScenario(t *testing.T) {
	q := dependent(assessment.OpEquals, "yes")

	tests := []struct {
		name      string
		responses assessment.Responses
		want      bool
	}{
		{"empty", assessment.Responses{}, false},
		{"yes", assessment.Responses{"q1": assessment.Choice("yes")}, true},
		{"no", assessment.Responses{"q1": assessment.Choice("no")}, false},
	}
	for _, tc := range tests {
		if got := IsVisible(q, tc.responses); got != tc.want {
			t.Errorf("%s: IsVisible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsVisible_Operators(t *testing.T) {
	tests := []struct {
		name string
		op   assessment.Operator
		lit  string
		dep  assessment.Answer
		want bool
	}{
		{"equals exact", assessment.OpEquals, "remote", assessment.Choice("remote"), true},
		{"equals case sensitive", assessment.OpEquals, "Remote", assessment.Choice("remote"), false},
		{"equals multi never", assessment.OpEquals, "go", assessment.Multi("go"), false},
		{"equals number text", assessment.OpEquals, "5", assessment.Number("5"), true},
		{"equals number not normalized", assessment.OpEquals, "5", assessment.Number("5.0"), false},
		{"not equals differs", assessment.OpNotEquals, "yes", assessment.Choice("no"), true},
		{"not equals same", assessment.OpNotEquals, "yes", assessment.Choice("yes"), false},
		{"not equals empty answer", assessment.OpNotEquals, "yes", assessment.Text(""), true},
		{"contains text", assessment.OpContains, "script", assessment.Text("typescript"), true},
		{"contains missing", assessment.OpContains, "rust", assessment.Text("typescript"), false},
		{"contains multi", assessment.OpContains, "node.js", assessment.Multi("typescript", "node.js"), true},
		{"contains file name", assessment.OpContains, ".pdf", assessment.File(assessment.FileRef{Name: "cv.pdf"}), true},
		{"greater than", assessment.OpGreaterThan, "5", assessment.Number("7"), true},
		{"greater than equal", assessment.OpGreaterThan, "5", assessment.Number("5"), false},
		{"greater than non numeric", assessment.OpGreaterThan, "5", assessment.Text("lots"), false},
		{"greater than empty", assessment.OpGreaterThan, "-1", assessment.Number(""), false},
		{"greater than bad literal", assessment.OpGreaterThan, "five", assessment.Number("7"), false},
		{"less than", assessment.OpLessThan, "2", assessment.Number("1.5"), true},
		{"less than false", assessment.OpLessThan, "2", assessment.Number("3"), false},
		{"unknown fails open", "regex", "^a", assessment.Text("zzz"), true},
	}

	for _, tc := range tests {
		q := dependent(tc.op, tc.lit)
		got := IsVisible(q, assessment.Responses{"q1": tc.dep})
		if got != tc.want {
			t.Errorf("%s: IsVisible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsVisible_NotTransitive(t *testing.T) {
	// q3 depends on q2, which is hidden because q1 is "no". q3 only looks at q2.
	q2 := dependent(assessment.OpEquals, "yes")
	q3 := assessment.Question{
		ID:               "q3",
		ConditionalLogic: &assessment.ConditionalLogic{DependsOn: "q2", Condition: assessment.OpEquals, Value: "ok"},
	}
	r := assessment.Responses{"q1": assessment.Choice("no"), "q2": assessment.Text("ok")}

	if IsVisible(q2, r) {
		t.Fatal("q2 should be hidden")
	}
	if !IsVisible(q3, r) {
		t.Error("q3 should be visible: visibility is evaluated per direct dependency only")
	}
}

func TestIsVisible_Idempotent(t *testing.T) {
	q := dependent(assessment.OpContains, "a")
	r := assessment.Responses{"q1": assessment.Text("abc")}
	before := r.Clone()

	first := IsVisible(q, r)
	second := IsVisible(q, r)
	if first != second {
		t.Error("IsVisible not idempotent")
	}
	if len(r) != len(before) || r["q1"].Text != before["q1"].Text {
		t.Error("IsVisible mutated responses")
	}
}

func TestVisibleQuestions_PreservesOrder(t *testing.T) {
	s := assessment.Section{
		ID: "s1",
		Questions: []assessment.Question{
			{ID: "c", Order: 3},
			{ID: "a", Order: 1},
			{ID: "b", Order: 2, ConditionalLogic: &assessment.ConditionalLogic{DependsOn: "a", Condition: assessment.OpEquals, Value: "show"}},
		},
	}

	got := VisibleQuestions(s, assessment.Responses{})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("hidden case: got %v", ids(got))
	}

	got = VisibleQuestions(s, assessment.Responses{"a": assessment.Text("show")})
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Fatalf("visible case: got %v", ids(got))
	}
}

func TestVisible_AcrossSections(t *testing.T) {
	a := &assessment.Assessment{Sections: []assessment.Section{
		{ID: "s2", Order: 2, Questions: []assessment.Question{{ID: "x", Order: 1}}},
		{ID: "s1", Order: 1, Questions: []assessment.Question{{ID: "y", Order: 1}}},
	}}
	got := Visible(a, nil)
	if len(got) != 2 || got[0].ID != "y" || got[1].ID != "x" {
		t.Fatalf("Visible = %v, want [y x]", ids(got))
	}
}

func ids(qs []assessment.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
