package validation

import (
	"testing"

	"github.com/abhisek/talentflow/internal/assessment"
)

func TestValidate_RequiredShortText(t *testing.T) {
	q := assessment.Question{ID: "q1", Type: assessment.TypeShortText, Required: true}

	v := Validate(q, assessment.Text(""))
	if v == nil || v.Message != "This field is required" || v.Rule != RuleRequired {
		t.Fatalf("empty value: got %+v, want required violation", v)
	}
	if v := Validate(q, assessment.Text("ok")); v != nil {
		t.Errorf("value ok: got %+v, want none", v)
	}
}

func TestValidate_RequiredShapes(t *testing.T) {
	tests := []struct {
		name  string
		qt    assessment.QuestionType
		value assessment.Answer
		want  bool
	}{
		{"unanswered", assessment.TypeSingleChoice, assessment.Answer{}, true},
		{"single choice", assessment.TypeSingleChoice, assessment.Choice("yes"), false},
		{"empty multi", assessment.TypeMultipleChoice, assessment.Multi(), true},
		{"multi", assessment.TypeMultipleChoice, assessment.Multi("a"), false},
		{"no file", assessment.TypeFileUpload, assessment.Answer{Kind: assessment.KindFile}, true},
		{"file", assessment.TypeFileUpload, assessment.File(assessment.FileRef{Name: "cv.pdf"}), false},
		{"empty number", assessment.TypeNumeric, assessment.Number(""), true},
		{"zero number", assessment.TypeNumeric, assessment.Number("0"), false},
	}

	for _, tc := range tests {
		q := assessment.Question{ID: "q", Type: tc.qt, Required: true}
		got := Validate(q, tc.value) != nil
		if got != tc.want {
			t.Errorf("%s: violation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestValidate_NumericBounds(t *testing.T) {
	q := assessment.Question{
		ID:         "q1",
		Type:       assessment.TypeNumeric,
		Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(5), Max: assessment.FloatPtr(10)},
	}

	tests := []struct {
		value string
		want  string
	}{
		{"3", "Minimum value is 5"},
		{"7", ""},
		{"5", ""},
		{"10", ""},
		{"10.5", "Maximum value is 10"},
		{"abc", "Minimum value is 5"},
		{"", ""},
	}

	for _, tc := range tests {
		v := Validate(q, assessment.Number(tc.value))
		got := ""
		if v != nil {
			got = v.Message
		}
		if got != tc.want {
			t.Errorf("Validate(%q) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

func TestValidate_NumericNaNWithoutBounds(t *testing.T) {
	q := assessment.Question{ID: "q1", Type: assessment.TypeNumeric, Validation: &assessment.ValidationRule{}}
	if v := Validate(q, assessment.Number("not a number")); v != nil {
		t.Errorf("NaN without bounds: got %+v, want none", v)
	}

	q.Validation.Max = assessment.FloatPtr(3)
	v := Validate(q, assessment.Number("not a number"))
	if v == nil || v.Rule != RuleMax {
		t.Errorf("NaN with max only: got %+v, want max violation", v)
	}
}

func TestValidate_TextRules(t *testing.T) {
	rule := &assessment.ValidationRule{
		MinLength: assessment.IntPtr(3),
		MaxLength: assessment.IntPtr(6),
		Pattern:   `^[a-z]+$`,
	}
	q := assessment.Question{ID: "q1", Type: assessment.TypeLongText, Validation: rule}

	tests := []struct {
		value string
		rule  Rule
		msg   string
	}{
		{"ab", RuleMinLength, "Minimum length is 3 characters"},
		{"abcdefg", RuleMaxLength, "Maximum length is 6 characters"},
		{"ab1c", RulePattern, "Invalid format"},
		{"abcd", "", ""},
		{"żółw", RulePattern, "Invalid format"},
		{"", "", ""},
	}

	for _, tc := range tests {
		v := Validate(q, assessment.Text(tc.value))
		if tc.rule == "" {
			if v != nil {
				t.Errorf("Validate(%q) = %+v, want none", tc.value, v)
			}
			continue
		}
		if v == nil || v.Rule != tc.rule || v.Message != tc.msg {
			t.Errorf("Validate(%q) = %+v, want %s %q", tc.value, v, tc.rule, tc.msg)
		}
	}
}

func TestValidate_ECMAScriptPatterns(t *testing.T) {
	tests := []struct {
		pattern string
		value   string
		valid   bool
	}{
		{`^(?=.*\d).{8,}$`, "abc", false},
		{`^(?=.*\d).{8,}$`, "password", false},
		{`^(?=.*\d).{8,}$`, "password1", true},
		{`^(?!admin$).+$`, "admin", false},
		{`^(?!admin$).+$`, "alice", true},
		{`^(\w)\1$`, "aa", true},
		{`^(\w)\1$`, "ab", false},
		{`^\d{3}-\d{4}$`, "555-1234", true},
	}

	for _, tc := range tests {
		q := assessment.Question{
			ID:         "q1",
			Type:       assessment.TypeShortText,
			Validation: &assessment.ValidationRule{Pattern: tc.pattern},
		}
		v := Validate(q, assessment.Text(tc.value))
		if tc.valid && v != nil {
			t.Errorf("%s: Validate(%q) = %+v, want none", tc.pattern, tc.value, v)
		}
		if !tc.valid && (v == nil || v.Rule != RulePattern) {
			t.Errorf("%s: Validate(%q) = %+v, want pattern violation", tc.pattern, tc.value, v)
		}
	}
}

func TestValidate_LengthCountsCharacters(t *testing.T) {
	q := assessment.Question{
		ID:         "q1",
		Type:       assessment.TypeShortText,
		Validation: &assessment.ValidationRule{MaxLength: assessment.IntPtr(4)},
	}
	if v := Validate(q, assessment.Text("żółw")); v != nil {
		t.Errorf("4 characters rejected by maxLength 4: %+v", v)
	}
}

func TestValidate_CustomMessage(t *testing.T) {
	q := assessment.Question{
		ID:   "q1",
		Type: assessment.TypeShortText,
		Validation: &assessment.ValidationRule{
			Pattern:       `@`,
			CustomMessage: "Enter an email address",
		},
	}
	v := Validate(q, assessment.Text("nope"))
	if v == nil || v.Message != "Enter an email address" {
		t.Fatalf("got %+v, want custom message", v)
	}

	q.Required = true
	v = Validate(q, assessment.Text(""))
	if v == nil || v.Message != MsgRequired {
		t.Errorf("required message overridden: %+v", v)
	}
}

func TestValidate_InvalidPatternIgnored(t *testing.T) {
	q := assessment.Question{
		ID:         "q1",
		Type:       assessment.TypeShortText,
		Validation: &assessment.ValidationRule{Pattern: "("},
	}
	if v := Validate(q, assessment.Text("anything")); v != nil {
		t.Errorf("invalid pattern produced violation: %+v", v)
	}
}

func TestValidate_ChoiceIgnoresBounds(t *testing.T) {
	q := assessment.Question{
		ID:         "q1",
		Type:       assessment.TypeSingleChoice,
		Validation: &assessment.ValidationRule{MinLength: assessment.IntPtr(50), Min: assessment.FloatPtr(100)},
	}
	if v := Validate(q, assessment.Choice("yes")); v != nil {
		t.Errorf("choice question checked against bounds: %+v", v)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	q := assessment.Question{
		ID:         "q1",
		Type:       assessment.TypeNumeric,
		Required:   true,
		Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(1)},
	}
	for _, value := range []assessment.Answer{assessment.Number("0"), assessment.Number("2"), {}} {
		a, b := Validate(q, value), Validate(q, value)
		if (a == nil) != (b == nil) || (a != nil && *a != *b) {
			t.Errorf("Validate(%+v) not idempotent: %+v vs %+v", value, a, b)
		}
	}
}

func TestValidateForm_SkipsHiddenQuestions(t *testing.T) {
	a := &assessment.Assessment{Sections: []assessment.Section{{
		ID: "s1",
		Questions: []assessment.Question{
			{ID: "q1", Type: assessment.TypeSingleChoice, Required: true, Order: 1},
			{
				ID: "q2", Type: assessment.TypeShortText, Required: true, Order: 2,
				ConditionalLogic: &assessment.ConditionalLogic{DependsOn: "q1", Condition: assessment.OpEquals, Value: "yes"},
			},
		},
	}}}

	vs := ValidateForm(a, assessment.Responses{})
	if len(vs) != 1 || vs["q1"] == nil {
		t.Fatalf("empty responses: violations = %v, want only q1", vs.IDs())
	}

	vs = ValidateForm(a, assessment.Responses{"q1": assessment.Choice("no")})
	if !vs.Valid() {
		t.Fatalf("q2 hidden: violations = %v, want none", vs.IDs())
	}

	vs = ValidateForm(a, assessment.Responses{"q1": assessment.Choice("yes")})
	if len(vs) != 1 || vs["q2"] == nil {
		t.Fatalf("q2 visible: violations = %v, want only q2", vs.IDs())
	}
}

func TestValidateForm_OnePerQuestionAcrossSections(t *testing.T) {
	a := &assessment.Assessment{Sections: []assessment.Section{
		{ID: "s1", Order: 1, Questions: []assessment.Question{
			{ID: "q1", Type: assessment.TypeShortText, Required: true, Order: 1,
				Validation: &assessment.ValidationRule{MinLength: assessment.IntPtr(10)}},
		}},
		{ID: "s2", Order: 2, Questions: []assessment.Question{
			{ID: "q2", Type: assessment.TypeNumeric, Order: 1,
				Validation: &assessment.ValidationRule{Max: assessment.FloatPtr(3)}},
		}},
	}}

	vs := ValidateForm(a, assessment.Responses{"q1": assessment.Text("short"), "q2": assessment.Number("4")})
	ids := vs.IDs()
	if len(ids) != 2 || ids[0] != "q1" || ids[1] != "q2" {
		t.Fatalf("violations = %v, want [q1 q2]", ids)
	}
	if vs["q1"].Rule != RuleMinLength || vs["q2"].Rule != RuleMax {
		t.Errorf("rules = %s, %s", vs["q1"].Rule, vs["q2"].Rule)
	}
}
