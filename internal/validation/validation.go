// Package validation decides whether an answer satisfies its question's
// rules.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/visibility"
)

// Rule names the check that produced a violation.
type Rule string

const (
	RuleRequired  Rule = "required"
	RuleMinLength Rule = "min_length"
	RuleMaxLength Rule = "max_length"
	RulePattern   Rule = "pattern"
	RuleMin       Rule = "min"
	RuleMax       Rule = "max"
)

// MsgRequired is reported for a missing required answer.
const MsgRequired = "This field is required"

// Violation describes why an answer was not accepted.
type Violation struct {
	QuestionID string
	Rule       Rule
	Message    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("question %q: %s", v.QuestionID, v.Message)
}

// Validate checks value against q. It returns nil when the answer is
// accepted. The required check runs first, then the type-specific bounds.
func Validate(q assessment.Question, value assessment.Answer) *Violation {
	if q.Required && value.IsEmpty() {
		return &Violation{QuestionID: q.ID, Rule: RuleRequired, Message: MsgRequired}
	}

	rule := q.Validation
	if rule == nil || value.IsEmpty() {
		return nil
	}

	switch {
	case q.Type.IsText():
		return validateText(q.ID, rule, value.String())
	case q.Type == assessment.TypeNumeric:
		return validateNumber(q.ID, rule, value.Float())
	default:
		return nil
	}
}

func validateText(id string, rule *assessment.ValidationRule, s string) *Violation {
	n := utf8.RuneCountInString(s)
	if rule.MinLength != nil && n < *rule.MinLength {
		return violation(id, RuleMinLength, rule, fmt.Sprintf("Minimum length is %d characters", *rule.MinLength))
	}
	if rule.MaxLength != nil && n > *rule.MaxLength {
		return violation(id, RuleMaxLength, rule, fmt.Sprintf("Maximum length is %d characters", *rule.MaxLength))
	}
	if rule.Pattern != "" {
		// Compiled per call; an uncompilable pattern is reported by
		// assessment.Check and does not block respondents. Neither does a
		// match that times out.
		if re, err := assessment.CompilePattern(rule.Pattern); err == nil {
			if ok, err := re.MatchString(s); err == nil && !ok {
				return violation(id, RulePattern, rule, "Invalid format")
			}
		}
	}
	return nil
}

// validateNumber compares n against the configured bounds. NaN fails any
// bound that is set and passes when none is.
func validateNumber(id string, rule *assessment.ValidationRule, n float64) *Violation {
	nan := math.IsNaN(n)
	if rule.Min != nil && (nan || n < *rule.Min) {
		return violation(id, RuleMin, rule, "Minimum value is "+formatNumber(*rule.Min))
	}
	if rule.Max != nil && (nan || n > *rule.Max) {
		return violation(id, RuleMax, rule, "Maximum value is "+formatNumber(*rule.Max))
	}
	return nil
}

func violation(id string, r Rule, rule *assessment.ValidationRule, def string) *Violation {
	msg := def
	if rule.CustomMessage != "" {
		msg = rule.CustomMessage
	}
	return &Violation{QuestionID: id, Rule: r, Message: msg}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Violations maps question IDs to their violation.
type Violations map[string]*Violation

// Valid reports whether no violation was recorded.
func (v Violations) Valid() bool { return len(v) == 0 }

// IDs returns the question IDs with violations, sorted.
func (v Violations) IDs() []string {
	ids := make([]string, 0, len(v))
	for id := range v {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a shallow copy of the map.
func (v Violations) Clone() Violations {
	out := make(Violations, len(v))
	for k, vv := range v {
		out[k] = vv
	}
	return out
}

// ValidateForm validates every visible question of a. Hidden questions are
// skipped even when required.
func ValidateForm(a *assessment.Assessment, responses assessment.Responses) Violations {
	out := make(Violations)
	for _, s := range a.OrderedSections() {
		for _, q := range visibility.VisibleQuestions(s, responses) {
			if v := Validate(q, responses[q.ID]); v != nil {
				out[q.ID] = v
			}
		}
	}
	return out
}
