// Package visibility decides which questions are presented given the
// answers collected so far.
package visibility

import (
	"math"
	"strings"

	"github.com/abhisek/talentflow/internal/assessment"
)

// compareFunc evaluates an operator against the dependency's answer and the
// rule's literal.
type compareFunc func(dep assessment.Answer, literal string) bool

// operators is the evaluator table. Operators missing from it fail open.
var operators = map[assessment.Operator]compareFunc{
	assessment.OpEquals:      equals,
	assessment.OpNotEquals:   func(dep assessment.Answer, lit string) bool { return !equals(dep, lit) },
	assessment.OpContains:    contains,
	assessment.OpGreaterThan: numeric(func(a, b float64) bool { return a > b }),
	assessment.OpLessThan:    numeric(func(a, b float64) bool { return a < b }),
}

// IsVisible reports whether q is presented for the given responses.
//
// A question without conditional logic is always visible. A question whose
// dependency is unanswered is hidden whatever the operator. Dependencies are
// not followed transitively: only the direct dependency's answer matters.
func IsVisible(q assessment.Question, responses assessment.Responses) bool {
	logic := q.ConditionalLogic
	if logic == nil {
		return true
	}
	dep, ok := responses[logic.DependsOn]
	if !ok {
		return false
	}
	cmp, known := operators[logic.Condition]
	if !known {
		return true
	}
	return cmp(dep, logic.Value)
}

// VisibleQuestions returns the section's visible questions in order.
func VisibleQuestions(s assessment.Section, responses assessment.Responses) []assessment.Question {
	var out []assessment.Question
	for _, q := range s.OrderedQuestions() {
		if IsVisible(q, responses) {
			out = append(out, q)
		}
	}
	return out
}

// Visible returns every visible question of a, section by section.
func Visible(a *assessment.Assessment, responses assessment.Responses) []assessment.Question {
	var out []assessment.Question
	for _, s := range a.OrderedSections() {
		out = append(out, VisibleQuestions(s, responses)...)
	}
	return out
}

// equals compares scalar answers with the literal. Multi and file answers
// never equal a literal.
func equals(dep assessment.Answer, literal string) bool {
	s, ok := dep.Scalar()
	return ok && s == literal
}

func contains(dep assessment.Answer, literal string) bool {
	return strings.Contains(dep.String(), literal)
}

// numeric coerces both sides to numbers. A side that does not coerce makes
// the comparison false.
func numeric(cmp func(a, b float64) bool) compareFunc {
	return func(dep assessment.Answer, literal string) bool {
		a := dep.Float()
		b := assessment.ParseNumber(literal)
		if math.IsNaN(a) || math.IsNaN(b) {
			return false
		}
		return cmp(a, b)
	}
}
