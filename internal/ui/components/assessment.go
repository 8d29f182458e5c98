package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/ui/theme"
)

// Preview renders every section and question of a, including hidden
// conditional ones, the way a builder preview shows them.
func Preview(a *assessment.Assessment) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render(a.Title))
	b.WriteString("\n")
	if a.Description != "" {
		b.WriteString(theme.Subtitle.Render(a.Description))
		b.WriteString("\n")
	}

	n := 0
	for _, s := range a.OrderedSections() {
		b.WriteString("\n")
		b.WriteString(theme.Section.Render(s.Title))
		b.WriteString("\n")
		if s.Description != "" {
			b.WriteString(theme.Hint.Render(s.Description))
			b.WriteString("\n")
		}
		qs := s.OrderedQuestions()
		if len(qs) == 0 {
			b.WriteString(theme.Hint.Render("  (no questions)"))
			b.WriteString("\n")
		}
		for _, q := range qs {
			n++
			b.WriteString(Question(q, n, assessment.Answer{}))
			if c := DescribeCondition(a, q.ConditionalLogic); c != "" {
				b.WriteString(theme.Tag.Render("    shown when " + c))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// Question renders one numbered question with its options. Options present
// in ans are marked as selected.
func Question(q assessment.Question, n int, ans assessment.Answer) string {
	var b strings.Builder

	title := fmt.Sprintf("%d. %s", n, q.Title)
	b.WriteString(theme.Question.Render(title))
	if q.Required {
		b.WriteString(theme.RequiredMark.Render(" *"))
	}
	b.WriteString(theme.Subtitle.Render("  [" + q.Type.Label() + "]"))
	b.WriteString("\n")

	if q.Description != "" {
		b.WriteString(theme.Hint.Render("   " + q.Description))
		b.WriteString("\n")
	}

	for i, o := range q.OrderedOptions() {
		line := fmt.Sprintf("%d) %s", i+1, o.Label)
		if isSelected(q, o, ans) {
			b.WriteString(theme.Selected.PaddingLeft(2).Render(line + " ✓"))
		} else {
			b.WriteString(theme.Option.Render(line))
		}
		b.WriteString("\n")
	}

	if r := DescribeRule(q); r != "" {
		b.WriteString(theme.Hint.Render("   " + r))
		b.WriteString("\n")
	}
	return b.String()
}

func isSelected(q assessment.Question, o assessment.Option, ans assessment.Answer) bool {
	if q.Type == assessment.TypeMultipleChoice {
		return ans.Has(o.Value)
	}
	s, ok := ans.Scalar()
	return ok && s != "" && s == o.Value
}

// DescribeRule summarizes the validation bounds that apply to q's type.
func DescribeRule(q assessment.Question) string {
	r := q.Validation
	if r == nil {
		return ""
	}
	var parts []string
	switch {
	case q.Type.IsText():
		if r.MinLength != nil {
			parts = append(parts, fmt.Sprintf("min %d chars", *r.MinLength))
		}
		if r.MaxLength != nil {
			parts = append(parts, fmt.Sprintf("max %d chars", *r.MaxLength))
		}
		if r.Pattern != "" {
			parts = append(parts, "pattern "+r.Pattern)
		}
	case q.Type == assessment.TypeNumeric:
		if r.Min != nil {
			parts = append(parts, "min "+formatNumber(*r.Min))
		}
		if r.Max != nil {
			parts = append(parts, "max "+formatNumber(*r.Max))
		}
	}
	return strings.Join(parts, ", ")
}

// DescribeCondition renders a conditional rule using the dependency's title.
func DescribeCondition(a *assessment.Assessment, cl *assessment.ConditionalLogic) string {
	if cl == nil {
		return ""
	}
	dep := cl.DependsOn
	if q, ok := a.Question(cl.DependsOn); ok {
		dep = strconv.Quote(q.Title)
	}
	return fmt.Sprintf("%s %s %q", dep, strings.ReplaceAll(string(cl.Condition), "_", " "), cl.Value)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
