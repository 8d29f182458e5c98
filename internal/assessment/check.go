package assessment

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// SchemaError lists every structural problem found in an assessment.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("assessment schema invalid:\n  %s", strings.Join(e.Problems, "\n  "))
}

// Report is the result of Check. Problems make the schema unusable;
// warnings are tolerated (for example operators from a newer version).
type Report struct {
	Problems []string
	Warnings []string
}

// Err returns a *SchemaError when the report has problems, nil otherwise.
func (r Report) Err() error {
	if len(r.Problems) == 0 {
		return nil
	}
	return &SchemaError{Problems: append([]string(nil), r.Problems...)}
}

// Check performs all structural checks on a and reports every problem
// found rather than stopping at the first.
func Check(a *Assessment) Report {
	var rep Report
	if a == nil {
		rep.Problems = append(rep.Problems, "assessment is nil")
		return rep
	}

	if err := getValidator().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				rep.Problems = append(rep.Problems, fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			rep.Problems = append(rep.Problems, err.Error())
		}
	}

	questionIDs := make(map[string]bool)
	sectionIDs := make(map[string]bool)
	sectionOrders := make(map[int]string)

	for _, s := range a.Sections {
		if sectionIDs[s.ID] {
			rep.Problems = append(rep.Problems, fmt.Sprintf("duplicate section ID: %q", s.ID))
		}
		sectionIDs[s.ID] = true
		if other, ok := sectionOrders[s.Order]; ok {
			rep.Problems = append(rep.Problems, fmt.Sprintf("sections %q and %q share order %d", other, s.ID, s.Order))
		}
		sectionOrders[s.Order] = s.ID

		questionOrders := make(map[int]string)
		for _, q := range s.Questions {
			if questionIDs[q.ID] {
				rep.Problems = append(rep.Problems, fmt.Sprintf("duplicate question ID: %q", q.ID))
			}
			questionIDs[q.ID] = true
			if other, ok := questionOrders[q.Order]; ok {
				rep.Problems = append(rep.Problems, fmt.Sprintf("section %q: questions %q and %q share order %d", s.ID, other, q.ID, q.Order))
			}
			questionOrders[q.Order] = q.ID
		}
	}

	for _, s := range a.Sections {
		for _, q := range s.Questions {
			checkQuestion(&rep, q, questionIDs)
		}
	}
	return rep
}

func checkQuestion(rep *Report, q Question, questionIDs map[string]bool) {
	prefix := fmt.Sprintf("question %q", q.ID)

	if q.Type != "" && !q.Type.Known() {
		rep.Problems = append(rep.Problems, fmt.Sprintf("%s: unknown type %q", prefix, q.Type))
	}

	if q.Type.IsChoice() {
		if len(q.Options) < 2 {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: choice question needs at least 2 options, has %d", prefix, len(q.Options)))
		}
		optIDs := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if optIDs[o.ID] {
				rep.Problems = append(rep.Problems, fmt.Sprintf("%s: duplicate option ID %q", prefix, o.ID))
			}
			optIDs[o.ID] = true
			if o.Value != OptionValue(o.Label) {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: option %q value %q does not match its label", prefix, o.ID, o.Value))
			}
		}
	}

	if v := q.Validation; v != nil {
		if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: minLength %d exceeds maxLength %d", prefix, *v.MinLength, *v.MaxLength))
		}
		if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: min %v exceeds max %v", prefix, *v.Min, *v.Max))
		}
		if v.Pattern != "" {
			if _, err := CompilePattern(v.Pattern); err != nil {
				rep.Problems = append(rep.Problems, fmt.Sprintf("%s: invalid pattern: %v", prefix, err))
			}
		}
	}

	if c := q.ConditionalLogic; c != nil {
		switch {
		case c.DependsOn == q.ID:
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: depends on itself", prefix))
		case c.DependsOn != "" && !questionIDs[c.DependsOn]:
			rep.Problems = append(rep.Problems, fmt.Sprintf("%s: depends on nonexistent question %q", prefix, c.DependsOn))
		}
		if c.Condition != "" && !c.Condition.Known() {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: unknown condition %q is treated as always visible", prefix, c.Condition))
		}
	}
}
