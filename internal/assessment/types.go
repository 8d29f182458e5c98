package assessment

import "time"

// QuestionType identifies how a question is answered.
type QuestionType string

const (
	TypeSingleChoice   QuestionType = "single_choice"
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeShortText      QuestionType = "short_text"
	TypeLongText       QuestionType = "long_text"
	TypeNumeric        QuestionType = "numeric"
	TypeFileUpload     QuestionType = "file_upload"
)

// AllQuestionTypes returns every supported question type in display order.
func AllQuestionTypes() []QuestionType {
	return []QuestionType{
		TypeSingleChoice,
		TypeMultipleChoice,
		TypeShortText,
		TypeLongText,
		TypeNumeric,
		TypeFileUpload,
	}
}

// Known reports whether t is one of the supported question types.
func (t QuestionType) Known() bool {
	for _, k := range AllQuestionTypes() {
		if t == k {
			return true
		}
	}
	return false
}

// IsChoice reports whether answers are picked from the question's options.
func (t QuestionType) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultipleChoice
}

// IsText reports whether the question takes free text.
func (t QuestionType) IsText() bool {
	return t == TypeShortText || t == TypeLongText
}

// Label returns the human-readable name shown in the builder.
func (t QuestionType) Label() string {
	switch t {
	case TypeSingleChoice:
		return "Single Choice"
	case TypeMultipleChoice:
		return "Multiple Choice"
	case TypeShortText:
		return "Text Input"
	case TypeLongText:
		return "Long Text"
	case TypeNumeric:
		return "Number"
	case TypeFileUpload:
		return "File Upload"
	default:
		return string(t)
	}
}

// Operator is the comparison applied by a conditional rule.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
)

// AllOperators returns the operators understood by this version.
func AllOperators() []Operator {
	return []Operator{OpEquals, OpNotEquals, OpContains, OpGreaterThan, OpLessThan}
}

// Known reports whether op is understood by this version. Schemas may carry
// operators from newer versions; those are kept as-is.
func (op Operator) Known() bool {
	for _, k := range AllOperators() {
		if op == k {
			return true
		}
	}
	return false
}

// Assessment is a job-scoped questionnaire. It is always persisted as a
// whole; there is no field-level patching.
type Assessment struct {
	ID          string    `json:"id" yaml:"id"`
	JobID       string    `json:"jobId" yaml:"jobId" validate:"required"`
	Title       string    `json:"title" yaml:"title" validate:"required"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Sections    []Section `json:"sections" yaml:"sections" validate:"min=1,dive"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Section groups questions under a heading.
type Section struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Order       int        `json:"order" yaml:"order"`
	Questions   []Question `json:"questions" yaml:"questions" validate:"dive"`
}

// Question is a single prompt within a section.
type Question struct {
	ID               string            `json:"id" yaml:"id" validate:"required"`
	Type             QuestionType      `json:"type" yaml:"type" validate:"required"`
	Title            string            `json:"title" yaml:"title"`
	Description      string            `json:"description,omitempty" yaml:"description,omitempty"`
	Required         bool              `json:"required" yaml:"required"`
	Order            int               `json:"order" yaml:"order"`
	Options          []Option          `json:"options,omitempty" yaml:"options,omitempty" validate:"dive"`
	Validation       *ValidationRule   `json:"validation,omitempty" yaml:"validation,omitempty"`
	ConditionalLogic *ConditionalLogic `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
}

// Option is one selectable answer of a choice question. Value is derived
// from Label and never edited directly.
type Option struct {
	ID    string `json:"id" yaml:"id" validate:"required"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Order int    `json:"order" yaml:"order"`
}

// ValidationRule holds optional bounds. Length and pattern apply to text
// questions; Min and Max apply to numeric questions.
type ValidationRule struct {
	MinLength     *int     `json:"minLength,omitempty" yaml:"minLength,omitempty" validate:"omitempty,gte=0"`
	MaxLength     *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty" validate:"omitempty,gte=0"`
	Min           *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern       string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	CustomMessage string   `json:"customMessage,omitempty" yaml:"customMessage,omitempty"`
}

// ConditionalLogic gates a question's visibility on another question's answer.
type ConditionalLogic struct {
	DependsOn string   `json:"dependsOn" yaml:"dependsOn" validate:"required"`
	Condition Operator `json:"condition" yaml:"condition" validate:"required"`
	Value     string   `json:"value" yaml:"value"`
}

// Status is the lifecycle state of a submission record.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
)

// Submission is the record created by a successful submit.
type Submission struct {
	ID           string    `json:"id"`
	JobID        string    `json:"jobId,omitempty"`
	AssessmentID string    `json:"assessmentId"`
	CandidateID  string    `json:"candidateId"`
	Answers      Responses `json:"answers"`
	SubmittedAt  time.Time `json:"submittedAt"`
	Status       Status    `json:"status"`
}

// IntPtr returns a pointer to v, for building validation rules.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v, for building validation rules.
func FloatPtr(v float64) *float64 { return &v }
