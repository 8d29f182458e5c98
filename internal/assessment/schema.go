package assessment

import (
	"regexp"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// whitespaceRun matches ASCII and Unicode space separators.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// OptionValue derives an option's stored value from its label: the label is
// lower-cased and every whitespace run becomes a single underscore.
// Leading and trailing whitespace is not trimmed.
func OptionValue(label string) string {
	lower := cases.Lower(language.Und).String(label)
	return whitespaceRun.ReplaceAllString(lower, "_")
}

// NewOption builds an option whose value is derived from label.
func NewOption(id, label string, order int) Option {
	return Option{ID: id, Label: label, Value: OptionValue(label), Order: order}
}

// OrderedSections returns the sections sorted by Order. The receiver is not
// modified.
func (a *Assessment) OrderedSections() []Section {
	out := append([]Section(nil), a.Sections...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// OrderedQuestions returns the section's questions sorted by Order.
func (s *Section) OrderedQuestions() []Question {
	out := append([]Question(nil), s.Questions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// OrderedOptions returns the question's options sorted by Order.
func (q *Question) OrderedOptions() []Option {
	out := append([]Option(nil), q.Options...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// FindSection returns the index of the section with the given ID, or -1.
func (a *Assessment) FindSection(id string) int {
	for i := range a.Sections {
		if a.Sections[i].ID == id {
			return i
		}
	}
	return -1
}

// FindQuestion locates a question by ID. It returns the section and question
// indexes, or -1, -1 when the question does not exist.
func (a *Assessment) FindQuestion(id string) (int, int) {
	for si := range a.Sections {
		for qi := range a.Sections[si].Questions {
			if a.Sections[si].Questions[qi].ID == id {
				return si, qi
			}
		}
	}
	return -1, -1
}

// Question returns a copy of the question with the given ID.
func (a *Assessment) Question(id string) (Question, bool) {
	si, qi := a.FindQuestion(id)
	if si < 0 {
		return Question{}, false
	}
	return a.Sections[si].Questions[qi], true
}

// QuestionIDs returns every question ID in section then question order.
func (a *Assessment) QuestionIDs() []string {
	var ids []string
	for _, s := range a.OrderedSections() {
		for _, q := range s.OrderedQuestions() {
			ids = append(ids, q.ID)
		}
	}
	return ids
}

// QuestionCount returns the number of questions across all sections.
func (a *Assessment) QuestionCount() int {
	n := 0
	for _, s := range a.Sections {
		n += len(s.Questions)
	}
	return n
}

// FindOption returns the index of the option with the given ID, or -1.
func (q *Question) FindOption(id string) int {
	for i := range q.Options {
		if q.Options[i].ID == id {
			return i
		}
	}
	return -1
}

// OptionByValue returns the option whose value matches.
func (q *Question) OptionByValue(value string) (Option, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Clone returns a deep copy of the assessment.
func (a *Assessment) Clone() *Assessment {
	if a == nil {
		return nil
	}
	out := *a
	out.Sections = make([]Section, len(a.Sections))
	for i, s := range a.Sections {
		out.Sections[i] = s.Clone()
	}
	return &out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		out.Questions[i] = q.Clone()
	}
	return out
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	out := q
	if q.Options != nil {
		out.Options = append([]Option(nil), q.Options...)
	}
	if q.Validation != nil {
		v := *q.Validation
		if v.MinLength != nil {
			v.MinLength = IntPtr(*v.MinLength)
		}
		if v.MaxLength != nil {
			v.MaxLength = IntPtr(*v.MaxLength)
		}
		if v.Min != nil {
			v.Min = FloatPtr(*v.Min)
		}
		if v.Max != nil {
			v.Max = FloatPtr(*v.Max)
		}
		out.Validation = &v
	}
	if q.ConditionalLogic != nil {
		c := *q.ConditionalLogic
		out.ConditionalLogic = &c
	}
	return out
}
