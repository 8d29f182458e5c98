// Package builder edits assessment definitions. Every mutation works on a
// copy and replaces the current assessment only when it succeeds, so callers
// never observe a half-applied change.
package builder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/talentflow/internal/assessment"
)

const (
	DefaultSectionTitle  = "General Questions"
	NewSectionTitle      = "New Section"
	NewQuestionTitle     = "New Question"
	copySuffix           = " (Copy)"
	defaultAssessmentTag = "Job"
)

// Default returns a fresh assessment for a job with one empty section.
func Default(jobID, title string, newID func() string) *assessment.Assessment {
	if newID == nil {
		newID = uuid.NewString
	}
	if title == "" {
		title = defaultAssessmentTag + " Assessment"
	}
	return &assessment.Assessment{
		JobID: jobID,
		Title: title,
		Sections: []assessment.Section{{
			ID:        newID(),
			Title:     DefaultSectionTitle,
			Order:     1,
			Questions: []assessment.Question{},
		}},
	}
}

// Builder holds the assessment being edited.
type Builder struct {
	a        *assessment.Assessment
	newID    func() string
	onChange func(*assessment.Assessment)
}

// New returns a Builder editing a copy of a. newID generates element IDs;
// nil means random UUIDs.
func New(a *assessment.Assessment, newID func() string) *Builder {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Builder{a: a.Clone(), newID: newID}
}

// Assessment returns a copy of the current assessment.
func (b *Builder) Assessment() *assessment.Assessment {
	return b.a.Clone()
}

// apply runs fn on a copy and swaps the copy in when fn succeeds.
func (b *Builder) apply(op string, fn func(a *assessment.Assessment) error) error {
	next := b.a.Clone()
	if err := fn(next); err != nil {
		return &RejectionError{Op: op, Reason: err}
	}
	b.a = next
	if b.onChange != nil {
		b.onChange(next.Clone())
	}
	return nil
}

// SetDetails changes the assessment title and description.
func (b *Builder) SetDetails(title, description string) error {
	return b.apply("set details", func(a *assessment.Assessment) error {
		if strings.TrimSpace(title) == "" {
			return ErrEmptyTitle
		}
		a.Title = title
		a.Description = description
		return nil
	})
}

// --- Sections ---

// AddSection appends a section and returns its ID.
func (b *Builder) AddSection(title string) (string, error) {
	id := b.newID()
	if title == "" {
		title = NewSectionTitle
	}
	err := b.apply("add section", func(a *assessment.Assessment) error {
		a.Sections = append(a.Sections, assessment.Section{
			ID:        id,
			Title:     title,
			Order:     nextSectionOrder(a),
			Questions: []assessment.Question{},
		})
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveSection deletes a section and its questions. The last section
// cannot be removed. Conditions elsewhere that depended on the removed
// questions are cleared.
func (b *Builder) RemoveSection(id string) error {
	return b.apply("remove section", func(a *assessment.Assessment) error {
		i := a.FindSection(id)
		if i < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, id)
		}
		if len(a.Sections) == 1 {
			return ErrLastSection
		}
		removed := make(map[string]bool, len(a.Sections[i].Questions))
		for _, q := range a.Sections[i].Questions {
			removed[q.ID] = true
		}
		a.Sections = append(a.Sections[:i], a.Sections[i+1:]...)
		renumberSections(a)
		clearConditionsOn(a, removed)
		return nil
	})
}

// DuplicateSection inserts a copy of a section right after it. Every
// element gets a fresh ID, and conditions between questions of the section
// point at the copies.
func (b *Builder) DuplicateSection(id string) (string, error) {
	newID := b.newID()
	err := b.apply("duplicate section", func(a *assessment.Assessment) error {
		i := a.FindSection(id)
		if i < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, id)
		}
		src := a.Sections[i]
		cp := src.Clone()
		cp.ID = newID
		cp.Title = src.Title + copySuffix

		remap := make(map[string]string, len(cp.Questions))
		for qi := range cp.Questions {
			old := cp.Questions[qi].ID
			cp.Questions[qi].ID = b.newID()
			remap[old] = cp.Questions[qi].ID
			b.freshOptionIDs(&cp.Questions[qi])
		}
		for qi := range cp.Questions {
			if c := cp.Questions[qi].ConditionalLogic; c != nil {
				if to, ok := remap[c.DependsOn]; ok {
					c.DependsOn = to
				}
			}
		}

		ordered := a.OrderedSections()
		pos := indexOfSection(ordered, id)
		a.Sections = append(ordered[:pos+1], append([]assessment.Section{cp}, ordered[pos+1:]...)...)
		numberSections(a.Sections)
		return nil
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// MoveSection moves a section to the given zero-based position.
func (b *Builder) MoveSection(id string, to int) error {
	return b.apply("move section", func(a *assessment.Assessment) error {
		ordered := a.OrderedSections()
		from := indexOfSection(ordered, id)
		if from < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, id)
		}
		if to < 0 || to >= len(ordered) {
			return fmt.Errorf("%w: %d", ErrOutOfRange, to)
		}
		s := ordered[from]
		ordered = append(ordered[:from], ordered[from+1:]...)
		a.Sections = append(ordered[:to], append([]assessment.Section{s}, ordered[to:]...)...)
		numberSections(a.Sections)
		return nil
	})
}

// UpdateSection changes a section's title and description.
func (b *Builder) UpdateSection(id, title, description string) error {
	return b.apply("update section", func(a *assessment.Assessment) error {
		i := a.FindSection(id)
		if i < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, id)
		}
		a.Sections[i].Title = title
		a.Sections[i].Description = description
		return nil
	})
}

// --- Questions ---

// AddQuestion appends a question of type qt to a section and returns its
// ID. An empty type means single choice. Choice questions start with two
// options.
func (b *Builder) AddQuestion(sectionID string, qt assessment.QuestionType) (string, error) {
	if qt == "" {
		qt = assessment.TypeSingleChoice
	}
	id := b.newID()
	err := b.apply("add question", func(a *assessment.Assessment) error {
		si := a.FindSection(sectionID)
		if si < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
		}
		if !qt.Known() {
			return fmt.Errorf("%w: %s", ErrUnknownType, qt)
		}
		q := assessment.Question{
			ID:    id,
			Type:  qt,
			Title: NewQuestionTitle,
			Order: nextQuestionOrder(a.Sections[si]),
		}
		if qt.IsChoice() {
			q.Options = b.seedOptions()
		}
		a.Sections[si].Questions = append(a.Sections[si].Questions, q)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveQuestion deletes a question. Questions that depended on it lose
// their condition and become always visible.
func (b *Builder) RemoveQuestion(id string) error {
	return b.apply("remove question", func(a *assessment.Assessment) error {
		si, qi := a.FindQuestion(id)
		if si < 0 {
			return fmt.Errorf("%w: question %s", ErrNotFound, id)
		}
		s := &a.Sections[si]
		s.Questions = append(s.Questions[:qi], s.Questions[qi+1:]...)
		renumberQuestions(s)
		clearConditionsOn(a, map[string]bool{id: true})
		return nil
	})
}

// DuplicateQuestion inserts a copy of a question right after it. The copy
// gets fresh IDs and "(Copy)" appended to its title.
func (b *Builder) DuplicateQuestion(id string) (string, error) {
	newID := b.newID()
	err := b.apply("duplicate question", func(a *assessment.Assessment) error {
		si, qi := a.FindQuestion(id)
		if si < 0 {
			return fmt.Errorf("%w: question %s", ErrNotFound, id)
		}
		s := &a.Sections[si]
		cp := s.Questions[qi].Clone()
		cp.ID = newID
		cp.Title += copySuffix
		b.freshOptionIDs(&cp)

		ordered := s.OrderedQuestions()
		pos := indexOfQuestion(ordered, id)
		s.Questions = append(ordered[:pos+1], append([]assessment.Question{cp}, ordered[pos+1:]...)...)
		numberQuestions(s.Questions)
		return nil
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// MoveQuestion moves a question to the zero-based position to within the
// target section, which may differ from its current one.
func (b *Builder) MoveQuestion(id, sectionID string, to int) error {
	return b.apply("move question", func(a *assessment.Assessment) error {
		si, qi := a.FindQuestion(id)
		if si < 0 {
			return fmt.Errorf("%w: question %s", ErrNotFound, id)
		}
		ti := a.FindSection(sectionID)
		if ti < 0 {
			return fmt.Errorf("%w: section %s", ErrNotFound, sectionID)
		}

		q := a.Sections[si].Questions[qi]
		src := &a.Sections[si]
		src.Questions = append(src.Questions[:qi], src.Questions[qi+1:]...)
		renumberQuestions(src)

		dst := &a.Sections[ti]
		ordered := dst.OrderedQuestions()
		if to < 0 || to > len(ordered) {
			return fmt.Errorf("%w: %d", ErrOutOfRange, to)
		}
		dst.Questions = append(ordered[:to], append([]assessment.Question{q}, ordered[to:]...)...)
		numberQuestions(dst.Questions)
		return nil
	})
}

// QuestionUpdate carries the question fields to change. Nil fields are left
// as they are.
type QuestionUpdate struct {
	Title       *string
	Description *string
	Required    *bool
}

// UpdateQuestion applies u to a question.
func (b *Builder) UpdateQuestion(id string, u QuestionUpdate) error {
	return b.apply("update question", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, id)
		if err != nil {
			return err
		}
		if u.Title != nil {
			q.Title = *u.Title
		}
		if u.Description != nil {
			q.Description = *u.Description
		}
		if u.Required != nil {
			q.Required = *u.Required
		}
		return nil
	})
}

// SetQuestionType changes a question's type. Switching to a choice type
// seeds two options when fewer exist; switching away drops the options.
func (b *Builder) SetQuestionType(id string, qt assessment.QuestionType) error {
	return b.apply("set question type", func(a *assessment.Assessment) error {
		if !qt.Known() {
			return fmt.Errorf("%w: %s", ErrUnknownType, qt)
		}
		q, err := findQuestion(a, id)
		if err != nil {
			return err
		}
		q.Type = qt
		switch {
		case qt.IsChoice() && len(q.Options) < 2:
			q.Options = b.seedOptions()
		case !qt.IsChoice():
			q.Options = nil
		}
		return nil
	})
}

// SetValidation replaces a question's validation rule. A nil rule clears it.
func (b *Builder) SetValidation(id string, rule *assessment.ValidationRule) error {
	return b.apply("set validation", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, id)
		if err != nil {
			return err
		}
		if rule == nil {
			q.Validation = nil
			return nil
		}
		if err := checkRule(rule); err != nil {
			return err
		}
		cp := assessment.Question{Validation: rule}.Clone()
		q.Validation = cp.Validation
		return nil
	})
}

func checkRule(r *assessment.ValidationRule) error {
	if r.MinLength != nil && *r.MinLength < 0 {
		return fmt.Errorf("%w: minLength is negative", ErrInvalidRule)
	}
	if r.MaxLength != nil && *r.MaxLength < 0 {
		return fmt.Errorf("%w: maxLength is negative", ErrInvalidRule)
	}
	if r.MinLength != nil && r.MaxLength != nil && *r.MinLength > *r.MaxLength {
		return fmt.Errorf("%w: minLength exceeds maxLength", ErrInvalidRule)
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%w: min exceeds max", ErrInvalidRule)
	}
	if r.Pattern != "" {
		if _, err := assessment.CompilePattern(r.Pattern); err != nil {
			return fmt.Errorf("%w: pattern: %v", ErrInvalidRule, err)
		}
	}
	return nil
}

// --- Options ---

// AddOption appends an option labelled "Option N" and returns its ID.
func (b *Builder) AddOption(questionID string) (string, error) {
	id := b.newID()
	err := b.apply("add option", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, questionID)
		if err != nil {
			return err
		}
		if !q.Type.IsChoice() {
			return ErrNotChoice
		}
		n := len(q.Options) + 1
		q.Options = append(q.Options, assessment.NewOption(id, fmt.Sprintf("Option %d", n), nextOptionOrder(q)))
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// RemoveOption deletes an option. A choice question keeps at least two.
func (b *Builder) RemoveOption(questionID, optionID string) error {
	return b.apply("remove option", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, questionID)
		if err != nil {
			return err
		}
		i := q.FindOption(optionID)
		if i < 0 {
			return fmt.Errorf("%w: option %s", ErrNotFound, optionID)
		}
		if q.Type.IsChoice() && len(q.Options) <= 2 {
			return ErrTooFewOptions
		}
		q.Options = append(q.Options[:i], q.Options[i+1:]...)
		renumberOptions(q)
		return nil
	})
}

// SetOptionLabel relabels an option and regenerates its value.
func (b *Builder) SetOptionLabel(questionID, optionID, label string) error {
	return b.apply("set option label", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, questionID)
		if err != nil {
			return err
		}
		i := q.FindOption(optionID)
		if i < 0 {
			return fmt.Errorf("%w: option %s", ErrNotFound, optionID)
		}
		q.Options[i].Label = label
		q.Options[i].Value = assessment.OptionValue(label)
		return nil
	})
}

// --- Conditions ---

// SetCondition makes a question visible only when logic holds.
func (b *Builder) SetCondition(questionID string, logic assessment.ConditionalLogic) error {
	return b.apply("set condition", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, questionID)
		if err != nil {
			return err
		}
		if logic.DependsOn == questionID {
			return ErrSelfDependency
		}
		if si, _ := a.FindQuestion(logic.DependsOn); si < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownDependency, logic.DependsOn)
		}
		if !logic.Condition.Known() {
			return fmt.Errorf("%w: %s", ErrUnknownOperator, logic.Condition)
		}
		q.ConditionalLogic = &logic
		return nil
	})
}

// ClearCondition makes a question always visible.
func (b *Builder) ClearCondition(questionID string) error {
	return b.apply("clear condition", func(a *assessment.Assessment) error {
		q, err := findQuestion(a, questionID)
		if err != nil {
			return err
		}
		q.ConditionalLogic = nil
		return nil
	})
}

// --- helpers ---

func findQuestion(a *assessment.Assessment, id string) (*assessment.Question, error) {
	si, qi := a.FindQuestion(id)
	if si < 0 {
		return nil, fmt.Errorf("%w: question %s", ErrNotFound, id)
	}
	return &a.Sections[si].Questions[qi], nil
}

// clearConditionsOn drops conditional logic that points at any of ids.
func clearConditionsOn(a *assessment.Assessment, ids map[string]bool) {
	for si := range a.Sections {
		for qi := range a.Sections[si].Questions {
			q := &a.Sections[si].Questions[qi]
			if q.ConditionalLogic != nil && ids[q.ConditionalLogic.DependsOn] {
				q.ConditionalLogic = nil
			}
		}
	}
}

func (b *Builder) seedOptions() []assessment.Option {
	return []assessment.Option{
		assessment.NewOption(b.newID(), "Option 1", 1),
		assessment.NewOption(b.newID(), "Option 2", 2),
	}
}

func (b *Builder) freshOptionIDs(q *assessment.Question) {
	for i := range q.Options {
		q.Options[i].ID = b.newID()
	}
}

func nextSectionOrder(a *assessment.Assessment) int {
	hi := 0
	for _, s := range a.Sections {
		if s.Order > hi {
			hi = s.Order
		}
	}
	return hi + 1
}

func nextQuestionOrder(s assessment.Section) int {
	hi := 0
	for _, q := range s.Questions {
		if q.Order > hi {
			hi = q.Order
		}
	}
	return hi + 1
}

func nextOptionOrder(q *assessment.Question) int {
	hi := 0
	for _, o := range q.Options {
		if o.Order > hi {
			hi = o.Order
		}
	}
	return hi + 1
}

// renumberSections sorts sections by order and assigns 1..n.
func renumberSections(a *assessment.Assessment) {
	sort.SliceStable(a.Sections, func(i, j int) bool { return a.Sections[i].Order < a.Sections[j].Order })
	numberSections(a.Sections)
}

// numberSections assigns 1..n in slice order.
func numberSections(ss []assessment.Section) {
	for i := range ss {
		ss[i].Order = i + 1
	}
}

func renumberQuestions(s *assessment.Section) {
	sort.SliceStable(s.Questions, func(i, j int) bool { return s.Questions[i].Order < s.Questions[j].Order })
	numberQuestions(s.Questions)
}

func numberQuestions(qs []assessment.Question) {
	for i := range qs {
		qs[i].Order = i + 1
	}
}

func renumberOptions(q *assessment.Question) {
	sort.SliceStable(q.Options, func(i, j int) bool { return q.Options[i].Order < q.Options[j].Order })
	for i := range q.Options {
		q.Options[i].Order = i + 1
	}
}

func indexOfSection(ss []assessment.Section, id string) int {
	for i := range ss {
		if ss[i].ID == id {
			return i
		}
	}
	return -1
}

func indexOfQuestion(qs []assessment.Question, id string) int {
	for i := range qs {
		if qs[i].ID == id {
			return i
		}
	}
	return -1
}
