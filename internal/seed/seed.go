// Package seed provides the built-in assessment templates used to populate
// an empty database.
package seed

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/abhisek/talentflow/internal/assessment"
)

// QuestionTemplate describes one question of a template. Key is local to
// the template and only used to wire conditions.
type QuestionTemplate struct {
	Key        string
	Type       assessment.QuestionType
	Title      string
	Options    []string
	Required   bool
	Validation *assessment.ValidationRule
	ShowWhen   *Condition
}

// Condition reveals a question when the question named by Key satisfies
// Operator against Value.
type Condition struct {
	Key      string
	Operator assessment.Operator
	Value    string
}

// SectionTemplate is a titled group of question templates.
type SectionTemplate struct {
	Title     string
	Questions []QuestionTemplate
}

// Template is a complete assessment blueprint.
type Template struct {
	Name     string
	Title    string
	Sections []SectionTemplate
}

// Job is the minimal job information needed to instantiate a template.
type Job struct {
	ID    string
	Title string
}

var templates = []Template{
	{
		Name:  "technical",
		Title: "Technical Skills Assessment",
		Sections: []SectionTemplate{
			{
				Title: "Programming Experience",
				Questions: []QuestionTemplate{
					{Type: assessment.TypeSingleChoice, Title: "Years of experience with React?", Options: []string{"0-1", "2-3", "4-5", "6+"}, Required: true},
					{Key: "tech", Type: assessment.TypeMultipleChoice, Title: "Which technologies have you used?", Options: []string{"TypeScript", "Node.js", "GraphQL", "AWS"}},
					{
						Type: assessment.TypeShortText, Title: "Which AWS services do you use most?",
						ShowWhen: &Condition{Key: "tech", Operator: assessment.OpContains, Value: "aws"},
					},
					{Type: assessment.TypeLongText, Title: "Describe your most challenging project", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Preferred development environment?", Options: []string{"VS Code", "WebStorm", "Vim", "Other"}, Required: true},
					{
						Type: assessment.TypeNumeric, Title: "How many years of total programming experience?", Required: true,
						Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(0), Max: assessment.FloatPtr(60)},
					},
					{Type: assessment.TypeShortText, Title: "Primary programming language?", Required: true},
				},
			},
			{
				Title: "Problem Solving",
				Questions: []QuestionTemplate{
					{Type: assessment.TypeLongText, Title: "Describe how you would approach debugging a performance issue", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Preferred testing approach?", Options: []string{"Unit tests", "Integration tests", "E2E tests", "All of the above"}, Required: true},
					{Type: assessment.TypeMultipleChoice, Title: "Which design patterns have you used?", Options: []string{"Observer", "Factory", "Singleton", "MVC"}},
					{Type: assessment.TypeShortText, Title: "Favorite development tool?"},
					{Type: assessment.TypeLongText, Title: "Explain a complex technical concept to a non-technical person", Required: true},
				},
			},
		},
	},
	{
		Name:  "culture",
		Title: "Culture Fit Assessment",
		Sections: []SectionTemplate{
			{
				Title: "Work Style",
				Questions: []QuestionTemplate{
					{Key: "env", Type: assessment.TypeSingleChoice, Title: "Preferred work environment?", Options: []string{"Remote", "Office", "Hybrid"}, Required: true},
					{
						Type: assessment.TypeNumeric, Title: "How many days per week would you like to be in the office?", Required: true,
						Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(1), Max: assessment.FloatPtr(4)},
						ShowWhen:   &Condition{Key: "env", Operator: assessment.OpEquals, Value: "hybrid"},
					},
					{Type: assessment.TypeShortText, Title: "What motivates you at work?", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Team size preference?", Options: []string{"Small (2-5)", "Medium (6-10)", "Large (10+)"}},
					{Type: assessment.TypeMultipleChoice, Title: "Communication preferences?", Options: []string{"Slack", "Email", "Video calls", "In-person"}},
					{Type: assessment.TypeLongText, Title: "Describe your ideal workday", Required: true},
					{
						Type: assessment.TypeNumeric, Title: "Preferred hours per week?",
						Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(0), Max: assessment.FloatPtr(80)},
					},
				},
			},
			{
				Title: "Values & Goals",
				Questions: []QuestionTemplate{
					{Type: assessment.TypeLongText, Title: "What are your career goals for the next 2 years?", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Learning style preference?", Options: []string{"Self-directed", "Mentorship", "Formal training", "Peer learning"}, Required: true},
					{Type: assessment.TypeShortText, Title: "Most important workplace value?", Required: true},
					{Type: assessment.TypeMultipleChoice, Title: "Interests outside of work?", Options: []string{"Sports", "Reading", "Travel", "Music", "Gaming"}},
					{
						Type: assessment.TypeLongText, Title: "Why do you want to work here?", Required: true,
						Validation: &assessment.ValidationRule{MinLength: assessment.IntPtr(20), CustomMessage: "Please write at least a couple of sentences"},
					},
				},
			},
		},
	},
	{
		Name:  "leadership",
		Title: "Leadership & Communication Assessment",
		Sections: []SectionTemplate{
			{
				Title: "Leadership Experience",
				Questions: []QuestionTemplate{
					{Key: "led", Type: assessment.TypeSingleChoice, Title: "Have you led a team before?", Options: []string{"Yes, formally", "Yes, informally", "No, but interested", "No preference"}, Required: true},
					{
						Type: assessment.TypeLongText, Title: "Describe a challenging team situation you handled", Required: true,
						ShowWhen: &Condition{Key: "led", Operator: assessment.OpContains, Value: "yes"},
					},
					{Type: assessment.TypeMultipleChoice, Title: "Leadership qualities you possess?", Options: []string{"Empathy", "Vision", "Decisiveness", "Communication"}},
					{Type: assessment.TypeShortText, Title: "Preferred leadership style?"},
					{
						Type: assessment.TypeNumeric, Title: "Largest team size you've managed?",
						Validation: &assessment.ValidationRule{Min: assessment.FloatPtr(1)},
						ShowWhen:   &Condition{Key: "led", Operator: assessment.OpEquals, Value: "yes,_formally"},
					},
				},
			},
			{
				Title: "Communication Skills",
				Questions: []QuestionTemplate{
					{Type: assessment.TypeLongText, Title: "How do you handle conflict resolution?", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Presentation comfort level?", Options: []string{"Very comfortable", "Somewhat comfortable", "Uncomfortable", "Terrified"}, Required: true},
					{Type: assessment.TypeMultipleChoice, Title: "Communication strengths?", Options: []string{"Written", "Verbal", "Visual", "Non-verbal"}},
					{Type: assessment.TypeShortText, Title: "How do you give feedback?", Required: true},
					{Type: assessment.TypeLongText, Title: "Describe a time you had to explain a complex idea", Required: true},
					{Type: assessment.TypeSingleChoice, Title: "Meeting preference?", Options: []string{"Short & frequent", "Long & detailed", "As needed", "Avoid when possible"}},
				},
			},
		},
	},
}

// Templates returns the built-in templates in rotation order.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// Lookup returns the template with the given name.
func Lookup(name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Names returns the template names in rotation order.
func Names() []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	return names
}

// ForJobs builds one assessment per job, rotating through the templates.
func ForJobs(jobs []Job, newID func() string) ([]*assessment.Assessment, error) {
	out := make([]*assessment.Assessment, 0, len(jobs))
	for i, job := range jobs {
		a, err := templates[i%len(templates)].Build(job, newID)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// Build instantiates t for job with fresh ids. Sections, questions and
// options are numbered from 1 in template order.
func (t Template) Build(job Job, newID func() string) (*assessment.Assessment, error) {
	if newID == nil {
		newID = uuid.NewString
	}
	a := &assessment.Assessment{
		ID:       newID(),
		JobID:    job.ID,
		Title:    t.Title,
		Sections: make([]assessment.Section, 0, len(t.Sections)),
	}
	if job.Title != "" {
		a.Description = fmt.Sprintf("Assessment for %s position", job.Title)
	}

	ids := make(map[string]string)
	type pending struct {
		s, q int
		cond *Condition
	}
	var conds []pending

	for si, st := range t.Sections {
		sec := assessment.Section{
			ID:        newID(),
			Title:     st.Title,
			Order:     si + 1,
			Questions: make([]assessment.Question, 0, len(st.Questions)),
		}
		for qi, qt := range st.Questions {
			q := assessment.Question{
				ID:       newID(),
				Type:     qt.Type,
				Title:    qt.Title,
				Required: qt.Required,
				Order:    qi + 1,
			}
			for oi, label := range qt.Options {
				q.Options = append(q.Options, assessment.NewOption(newID(), label, oi+1))
			}
			if qt.Validation != nil {
				v := *qt.Validation
				q.Validation = &v
			}
			if qt.Key != "" {
				ids[qt.Key] = q.ID
			}
			if qt.ShowWhen != nil {
				conds = append(conds, pending{s: si, q: qi, cond: qt.ShowWhen})
			}
			sec.Questions = append(sec.Questions, q)
		}
		a.Sections = append(a.Sections, sec)
	}

	for _, p := range conds {
		dep, ok := ids[p.cond.Key]
		if !ok {
			return nil, fmt.Errorf("template %s: condition references unknown key %q", t.Name, p.cond.Key)
		}
		a.Sections[p.s].Questions[p.q].ConditionalLogic = &assessment.ConditionalLogic{
			DependsOn: dep,
			Condition: p.cond.Operator,
			Value:     p.cond.Value,
		}
	}
	return a, nil
}
