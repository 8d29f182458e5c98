package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/builder"
	"github.com/abhisek/talentflow/internal/ui/components"
	"github.com/abhisek/talentflow/internal/ui/theme"
)

var assessmentEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a job's assessment interactively",
	Long: `Open the assessment builder for a job.

Edits are autosaved as a draft while you work and survive a restart; "save"
stores the assessment and removes the draft. IDs may be abbreviated to any
unique prefix. Type "help" for the command list.`,
	RunE: runEdit,
}

func init() {
	assessmentEditCmd.Flags().String("job", "", "Job ID (required)")
	assessmentEditCmd.Flags().String("title", "", "Title for a new assessment")
	_ = assessmentEditCmd.MarkFlagRequired("job")
}

const editHelp = `Assessment
  outline                              show sections and questions with IDs
  preview                              render the assessment as candidates see it
  title <text>                         set the assessment title
  describe <text>                      set the assessment description
Sections
  add-section [title]                  append a section
  rm-section <section>                 remove a section and its questions
  dup-section <section>                duplicate a section
  mv-section <section> <pos>           move a section to position pos (1-based)
  rename-section <section> <title>     rename a section
Questions
  add-question <section> [type]        append a question (types: %s)
  rm-question <question>               remove a question
  dup-question <question>              duplicate a question
  mv-question <question> <section> <pos>
  question-title <question> <text>     set a question's title
  required <question> on|off           toggle the required flag
  type <question> <type>               change the question type
  add-option <question>                append an option
  rm-option <question> <option>        remove an option
  option <question> <option> <label>   relabel an option
  rule <question> key=value...         set validation (minLength maxLength min max pattern message)
  rule <question> clear                remove validation
  when <question> <depends-on> <operator> [value]
                                       show the question conditionally (operators: %s)
  always <question>                    remove conditional logic
Session
  save                                 store the assessment and drop the draft
  discard                              drop the draft and reload the stored assessment
  quit                                 leave; unsaved edits stay in the draft
`

func runEdit(cmd *cobra.Command, args []string) error {
	jobID, _ := cmd.Flags().GetString("job")
	title, _ := cmd.Flags().GetString("title")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	ed, err := builder.OpenEditor(ctx, builder.EditorOptions{
		JobID:         jobID,
		Title:         title,
		Store:         st.Assessments(),
		Drafts:        st.Drafts(),
		AutosaveDelay: cfg.AutosaveDelay,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	// Leaving without save keeps the latest edits as a draft.
	defer ed.Flush()

	switch ed.Source() {
	case builder.SourceDraft:
		fmt.Println(theme.Warning.Render("Resumed unsaved draft for job " + jobID))
	case builder.SourceNew:
		fmt.Println(theme.Hint.Render("New assessment for job " + jobID))
	}
	printOutline(ed.Assessment())

	types := make([]string, 0, 6)
	for _, t := range assessment.AllQuestionTypes() {
		types = append(types, string(t))
	}
	ops := make([]string, 0, 5)
	for _, op := range assessment.AllOperators() {
		ops = append(ops, string(op))
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nbuilder> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		verb, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch verb {
		case "quit", "exit":
			return nil
		case "help", "?":
			fmt.Printf(editHelp, strings.Join(types, ", "), strings.Join(ops, ", "))
			continue
		case "outline":
			printOutline(ed.Assessment())
			continue
		case "preview":
			fmt.Print(components.Preview(ed.Assessment()))
			continue
		case "save":
			saved, err := ed.Save(ctx)
			if err != nil {
				fmt.Println(theme.Violation.Render(err.Error()))
				continue
			}
			fmt.Println(theme.Saved.Render("Saved"), saved.Title, theme.Hint.Render("("+saved.ID+")"))
			continue
		case "discard":
			if err := ed.Discard(ctx, title); err != nil {
				fmt.Println(theme.Violation.Render(err.Error()))
				continue
			}
			fmt.Println("Draft discarded; editing the", ed.Source(), "assessment.")
			printOutline(ed.Assessment())
			continue
		}

		msg, err := applyEdit(ed.Builder, verb, rest)
		if err != nil {
			fmt.Println(theme.Violation.Render(err.Error()))
			continue
		}
		if msg != "" {
			fmt.Println(msg)
		}
	}
}

// applyEdit runs one mutation command against b.
func applyEdit(b *builder.Builder, verb, rest string) (string, error) {
	a := b.Assessment()
	fields := strings.Fields(rest)

	need := func(n int) error {
		if len(fields) < n {
			return fmt.Errorf("%s: expected at least %d argument(s); see help", verb, n)
		}
		return nil
	}
	// tail returns the raw text after the first n fields.
	tail := func(n int) string {
		s := rest
		for i := 0; i < n; i++ {
			s = strings.TrimSpace(s)
			if j := strings.IndexAny(s, " \t"); j >= 0 {
				s = s[j:]
			} else {
				s = ""
			}
		}
		return strings.TrimSpace(s)
	}

	switch verb {
	case "title":
		return "", b.SetDetails(rest, a.Description)
	case "describe":
		return "", b.SetDetails(a.Title, rest)

	case "add-section":
		id, err := b.AddSection(rest)
		return "Added section " + id, err
	case "rm-section":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveSection(a, fields[0])
		if err != nil {
			return "", err
		}
		return "", b.RemoveSection(id)
	case "dup-section":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveSection(a, fields[0])
		if err != nil {
			return "", err
		}
		newID, err := b.DuplicateSection(id)
		return "Added section " + newID, err
	case "mv-section":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveSection(a, fields[0])
		if err != nil {
			return "", err
		}
		pos, err := position(fields[1])
		if err != nil {
			return "", err
		}
		return "", b.MoveSection(id, pos)
	case "rename-section":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveSection(a, fields[0])
		if err != nil {
			return "", err
		}
		s := a.Sections[a.FindSection(id)]
		return "", b.UpdateSection(id, tail(1), s.Description)

	case "add-question":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveSection(a, fields[0])
		if err != nil {
			return "", err
		}
		var qt assessment.QuestionType
		if len(fields) > 1 {
			qt = assessment.QuestionType(fields[1])
		}
		qid, err := b.AddQuestion(id, qt)
		return "Added question " + qid, err
	case "rm-question":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		return "", b.RemoveQuestion(id)
	case "dup-question":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		qid, err := b.DuplicateQuestion(id)
		return "Added question " + qid, err
	case "mv-question":
		if err := need(3); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		sid, err := resolveSection(a, fields[1])
		if err != nil {
			return "", err
		}
		pos, err := position(fields[2])
		if err != nil {
			return "", err
		}
		return "", b.MoveQuestion(id, sid, pos)
	case "question-title":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		t := tail(1)
		return "", b.UpdateQuestion(id, builder.QuestionUpdate{Title: &t})
	case "required":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		var on bool
		switch fields[1] {
		case "on", "yes", "true":
			on = true
		case "off", "no", "false":
		default:
			return "", fmt.Errorf("required: expected on or off, got %q", fields[1])
		}
		return "", b.UpdateQuestion(id, builder.QuestionUpdate{Required: &on})
	case "type":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		return "", b.SetQuestionType(id, assessment.QuestionType(fields[1]))

	case "add-option":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		oid, err := b.AddOption(id)
		return "Added option " + oid, err
	case "rm-option", "option":
		if err := need(2); err != nil {
			return "", err
		}
		qid, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		q, _ := a.Question(qid)
		oid, err := resolveOption(q, fields[1])
		if err != nil {
			return "", err
		}
		if verb == "rm-option" {
			return "", b.RemoveOption(qid, oid)
		}
		return "", b.SetOptionLabel(qid, oid, tail(2))

	case "rule":
		if err := need(2); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		if fields[1] == "clear" {
			return "", b.SetValidation(id, nil)
		}
		rule, err := parseRule(tail(1))
		if err != nil {
			return "", err
		}
		return "", b.SetValidation(id, rule)
	case "when":
		if err := need(3); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		dep, err := resolveQuestion(a, fields[1])
		if err != nil {
			return "", err
		}
		return "", b.SetCondition(id, assessment.ConditionalLogic{
			DependsOn: dep,
			Condition: assessment.Operator(fields[2]),
			Value:     tail(3),
		})
	case "always":
		if err := need(1); err != nil {
			return "", err
		}
		id, err := resolveQuestion(a, fields[0])
		if err != nil {
			return "", err
		}
		return "", b.ClearCondition(id)
	}
	return "", fmt.Errorf("unknown command %q; type help", verb)
}

func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: must be a number from 1", s)
	}
	return n - 1, nil
}

// parseRule reads key=value pairs. Values run to the next key, so patterns
// and messages may contain spaces.
func parseRule(s string) (*assessment.ValidationRule, error) {
	rule := &assessment.ValidationRule{}
	for _, kv := range splitPairs(s) {
		key, val, _ := strings.Cut(kv, "=")
		switch key {
		case "minLength", "maxLength":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not an integer", key, val)
			}
			if key == "minLength" {
				rule.MinLength = &n
			} else {
				rule.MaxLength = &n
			}
		case "min", "max":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: %q is not a number", key, val)
			}
			if key == "min" {
				rule.Min = &f
			} else {
				rule.Max = &f
			}
		case "pattern":
			rule.Pattern = val
		case "message":
			rule.CustomMessage = val
		default:
			return nil, fmt.Errorf("unknown rule key %q", key)
		}
	}
	return rule, nil
}

var ruleKeys = []string{"minLength=", "maxLength=", "min=", "max=", "pattern=", "message="}

func splitPairs(s string) []string {
	var out []string
	for _, tok := range strings.Fields(s) {
		starts := false
		for _, k := range ruleKeys {
			if strings.HasPrefix(tok, k) {
				starts = true
				break
			}
		}
		if starts || len(out) == 0 {
			out = append(out, tok)
		} else {
			out[len(out)-1] += " " + tok
		}
	}
	return out
}

var errAmbiguous = errors.New("ambiguous id prefix")

func resolvePrefix(kind, prefix string, ids []string) (string, error) {
	var match string
	for _, id := range ids {
		if id == prefix {
			return id, nil
		}
		if strings.HasPrefix(id, prefix) {
			if match != "" {
				return "", fmt.Errorf("%w: %s %q", errAmbiguous, kind, prefix)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no %s matches %q", kind, prefix)
	}
	return match, nil
}

func resolveSection(a *assessment.Assessment, prefix string) (string, error) {
	ids := make([]string, len(a.Sections))
	for i, s := range a.Sections {
		ids[i] = s.ID
	}
	return resolvePrefix("section", prefix, ids)
}

func resolveQuestion(a *assessment.Assessment, prefix string) (string, error) {
	return resolvePrefix("question", prefix, a.QuestionIDs())
}

func resolveOption(q assessment.Question, prefix string) (string, error) {
	ids := make([]string, len(q.Options))
	for i, o := range q.Options {
		ids[i] = o.ID
	}
	return resolvePrefix("option", prefix, ids)
}

func printOutline(a *assessment.Assessment) {
	fmt.Println(theme.Title.Render(a.Title), theme.Hint.Render("job "+a.JobID))
	for i, s := range a.OrderedSections() {
		fmt.Printf("%s %s\n", theme.Section.UnsetBorderBottom().Render(fmt.Sprintf("%d. %s", i+1, s.Title)), theme.Hint.Render(s.ID))
		for j, q := range s.OrderedQuestions() {
			req := ""
			if q.Required {
				req = theme.RequiredMark.Render("*")
			}
			fmt.Printf("   %d.%d %s%s %s %s\n", i+1, j+1, q.Title, req,
				theme.Subtitle.Render("["+string(q.Type)+"]"), theme.Hint.Render(q.ID))
			for _, o := range q.OrderedOptions() {
				fmt.Printf("        - %s %s\n", o.Label, theme.Hint.Render(o.ID))
			}
			if c := components.DescribeCondition(a, q.ConditionalLogic); c != "" {
				fmt.Println(theme.Tag.Render("        shown when " + c))
			}
			if r := components.DescribeRule(q); r != "" {
				fmt.Println(theme.Hint.Render("        " + r))
			}
		}
	}
}
