package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/session"
	"github.com/abhisek/talentflow/internal/store"
	"github.com/abhisek/talentflow/internal/ui/components"
	"github.com/abhisek/talentflow/internal/ui/theme"
	"github.com/abhisek/talentflow/internal/validation"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Answer a job's assessment as a candidate",
	Long: `Walk through the visible questions of a job's assessment and submit.

Answers are autosaved as a draft and resumed the next time the same
candidate takes the same assessment. At any prompt:
  (enter)  keep the current answer and continue
  :back    previous question
  :clear   clear the answer
  :submit  jump to submission
  :quit    leave; the draft is kept`,
	RunE: runTake,
}

func init() {
	takeCmd.Flags().String("job", "", "Job ID (required)")
	takeCmd.Flags().String("candidate", "", "Candidate ID (required)")
	_ = takeCmd.MarkFlagRequired("job")
	_ = takeCmd.MarkFlagRequired("candidate")
}

func runTake(cmd *cobra.Command, args []string) error {
	jobID, _ := cmd.Flags().GetString("job")
	candidateID, _ := cmd.Flags().GetString("candidate")

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	a, err := st.Assessments().Load(ctx, jobID)
	if err != nil {
		return err
	}
	if a == nil {
		return fmt.Errorf("job %s has no assessment", jobID)
	}

	prior, err := st.Responses().List(ctx, store.ResponseFilter{AssessmentID: a.ID, CandidateID: candidateID, Limit: 1})
	if err != nil {
		return err
	}

	sess, err := session.New(ctx, session.Options{
		Assessment:    a,
		CandidateID:   candidateID,
		Drafts:        st.Drafts(),
		Transport:     st.Responses(),
		AutosaveDelay: cfg.AutosaveDelay,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	// Leaving before submit keeps the latest answers as a draft.
	defer sess.Flush()

	fmt.Println(theme.Title.Render(a.Title))
	if a.Description != "" {
		fmt.Println(theme.Subtitle.Render(a.Description))
	}
	if len(prior) > 0 {
		fmt.Println(theme.Warning.Render(fmt.Sprintf("Already submitted on %s; submitting again records a new response.",
			prior[0].SubmittedAt.Local().Format("2006-01-02 15:04"))))
	}
	if sess.Resumed() {
		fmt.Println(theme.Warning.Render(fmt.Sprintf("Resumed your draft with %d answer(s).", len(sess.Answers()))))
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	read := func(prompt string) (string, bool) {
		fmt.Print(prompt)
		if !scanner.Scan() {
			fmt.Println("\n(input closed; draft kept)")
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	pos := 0
	for {
		visible := sess.Visible()
		if pos < 0 {
			pos = 0
		}

		if pos >= len(visible) {
			answered, total := sess.Progress()
			fmt.Println()
			fmt.Println(components.NewProgressBar("Answered", answered, total, 50).View())
			choice, ok := read("Submit now? [y]es / [r]eview / [q]uit: ")
			if !ok {
				return nil
			}
			switch strings.ToLower(choice) {
			case "y", "yes", ":submit":
				sub, err := sess.Submit(ctx)
				var verr *session.ValidationError
				switch {
				case err == nil:
					fmt.Println(theme.Saved.Render("Submitted."), theme.Hint.Render("Response "+sub.ID))
					return nil
				case errors.As(err, &verr):
					printViolations(visible, verr.Violations)
					pos = firstViolation(visible, verr.Violations)
				default:
					fmt.Println(theme.Violation.Render(err.Error()))
					fmt.Println(theme.Hint.Render("Your answers are saved as a draft. Try again or :quit."))
				}
			case "r", "review", ":back":
				pos = 0
				if choice == ":back" {
					pos = len(visible) - 1
				}
			case "q", "quit", ":quit":
				fmt.Println(theme.Hint.Render("Draft kept. Run the same command to resume."))
				return nil
			}
			continue
		}

		q := visible[pos]
		current, _ := sess.Answer(q.ID)
		answered, total := sess.Progress()

		fmt.Println()
		fmt.Println(components.NewProgressBar("", answered, total, 30).View())
		fmt.Print(components.Question(q, pos+1, current))
		if v, ok := sess.Violations()[q.ID]; ok {
			fmt.Println(theme.Violation.Render("   " + v.Message))
		}
		if s := current.String(); s != "" && !q.Type.IsChoice() {
			fmt.Println(theme.Hint.Render("   current: " + s))
		}

		line, ok := read(answerPrompt(q))
		if !ok {
			return nil
		}

		switch line {
		case "":
			pos++
			continue
		case ":back":
			pos--
			continue
		case ":quit":
			fmt.Println(theme.Hint.Render("Draft kept. Run the same command to resume."))
			return nil
		case ":submit":
			pos = len(visible)
			continue
		case ":clear":
			if err := sess.Clear(q.ID); err != nil {
				fmt.Println(theme.Violation.Render(err.Error()))
			}
			continue
		}

		ans, err := parseAnswer(q, line)
		if err != nil {
			fmt.Println(theme.Violation.Render("   " + err.Error()))
			continue
		}
		if err := sess.Set(q.ID, ans); err != nil {
			fmt.Println(theme.Violation.Render(err.Error()))
			continue
		}
		if v := validation.Validate(q, ans); v != nil {
			fmt.Println(theme.Warning.Render("   " + v.Message))
		}
		pos++
	}
}

func answerPrompt(q assessment.Question) string {
	switch q.Type {
	case assessment.TypeSingleChoice:
		return "Choose one (number): "
	case assessment.TypeMultipleChoice:
		return "Choose any (numbers, comma separated): "
	case assessment.TypeNumeric:
		return "Number: "
	case assessment.TypeFileUpload:
		return "File path: "
	default:
		return "Answer: "
	}
}

// parseAnswer turns a line of input into an answer for q.
func parseAnswer(q assessment.Question, line string) (assessment.Answer, error) {
	switch q.Type {
	case assessment.TypeSingleChoice:
		o, err := pickOption(q, line)
		if err != nil {
			return assessment.Answer{}, err
		}
		return assessment.Choice(o.Value), nil

	case assessment.TypeMultipleChoice:
		var values []string
		for _, part := range strings.Split(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			o, err := pickOption(q, part)
			if err != nil {
				return assessment.Answer{}, err
			}
			values = append(values, o.Value)
		}
		return assessment.Multi(values...), nil

	case assessment.TypeNumeric:
		return assessment.Number(line), nil

	case assessment.TypeFileUpload:
		info, err := os.Stat(line)
		if err != nil {
			return assessment.Answer{}, fmt.Errorf("cannot read file: %w", err)
		}
		if info.IsDir() {
			return assessment.Answer{}, fmt.Errorf("%s is a directory", line)
		}
		typ := mime.TypeByExtension(filepath.Ext(line))
		if typ == "" {
			typ = "application/octet-stream"
		}
		return assessment.File(assessment.FileRef{Name: info.Name(), Size: info.Size(), Type: typ}), nil

	default:
		return assessment.Text(line), nil
	}
}

// pickOption accepts a 1-based option number, an option value or a label.
func pickOption(q assessment.Question, in string) (assessment.Option, error) {
	opts := q.OrderedOptions()
	if n, err := strconv.Atoi(in); err == nil {
		if n < 1 || n > len(opts) {
			return assessment.Option{}, fmt.Errorf("choose a number from 1 to %d", len(opts))
		}
		return opts[n-1], nil
	}
	if o, ok := q.OptionByValue(assessment.OptionValue(in)); ok {
		return o, nil
	}
	return assessment.Option{}, fmt.Errorf("no option matches %q", in)
}

func printViolations(visible []assessment.Question, vs validation.Violations) {
	fmt.Println(theme.Violation.Render(fmt.Sprintf("%d question(s) need attention:", len(vs))))
	for i, q := range visible {
		if v, ok := vs[q.ID]; ok {
			fmt.Printf("  %d. %s: %s\n", i+1, q.Title, theme.Violation.Render(v.Message))
		}
	}
}

func firstViolation(visible []assessment.Question, vs validation.Violations) int {
	for i, q := range visible {
		if _, ok := vs[q.ID]; ok {
			return i
		}
	}
	return 0
}
