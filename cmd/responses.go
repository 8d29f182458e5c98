package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/store"
	"github.com/abhisek/talentflow/internal/ui/theme"
)

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Inspect submitted assessment responses",
}

var responsesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f store.ResponseFilter
		f.JobID, _ = cmd.Flags().GetString("job")
		f.AssessmentID, _ = cmd.Flags().GetString("assessment")
		f.CandidateID, _ = cmd.Flags().GetString("candidate")
		f.Limit, _ = cmd.Flags().GetInt("limit")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		subs, err := st.Responses().List(cmd.Context(), f)
		if err != nil {
			return err
		}
		if len(subs) == 0 {
			fmt.Println("No responses found.")
			return nil
		}

		fmt.Printf("%-36s  %-16s  %-20s  %-19s  %s\n", "ID", "Job", "Candidate", "Submitted", "Answers")
		fmt.Println(strings.Repeat("─", 105))
		for _, s := range subs {
			fmt.Printf("%-36s  %-16s  %-20s  %-19s  %d\n",
				s.ID, s.JobID, s.CandidateID,
				s.SubmittedAt.Local().Format("2006-01-02 15:04:05"),
				len(s.Answers))
		}
		return nil
	},
}

var responsesViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the answers of one submission",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		sub, err := st.Responses().Get(ctx, args[0])
		if err != nil {
			return err
		}
		if sub == nil {
			return fmt.Errorf("response %s not found", args[0])
		}

		fmt.Printf("Response:   %s\n", sub.ID)
		fmt.Printf("Candidate:  %s\n", sub.CandidateID)
		fmt.Printf("Job:        %s\n", sub.JobID)
		fmt.Printf("Submitted:  %s\n", sub.SubmittedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Status:     %s\n\n", sub.Status)

		a, err := st.Assessments().Load(ctx, sub.JobID)
		if err != nil {
			return err
		}
		if a == nil || a.ID != sub.AssessmentID {
			// The assessment changed or is gone; show raw answers.
			ids := make([]string, 0, len(sub.Answers))
			for id := range sub.Answers {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Printf("%s: %s\n", id, sub.Answers[id].String())
			}
			return nil
		}

		for _, s := range a.OrderedSections() {
			fmt.Println(theme.Section.Render(s.Title))
			for _, q := range s.OrderedQuestions() {
				ans, ok := sub.Answers[q.ID]
				if !ok {
					continue
				}
				fmt.Println(theme.Question.Render(q.Title))
				fmt.Println("  " + displayAnswer(q, ans))
			}
		}
		return nil
	},
}

func init() {
	responsesListCmd.Flags().String("job", "", "Filter by job ID")
	responsesListCmd.Flags().String("assessment", "", "Filter by assessment ID")
	responsesListCmd.Flags().String("candidate", "", "Filter by candidate ID")
	responsesListCmd.Flags().Int("limit", 50, "Maximum number of responses to show")

	responsesCmd.AddCommand(responsesListCmd)
	responsesCmd.AddCommand(responsesViewCmd)
}

// displayAnswer renders choice answers by option label.
func displayAnswer(q assessment.Question, ans assessment.Answer) string {
	if !q.Type.IsChoice() {
		return ans.String()
	}
	values := ans.Items
	if v, ok := ans.Scalar(); ok {
		values = []string{v}
	}
	labels := make([]string, 0, len(values))
	for _, v := range values {
		if o, ok := q.OptionByValue(v); ok {
			labels = append(labels, o.Label)
		} else {
			labels = append(labels, v)
		}
	}
	return strings.Join(labels, ", ")
}
