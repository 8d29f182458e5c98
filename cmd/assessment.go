package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/ui/components"
	"github.com/abhisek/talentflow/internal/ui/theme"
)

var assessmentCmd = &cobra.Command{
	Use:   "assessment",
	Short: "Manage job assessments",
}

var assessmentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored assessments",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		list, err := st.Assessments().List(cmd.Context())
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No assessments found. Create some with `talentflow seed`.")
			return nil
		}

		fmt.Printf("%-16s  %-36s  %-19s  %s\n", "Job", "ID", "Updated", "Title")
		fmt.Println(strings.Repeat("─", 100))
		for _, a := range list {
			fmt.Printf("%-16s  %-36s  %-19s  %s\n",
				a.JobID, a.ID, a.UpdatedAt.Local().Format("2006-01-02 15:04:05"), a.Title)
		}
		return nil
	},
}

var assessmentShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Preview a job's assessment with every question",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, _ := cmd.Flags().GetString("job")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := st.Assessments().Load(cmd.Context(), jobID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("job %s has no assessment", jobID)
		}
		fmt.Print(components.Preview(a))
		return nil
	},
}

var assessmentExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a job's assessment as JSON or YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, _ := cmd.Flags().GetString("job")
		format, _ := cmd.Flags().GetString("format")
		out, _ := cmd.Flags().GetString("out")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		a, err := st.Assessments().Load(cmd.Context(), jobID)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("job %s has no assessment", jobID)
		}

		var data []byte
		switch format {
		case "json":
			data, err = json.MarshalIndent(a, "", "  ")
			data = append(data, '\n')
		case "yaml":
			data, err = yaml.Marshal(a)
		default:
			return fmt.Errorf("unknown format %q: must be json or yaml", format)
		}
		if err != nil {
			return fmt.Errorf("encode assessment: %w", err)
		}

		if out == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		return os.WriteFile(out, data, 0o644)
	},
}

var assessmentImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store an assessment document, replacing the job's current one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobID, _ := cmd.Flags().GetString("job")

		a, err := readAssessmentFile(args[0])
		if err != nil {
			return err
		}
		if jobID != "" {
			a.JobID = jobID
		}
		rep := assessment.Check(a)
		printWarnings(rep)
		if err := rep.Err(); err != nil {
			return err
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := st.Assessments().Save(cmd.Context(), a)
		if err != nil {
			return err
		}
		fmt.Println(theme.Saved.Render("Saved"), fmt.Sprintf("%s for job %s (%d questions)", saved.Title, saved.JobID, saved.QuestionCount()))
		return nil
	},
}

var assessmentCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate an assessment document without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := readAssessmentFile(args[0])
		if err != nil {
			return err
		}
		rep := assessment.Check(a)
		printWarnings(rep)
		if err := rep.Err(); err != nil {
			return err
		}
		fmt.Printf("%s: %d sections, %d questions, OK\n", args[0], len(a.Sections), a.QuestionCount())
		return nil
	},
}

func init() {
	assessmentShowCmd.Flags().String("job", "", "Job ID (required)")
	_ = assessmentShowCmd.MarkFlagRequired("job")

	assessmentExportCmd.Flags().String("job", "", "Job ID (required)")
	assessmentExportCmd.Flags().String("format", "json", "Output format: json or yaml")
	assessmentExportCmd.Flags().StringP("out", "o", "", "Output file (default stdout)")
	_ = assessmentExportCmd.MarkFlagRequired("job")

	assessmentImportCmd.Flags().String("job", "", "Override the document's jobId")

	assessmentCmd.AddCommand(assessmentListCmd)
	assessmentCmd.AddCommand(assessmentShowCmd)
	assessmentCmd.AddCommand(assessmentExportCmd)
	assessmentCmd.AddCommand(assessmentImportCmd)
	assessmentCmd.AddCommand(assessmentCheckCmd)
	assessmentCmd.AddCommand(assessmentEditCmd)
}

// readAssessmentFile decodes a JSON or YAML document chosen by extension.
func readAssessmentFile(path string) (*assessment.Assessment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return assessment.ParseYAML(data)
	default:
		return assessment.ParseJSON(data)
	}
}

func printWarnings(rep assessment.Report) {
	for _, w := range rep.Warnings {
		fmt.Fprintln(os.Stderr, theme.Warning.Render("warning: "+w))
	}
}
