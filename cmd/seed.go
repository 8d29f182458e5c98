package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/assessment"
	"github.com/abhisek/talentflow/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create sample assessments for jobs",
	Long: `Create assessments from the built-in templates (` + strings.Join(seed.Names(), ", ") + `).

Jobs are given as --job <id> or --job <id>=<title>. Without --template the
templates are used in rotation. Jobs that already have an assessment are
skipped unless --force is set.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringArray("job", nil, "Job to seed as <id> or <id>=<title> (repeatable, required)")
	seedCmd.Flags().String("template", "", "Template name; rotates through all templates when empty")
	seedCmd.Flags().Bool("force", false, "Replace existing assessments")
	_ = seedCmd.MarkFlagRequired("job")
}

func runSeed(cmd *cobra.Command, args []string) error {
	jobFlags, _ := cmd.Flags().GetStringArray("job")
	tmplName, _ := cmd.Flags().GetString("template")
	force, _ := cmd.Flags().GetBool("force")

	jobs := make([]seed.Job, 0, len(jobFlags))
	for _, j := range jobFlags {
		id, title, _ := strings.Cut(j, "=")
		id = strings.TrimSpace(id)
		if id == "" {
			return fmt.Errorf("invalid --job %q: id is empty", j)
		}
		jobs = append(jobs, seed.Job{ID: id, Title: strings.TrimSpace(title)})
	}

	var (
		built []*assessment.Assessment
		err   error
	)
	if tmplName != "" {
		t, ok := seed.Lookup(tmplName)
		if !ok {
			return fmt.Errorf("unknown template %q (available: %s)", tmplName, strings.Join(seed.Names(), ", "))
		}
		for _, job := range jobs {
			a, err := t.Build(job, nil)
			if err != nil {
				return err
			}
			built = append(built, a)
		}
	} else if built, err = seed.ForJobs(jobs, nil); err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	repo := st.Assessments()
	for _, a := range built {
		existing, err := repo.Load(ctx, a.JobID)
		if err != nil {
			return err
		}
		if existing != nil && !force {
			fmt.Printf("%-16s  skipped (already has %q)\n", a.JobID, existing.Title)
			continue
		}

		saved, err := repo.Save(ctx, a)
		if err != nil {
			return fmt.Errorf("save assessment for %s: %w", a.JobID, err)
		}
		fmt.Printf("%-16s  %s (%d questions)\n", saved.JobID, saved.Title, saved.QuestionCount())
	}
	return nil
}
