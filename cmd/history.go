package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/talentflow/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the activity log of saves and submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts store.QueryOpts
		opts.JobID, _ = cmd.Flags().GetString("job")
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.After, _ = cmd.Flags().GetInt64("after")
		since, _ := cmd.Flags().GetDuration("since")
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.Events().Query(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No activity found.")
			return nil
		}

		fmt.Printf("%-6s  %-19s  %-18s  %-16s  %-20s  %s\n", "Seq", "Timestamp", "Kind", "Job", "Candidate", "Detail")
		fmt.Println(strings.Repeat("─", 105))
		for _, e := range events {
			fmt.Printf("%-6d  %-19s  %-18s  %-16s  %-20s  %s\n",
				e.Sequence,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Kind, e.JobID, e.CandidateID, e.Detail)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the most recent activity entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep, _ := cmd.Flags().GetInt("keep")
		if keep < 0 {
			return fmt.Errorf("--keep must not be negative")
		}

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Events().Prune(cmd.Context(), keep); err != nil {
			return err
		}
		fmt.Printf("Kept the %d most recent entries.\n", keep)
		return nil
	},
}

func init() {
	historyCmd.Flags().String("job", "", "Only activity for this job")
	historyCmd.Flags().Int("limit", 100, "Maximum number of entries")
	historyCmd.Flags().Int64("after", 0, "Only entries with a sequence above this")
	historyCmd.Flags().Duration("since", 0, "Only entries newer than this (e.g. 24h)")

	historyPruneCmd.Flags().Int("keep", 1000, "Number of entries to keep")

	historyCmd.AddCommand(historyPruneCmd)
}
