package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect autosaved drafts",
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unsaved assessment and response drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix, _ := cmd.Flags().GetString("prefix")

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		drafts, err := st.Drafts().List(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			fmt.Println("No drafts found.")
			return nil
		}

		fmt.Printf("%-19s  %s\n", "Updated", "Key")
		fmt.Println(strings.Repeat("─", 80))
		for _, d := range drafts {
			fmt.Printf("%-19s  %s\n", d.UpdatedAt.Local().Format("2006-01-02 15:04:05"), d.Key)
		}
		return nil
	},
}

var draftsRemoveCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Drafts().Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Removed", args[0])
		return nil
	},
}

func init() {
	draftsListCmd.Flags().String("prefix", "", "Only keys starting with this prefix")

	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsRemoveCmd)
}
