package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backlog",
	Short: "Shared backlog for agent teams",
	Long:  "backlog — a shared work-item tracker for parallel agent teams.\nEvery change is audited with who made it and when.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(priorityCmd)
	rootCmd.AddCommand(sprintCmd)
	rootCmd.AddCommand(parentCmd)
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(descCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(summaryCmd)
}
