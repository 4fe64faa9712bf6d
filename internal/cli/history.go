package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyComments bool

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the audit trail for an item",
	Long:  "Shows every recorded change for an item, including items that were deleted.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVarP(&historyComments, "comments", "c", false, "Only show comments")
}

func runHistory(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	fetch := s.GetHistory
	if historyComments {
		fetch = s.GetComments
	}
	events, err := fetch(id)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Printf("No events for item #%d\n", id)
		return nil
	}

	fmt.Printf("History for item #%d:\n\n", id)
	for _, e := range events {
		printEvent(e)
	}
	return nil
}
