package cli

import (
	"fmt"

	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Quick backlog overview",
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	items, err := s.ListItems(store.ListFilter{})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Printf("No items. Run: %sbacklog add \"description\"%s\n", colorCyan, colorReset)
		return nil
	}

	counts := map[store.Status]int{}
	assignees := map[string]int{}
	for _, it := range items {
		counts[it.Status]++
		if it.AssignedTo != nil {
			assignees[*it.AssignedTo]++
		}
	}

	fmt.Printf("%sItems: %d total%s\n", colorBold, len(items), colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "backlog:", colorWhite, counts[store.StatusBacklog], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "ready:", colorCyan, counts[store.StatusReady], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "in_progress:", colorBlue, counts[store.StatusInProgress], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "review:", colorMagenta, counts[store.StatusReview], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "merged:", colorYellow, counts[store.StatusMerged], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "done:", colorGreen, counts[store.StatusDone], colorReset)
	fmt.Printf("  %-14s %s%d%s\n", "parked:", colorDim, counts[store.StatusParked], colorReset)

	if len(assignees) > 0 {
		fmt.Printf("\n%sAssignees:%s\n", colorBold, colorReset)
		for _, it := range items {
			if it.AssignedTo == nil {
				continue
			}
			name := *it.AssignedTo
			if n, ok := assignees[name]; ok {
				fmt.Printf("  %s%-20s%s %d\n", colorCyan, name, colorReset, n)
				delete(assignees, name)
			}
		}
	}

	return nil
}
