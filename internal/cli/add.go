package cli

import (
	"fmt"
	"strings"

	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

var (
	addType     string
	addDesc     string
	addPriority int
	addSprint   string
	addParent   int64
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new backlog item",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "story", "Item type: story, bug, task, spike")
	addCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "Item description")
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", 0, "Priority (higher sorts first)")
	addCmd.Flags().StringVarP(&addSprint, "sprint", "s", "", "Sprint label")
	addCmd.Flags().Int64Var(&addParent, "parent", 0, "Parent item ID")
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	n := store.NewItem{
		Title:    strings.Join(args, " "),
		Type:     store.ItemType(addType),
		Priority: addPriority,
	}
	if addDesc != "" {
		n.Description = &addDesc
	}
	if addSprint != "" {
		n.Sprint = &addSprint
	}
	if addParent > 0 {
		n.Parent = &addParent
	}

	item, err := s.Add(n)
	if err != nil {
		return err
	}

	fmt.Printf("Added %s #%d: %s\n", item.Type, item.ID, item.Title)
	return nil
}
