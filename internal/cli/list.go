package cli

import (
	"fmt"

	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

var (
	listStatus   string
	listAssignee string
	listType     string
	listSprint   string
	listParent   int64
	listTopLevel bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backlog items",
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show item details and history",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Filter by status")
	listCmd.Flags().StringVarP(&listAssignee, "assignee", "a", "", "Filter by assignee")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by item type")
	listCmd.Flags().StringVar(&listSprint, "sprint", "", "Filter by sprint")
	listCmd.Flags().Int64Var(&listParent, "parent", 0, "Filter by parent item ID")
	listCmd.Flags().BoolVar(&listTopLevel, "top-level", false, "Only items without a parent")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	f := store.ListFilter{
		Status:       store.Status(listStatus),
		AssignedTo:   listAssignee,
		Type:         store.ItemType(listType),
		Sprint:       listSprint,
		TopLevelOnly: listTopLevel,
	}
	if listParent > 0 {
		f.Parent = store.Value(listParent)
	}

	items, err := s.ListItems(f)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}

	for _, it := range items {
		assignee := ""
		if it.AssignedTo != nil {
			assignee = fmt.Sprintf(" [%s]", *it.AssignedTo)
		}
		sprint := ""
		if it.Sprint != nil {
			sprint = fmt.Sprintf(" (%s)", *it.Sprint)
		}
		fmt.Printf("#%-4d %-12s %-6s p%-3d %s%s%s\n",
			it.ID, it.Status, it.Type, it.Priority, it.Title, assignee, sprint)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	item, err := s.GetItem(id)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("item #%d not found", id)
	}

	fmt.Printf("%s #%d\n", item.Type, item.ID)
	fmt.Printf("  Title:    %s\n", item.Title)
	fmt.Printf("  Status:   %s\n", item.Status)
	fmt.Printf("  Priority: %d\n", item.Priority)
	if item.Description != nil {
		fmt.Printf("  Desc:     %s\n", *item.Description)
	}
	if item.Sprint != nil {
		fmt.Printf("  Sprint:   %s\n", *item.Sprint)
	}
	if item.AssignedTo != nil {
		fmt.Printf("  Assignee: %s\n", *item.AssignedTo)
	}
	if item.CreatedBy != nil {
		fmt.Printf("  Creator:  %s\n", *item.CreatedBy)
	}
	if item.Parent != nil {
		fmt.Printf("  Parent:   #%d\n", *item.Parent)
	}
	if item.Result != nil {
		fmt.Printf("  Result:   %s\n", *item.Result)
	}
	fmt.Printf("  Created:  %s\n", item.CreatedAt)
	fmt.Printf("  Updated:  %s\n", item.UpdatedAt)

	children, err := s.ListItems(store.ListFilter{Parent: store.Value(id)})
	if err != nil {
		return err
	}
	if len(children) > 0 {
		fmt.Println("\n  Children:")
		for _, c := range children {
			fmt.Printf("    #%-4d %-12s %s\n", c.ID, c.Status, c.Title)
		}
	}

	events, err := s.GetHistory(id)
	if err != nil {
		return err
	}
	if len(events) > 0 {
		fmt.Println("\n  History:")
		for _, e := range events {
			printEvent(e)
		}
	}

	return nil
}

func printEvent(e store.Event) {
	agent := ""
	if e.AgentID != nil {
		agent = fmt.Sprintf("[%s] ", *e.AgentID)
	}
	detail := ""
	switch {
	case e.Type == store.EventComment && e.Comment != nil:
		detail = *e.Comment
	case e.OldValue != nil || e.NewValue != nil:
		detail = fmt.Sprintf("%s -> %s", deref(e.OldValue), deref(e.NewValue))
		if e.Comment != nil {
			detail += " (" + *e.Comment + ")"
		}
	}
	fmt.Printf("    %s  %s%-18s %s\n", e.CreatedAt, agent, e.Type, detail)
}
