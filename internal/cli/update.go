package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

var moveResult string

var moveCmd = &cobra.Command{
	Use:     "move [id] [status]",
	Aliases: []string{"status"},
	Short:   "Move an item to another status",
	Long:    "Moves an item through the workflow: backlog, ready, in_progress, review, merged, done, parked.",
	Args:    cobra.ExactArgs(2),
	RunE:    runMove,
}

var assignCmd = &cobra.Command{
	Use:   "assign [id] [agent]",
	Short: "Assign an item to an agent (omit agent to unassign)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAssign,
}

var priorityCmd = &cobra.Command{
	Use:   "priority [id] [value]",
	Short: "Change an item's priority",
	Args:  cobra.ExactArgs(2),
	RunE:  runPriority,
}

var sprintCmd = &cobra.Command{
	Use:   "sprint [id] [name]",
	Short: "Move an item to a sprint (omit name to remove)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runSprint,
}

var parentCmd = &cobra.Command{
	Use:   "parent [id] [parent-id]",
	Short: "Set an item's parent (omit parent-id to detach)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runParent,
}

var titleCmd = &cobra.Command{
	Use:   "title [id] [new title]",
	Short: "Rename an item",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTitle,
}

var descCmd = &cobra.Command{
	Use:   "desc [id] [text]",
	Short: "Set an item's description (omit text to clear)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDesc,
}

var commentCmd = &cobra.Command{
	Use:   "comment [id] [text]",
	Short: "Add a comment to an item",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runComment,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an item (history is kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	moveCmd.Flags().StringVarP(&moveResult, "result", "r", "", "Outcome note stored with the move")
}

func runMove(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	result := store.Omit[string]()
	if cmd.Flags().Changed("result") {
		result = store.Value(moveResult)
	}

	item, err := s.UpdateStatus(id, store.Status(args[1]), result)
	if err != nil {
		return err
	}

	fmt.Printf("Moved #%d to %s\n", item.ID, item.Status)
	return nil
}

func runAssign(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var assignee *string
	if len(args) > 1 {
		assignee = &args[1]
	}

	if _, err := s.Assign(id, assignee); err != nil {
		return err
	}

	if assignee == nil {
		fmt.Printf("Unassigned #%d\n", id)
	} else {
		fmt.Printf("Assigned #%d to %s\n", id, *assignee)
	}
	return nil
}

func runPriority(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	priority, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid priority: %s", args[1])
	}

	item, err := s.UpdatePriority(id, priority)
	if err != nil {
		return err
	}

	fmt.Printf("Set #%d priority to %d\n", item.ID, item.Priority)
	return nil
}

func runSprint(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var sprint *string
	if len(args) > 1 {
		sprint = &args[1]
	}

	if _, err := s.UpdateSprint(id, sprint); err != nil {
		return err
	}

	if sprint == nil {
		fmt.Printf("Removed #%d from its sprint\n", id)
	} else {
		fmt.Printf("Moved #%d to %s\n", id, *sprint)
	}
	return nil
}

func runParent(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var parent *int64
	if len(args) > 1 {
		pid, err := parseID(args[1])
		if err != nil {
			return err
		}
		parent = &pid
	}

	if _, err := s.UpdateParent(id, parent); err != nil {
		return err
	}

	if parent == nil {
		fmt.Printf("Detached #%d from its parent\n", id)
	} else {
		fmt.Printf("Set #%d parent to #%d\n", id, *parent)
	}
	return nil
}

func runTitle(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	item, err := s.UpdateTitle(id, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	fmt.Printf("Renamed #%d: %s\n", item.ID, item.Title)
	return nil
}

func runDesc(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var desc *string
	if len(args) > 1 {
		text := strings.Join(args[1:], " ")
		desc = &text
	}

	if _, err := s.UpdateDescription(id, desc); err != nil {
		return err
	}

	if desc == nil {
		fmt.Printf("Cleared #%d description\n", id)
	} else {
		fmt.Printf("Updated #%d description\n", id)
	}
	return nil
}

func runComment(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if _, err := s.Comment(id, strings.Join(args[1:], " ")); err != nil {
		return err
	}

	fmt.Printf("Commented on #%d\n", id)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := s.Delete(id); err != nil {
		return err
	}

	fmt.Printf("Deleted #%d (history preserved)\n", id)
	return nil
}
