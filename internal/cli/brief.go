package cli

import (
	"fmt"

	"github.com/imkarma/backlog/internal/brief"
	"github.com/spf13/cobra"
)

var briefCmd = &cobra.Command{
	Use:   "brief [id]",
	Short: "Print a work brief for an item",
	Long:  "Renders an item with its parent context, children and discussion as markdown, ready to hand to an agent.",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrief,
}

func runBrief(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	out, err := brief.New(s).Build(id)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}
