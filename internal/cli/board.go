package cli

import (
	"fmt"
	"strings"

	"github.com/imkarma/backlog/internal/store"
	"github.com/spf13/cobra"
)

// ANSI color codes.
const (
	colorReset   = "\033[0m"
	colorBold    = "\033[1m"
	colorDim     = "\033[2m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

var boardSprint string

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the backlog as a board",
	RunE:  runBoard,
}

func init() {
	boardCmd.Flags().StringVarP(&boardSprint, "sprint", "s", "", "Only show one sprint")
}

func runBoard(cmd *cobra.Command, args []string) error {
	s, err := mustStore()
	if err != nil {
		return err
	}
	defer s.Close()

	items, err := s.ListItems(store.ListFilter{Sprint: boardSprint})
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Printf("%sBoard is empty.%s Add an item: %sbacklog add \"description\"%s\n",
			colorDim, colorReset, colorCyan, colorReset)
		return nil
	}

	columns := map[store.Status][]store.Item{}
	for _, it := range items {
		columns[it.Status] = append(columns[it.Status], it)
	}

	type col struct {
		status store.Status
		label  string
		color  string
	}
	order := []col{
		{store.StatusBacklog, "BACKLOG", colorWhite},
		{store.StatusReady, "READY", colorCyan},
		{store.StatusInProgress, "IN PROGRESS", colorBlue},
		{store.StatusReview, "REVIEW", colorMagenta},
		{store.StatusMerged, "MERGED", colorYellow},
		{store.StatusDone, "DONE", colorGreen},
	}

	// Print header.
	colWidth := loadConfig().BoardColumnWidth()
	headerLine := ""
	sepLine := ""
	for _, c := range order {
		count := len(columns[c.status])
		header := fmt.Sprintf(" %s%s%s (%d)", c.color+colorBold, c.label, colorReset, count)
		// padRight needs visible length, not byte length (ANSI codes add bytes).
		visibleLen := len(fmt.Sprintf(" %s (%d)", c.label, count))
		padding := colWidth - visibleLen
		if padding < 0 {
			padding = 0
		}
		headerLine += header + strings.Repeat(" ", padding)
		sepLine += strings.Repeat("─", colWidth)
	}
	fmt.Println(headerLine)
	fmt.Println(colorDim + sepLine + colorReset)

	maxRows := 0
	for _, c := range order {
		if len(columns[c.status]) > maxRows {
			maxRows = len(columns[c.status])
		}
	}

	for i := 0; i < maxRows; i++ {
		// Item title line.
		line := ""
		for _, c := range order {
			col := columns[c.status]
			if i < len(col) {
				it := col[i]
				idStr := fmt.Sprintf("#%d", it.ID)
				titleStr := truncate(it.Title, colWidth-len(idStr)-3)
				card := fmt.Sprintf(" %s%s%s %s", typeColor(it.Type), idStr, colorReset, titleStr)
				visibleLen := len(fmt.Sprintf(" %s %s", idStr, titleStr))
				padding := colWidth - visibleLen
				if padding < 0 {
					padding = 0
				}
				line += card + strings.Repeat(" ", padding)
			} else {
				line += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(line)

		// Assignee line.
		detailLine := ""
		for _, c := range order {
			col := columns[c.status]
			if i < len(col) {
				it := col[i]
				detail := ""
				visibleDetail := ""
				if it.AssignedTo != nil {
					detail = fmt.Sprintf("    %s[%s]%s", colorCyan, *it.AssignedTo, colorReset)
					visibleDetail = fmt.Sprintf("    [%s]", *it.AssignedTo)
				}
				padding := colWidth - len(visibleDetail)
				if padding < 0 {
					padding = 0
				}
				detailLine += detail + strings.Repeat(" ", padding)
			} else {
				detailLine += strings.Repeat(" ", colWidth)
			}
		}
		fmt.Println(detailLine)
	}
	fmt.Println()

	// Parked items live off the board.
	parked := columns[store.StatusParked]
	if len(parked) > 0 {
		fmt.Printf("%s%s⏸  Parked%s\n", colorBold, colorYellow, colorReset)
		for _, it := range parked {
			fmt.Printf("  %s#%d%s: %s\n", colorYellow, it.ID, colorReset, it.Title)
		}
		fmt.Println()
	}

	// Summary line.
	doneCount := len(columns[store.StatusDone])
	inProgress := len(columns[store.StatusInProgress])

	fmt.Printf("%s%d items%s", colorBold, len(items), colorReset)
	if doneCount > 0 {
		fmt.Printf("  %s✓ %d done%s", colorGreen, doneCount, colorReset)
	}
	if inProgress > 0 {
		fmt.Printf("  %s● %d in progress%s", colorBlue, inProgress, colorReset)
	}
	if len(parked) > 0 {
		fmt.Printf("  %s⏸ %d parked%s", colorYellow, len(parked), colorReset)
	}
	fmt.Println()

	return nil
}

func typeColor(t store.ItemType) string {
	switch t {
	case store.TypeBug:
		return colorRed + colorBold
	case store.TypeSpike:
		return colorMagenta
	case store.TypeTask:
		return colorDim
	default:
		return colorYellow
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
