package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/move"
)

var (
	writeFlag bool
	diffFlag  bool
	toFlag    string
	descFlag  bool
	nameFlag  string
)

var moveCmd = &cobra.Command{
	Use:   "move up|down FILE",
	Short: "Swap the member under the cursor with its neighbour",
	Long: `Move swaps the member under the cursor, or the contiguous block of
members touched by --at..--to, with the neighbouring member. The new cursor
position is printed to stderr.

Examples:
  cortex-refactor move down src/service.ts --at 12:5
  cortex-refactor move up src/service.ts --at 12:1 --to 20:1 --write`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var sortCmd = &cobra.Command{
	Use:   "sort FILE",
	Short: "Sort the members of the enclosing scope by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSort,
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract the selection --at..--to into a new function",
	Long: `Extract moves the selected statements into a new function (or a method
when the selection is inside a class method). Parameters, returned variables
and the return type are derived from the surrounding code.

Example:
  cortex-refactor extract src/sum.ts --at 3:3 --to 5:4 --name accumulate --write`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	for _, c := range []*cobra.Command{moveCmd, sortCmd, extractCmd} {
		c.Flags().StringVar(&atFlag, "at", "0", "cursor or selection start: OFFSET or LINE:COL")
		c.Flags().BoolVarP(&writeFlag, "write", "w", false, "apply the edit plan to the file")
		c.Flags().BoolVar(&diffFlag, "diff", false, "print the edit plan as a unified diff")
		rootCmd.AddCommand(c)
	}
	moveCmd.Flags().StringVar(&toFlag, "to", "", "selection end: OFFSET or LINE:COL (default: --at)")
	sortCmd.Flags().BoolVar(&descFlag, "desc", false, "sort Z to A")
	extractCmd.Flags().StringVar(&toFlag, "to", "", "selection end: OFFSET or LINE:COL")
	extractCmd.Flags().StringVar(&nameFlag, "name", "", "name of the new function (default from configuration)")
	_ = extractCmd.MarkFlagRequired("to")
}

func runMove(cmd *cobra.Command, args []string) error {
	dir, err := move.ParseDirection(args[0])
	if err != nil {
		return err
	}
	path := args[1]
	snap, err := loadSnapshot(cmd, path)
	if err != nil {
		return err
	}
	sel, err := selection(snap)
	if err != nil {
		return err
	}

	res, err := newEngine().MoveMember(cmd.Context(), snap, []document.Selection{sel}, dir)
	if err != nil {
		return err
	}
	if !res.Applied {
		return errors.New(res.Reason)
	}
	if res.Warning != nil {
		currentLogger().Warn(res.Warning.Error(), "line", res.Relocation.Line+1)
	}

	text, err := res.Plan.Apply(snap)
	if err != nil {
		return err
	}
	pos := document.NewSnapshot(text, snap.Dialect).PositionAt(res.Relocation.Offset)
	fmt.Fprintf(cmd.ErrOrStderr(), "cursor: %d:%d (offset %d, %s)\n",
		pos.Line+1, pos.Column+1, res.Relocation.Offset, res.Relocation.Method)
	return applyPlan(cmd, path, snap, res.Plan, writeFlag)
}

func runSort(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	offset, err := parsePosition(snap, atFlag)
	if err != nil {
		return err
	}

	plan, err := newEngine().SortMembers(cmd.Context(), snap, offset, !descFlag)
	if err != nil {
		return err
	}
	if plan == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "members already sorted")
		return nil
	}
	return applyPlan(cmd, args[0], snap, plan, writeFlag)
}

func runExtract(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	sel, err := selection(snap)
	if err != nil {
		return err
	}

	res, err := newEngine().ExtractToFunction(cmd.Context(), snap, sel.Range(), nameFlag)
	if err != nil {
		return err
	}
	if !writeFlag && !diffFlag {
		return printJSON(cmd, res)
	}
	return applyPlan(cmd, args[0], snap, res.Plan, writeFlag)
}

// selection turns --at and --to into a selection anchored at --at.
func selection(snap *document.Snapshot) (document.Selection, error) {
	start, err := parsePosition(snap, atFlag)
	if err != nil {
		return document.Selection{}, err
	}
	end := start
	if toFlag != "" {
		if end, err = parsePosition(snap, toFlag); err != nil {
			return document.Selection{}, err
		}
	}
	return document.Selection{Anchor: start, Active: end}, nil
}
