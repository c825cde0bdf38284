package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-refactor/internal/engine"
	"github.com/mvp-joe/cortex-refactor/internal/resolve"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
	"github.com/mvp-joe/cortex-refactor/internal/watcher"
)

var (
	atFlag    string
	kindsFlag string
	watchFlag bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Print the range of the element under the cursor",
	Long: `Resolve finds the smallest class, function, call, variable, property,
multiline string or markup element that encloses the cursor and prints its
accepted range. A declaration statement, a call statement and an exported
declaration are widened to the whole statement.

Examples:
  cortex-refactor resolve src/app.ts --at 14:7
  cortex-refactor resolve src/app.ts --at 310 --kinds function,class`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var membersCmd = &cobra.Command{
	Use:   "members FILE",
	Short: "List the members of the scope enclosing the cursor",
	Args:  cobra.ExactArgs(1),
	RunE:  runMembers,
}

var nextCmd = &cobra.Command{
	Use:   "next FILE",
	Short: "Print the member after the cursor, wrapping to the first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNavigate(cmd, args, true)
	},
}

var prevCmd = &cobra.Command{
	Use:     "prev FILE",
	Aliases: []string{"previous"},
	Short:   "Print the member before the cursor, wrapping to the last",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNavigate(cmd, args, false)
	},
}

func init() {
	for _, c := range []*cobra.Command{resolveCmd, membersCmd, nextCmd, prevCmd} {
		c.Flags().StringVar(&atFlag, "at", "0", "cursor position: OFFSET or LINE:COL")
		rootCmd.AddCommand(c)
	}
	membersCmd.Flags().BoolVar(&watchFlag, "watch", false, "print the members again whenever the file changes")
	resolveCmd.Flags().StringVar(&kindsFlag, "kinds", "", "comma separated element kinds: class, function, call, variable, property, string, markup (default: all)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	offset, err := parsePosition(snap, atFlag)
	if err != nil {
		return err
	}
	kinds, err := resolve.ParseElementKinds(kindsFlag)
	if err != nil {
		return err
	}

	el, err := newEngine().ResolveElementRange(cmd.Context(), snap, offset, kinds)
	if err != nil {
		return err
	}
	return printJSON(cmd, el)
}

func runMembers(cmd *cobra.Command, args []string) error {
	eng := newEngine()
	if !watchFlag {
		return printMembers(cmd, eng, args[0])
	}
	if args[0] == "-" {
		return fmt.Errorf("--watch needs a file, not stdin")
	}

	// Watch before the first listing so no save is missed in between.
	fw, err := watcher.New([]string{args[0]}, watcher.WithLogger(currentLogger()))
	if err != nil {
		return err
	}
	defer fw.Stop()

	if err := printMembers(cmd, eng, args[0]); err != nil {
		return err
	}
	fw.Start(cmd.Context(), func(files []string) {
		fmt.Fprintln(cmd.OutOrStdout())
		// The file may be mid-save or unparsable; report and keep watching.
		if err := printMembers(cmd, eng, args[0]); err != nil {
			currentLogger().Warn("failed to list members", "path", args[0], "error", err)
		}
	})
	<-fw.Done()
	return nil
}

// printMembers re-reads path and prints one line per member of the scope
// at --at. The position is parsed against the current text.
func printMembers(cmd *cobra.Command, eng *engine.Engine, path string) error {
	snap, err := loadSnapshot(cmd, path)
	if err != nil {
		return err
	}
	offset, err := parsePosition(snap, atFlag)
	if err != nil {
		return err
	}

	members, err := eng.ScopeMembers(cmd.Context(), snap, offset)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, m := range members {
		pos := snap.PositionAt(m.Range.Start)
		fmt.Fprintf(out, "%d:%d\t%s\t%s\n", pos.Line+1, pos.Column+1, m.Kind, m.Name)
	}
	return nil
}

func runNavigate(cmd *cobra.Command, args []string, forward bool) error {
	snap, err := loadSnapshot(cmd, args[0])
	if err != nil {
		return err
	}
	offset, err := parsePosition(snap, atFlag)
	if err != nil {
		return err
	}

	eng := newEngine()
	var m *scope.Member
	if forward {
		m, err = eng.NextMember(cmd.Context(), snap, offset)
	} else {
		m, err = eng.PreviousMember(cmd.Context(), snap, offset)
	}
	if err != nil {
		return err
	}
	pos := snap.PositionAt(m.Range.Start)
	fmt.Fprintf(cmd.OutOrStdout(), "%d:%d\t%d\t%s\t%s\n", pos.Line+1, pos.Column+1, m.Range.Start, m.Kind, m.Name)
	return nil
}
