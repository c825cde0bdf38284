package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// dialectFlag overrides the glob-based dialect choice for every command.
var dialectFlag string

func init() {
	rootCmd.PersistentFlags().StringVar(&dialectFlag, "dialect", "", "typescript, tsx or javascript (default: chosen from the file name)")
}

// loadSnapshot reads path ("-" for stdin) and picks its dialect.
func loadSnapshot(cmd *cobra.Command, path string) (*document.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dialect, err := dialectFor(path)
	if err != nil {
		return nil, err
	}
	return document.NewSnapshot(string(data), dialect), nil
}

func dialectFor(path string) (syntax.Dialect, error) {
	if dialectFlag != "" {
		return syntax.ParseDialect(dialectFlag)
	}
	matcher, err := currentConfig().NewDialectMatcher()
	if err != nil {
		return "", err
	}
	dialect, matched := matcher.DialectFor(path)
	if !matched {
		currentLogger().Debug("no dialect pattern matched, using default", "path", path, "dialect", dialect)
	}
	return dialect, nil
}

// parsePosition accepts a byte offset ("120") or a 1-based "LINE:COL".
func parsePosition(snap *document.Snapshot, arg string) (int, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return 0, fmt.Errorf("position is required")
	}
	if line, col, ok := strings.Cut(arg, ":"); ok {
		l, err := strconv.Atoi(line)
		if err != nil || l < 1 {
			return 0, fmt.Errorf("invalid line in position %q", arg)
		}
		c, err := strconv.Atoi(col)
		if err != nil || c < 1 {
			return 0, fmt.Errorf("invalid column in position %q", arg)
		}
		if l > snap.LineCount() {
			return 0, fmt.Errorf("line %d is past the end of the buffer (%d lines)", l, snap.LineCount())
		}
		return snap.OffsetAt(document.Position{Line: l - 1, Column: c - 1}), nil
	}
	offset, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q (want OFFSET or LINE:COL)", arg)
	}
	if offset < 0 || offset > len(snap.Text) {
		return 0, fmt.Errorf("offset %d outside buffer of %d bytes", offset, len(snap.Text))
	}
	return offset, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// applyPlan prints plan (as a diff with --diff), or with write set applies
// it to path in place. The file is replaced through a rename so it is never
// half written.
func applyPlan(cmd *cobra.Command, path string, snap *document.Snapshot, plan *document.EditPlan, write bool) error {
	if !write && diffFlag {
		name := path
		if name == "-" {
			name = "stdin"
		}
		out, err := plan.UnifiedDiff(snap, filepath.ToSlash(name))
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if !write {
		return printJSON(cmd, plan)
	}
	if path == "-" {
		text, err := plan.Apply(snap)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), text)
		return err
	}

	// Re-read so edits made since the plan was computed are not lost.
	current, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := plan.Apply(document.NewSnapshot(string(current), snap.Dialect))
	if err != nil {
		return fmt.Errorf("failed to apply edit plan to %s: %w", path, err)
	}
	if err := writeFileAtomic(path, []byte(text)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: applied %d edit(s)\n", path, len(plan.Edits))
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
