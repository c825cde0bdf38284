package document

import (
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// UnifiedDiff renders the plan as a unified diff of name without context
// lines. Edits whose lines overlap share one hunk.
func (p *EditPlan) UnifiedDiff(snapshot *Snapshot, name string) (string, error) {
	if _, err := p.Apply(snapshot); err != nil {
		return "", err
	}

	fd := &diff.FileDiff{OrigName: "a/" + name, NewName: "b/" + name}
	delta := 0
	for _, g := range groupEdits(snapshot, p.Edits) {
		oldText := snapshot.Text[g.from:g.to]
		var nb strings.Builder
		last := g.from
		for _, e := range g.edits {
			nb.WriteString(snapshot.Text[last:e.Range.Start])
			nb.WriteString(e.NewText)
			last = e.Range.End
		}
		nb.WriteString(snapshot.Text[last:g.to])

		oldLines, newLines := splitLines(oldText), splitLines(nb.String())
		var body strings.Builder
		for _, l := range oldLines {
			writeDiffLine(&body, '-', l)
		}
		for _, l := range newLines {
			writeDiffLine(&body, '+', l)
		}

		h := &diff.Hunk{
			OrigStartLine: int32(hunkStart(g.line, len(oldLines))),
			OrigLines:     int32(len(oldLines)),
			NewStartLine:  int32(hunkStart(g.line+delta, len(newLines))),
			NewLines:      int32(len(newLines)),
			Body:          []byte(body.String()),
		}
		fd.Hunks = append(fd.Hunks, h)
		delta += len(newLines) - len(oldLines)
	}
	if len(fd.Hunks) == 0 {
		return "", nil
	}

	out, err := diff.PrintFileDiff(fd)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// editGroup is a run of edits covering whole lines [from, to) of the
// snapshot, starting at 0-based line.
type editGroup struct {
	line     int
	lastLine int
	from, to int
	edits    []Edit
}

func groupEdits(s *Snapshot, edits []Edit) []editGroup {
	var groups []editGroup
	for _, e := range edits {
		first := s.PositionAt(e.Range.Start).Line
		last := s.PositionAt(e.Range.End).Line
		if !e.Range.IsEmpty() && last > first && s.LineStart(last) == e.Range.End {
			last--
		}
		if n := len(groups); n > 0 && first <= groups[n-1].lastLine {
			g := &groups[n-1]
			if last > g.lastLine {
				g.lastLine = last
				g.to = s.lineEndInclusive(last)
			}
			g.edits = append(g.edits, e)
			continue
		}
		groups = append(groups, editGroup{
			line:     first,
			lastLine: last,
			from:     s.LineStart(first),
			to:       s.lineEndInclusive(last),
			edits:    []Edit{e},
		})
	}
	return groups
}

// lineEndInclusive is the offset just past line's terminator.
func (s *Snapshot) lineEndInclusive(line int) int {
	if line+1 < len(s.lineStarts) {
		return s.lineStarts[line+1]
	}
	return len(s.Text)
}

// hunkStart converts a 0-based line into a hunk start; an empty side
// names the line before it.
func hunkStart(line, count int) int {
	if count == 0 {
		return line
	}
	return line + 1
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func writeDiffLine(b *strings.Builder, prefix byte, line string) {
	b.WriteByte(prefix)
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteString("\n\\ No newline at end of file\n")
	}
}
