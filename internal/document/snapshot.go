// Package document models the host buffer the engine works against: an
// immutable text snapshot with line indexing, ranges, selections and
// atomic multi-range edit plans.
package document

import (
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// Position is a 0-based line and byte column.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered.
func (r Range) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the range covers no bytes.
func (r Range) IsEmpty() bool {
	return r.Start >= r.End
}

// Overlaps reports whether two ranges share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// Selection is a host selection; an empty selection is a cursor.
type Selection struct {
	Anchor int `json:"anchor"`
	Active int `json:"active"`
}

// Cursor returns an empty selection at offset.
func Cursor(offset int) Selection {
	return Selection{Anchor: offset, Active: offset}
}

// Range returns the selection normalised so Start <= End.
func (s Selection) Range() Range {
	if s.Anchor <= s.Active {
		return Range{Start: s.Anchor, End: s.Active}
	}
	return Range{Start: s.Active, End: s.Anchor}
}

// Snapshot is one consistent view of the buffer text.
type Snapshot struct {
	Text       string
	Dialect    syntax.Dialect
	lineStarts []int
}

// NewSnapshot indexes text for offset and line conversions.
func NewSnapshot(text string, dialect syntax.Dialect) *Snapshot {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Snapshot{Text: text, Dialect: dialect, lineStarts: starts}
}

// Fingerprint identifies the snapshot content.
func (s *Snapshot) Fingerprint() uint64 {
	return xxhash.Sum64String(s.Text)
}

// LineCount returns the number of lines, counting a trailing empty line.
func (s *Snapshot) LineCount() int {
	return len(s.lineStarts)
}

// Clamp limits offset to [0, len(Text)].
func (s *Snapshot) Clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(s.Text) {
		return len(s.Text)
	}
	return offset
}

// PositionAt converts a byte offset to a line and column.
func (s *Snapshot) PositionAt(offset int) Position {
	offset = s.Clamp(offset)
	line := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	return Position{Line: line, Column: offset - s.lineStarts[line]}
}

// OffsetAt converts a line and column to a byte offset, clamping the
// column to the line's length.
func (s *Snapshot) OffsetAt(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(s.lineStarts) {
		return len(s.Text)
	}
	start := s.lineStarts[pos.Line]
	end := s.lineEnd(pos.Line)
	offset := start + pos.Column
	if pos.Column < 0 {
		offset = start
	}
	if offset > end {
		offset = end
	}
	return offset
}

// LineStart returns the offset of the first byte of line.
func (s *Snapshot) LineStart(line int) int {
	return s.OffsetAt(Position{Line: line})
}

// LineText returns line without its terminator.
func (s *Snapshot) LineText(line int) string {
	if line < 0 || line >= len(s.lineStarts) {
		return ""
	}
	return strings.TrimSuffix(s.Text[s.lineStarts[line]:s.lineEnd(line)], "\r")
}

// Indentation returns the leading whitespace of line.
func (s *Snapshot) Indentation(line int) string {
	text := s.LineText(line)
	return text[:len(text)-len(strings.TrimLeft(text, " \t"))]
}

// Slice returns the text covered by r, clamped to the buffer.
func (s *Snapshot) Slice(r Range) string {
	return s.Text[s.Clamp(r.Start):s.Clamp(r.End)]
}

func (s *Snapshot) lineEnd(line int) int {
	if line+1 < len(s.lineStarts) {
		return s.lineStarts[line+1] - 1
	}
	return len(s.Text)
}
