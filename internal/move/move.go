// Package move reorders scope members. A move swaps the text of a member,
// or of a contiguous block of members, with its neighbour as one atomic
// edit plan and predicts where the moved declaration lands.
package move

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
)

// Direction is the way a member moves.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// ParseDirection parses "up" or "down".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	}
	return Up, fmt.Errorf("invalid direction %q (valid: up, down)", s)
}

// Reason explains why a move was not applied.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonTooFewMembers Reason = "scope has fewer than two members"
	ReasonNoSelection   Reason = "selection does not touch any member"
	ReasonNotContiguous Reason = "selected members are not contiguous"
	ReasonBoundary      Reason = "member is already at the scope boundary"
)

// Result is a computed move. When Applied is false only Reason is set.
type Result struct {
	Applied bool
	Reason  Reason
	Plan    *document.EditPlan
	// Text is the buffer text after applying Plan.
	Text string
	// Target is the declaration the cursor should follow.
	Target Target
	// First and Last are the slot indices of the moved block before the move.
	First, Last int
}

// Target describes where the moved declaration is expected in the new text.
type Target struct {
	Name           string
	ExpectedOffset int
	ExpectedLine   int
}

// Plan computes the swap for the members touched by selections. The
// snapshot must be the one the members were listed from.
func Plan(snap *document.Snapshot, members []scope.Member, selections []document.Selection, dir Direction) (*Result, error) {
	slots := scope.Slots(members)
	if len(slots) < 2 {
		return &Result{Reason: ReasonTooFewMembers}, nil
	}

	picked := selectedSlots(snap, slots, selections)
	if len(picked) == 0 {
		return &Result{Reason: ReasonNoSelection}, nil
	}
	first, last := picked[0], picked[len(picked)-1]
	if last-first+1 != len(picked) {
		return &Result{Reason: ReasonNotContiguous}, nil
	}

	var neighbour int
	switch dir {
	case Up:
		if first == 0 {
			return &Result{Reason: ReasonBoundary}, nil
		}
		neighbour = first - 1
	case Down:
		if last == len(slots)-1 {
			return &Result{Reason: ReasonBoundary}, nil
		}
		neighbour = last + 1
	}

	block := document.Range{Start: slots[first].Range.Start, End: slots[last].Range.End}
	blockText := snap.Slice(block)
	other := slots[neighbour]

	plan, err := document.NewPlanBuilder(snap).
		Replace(block, other.Text).
		Replace(other.Range, blockText).
		Build(fmt.Sprintf("move %s %s", slots[first].Name(), dir))
	if err != nil {
		return nil, fmt.Errorf("failed to build move plan: %w", err)
	}
	text, err := plan.Apply(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to apply move plan: %w", err)
	}

	// Offset of the block's new start in the edited text.
	newStart := other.Range.Start
	if dir == Down {
		newStart = block.Start + other.Range.End - block.End
	}

	primary := primarySlot(snap, slots, selections, first, last)
	expected := newStart + slots[primary].Range.Start - block.Start
	after := document.NewSnapshot(text, snap.Dialect)

	return &Result{
		Applied: true,
		Plan:    plan,
		Text:    text,
		First:   first,
		Last:    last,
		Target: Target{
			Name:           slots[primary].Name(),
			ExpectedOffset: expected,
			ExpectedLine:   after.PositionAt(expected).Line,
		},
	}, nil
}

// lineSpan returns the first and last line touched by r. A non-empty range
// ending at the start of a line does not touch that line.
func lineSpan(snap *document.Snapshot, r document.Range) (int, int) {
	startLine := snap.PositionAt(r.Start).Line
	end := snap.PositionAt(r.End)
	if !r.IsEmpty() && end.Column == 0 && end.Line > startLine {
		return startLine, end.Line - 1
	}
	return startLine, end.Line
}

// selectedSlots maps selections to slot indices by line intersection. A
// cursor inside a slot picks only that slot, so members sharing a line can
// be moved one at a time.
func selectedSlots(snap *document.Snapshot, slots []scope.Slot, selections []document.Selection) []int {
	seen := make(map[int]bool)
	for _, sel := range selections {
		if sel.Anchor == sel.Active {
			if i := slotAt(slots, sel.Active); i >= 0 {
				seen[i] = true
				continue
			}
		}
		s0, s1 := lineSpan(snap, sel.Range())
		for i, slot := range slots {
			m0, m1 := lineSpan(snap, slot.Range)
			if s0 <= m1 && m0 <= s1 {
				seen[i] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func slotAt(slots []scope.Slot, offset int) int {
	for i, slot := range slots {
		if slot.Range.Start <= offset && offset < slot.Range.End {
			return i
		}
	}
	return -1
}

// primarySlot picks the slot the cursor follows: the one holding the first
// selection's active end, else the block's first slot.
func primarySlot(snap *document.Snapshot, slots []scope.Slot, selections []document.Selection, first, last int) int {
	if len(selections) == 0 {
		return first
	}
	if i := slotAt(slots, selections[0].Active); i >= first && i <= last {
		return i
	}
	line := snap.PositionAt(selections[0].Active).Line
	for i := first; i <= last; i++ {
		m0, m1 := lineSpan(snap, slots[i].Range)
		if m0 <= line && line <= m1 {
			return i
		}
	}
	return first
}
