package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrStaleSnapshot indicates a plan computed against different text.
	ErrStaleSnapshot = errors.New("edit plan does not match buffer snapshot")

	// ErrOverlappingEdits indicates two replacements touch the same bytes.
	ErrOverlappingEdits = errors.New("overlapping edits")

	// ErrEditOutOfRange indicates a replacement outside the buffer.
	ErrEditOutOfRange = errors.New("edit out of range")
)

// Edit replaces the bytes in Range with NewText.
type Edit struct {
	Range   Range  `json:"range"`
	NewText string `json:"new_text"`
}

// EditPlan is one logical operation: every edit is computed against the
// same snapshot and must be applied together or not at all.
type EditPlan struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Fingerprint uint64 `json:"fingerprint"`
	Edits       []Edit `json:"edits"`
}

// PlanBuilder accumulates edits against one snapshot.
type PlanBuilder struct {
	snapshot *Snapshot
	edits    []Edit
}

// NewPlanBuilder starts a plan against snapshot.
func NewPlanBuilder(snapshot *Snapshot) *PlanBuilder {
	return &PlanBuilder{snapshot: snapshot}
}

// Replace adds an edit that replaces r with text.
func (b *PlanBuilder) Replace(r Range, text string) *PlanBuilder {
	b.edits = append(b.edits, Edit{Range: r, NewText: text})
	return b
}

// Insert adds an edit that inserts text at offset.
func (b *PlanBuilder) Insert(offset int, text string) *PlanBuilder {
	return b.Replace(Range{Start: offset, End: offset}, text)
}

// Build validates the edits and returns the plan, sorted by start offset.
func (b *PlanBuilder) Build(description string) (*EditPlan, error) {
	edits := make([]Edit, len(b.edits))
	copy(edits, b.edits)
	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i].Range, edits[j].Range
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		// An insertion sorts before a replacement starting at the same offset.
		return a.IsEmpty() && !b.IsEmpty()
	})
	if err := validateEdits(edits, len(b.snapshot.Text)); err != nil {
		return nil, err
	}
	return &EditPlan{
		ID:          uuid.New().String(),
		Description: description,
		Fingerprint: b.snapshot.Fingerprint(),
		Edits:       edits,
	}, nil
}

// Apply returns the text produced by applying every edit of the plan to
// snapshot. Nothing is applied when validation fails.
func (p *EditPlan) Apply(snapshot *Snapshot) (string, error) {
	if p.Fingerprint != snapshot.Fingerprint() {
		return "", ErrStaleSnapshot
	}
	if err := validateEdits(p.Edits, len(snapshot.Text)); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(snapshot.Text))
	last := 0
	for _, e := range p.Edits {
		sb.WriteString(snapshot.Text[last:e.Range.Start])
		sb.WriteString(e.NewText)
		last = e.Range.End
	}
	sb.WriteString(snapshot.Text[last:])
	return sb.String(), nil
}

// validateEdits expects edits sorted by start offset.
func validateEdits(edits []Edit, size int) error {
	for i, e := range edits {
		if e.Range.Start < 0 || e.Range.End > size || e.Range.Start > e.Range.End {
			return fmt.Errorf("%w: [%d,%d) in buffer of %d bytes", ErrEditOutOfRange, e.Range.Start, e.Range.End, size)
		}
		if i == 0 {
			continue
		}
		prev := edits[i-1].Range
		if prev.End > e.Range.Start || (prev.Start == e.Range.Start && prev.IsEmpty() && e.Range.IsEmpty()) {
			return fmt.Errorf("%w: [%d,%d) and [%d,%d)", ErrOverlappingEdits, prev.Start, prev.End, e.Range.Start, e.Range.End)
		}
	}
	return nil
}
