package move

import (
	"fmt"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/navigate"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
)

// SortPlan rewrites the scope so its slots appear ordered by name. Each
// slot position receives the text of the slot that sorts into it; the
// separators between slots are untouched. ok is false when the scope is
// already in order or has fewer than two slots.
func SortPlan(snap *document.Snapshot, members []scope.Member, ascending bool) (*document.EditPlan, bool, error) {
	slots := scope.Slots(members)
	if len(slots) < 2 {
		return nil, false, nil
	}
	sorted := navigate.SortSlotsByName(slots, ascending)

	b := document.NewPlanBuilder(snap)
	changed := false
	for i, slot := range slots {
		if sorted[i].Range == slot.Range {
			continue
		}
		b.Replace(slot.Range, sorted[i].Text)
		changed = true
	}
	if !changed {
		return nil, false, nil
	}

	order := "ascending"
	if !ascending {
		order = "descending"
	}
	plan, err := b.Build(fmt.Sprintf("sort %d members %s", len(slots), order))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build sort plan: %w", err)
	}
	return plan, true, nil
}
