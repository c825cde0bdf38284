// Package navigate moves between scope members and orders them by name.
// Every function here is a pure query over a member list.
package navigate

import (
	"sort"

	"github.com/mvp-joe/cortex-refactor/internal/scope"
)

// Next returns the first member starting after offset, wrapping to the
// first member. ok is false for an empty list.
func Next(members []scope.Member, offset int) (scope.Member, bool) {
	if len(members) == 0 {
		return scope.Member{}, false
	}
	for _, m := range members {
		if m.Range.Start > offset {
			return m, true
		}
	}
	return members[0], true
}

// Previous returns the last member starting before offset, wrapping to the
// last member.
func Previous(members []scope.Member, offset int) (scope.Member, bool) {
	if len(members) == 0 {
		return scope.Member{}, false
	}
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].Range.Start < offset {
			return members[i], true
		}
	}
	return members[len(members)-1], true
}

// Current returns the member whose range contains offset.
func Current(members []scope.Member, offset int) (scope.Member, bool) {
	for _, m := range members {
		if m.Range.Start <= offset && offset <= m.Range.End {
			return m, true
		}
	}
	return scope.Member{}, false
}

// SortByName returns a stably sorted copy of members. Descending order is
// the exact reverse of ascending order, so sorting one way and then the
// other reverses the permutation even when names repeat.
func SortByName(members []scope.Member, ascending bool) []scope.Member {
	out := make([]scope.Member, len(members))
	copy(out, members)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	if !ascending {
		reverse(out)
	}
	return out
}

// SortSlotsByName orders slots by their first declared name, with the same
// direction rule as SortByName.
func SortSlotsByName(slots []scope.Slot, ascending bool) []scope.Slot {
	out := make([]scope.Slot, len(slots))
	copy(out, slots)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	if !ascending {
		reverse(out)
	}
	return out
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
