package scope

import "github.com/mvp-joe/cortex-refactor/internal/document"

// Slot is a distinct member range. Statements that declare several names
// produce several members sharing one range; they occupy a single slot and
// always move together.
type Slot struct {
	Range   document.Range
	Text    string
	Members []Member
}

// Name returns the first declared name in the slot.
func (s Slot) Name() string {
	if len(s.Members) == 0 {
		return ""
	}
	return s.Members[0].Name
}

// Slots groups sorted members by identical range.
func Slots(members []Member) []Slot {
	var out []Slot
	for _, m := range members {
		if n := len(out); n > 0 && out[n-1].Range == m.Range {
			out[n-1].Members = append(out[n-1].Members, m)
			continue
		}
		out = append(out, Slot{Range: m.Range, Text: m.Text, Members: []Member{m}})
	}
	return out
}
