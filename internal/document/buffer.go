package document

import "github.com/mvp-joe/cortex-refactor/internal/syntax"

// Buffer is an in-memory host buffer: current text, dialect and selections.
// CLI and MCP hosts use it to apply edit plans; tests use it as the editor.
type Buffer struct {
	text       string
	dialect    syntax.Dialect
	selections []Selection
}

// NewBuffer creates a buffer with a cursor at offset 0.
func NewBuffer(text string, dialect syntax.Dialect) *Buffer {
	return &Buffer{text: text, dialect: dialect, selections: []Selection{Cursor(0)}}
}

// Text returns the current full text.
func (b *Buffer) Text() string {
	return b.text
}

// Snapshot captures the current text.
func (b *Buffer) Snapshot() *Snapshot {
	return NewSnapshot(b.text, b.dialect)
}

// Selections returns a copy of the current selections.
func (b *Buffer) Selections() []Selection {
	out := make([]Selection, len(b.selections))
	copy(out, b.selections)
	return out
}

// SetSelections replaces the current selections.
func (b *Buffer) SetSelections(sel ...Selection) {
	b.selections = append([]Selection(nil), sel...)
}

// Apply applies plan atomically. On error the text is unchanged.
func (b *Buffer) Apply(plan *EditPlan) error {
	text, err := plan.Apply(b.Snapshot())
	if err != nil {
		return err
	}
	b.text = text
	return nil
}
