package document

import (
	"testing"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for UnifiedDiff:
// - A single replacement produces one hunk with file headers
// - Edits on separate lines produce separate hunks
// - Edits sharing a line are merged into one hunk
// - New line numbers account for lines added by earlier hunks
// - A missing final newline is marked
// - A stale plan is refused

func buildPlan(t *testing.T, snap *Snapshot, edits ...Edit) *EditPlan {
	t.Helper()
	b := NewPlanBuilder(snap)
	for _, e := range edits {
		b.Replace(e.Range, e.NewText)
	}
	plan, err := b.Build("test")
	require.NoError(t, err)
	return plan
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		edits []Edit
		want  string
	}{
		{
			name:  "single line",
			text:  "a\nb\nc\n",
			edits: []Edit{{Range: Range{Start: 2, End: 3}, NewText: "B"}},
			want:  "@@ -2,1 +2,1 @@\n-b\n+B\n",
		},
		{
			name: "swap",
			text: "aaa\nbbb\n",
			edits: []Edit{
				{Range: Range{Start: 0, End: 3}, NewText: "bbb"},
				{Range: Range{Start: 4, End: 7}, NewText: "aaa"},
			},
			want: "@@ -1,1 +1,1 @@\n-aaa\n+bbb\n@@ -2,1 +2,1 @@\n-bbb\n+aaa\n",
		},
		{
			name: "shared line",
			text: "x = 1;\n",
			edits: []Edit{
				{Range: Range{Start: 0, End: 0}, NewText: "function f() {}\n"},
				{Range: Range{Start: 0, End: 6}, NewText: "y = f();"},
			},
			want: "@@ -1,1 +1,2 @@\n-x = 1;\n+function f() {}\n+y = f();\n",
		},
		{
			name: "shifted",
			text: "a\nb\nc\n",
			edits: []Edit{
				{Range: Range{Start: 0, End: 0}, NewText: "z\n"},
				{Range: Range{Start: 4, End: 5}, NewText: "C"},
			},
			want: "@@ -1,1 +1,2 @@\n-a\n+z\n+a\n@@ -3,1 +4,1 @@\n-c\n+C\n",
		},
		{
			name:  "no final newline",
			text:  "a",
			edits: []Edit{{Range: Range{Start: 0, End: 1}, NewText: "b"}},
			want:  "-a\n\\ No newline at end of file\n+b\n\\ No newline at end of file\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := NewSnapshot(tt.text, syntax.TypeScript)
			out, err := buildPlan(t, snap, tt.edits...).UnifiedDiff(snap, "src/x.ts")
			require.NoError(t, err)
			assert.Contains(t, out, "--- a/src/x.ts")
			assert.Contains(t, out, "+++ b/src/x.ts")
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestUnifiedDiff_Stale(t *testing.T) {
	t.Parallel()

	snap := NewSnapshot("a\n", syntax.TypeScript)
	plan := buildPlan(t, snap, Edit{Range: Range{Start: 0, End: 1}, NewText: "b"})

	_, err := plan.UnifiedDiff(NewSnapshot("c\n", syntax.TypeScript), "x.ts")
	assert.ErrorIs(t, err, ErrStaleSnapshot)
}
