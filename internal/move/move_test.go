package move

import (
	"context"
	"strings"
	"testing"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for MemberMover:
// - Moving a member down swaps it with the next member and predicts its new offset
// - Moving down then up restores the original text byte for byte
// - Moving at a scope boundary is not applied and leaves the text untouched
// - A selection spanning several members moves them as one block
// - Non-contiguous selections and scopes with one member are not applied
// - Co-declared names share a slot and move together
// - Doc comments travel with the member they describe
// - Relocation uses the line search, then the tree, then the line start fallback
// - SortPlan orders slots by name and reports already sorted scopes

const three = "function a() {\n  return 1;\n}\n\nfunction b() {\n  return 2;\n}\n\nfunction c() {}\n"

func topLevel(t *testing.T, src string) (*document.Snapshot, []scope.Member) {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), []byte(src), syntax.TypeScript)
	require.NoError(t, err)
	return document.NewSnapshot(src, syntax.TypeScript), scope.ListMembers(tree, tree.Root())
}

func cursorAt(t *testing.T, src, needle string) document.Selection {
	t.Helper()
	i := strings.Index(src, needle)
	require.GreaterOrEqual(t, i, 0)
	return document.Cursor(i)
}

func TestPlan_DownThenUpRestores(t *testing.T) {
	t.Parallel()

	snap, members := topLevel(t, three)
	res, err := Plan(snap, members, []document.Selection{cursorAt(t, three, "a()")}, Down)
	require.NoError(t, err)
	require.True(t, res.Applied)

	assert.True(t, strings.HasPrefix(res.Text, "function b() {"))
	assert.Equal(t, "a", res.Target.Name)
	assert.Equal(t, 4, res.Target.ExpectedLine)
	assert.True(t, strings.HasPrefix(res.Text[res.Target.ExpectedOffset:], "function a()"))

	reloc := Relocate(context.Background(), res.Text, syntax.TypeScript, res.Target, DefaultWindow)
	assert.Equal(t, MethodText, reloc.Method)
	assert.Equal(t, "a", res.Text[reloc.Offset:reloc.Offset+1])

	snap2, members2 := topLevel(t, res.Text)
	back, err := Plan(snap2, members2, []document.Selection{document.Cursor(reloc.Offset)}, Up)
	require.NoError(t, err)
	require.True(t, back.Applied)
	assert.Equal(t, three, back.Text)
}

func TestPlan_Boundary(t *testing.T) {
	t.Parallel()

	snap, members := topLevel(t, three)

	res, err := Plan(snap, members, []document.Selection{cursorAt(t, three, "a()")}, Up)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, ReasonBoundary, res.Reason)
	assert.Nil(t, res.Plan)

	res, err = Plan(snap, members, []document.Selection{cursorAt(t, three, "c()")}, Down)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Equal(t, ReasonBoundary, res.Reason)
}

func TestPlan_Block(t *testing.T) {
	t.Parallel()

	snap, members := topLevel(t, three)
	sel := document.Selection{Anchor: 0, Active: strings.Index(three, "return 2")}

	res, err := Plan(snap, members, []document.Selection{sel}, Down)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, 0, res.First)
	assert.Equal(t, 1, res.Last)
	assert.Equal(t, "function c() {}\n\nfunction a() {\n  return 1;\n}\n\nfunction b() {\n  return 2;\n}\n", res.Text)
	assert.Equal(t, "b", res.Target.Name, "cursor follows the active end")
}

func TestPlan_NotApplied(t *testing.T) {
	t.Parallel()

	snap, members := topLevel(t, three)
	res, err := Plan(snap, members, []document.Selection{cursorAt(t, three, "a()"), cursorAt(t, three, "c()")}, Down)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotContiguous, res.Reason)

	single := "function only() {}\n"
	snap, members = topLevel(t, single)
	res, err = Plan(snap, members, []document.Selection{document.Cursor(3)}, Down)
	require.NoError(t, err)
	assert.Equal(t, ReasonTooFewMembers, res.Reason)
}

func TestPlan_SharedSlot(t *testing.T) {
	t.Parallel()

	src := "const x = 1, y = 2;\nfunction f() {}\n"
	snap, members := topLevel(t, src)
	require.Len(t, members, 3)

	res, err := Plan(snap, members, []document.Selection{cursorAt(t, src, "y =")}, Down)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, "function f() {}\nconst x = 1, y = 2;\n", res.Text)
}

func TestRelocate_Methods(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	src := "const o = { alpha: 1, beta: 2 };\n"
	reloc := Relocate(ctx, src, syntax.TypeScript, Target{Name: "beta", ExpectedLine: 0}, 3)
	assert.Equal(t, MethodTree, reloc.Method)
	assert.Equal(t, strings.Index(src, "beta"), reloc.Offset)

	reloc = Relocate(ctx, "a\nb\n", syntax.TypeScript, Target{Name: "missing", ExpectedLine: 1}, 3)
	assert.Equal(t, MethodFallback, reloc.Method)
	assert.Equal(t, 2, reloc.Offset)
	assert.Equal(t, 1, reloc.Line)
}

func TestRelocate_PrefersNearestLine(t *testing.T) {
	t.Parallel()

	src := "function run() {}\n\n\n\nfunction run() {}\n"
	reloc := Relocate(context.Background(), src, syntax.TypeScript, Target{Name: "run", ExpectedLine: 3}, 5)
	assert.Equal(t, MethodText, reloc.Method)
	assert.Equal(t, 4, reloc.Line)
}

func TestSortPlan(t *testing.T) {
	t.Parallel()

	src := "function b() {}\nfunction a() {}\nfunction c() {}\n"
	snap, members := topLevel(t, src)

	plan, ok, err := SortPlan(snap, members, true)
	require.NoError(t, err)
	require.True(t, ok)
	text, err := plan.Apply(snap)
	require.NoError(t, err)
	assert.Equal(t, "function a() {}\nfunction b() {}\nfunction c() {}\n", text)

	snap, members = topLevel(t, text)
	_, ok, err = SortPlan(snap, members, true)
	require.NoError(t, err)
	assert.False(t, ok, "already sorted")
}

func TestParseDirection(t *testing.T) {
	t.Parallel()

	d, err := ParseDirection("Down")
	require.NoError(t, err)
	assert.Equal(t, Down, d)
	assert.Equal(t, "up", Up.String())

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestPlan_MovesDocComments(t *testing.T) {
	t.Parallel()

	src := "/** First. */\nfunction a() {}\n\n// Second.\nfunction b() {}\n"
	snap, members := topLevel(t, src)
	res, err := Plan(snap, members, []document.Selection{cursorAt(t, src, "a()")}, Down)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, "// Second.\nfunction b() {}\n\n/** First. */\nfunction a() {}\n", res.Text)

	reloc := Relocate(context.Background(), res.Text, syntax.TypeScript, res.Target, DefaultWindow)
	assert.Equal(t, "a", res.Text[reloc.Offset:reloc.Offset+1])
}
