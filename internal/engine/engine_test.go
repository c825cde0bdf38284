package engine

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/move"
	"github.com/mvp-joe/cortex-refactor/internal/resolve"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/mvp-joe/cortex-refactor/internal/typeinfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Engine:
// - ResolveElementRange returns the accepted range over a name and ErrNoElementFound elsewhere
// - ScopeMembers is ordered by start offset
// - NextMember and PreviousMember wrap around the scope
// - MoveMember down then up through a Buffer restores the text byte for byte
// - MoveMember at a boundary reports not applied and changes nothing
// - MoveMember in a single-member scope returns ErrEmptyScope
// - SortMembers sorts and reports already sorted scopes with a nil plan
// - ExtractToFunction produces an applicable plan and maps errors to sentinels
// - The logger receives debug records and the oracle is consulted

const service = `export class Service {
  start() {
    this.ready = true;
  }

  stop() {
    this.ready = false;
  }

  status() {
    return this.ready;
  }
}
`

func snapshot(src string) *document.Snapshot {
	return document.NewSnapshot(src, syntax.TypeScript)
}

func TestEngine_ResolveElementRange(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()
	snap := snapshot(service)

	el, err := e.ResolveElementRange(ctx, snap, strings.Index(service, "stop"), []resolve.ElementKind{resolve.Function})
	require.NoError(t, err)
	assert.Equal(t, resolve.Function, el.Kind)
	assert.True(t, strings.HasPrefix(el.Text, "stop() {"))

	again, err := e.ResolveElementRange(ctx, snap, strings.Index(service, "stop"), []resolve.ElementKind{resolve.Function})
	require.NoError(t, err)
	assert.Equal(t, el, again)

	_, err = e.ResolveElementRange(ctx, snap, strings.Index(service, "true"), []resolve.ElementKind{resolve.Function, resolve.Class})
	assert.ErrorIs(t, err, ErrNoElementFound)
}

func TestEngine_Navigation(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()
	snap := snapshot(service)

	members, err := e.ScopeMembers(ctx, snap, strings.Index(service, "stop"))
	require.NoError(t, err)
	require.Len(t, members, 3)
	for i := 1; i < len(members); i++ {
		assert.LessOrEqual(t, members[i-1].Range.Start, members[i].Range.Start)
	}

	next, err := e.NextMember(ctx, snap, members[2].Range.Start)
	require.NoError(t, err)
	assert.Equal(t, "start", next.Name, "wraps to the first member")

	prev, err := e.PreviousMember(ctx, snap, members[0].Range.Start)
	require.NoError(t, err)
	assert.Equal(t, "status", prev.Name, "wraps to the last member")
}

func TestEngine_MoveDownThenUp(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()
	buf := document.NewBuffer(service, syntax.TypeScript)
	buf.SetSelections(document.Cursor(strings.Index(service, "start")))

	down, err := e.MoveMember(ctx, buf.Snapshot(), buf.Selections(), move.Down)
	require.NoError(t, err)
	require.True(t, down.Applied)
	require.NoError(t, buf.Apply(down.Plan))
	buf.SetSelections(down.Selections...)

	assert.NotEqual(t, service, buf.Text())
	assert.Less(t, strings.Index(buf.Text(), "stop()"), strings.Index(buf.Text(), "start()"))
	assert.Equal(t, "start", buf.Text()[down.Relocation.Offset:down.Relocation.Offset+len("start")])
	assert.NoError(t, down.Warning)

	up, err := e.MoveMember(ctx, buf.Snapshot(), buf.Selections(), move.Up)
	require.NoError(t, err)
	require.True(t, up.Applied)
	require.NoError(t, buf.Apply(up.Plan))
	assert.Equal(t, service, buf.Text())
}

func TestEngine_MoveBoundary(t *testing.T) {
	t.Parallel()

	e := New()
	buf := document.NewBuffer(service, syntax.TypeScript)

	res, err := e.MoveMember(context.Background(), buf.Snapshot(), []document.Selection{document.Cursor(strings.Index(service, "status"))}, move.Down)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Nil(t, res.Plan)
	assert.Equal(t, string(move.ReasonBoundary), res.Reason)
	assert.Equal(t, service, buf.Text())

	single := "function only() {}\n"
	_, err = e.MoveMember(context.Background(), snapshot(single), []document.Selection{document.Cursor(2)}, move.Up)
	assert.ErrorIs(t, err, ErrEmptyScope)
}

func TestEngine_SortMembers(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()
	buf := document.NewBuffer(service, syntax.TypeScript)
	offset := strings.Index(service, "stop")

	plan, err := e.SortMembers(ctx, buf.Snapshot(), offset, true)
	require.NoError(t, err)
	require.NotNil(t, plan)
	require.NoError(t, buf.Apply(plan))

	members, err := e.ScopeMembers(ctx, buf.Snapshot(), strings.Index(buf.Text(), "stop"))
	require.NoError(t, err)
	assert.Equal(t, []string{"start", "status", "stop"}, []string{members[0].Name, members[1].Name, members[2].Name})

	plan, err = e.SortMembers(ctx, buf.Snapshot(), strings.Index(buf.Text(), "stop"), true)
	require.NoError(t, err)
	assert.Nil(t, plan)
}

func TestEngine_ExtractToFunction(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	oracle := typeinfer.OracleFunc(func(tree *syntax.Tree, node syntax.NodeID) (string, bool) {
		if tree.Text(node) == "total" {
			return "true | false", true
		}
		return "", false
	})
	e := New(WithLogger(logger), WithOracle(oracle), WithDefaultFunctionName("helper"))

	src := "function run() {\n  let total = compute();\n  console.log(total);\n}\n"
	buf := document.NewBuffer(src, syntax.TypeScript)
	selText := "console.log(total);"
	start := strings.Index(src, selText)

	res, err := e.ExtractToFunction(context.Background(), buf.Snapshot(), document.Range{Start: start, End: start + len(selText)}, "")
	require.NoError(t, err)
	assert.Equal(t, "helper", res.FunctionName)
	require.Len(t, res.Parameters, 1)
	assert.Equal(t, "boolean", res.Parameters[0].Type)

	require.NoError(t, buf.Apply(res.Plan))
	assert.Contains(t, buf.Text(), "function helper(total: boolean): void {\n    console.log(total);\n}\n\nfunction run() {")
	assert.Contains(t, buf.Text(), "  helper(total);\n")
	assert.Contains(t, logs.String(), "extracted function")
	assert.Contains(t, logs.String(), "console")
}

func TestEngine_ExtractErrors(t *testing.T) {
	t.Parallel()

	e := New()
	ctx := context.Background()
	src := "function run() {\n  go(1);\n}\n"
	snap := snapshot(src)
	start := strings.Index(src, "go(1);")

	_, err := e.ExtractToFunction(ctx, snap, document.Range{Start: start, End: start + 6}, "do")
	assert.ErrorIs(t, err, ErrInvalidFunctionName)

	_, err = e.ExtractToFunction(ctx, snap, document.Range{Start: start, End: start + 4}, "ok")
	assert.ErrorIs(t, err, ErrParseFailure)

	_, err = e.ExtractToFunction(ctx, snap, document.Range{Start: start, End: start}, "ok")
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = e.ExtractToFunction(ctx, snap, document.Range{Start: start, End: start + 6}, "run")
	assert.ErrorIs(t, err, ErrNameConflict)

	src = "function run(a: number) {\n  go(a + 1 * 2);\n}\n"
	start = strings.Index(src, "a + 1")
	_, err = e.ExtractToFunction(ctx, snapshot(src), document.Range{Start: start, End: start + 5}, "ok")
	assert.ErrorIs(t, err, ErrUnsupportedSelection)
}
