package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cortex-refactor/internal/config"
	"github.com/mvp-joe/cortex-refactor/internal/engine"
	"github.com/mvp-joe/cortex-refactor/internal/extract"
)

// Test Plan for MCP tools:
// - every handler binds arguments, runs the engine and returns JSON
// - positions are accepted as offsets or 1-based line/column
// - string encoded numbers and booleans are coerced
// - the path argument selects the dialect when dialect is omitted
// - engine sentinels become tool errors; other errors fail the request
// - missing source and bad directions are tool errors

const counter = `class Counter {
    reset() {
        this.n = 0;
    }

    add(x: number) {
        this.n += x;
    }
}
`

func newTools(t *testing.T) *toolSet {
	t.Helper()
	m, err := config.Default().NewDialectMatcher()
	require.NoError(t, err)
	return &toolSet{engine: engine.New(), matcher: m}
}

func call(t *testing.T, h toolHandler, args map[string]any) (*mcp.CallToolResult, string) {
	t.Helper()
	result, err := h(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok, "content should be text")
	return result, text.Text
}

func TestResolveHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	result, body := call(t, ts.resolveHandler(), map[string]any{
		"source": counter,
		"offset": float64(strings.Index(counter, "add")),
		"kinds":  []any{"function"},
	})
	require.False(t, result.IsError, body)

	var el engine.Element
	require.NoError(t, json.Unmarshal([]byte(body), &el))
	assert.Equal(t, "function", string(el.Kind))
	assert.True(t, strings.HasPrefix(el.Text, "add(x: number)"))
}

func TestResolveHandler_LineColumnAndStringArgs(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	// Line 2, column 5 is the "r" of reset.
	result, body := call(t, ts.resolveHandler(), map[string]any{
		"source": counter,
		"line":   "2",
		"column": "5",
		"kinds":  `["function"]`,
	})
	require.False(t, result.IsError, body)
	assert.Contains(t, body, `"text":"reset() {`)
}

func TestMembersHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	result, body := call(t, ts.membersHandler(), map[string]any{
		"source": counter,
		"offset": float64(strings.Index(counter, "add")),
	})
	require.False(t, result.IsError, body)

	var resp MembersResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "reset", resp.Members[0].Name)
	assert.Equal(t, "add", resp.Members[1].Name)
}

func TestNavigateHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	_, body := call(t, ts.navigateHandler(), map[string]any{
		"source":    counter,
		"offset":    float64(strings.Index(counter, "reset")),
		"direction": "next",
	})
	assert.Contains(t, body, `"name":"add"`)

	// Previous from the first member wraps to the last.
	_, body = call(t, ts.navigateHandler(), map[string]any{
		"source":    counter,
		"offset":    float64(strings.Index(counter, "reset")),
		"direction": "previous",
	})
	assert.Contains(t, body, `"name":"add"`)

	result, _ := call(t, ts.navigateHandler(), map[string]any{
		"source":    counter,
		"offset":    float64(0),
		"direction": "sideways",
	})
	assert.True(t, result.IsError)
}

func TestMoveHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	result, body := call(t, ts.moveHandler(), map[string]any{
		"source":    counter,
		"offset":    float64(strings.Index(counter, "reset")),
		"direction": "down",
	})
	require.False(t, result.IsError, body)

	var resp MoveResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.True(t, resp.Applied)
	assert.Less(t, strings.Index(resp.Text, "add("), strings.Index(resp.Text, "reset("))
	assert.Equal(t, strings.Index(resp.Text, "reset"), resp.Relocation.Offset)
	assert.Empty(t, resp.Warning)
}

func TestMoveHandler_Boundary(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	_, body := call(t, ts.moveHandler(), map[string]any{
		"source":    counter,
		"offset":    float64(strings.Index(counter, "reset")),
		"direction": "up",
	})
	var resp MoveResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.False(t, resp.Applied)
	assert.NotEmpty(t, resp.Reason)
	assert.Empty(t, resp.Text)
}

func TestSortHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	_, body := call(t, ts.sortHandler(), map[string]any{
		"source": counter,
		"offset": float64(strings.Index(counter, "reset")),
	})
	var resp SortResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.True(t, resp.Changed)
	assert.Less(t, strings.Index(resp.Text, "add("), strings.Index(resp.Text, "reset("))

	// Descending keeps the current order.
	_, body = call(t, ts.sortHandler(), map[string]any{
		"source":     counter,
		"offset":     float64(strings.Index(counter, "reset")),
		"descending": "true",
	})
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.False(t, resp.Changed)
}

func TestExtractHandler(t *testing.T) {
	t.Parallel()
	ts := newTools(t)
	src := "function f(a){ let x=0; for (const i of a){ x += i; } return x; }"
	sel := "for (const i of a){ x += i; }"
	start := strings.Index(src, sel)

	result, body := call(t, ts.extractHandler(), map[string]any{
		"source": src,
		"path":   "src/sum.js",
		"offset": float64(start),
		"end":    float64(start + len(sel)),
	})
	require.False(t, result.IsError, body)

	var resp struct {
		extract.Result
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "extracted", resp.FunctionName)
	// The .js path selects the untyped dialect.
	assert.Contains(t, resp.Text, "function extracted(a, x) {")
	assert.Contains(t, resp.Text, "x = extracted(a, x);")
}

func TestExtractHandler_Errors(t *testing.T) {
	t.Parallel()
	ts := newTools(t)

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing source", map[string]any{"offset": float64(0), "end": float64(1)}, "source parameter is required"},
		{"bad name", map[string]any{"source": "let a = 1;", "offset": float64(0), "end": float64(10), "name": "class"}, "reserved word"},
		{"offset outside buffer", map[string]any{"source": "let a = 1;", "offset": float64(99), "end": float64(100)}, "outside buffer"},
		{"bad dialect", map[string]any{"source": "let a = 1;", "dialect": "cobol", "offset": float64(0), "end": float64(1)}, "unknown dialect"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, body := call(t, ts.extractHandler(), tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestToolError(t *testing.T) {
	t.Parallel()

	result, err := toolError(engine.ErrNoScopeFound)
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = toolError(context.Canceled)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestBindArguments_RejectsNonMap(t *testing.T) {
	t.Parallel()
	var args BufferArgs
	err := bindArguments(mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: "nope"}}, &args)
	assert.Error(t, err)
}

func TestNewServer(t *testing.T) {
	t.Parallel()
	s, err := NewServer(engine.New(), nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, s.mcp)

	_, err = NewServer(nil, nil, nil)
	assert.Error(t, err)
}
