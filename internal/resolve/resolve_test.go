package resolve

import (
	"context"
	"strings"
	"testing"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for ResolveElement:
// - A declaration resolves only when the cursor is over its name
// - Offsets inside a body never resolve to the enclosing function
// - Calls resolve over the callee or the member name, widening to the statement
// - Exported declarations widen to the export statement
// - Destructured variables resolve via any bound identifier
// - Nested object literals resolve to the innermost property under the cursor
// - Multiline strings resolve by containment, single-line ones do not
// - Markup resolves over the opening or closing tag only
// - Resolution is idempotent for an unchanged tree
// - Offsets outside any construct resolve to nothing

func parse(t *testing.T, src string, dialect syntax.Dialect) *syntax.Tree {
	t.Helper()
	tree, err := syntax.Parse(context.Background(), []byte(src), dialect)
	require.NoError(t, err)
	return tree
}

// at returns the offset of the first occurrence of needle plus delta.
func at(t *testing.T, src, needle string, delta int) int {
	t.Helper()
	i := strings.Index(src, needle)
	require.GreaterOrEqual(t, i, 0, "needle %q", needle)
	return i + delta
}

func resolvedText(tree *syntax.Tree, m Match) string {
	return string(tree.Source[m.Range.Start:m.Range.End])
}

const sample = `export class Greeter {
  greet(name: string) {
    console.log(name);
    return helper(name);
  }
}

const { first, second } = pair;

function helper(value: string) {
  return value.trim();
}
`

func TestResolveElement_Declarations(t *testing.T) {
	t.Parallel()

	tree := parse(t, sample, syntax.TypeScript)

	tests := []struct {
		name   string
		offset int
		kinds  []ElementKind
		kind   ElementKind
		prefix string
	}{
		{"class name widens to export", at(t, sample, "Greeter", 2), []ElementKind{Class}, Class, "export class Greeter"},
		{"method name", at(t, sample, "greet(", 1), []ElementKind{Function}, Function, "greet(name: string)"},
		{"cursor just after name", at(t, sample, "helper(value", len("helper")), []ElementKind{Function}, Function, "function helper"},
		{"destructured variable", at(t, sample, "second", 3), []ElementKind{Variable}, Variable, "const { first, second } = pair;"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, ok := ResolveElement(tree, tt.offset, tt.kinds)
			require.True(t, ok)
			assert.Equal(t, tt.kind, m.Kind)
			assert.True(t, strings.HasPrefix(resolvedText(tree, m), tt.prefix), resolvedText(tree, m))
		})
	}
}

func TestResolveElement_ContainmentIsNotEnough(t *testing.T) {
	t.Parallel()

	tree := parse(t, sample, syntax.TypeScript)

	_, ok := ResolveElement(tree, at(t, sample, "console", 2), []ElementKind{Function, Class})
	assert.False(t, ok)

	// The object of a member call is not the callee name.
	_, ok = ResolveElement(tree, at(t, sample, "console", 2), []ElementKind{Call})
	assert.False(t, ok)
}

func TestResolveElement_Calls(t *testing.T) {
	t.Parallel()

	tree := parse(t, sample, syntax.TypeScript)

	m, ok := ResolveElement(tree, at(t, sample, "log", 1), []ElementKind{Call})
	require.True(t, ok)
	assert.Equal(t, "console.log(name);", resolvedText(tree, m))

	m, ok = ResolveElement(tree, at(t, sample, "helper(name", 2), []ElementKind{Call})
	require.True(t, ok)
	assert.Equal(t, "helper(name)", resolvedText(tree, m))

	_, ok = ResolveElement(tree, at(t, sample, "(name)", 2), []ElementKind{Call})
	assert.False(t, ok)
}

func TestResolveElement_NestedProperties(t *testing.T) {
	t.Parallel()

	src := "const cfg = {\n  outer: {\n    inner: 1,\n  },\n};\n"
	tree := parse(t, src, syntax.TypeScript)

	m, ok := ResolveElement(tree, at(t, src, "inner", 1), []ElementKind{Property})
	require.True(t, ok)
	assert.Equal(t, "inner: 1", resolvedText(tree, m))

	m, ok = ResolveElement(tree, at(t, src, "outer", 1), []ElementKind{Property})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(resolvedText(tree, m), "outer: {"))

	// Over the value, not the key: falls through to nothing.
	_, ok = ResolveElement(tree, at(t, src, "1,", 0), []ElementKind{Property})
	assert.False(t, ok)
}

func TestResolveElement_MultilineString(t *testing.T) {
	t.Parallel()

	src := "const q = `select *\nfrom t`;\nconst s = \"one\";\n"
	tree := parse(t, src, syntax.TypeScript)

	m, ok := ResolveElement(tree, at(t, src, "from", 0), []ElementKind{MultilineString})
	require.True(t, ok)
	assert.Equal(t, "`select *\nfrom t`", resolvedText(tree, m))

	_, ok = ResolveElement(tree, at(t, src, "one", 1), []ElementKind{MultilineString})
	assert.False(t, ok)
}

func TestResolveElement_Markup(t *testing.T) {
	t.Parallel()

	src := "const el = (\n  <div>\n    <span>text</span>\n  </div>\n);\n"
	tree := parse(t, src, syntax.TSX)

	m, ok := ResolveElement(tree, at(t, src, "span", 1), []ElementKind{Markup})
	require.True(t, ok)
	assert.Equal(t, "<span>text</span>", resolvedText(tree, m))

	m, ok = ResolveElement(tree, at(t, src, "/div", 2), []ElementKind{Markup})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(resolvedText(tree, m), "<div>"))

	_, ok = ResolveElement(tree, at(t, src, "text", 1), []ElementKind{Markup})
	assert.False(t, ok)
}

func TestResolveElement_IdempotentAndEmpty(t *testing.T) {
	t.Parallel()

	tree := parse(t, sample, syntax.TypeScript)
	offset := at(t, sample, "helper(value", 3)

	first, ok := ResolveElement(tree, offset, AllKinds)
	require.True(t, ok)
	second, ok := ResolveElement(tree, offset, AllKinds)
	require.True(t, ok)
	assert.Equal(t, first, second)

	blank := at(t, sample, "\n\nconst", 1)
	_, ok = ResolveElement(tree, blank, AllKinds)
	assert.False(t, ok)

	_, ok = ResolveElement(tree, offset, nil)
	assert.False(t, ok)
}

func TestParseElementKinds(t *testing.T) {
	t.Parallel()

	kinds, err := ParseElementKinds("")
	require.NoError(t, err)
	assert.Equal(t, AllKinds, kinds)

	kinds, err = ParseElementKinds("Call, function")
	require.NoError(t, err)
	assert.Equal(t, []ElementKind{Call, Function}, kinds)

	_, err = ParseElementKinds("widget")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "did you mean")

	_, err = ParseElementKinds("fucntion")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "function"?`)
}
