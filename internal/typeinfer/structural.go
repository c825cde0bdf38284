package typeinfer

import (
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// callResults maps well known callee names to their result types.
var callResults = map[string]string{
	// element lookup
	"getElementById":         "HTMLElement | null",
	"querySelector":          "Element | null",
	"querySelectorAll":       "NodeListOf<Element>",
	"getElementsByClassName": "HTMLCollectionOf<Element>",
	"getElementsByTagName":   "HTMLCollectionOf<Element>",
	"createElement":          "HTMLElement",
	"closest":                "Element | null",

	// collection querying
	"filter":    "any[]",
	"map":       "any[]",
	"slice":     "any[]",
	"concat":    "any[]",
	"flat":      "any[]",
	"flatMap":   "any[]",
	"keys":      "string[]",
	"entries":   "[string, any][]",
	"includes":  "boolean",
	"some":      "boolean",
	"every":     "boolean",
	"has":       "boolean",
	"isArray":   "boolean",
	"indexOf":   "number",
	"findIndex": "number",
	"join":      "string",

	// network requests
	"fetch": "Promise<Response>",
	"json":  "Promise<any>",
	"text":  "Promise<string>",

	// data parsing
	"parseInt":    "number",
	"parseFloat":  "number",
	"Number":      "number",
	"String":      "string",
	"Boolean":     "boolean",
	"stringify":   "string",
	"toString":    "string",
	"toFixed":     "string",
	"trim":        "string",
	"toUpperCase": "string",
	"toLowerCase": "string",
	"now":         "number",
}

// callResultsByQualifiedName overrides callResults for specific receivers.
var callResultsByQualifiedName = map[string]string{
	"Object.keys":   "string[]",
	"Object.values": "any[]",
	"JSON.parse":    Any,
	"Date.now":      "number",
	"Math.floor":    "number",
	"Math.round":    "number",
	"Math.max":      "number",
	"Math.min":      "number",
	"Array.from":    "any[]",
}

func (in *Inferencer) expression(tree *syntax.Tree, expr syntax.NodeID, depth int) string {
	n := tree.Node(expr)
	if n == nil {
		return Any
	}
	switch n.Kind {
	case syntax.KindNumber:
		return "number"
	case syntax.KindString, syntax.KindTemplateString:
		return "string"
	case syntax.KindTrue, syntax.KindFalse:
		return "boolean"
	case syntax.KindNull:
		return "null"
	case syntax.KindUndefined:
		return "undefined"
	case syntax.KindRegex:
		return "RegExp"
	case syntax.KindArray:
		return in.array(tree, expr, depth)
	case syntax.KindObject:
		return in.object(tree, expr, depth)
	case syntax.KindNewExpression:
		ctor := tree.ChildByField(expr, "constructor")
		name := tree.Text(ctor)
		if tree.Kind(ctor) == syntax.KindMemberExpression {
			name = tree.Text(tree.ChildByField(ctor, "property"))
		}
		if args := tree.ChildByField(expr, "type_arguments"); args != syntax.NoNode {
			name += tree.Text(args)
		}
		if name == "" {
			return Any
		}
		return name
	case syntax.KindCallExpression:
		return callType(tree, expr)
	case syntax.KindAwaitExpression:
		inner := firstNamed(tree, expr)
		return unwrapPromise(in.expression(tree, inner, depth+1))
	case syntax.KindParenthesizedExpression, syntax.KindSatisfiesExpression, syntax.KindNonNullExpression:
		t := in.expression(tree, firstNamed(tree, expr), depth+1)
		if n.Kind == syntax.KindNonNullExpression {
			t = strings.TrimSuffix(strings.TrimSuffix(t, " | null"), " | undefined")
		}
		return t
	case syntax.KindAsExpression:
		named := tree.NamedChildren(expr)
		if len(named) < 2 {
			return Any
		}
		return strings.TrimSpace(tree.Text(named[len(named)-1]))
	case syntax.KindUnaryExpression:
		return unaryType(tree, expr)
	case syntax.KindUpdateExpression:
		return "number"
	case syntax.KindBinaryExpression:
		return in.binary(tree, expr, depth)
	case syntax.KindTernaryExpression:
		return union(
			in.expression(tree, tree.ChildByField(expr, "consequence"), depth+1),
			in.expression(tree, tree.ChildByField(expr, "alternative"), depth+1),
		)
	case syntax.KindAssignmentExpression:
		return in.expression(tree, tree.ChildByField(expr, "right"), depth+1)
	case syntax.KindArrowFunction, syntax.KindFunctionExpression:
		return in.functionType(tree, expr, depth)
	case syntax.KindMemberExpression:
		if tree.Text(tree.ChildByField(expr, "property")) == "length" {
			return "number"
		}
	case syntax.KindIdentifier:
		if isBinding(tree, expr) {
			return Any
		}
		if decl := in.lookup(tree, expr); decl != syntax.NoNode {
			return in.infer(tree, decl, depth+1)
		}
	}
	return Any
}

func firstNamed(tree *syntax.Tree, id syntax.NodeID) syntax.NodeID {
	if named := tree.NamedChildren(id); len(named) > 0 {
		return named[0]
	}
	return syntax.NoNode
}

func (in *Inferencer) array(tree *syntax.Tree, arr syntax.NodeID, depth int) string {
	elems := tree.NamedChildren(arr)
	if len(elems) == 0 || tree.Kind(elems[0]) == syntax.KindSpreadElement {
		return "any[]"
	}
	elem := in.expression(tree, elems[0], depth+1)
	if strings.ContainsAny(elem, "|&") || strings.Contains(elem, "=>") {
		elem = "(" + elem + ")"
	}
	return elem + "[]"
}

func (in *Inferencer) object(tree *syntax.Tree, obj syntax.NodeID, depth int) string {
	var fields []string
	for _, c := range tree.NamedChildren(obj) {
		switch tree.Kind(c) {
		case syntax.KindPair:
			key := tree.ChildByField(c, "key")
			if tree.Kind(key) == syntax.KindComputedPropertyName {
				continue
			}
			fields = append(fields, tree.Text(key)+": "+in.expression(tree, tree.ChildByField(c, "value"), depth+1))
		case syntax.KindShorthandPropertyIdentifier:
			t := Any
			if decl := in.lookup(tree, c); decl != syntax.NoNode {
				t = in.infer(tree, decl, depth+1)
			}
			fields = append(fields, tree.Text(c)+": "+t)
		case syntax.KindMethodDefinition:
			fields = append(fields, tree.Name(c)+"(): any")
		}
	}
	if len(fields) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(fields, "; ") + " }"
}

func callType(tree *syntax.Tree, call syntax.NodeID) string {
	callee := tree.ChildByField(call, "function")
	if t, ok := callResultsByQualifiedName[tree.Text(callee)]; ok {
		return t
	}
	name := tree.Text(callee)
	if tree.Kind(callee) == syntax.KindMemberExpression {
		name = tree.Text(tree.ChildByField(callee, "property"))
	}
	if t, ok := callResults[name]; ok {
		return t
	}
	return Any
}

func unaryType(tree *syntax.Tree, expr syntax.NodeID) string {
	op := tree.Node(tree.ChildByField(expr, "operator"))
	if op == nil {
		return Any
	}
	switch op.Type {
	case "!":
		return "boolean"
	case "typeof":
		return "string"
	case "-", "+", "~":
		return "number"
	case "void":
		return "undefined"
	case "delete":
		return "boolean"
	}
	return Any
}

func (in *Inferencer) binary(tree *syntax.Tree, expr syntax.NodeID, depth int) string {
	op := tree.Node(tree.ChildByField(expr, "operator"))
	if op == nil {
		return Any
	}
	left := func() string { return in.expression(tree, tree.ChildByField(expr, "left"), depth+1) }
	right := func() string { return in.expression(tree, tree.ChildByField(expr, "right"), depth+1) }
	switch op.Type {
	case "===", "!==", "==", "!=", "<", ">", "<=", ">=", "instanceof", "in":
		return "boolean"
	case "+":
		l, r := left(), right()
		if l == "string" || r == "string" {
			return "string"
		}
		if l == "number" && r == "number" {
			return "number"
		}
		return Any
	case "-", "*", "/", "%", "**", "&", "|", "^", "<<", ">>", ">>>":
		return "number"
	case "&&", "||", "??":
		return union(left(), right())
	}
	return Any
}

func (in *Inferencer) functionType(tree *syntax.Tree, fn syntax.NodeID, depth int) string {
	params := tree.ChildByField(fn, "parameters")
	paramText := "()"
	if params != syntax.NoNode {
		paramText = tree.Text(params)
	} else if p := tree.ChildByField(fn, "parameter"); p != syntax.NoNode {
		paramText = "(" + tree.Text(p) + ")"
	}
	ret := Any
	if rt := tree.ChildByField(fn, "return_type"); rt != syntax.NoNode {
		ret = strings.TrimSpace(strings.TrimPrefix(tree.Text(rt), ":"))
	} else if body := tree.ChildByField(fn, "body"); body != syntax.NoNode && tree.Kind(body) != syntax.KindStatementBlock {
		ret = in.expression(tree, body, depth+1)
	}
	if tree.FindChildByType(fn, "async") != syntax.NoNode && !strings.HasPrefix(ret, "Promise<") {
		ret = "Promise<" + ret + ">"
	}
	return paramText + " => " + ret
}

// unwrapPromise returns T for Promise<T>.
func unwrapPromise(t string) string {
	if strings.HasPrefix(t, "Promise<") && strings.HasSuffix(t, ">") {
		return strings.TrimSpace(t[len("Promise<") : len(t)-1])
	}
	return t
}

// union joins two types, collapsing duplicates and absorbing into any.
func union(a, b string) string {
	return Union([]string{a, b})
}

// Union joins types into a union, dropping duplicates and keeping the
// first-seen order. Any absorbs everything.
func Union(types []string) string {
	var parts []string
	seen := make(map[string]bool)
	for _, t := range types {
		for _, p := range splitUnion(t) {
			if p == Any {
				return Any
			}
			if p != "" && !seen[p] {
				seen[p] = true
				parts = append(parts, p)
			}
		}
	}
	if len(parts) == 0 {
		return Any
	}
	return collapseBooleans(strings.Join(parts, " | "))
}

// splitUnion splits a union at top level only.
func splitUnion(t string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			if depth > 0 && !(t[i] == '>' && i > 0 && t[i-1] == '=') {
				depth--
			}
		case '|':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(t[last:i]))
				last = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(t[last:]))
}
