// Package resolve maps a cursor offset to the smallest well-formed construct
// of a requested kind. Containment alone never qualifies a candidate: the
// cursor must sit over the construct's name, key, callee or tag.
package resolve

import (
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// ElementKind is a family of constructs a host can ask for.
type ElementKind string

const (
	Class           ElementKind = "class"
	Function        ElementKind = "function"
	Call            ElementKind = "call"
	Variable        ElementKind = "variable"
	Property        ElementKind = "property"
	MultilineString ElementKind = "string"
	Markup          ElementKind = "markup"
)

// AllKinds lists every element kind in resolution priority order.
var AllKinds = []ElementKind{Call, Property, Function, Variable, Class, MultilineString, Markup}

// ParseElementKinds parses a comma separated list of kinds. An empty list
// means every kind.
func ParseElementKinds(list string) ([]ElementKind, error) {
	if strings.TrimSpace(list) == "" {
		return AllKinds, nil
	}
	var out []ElementKind
	for _, part := range strings.Split(list, ",") {
		k := ElementKind(strings.ToLower(strings.TrimSpace(part)))
		switch k {
		case Class, Function, Call, Variable, Property, MultilineString, Markup:
			out = append(out, k)
		default:
			if guess := closestKind(string(k)); guess != "" {
				return nil, fmt.Errorf("unknown element kind %q (did you mean %q?)", part, guess)
			}
			return nil, fmt.Errorf("unknown element kind %q", part)
		}
	}
	return out, nil
}

// closestKind returns the kind within two edits of name, if any.
func closestKind(name string) ElementKind {
	best, bestDistance := ElementKind(""), 3
	for _, k := range AllKinds {
		if d := edlib.LevenshteinDistance(name, string(k)); d < bestDistance {
			best, bestDistance = k, d
		}
	}
	return best
}

// Match is a resolved construct.
type Match struct {
	Node  syntax.NodeID
	Kind  ElementKind
	Range document.Range
}

// ResolveElement walks from the deepest node at offset towards the root and
// returns the first ancestor that has a requested kind and passes that
// kind's cursor placement check.
func ResolveElement(tree *syntax.Tree, offset int, kinds []ElementKind) (Match, bool) {
	if tree == nil || len(kinds) == 0 {
		return Match{}, false
	}
	deepest := tree.DeepestAt(offset)
	if deepest == syntax.NoNode {
		return Match{}, false
	}

	for _, id := range tree.Ancestors(deepest) {
		for _, kind := range kinds {
			if qualifies(tree, id, offset, kind) {
				return Match{Node: id, Kind: kind, Range: AcceptedRange(tree, id, kind)}, true
			}
		}
	}
	return Match{}, false
}

func qualifies(tree *syntax.Tree, id syntax.NodeID, offset int, kind ElementKind) bool {
	switch kind {
	case Class:
		return isClass(tree, id, offset)
	case Function:
		return isFunction(tree, id, offset)
	case Call:
		return isCall(tree, id, offset)
	case Variable:
		return tree.Kind(id) == syntax.KindVariableDeclarator && overDeclaratorName(tree, id, offset)
	case Property:
		return isProperty(tree, id, offset)
	case MultilineString:
		return isMultilineString(tree, id)
	case Markup:
		return isMarkup(tree, id, offset)
	}
	return false
}

func overName(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	name := tree.Node(tree.NameOf(id))
	return name != nil && name.Covers(offset)
}

func overDeclaratorName(tree *syntax.Tree, declarator syntax.NodeID, offset int) bool {
	name := tree.ChildByField(declarator, "name")
	if n := tree.Node(name); n == nil || !n.Covers(offset) {
		return false
	}
	if tree.Kind(name) == syntax.KindIdentifier {
		return true
	}
	for _, ident := range tree.BoundIdentifiers(name) {
		if tree.Node(ident).Covers(offset) {
			return true
		}
	}
	return false
}

// declaratorValueKind reports the kind of the value bound by a declarator.
func declaratorValueKind(tree *syntax.Tree, declarator syntax.NodeID) syntax.Kind {
	return tree.Kind(tree.ChildByField(declarator, "value"))
}

func isClass(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	switch tree.Kind(id) {
	case syntax.KindClassDeclaration, syntax.KindClassExpression, syntax.KindInterfaceDeclaration,
		syntax.KindEnumDeclaration:
		return overName(tree, id, offset)
	case syntax.KindVariableDeclarator:
		return declaratorValueKind(tree, id) == syntax.KindClassExpression && overDeclaratorName(tree, id, offset)
	}
	return false
}

func isFunctionValue(k syntax.Kind) bool {
	return k == syntax.KindArrowFunction || k == syntax.KindFunctionExpression
}

func isFunction(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	switch tree.Kind(id) {
	case syntax.KindFunctionDeclaration, syntax.KindMethodDefinition, syntax.KindMethodSignature:
		return overName(tree, id, offset)
	case syntax.KindFunctionExpression:
		// Named function expressions only; anonymous ones resolve through
		// whatever binds them.
		return overName(tree, id, offset)
	case syntax.KindVariableDeclarator:
		return isFunctionValue(declaratorValueKind(tree, id)) && overDeclaratorName(tree, id, offset)
	case syntax.KindPair:
		return isFunctionValue(tree.Kind(tree.ChildByField(id, "value"))) && overName(tree, id, offset)
	case syntax.KindFieldDefinition:
		return isFunctionValue(tree.Kind(tree.ChildByField(id, "value"))) && overName(tree, id, offset)
	}
	return false
}

func isCall(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	var callee syntax.NodeID
	switch tree.Kind(id) {
	case syntax.KindCallExpression:
		callee = tree.ChildByField(id, "function")
	case syntax.KindNewExpression:
		callee = tree.ChildByField(id, "constructor")
	default:
		return false
	}
	switch tree.Kind(callee) {
	case syntax.KindIdentifier:
		return tree.Node(callee).Covers(offset)
	case syntax.KindMemberExpression:
		prop := tree.Node(tree.ChildByField(callee, "property"))
		return prop != nil && prop.Covers(offset)
	}
	return false
}

func isProperty(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	switch tree.Kind(id) {
	case syntax.KindPair, syntax.KindFieldDefinition, syntax.KindPropertySignature:
		return overName(tree, id, offset)
	case syntax.KindShorthandPropertyIdentifier:
		return tree.Kind(tree.Parent(id)) == syntax.KindObject && tree.Node(id).Covers(offset)
	}
	return false
}

func isMultilineString(tree *syntax.Tree, id syntax.NodeID) bool {
	switch tree.Kind(id) {
	case syntax.KindTemplateString, syntax.KindString:
		n := tree.Node(id)
		return n.EndRow > n.StartRow
	}
	return false
}

func isMarkup(tree *syntax.Tree, id syntax.NodeID, offset int) bool {
	switch tree.Kind(id) {
	case syntax.KindJSXSelfClosingElement:
		return true
	case syntax.KindJSXElement:
		for _, field := range []string{"open_tag", "close_tag"} {
			if tag := tree.Node(tree.ChildByField(id, field)); tag != nil && tag.Covers(offset) {
				return true
			}
		}
	}
	return false
}

// AcceptedRange widens a resolved node to the text a host should select:
// declarators widen to their statement, exported declarations to the export
// statement, and calls forming a whole statement to that statement.
func AcceptedRange(tree *syntax.Tree, id syntax.NodeID, kind ElementKind) document.Range {
	target := id
	switch tree.Kind(id) {
	case syntax.KindVariableDeclarator:
		if parent := tree.Parent(id); parent != syntax.NoNode {
			target = parent
		}
	case syntax.KindCallExpression, syntax.KindNewExpression:
		p := tree.Parent(id)
		if tree.Kind(p) == syntax.KindAwaitExpression {
			p = tree.Parent(p)
		}
		if tree.Kind(p) == syntax.KindExpressionStatement {
			target = p
		}
	}
	if tree.Kind(target) != syntax.KindExpressionStatement {
		if p := tree.Parent(target); tree.Kind(p) == syntax.KindExportStatement && tree.Node(target).Field == "declaration" {
			target = p
		}
	}
	n := tree.Node(target)
	return document.Range{Start: n.Start, End: n.End}
}
