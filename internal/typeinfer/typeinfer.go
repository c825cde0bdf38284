// Package typeinfer derives a type string for declarations and
// expressions. Explicit annotations win, then an optional oracle, then
// structural rules over the literal or expression shape.
package typeinfer

import (
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// Any is the universal type, returned when nothing better is known.
const Any = "any"

// maxDepth bounds identifier chasing through initializers.
const maxDepth = 8

// Oracle resolves the type of a node with full semantic knowledge. It
// reports false when it has no answer.
type Oracle interface {
	TypeOf(tree *syntax.Tree, node syntax.NodeID) (string, bool)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(tree *syntax.Tree, node syntax.NodeID) (string, bool)

// TypeOf implements Oracle.
func (f OracleFunc) TypeOf(tree *syntax.Tree, node syntax.NodeID) (string, bool) {
	return f(tree, node)
}

// Inferencer infers types. The zero value uses structural rules only.
type Inferencer struct {
	oracle Oracle
}

// New returns an Inferencer backed by oracle, which may be nil.
func New(oracle Oracle) *Inferencer {
	return &Inferencer{oracle: oracle}
}

// InferType returns the type of a declaration (declarator, parameter,
// field, bound identifier) or of an expression.
func (in *Inferencer) InferType(tree *syntax.Tree, node syntax.NodeID) string {
	return in.infer(tree, node, 0)
}

func (in *Inferencer) infer(tree *syntax.Tree, node syntax.NodeID, depth int) string {
	if tree.Node(node) == nil || depth > maxDepth {
		return Any
	}

	decl, value := declarationParts(tree, node)
	if decl != syntax.NoNode {
		if t := annotation(tree, decl); t != "" {
			return t
		}
	}

	if t, ok := in.fromOracle(tree, node, value); ok {
		return t
	}

	if decl != syntax.NoNode {
		if value == syntax.NoNode {
			return Any
		}
		return in.expression(tree, value, depth)
	}
	return in.expression(tree, node, depth)
}

func (in *Inferencer) fromOracle(tree *syntax.Tree, node, value syntax.NodeID) (string, bool) {
	if in == nil || in.oracle == nil {
		return "", false
	}
	for _, id := range []syntax.NodeID{node, value} {
		if id == syntax.NoNode {
			continue
		}
		if t, ok := in.oracle.TypeOf(tree, id); ok {
			if t = Normalize(t); t != "" && t != Any {
				return t, true
			}
		}
	}
	return "", false
}

// declarationParts maps node to the declaration that can carry an
// annotation and the initializer expression, if node is declaration-like.
func declarationParts(tree *syntax.Tree, node syntax.NodeID) (decl, value syntax.NodeID) {
	switch tree.Kind(node) {
	case syntax.KindVariableDeclarator, syntax.KindFieldDefinition, syntax.KindPropertySignature:
		return node, tree.ChildByField(node, "value")
	case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
		return node, tree.ChildByField(node, "value")
	case syntax.KindIdentifier, syntax.KindShorthandPropertyPattern:
		parent := tree.Parent(node)
		switch tree.Kind(parent) {
		case syntax.KindVariableDeclarator:
			if tree.Node(node).Field == "name" {
				return parent, tree.ChildByField(parent, "value")
			}
		case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
			if tree.Node(node).Field == "pattern" {
				return parent, tree.ChildByField(parent, "value")
			}
		case syntax.KindAssignmentPattern:
			// JavaScript default parameters: (a = 1)
			if tree.Node(node).Field == "left" {
				return parent, tree.ChildByField(parent, "right")
			}
		}
	}
	return syntax.NoNode, syntax.NoNode
}

// annotation returns the explicit type annotation text of decl, without
// the leading colon.
func annotation(tree *syntax.Tree, decl syntax.NodeID) string {
	ann := tree.ChildByField(decl, "type")
	if ann == syntax.NoNode {
		ann = tree.FindChildByKind(decl, syntax.KindTypeAnnotation)
	}
	if ann == syntax.NoNode {
		return ""
	}
	text := strings.TrimSpace(tree.Text(ann))
	text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
	if text != "" && tree.Kind(decl) == syntax.KindOptionalParameter {
		text += " | undefined"
	}
	return text
}
