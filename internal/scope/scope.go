// Package scope finds the container enclosing an offset and lists the
// navigable member declarations it owns.
package scope

import (
	"sort"
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// MemberKind classifies a member declaration.
type MemberKind string

const (
	KindMethod      MemberKind = "method"
	KindConstructor MemberKind = "constructor"
	KindGetter      MemberKind = "getter"
	KindSetter      MemberKind = "setter"
	KindField       MemberKind = "field"
	KindProperty    MemberKind = "property"
	KindSignature   MemberKind = "signature"
	KindFunction    MemberKind = "function"
	KindClass       MemberKind = "class"
	KindInterface   MemberKind = "interface"
	KindTypeAlias   MemberKind = "type"
	KindEnum        MemberKind = "enum"
	KindNamespace   MemberKind = "namespace"
	KindVariable    MemberKind = "variable"
	KindCall        MemberKind = "call"
)

// Member is one navigable declaration of a scope. Text is the source at
// Range when the member was listed.
type Member struct {
	Name  string         `json:"name"`
	Kind  MemberKind     `json:"kind"`
	Range document.Range `json:"range"`
	Text  string         `json:"text"`
	Node  syntax.NodeID  `json:"-"`
}

// FindScope returns the innermost scope enclosing offset: a class or
// interface body, an object literal or type literal, the direct body of a
// function or namespace, or the program. Blocks that are not a direct
// body are skipped.
func FindScope(tree *syntax.Tree, offset int) syntax.NodeID {
	if tree == nil {
		return syntax.NoNode
	}
	deepest := tree.DeepestAt(offset)
	if deepest == syntax.NoNode {
		return syntax.NoNode
	}
	for _, id := range tree.Ancestors(deepest) {
		if IsScope(tree, id) {
			return id
		}
	}
	return tree.Root()
}

// IsScope reports whether id owns members.
func IsScope(tree *syntax.Tree, id syntax.NodeID) bool {
	switch tree.Kind(id) {
	case syntax.KindClassBody, syntax.KindInterfaceBody, syntax.KindObjectType, syntax.KindObject, syntax.KindProgram:
		return true
	case syntax.KindStatementBlock:
		n := tree.Node(id)
		parent := tree.Kind(n.Parent)
		return n.Field == "body" && (parent.IsFunctionLike() || parent == syntax.KindNamespace)
	}
	return false
}

// ListMembers enumerates the direct member declarations of scope, sorted
// ascending by start offset.
func ListMembers(tree *syntax.Tree, scopeID syntax.NodeID) []Member {
	l := lister{tree: tree}
	switch tree.Kind(scopeID) {
	case syntax.KindClassBody:
		l.classBody(scopeID)
	case syntax.KindInterfaceBody, syntax.KindObjectType:
		l.typeBody(scopeID)
	case syntax.KindObject:
		l.object(scopeID)
	case syntax.KindProgram, syntax.KindStatementBlock:
		l.statements(scopeID)
	}
	sort.SliceStable(l.members, func(i, j int) bool {
		return l.members[i].Range.Start < l.members[j].Range.Start
	})
	return l.members
}

type lister struct {
	tree    *syntax.Tree
	members []Member
}

func (l *lister) add(node syntax.NodeID, name string, kind MemberKind, start, end int) {
	l.members = append(l.members, Member{
		Name:  name,
		Kind:  kind,
		Range: document.Range{Start: start, End: end},
		Text:  string(l.tree.Source[start:end]),
		Node:  node,
	})
}

// trailing returns the end of id extended over an immediately following
// separator token, if any.
func (l *lister) trailing(id syntax.NodeID, siblings []syntax.NodeID, i int, seps ...string) int {
	end := l.tree.Node(id).End
	if i+1 < len(siblings) {
		next := l.tree.Node(siblings[i+1])
		for _, sep := range seps {
			if next.Type == sep {
				return next.End
			}
		}
	}
	return end
}

// leading extends start over the comments directly above sibling i. A
// comment separated by a blank line, or trailing another node on its
// line, is left out.
func (l *lister) leading(siblings []syntax.NodeID, i, start int) int {
	tree := l.tree
	topRow := tree.Node(siblings[i]).StartRow
	for j := i - 1; j >= 0; j-- {
		n := tree.Node(siblings[j])
		if n.Kind == syntax.KindDecorator {
			topRow = n.StartRow
			continue
		}
		if n.Kind != syntax.KindComment || n.EndRow+1 < topRow {
			break
		}
		if j > 0 {
			if prev := tree.Node(siblings[j-1]); prev.Kind != syntax.KindComment && prev.EndRow == n.StartRow {
				break
			}
		}
		start, topRow = n.Start, n.StartRow
	}
	return start
}

func (l *lister) classBody(body syntax.NodeID) {
	tree := l.tree
	children := tree.Node(body).Children
	decoratorStart := -1
	for i, c := range children {
		n := tree.Node(c)
		switch n.Kind {
		case syntax.KindDecorator:
			if decoratorStart < 0 {
				decoratorStart = n.Start
			}
			continue
		case syntax.KindMethodDefinition:
			l.addDecorated(c, methodKind(tree, c), decoratorStart, l.trailing(c, children, i, ";"))
		case syntax.KindFieldDefinition:
			l.addDecorated(c, KindField, decoratorStart, l.trailing(c, children, i, ";"))
		case syntax.KindMethodSignature, syntax.KindIndexSignature:
			l.addDecorated(c, KindSignature, decoratorStart, l.trailing(c, children, i, ";"))
		}
		if n.Named && n.Kind != syntax.KindComment {
			decoratorStart = -1
		}
	}
}

func (l *lister) addDecorated(id syntax.NodeID, kind MemberKind, decoratorStart, end int) {
	start := l.tree.Node(id).Start
	if decoratorStart >= 0 {
		start = decoratorStart
	}
	siblings := l.tree.Node(l.tree.Parent(id)).Children
	for i, c := range siblings {
		if c == id {
			start = l.leading(siblings, i, start)
			break
		}
	}
	name := l.tree.Name(id)
	if l.tree.Kind(id) == syntax.KindIndexSignature {
		name = "[index]"
	}
	l.add(id, name, kind, start, end)
}

func methodKind(tree *syntax.Tree, method syntax.NodeID) MemberKind {
	switch {
	case tree.Name(method) == "constructor":
		return KindConstructor
	case tree.FindChildByType(method, "get") != syntax.NoNode:
		return KindGetter
	case tree.FindChildByType(method, "set") != syntax.NoNode:
		return KindSetter
	}
	return KindMethod
}

func (l *lister) typeBody(body syntax.NodeID) {
	tree := l.tree
	children := tree.Node(body).Children
	for i, c := range children {
		switch tree.Node(c).Type {
		case "property_signature":
			l.add(c, tree.Name(c), KindProperty, l.leading(children, i, tree.Node(c).Start), l.trailing(c, children, i, ";", ","))
		case "method_signature", "call_signature", "construct_signature", "index_signature":
			name := tree.Name(c)
			if name == "" {
				name = "[" + strings.TrimSuffix(tree.Node(c).Type, "_signature") + "]"
			}
			l.add(c, name, KindSignature, l.leading(children, i, tree.Node(c).Start), l.trailing(c, children, i, ";", ","))
		}
	}
}

// object lists the entries of an object literal. Separating commas stay
// outside member ranges so swapped entries remain well formed.
func (l *lister) object(obj syntax.NodeID) {
	tree := l.tree
	children := tree.Node(obj).Children
	for i, c := range children {
		n := tree.Node(c)
		switch n.Kind {
		case syntax.KindPair, syntax.KindShorthandPropertyIdentifier:
			l.add(c, tree.Name(c), KindProperty, l.leading(children, i, n.Start), n.End)
		case syntax.KindMethodDefinition:
			l.add(c, tree.Name(c), methodKind(tree, c), l.leading(children, i, n.Start), n.End)
		}
	}
}

func (l *lister) statements(list syntax.NodeID) {
	children := l.tree.Node(list).Children
	for i, c := range children {
		n := l.tree.Node(c)
		if !n.Named || n.Kind == syntax.KindComment {
			continue
		}
		l.statement(c, l.leading(children, i, n.Start), n.End)
	}
}

// statement lists the declarations of stmt. Members take the range
// [start,end) of the outermost statement, so export wrappers are included.
func (l *lister) statement(stmt syntax.NodeID, start, end int) {
	tree := l.tree
	switch tree.Kind(stmt) {
	case syntax.KindExportStatement:
		if decl := tree.ChildByField(stmt, "declaration"); decl != syntax.NoNode {
			l.statement(decl, start, end)
		}
	case syntax.KindFunctionDeclaration:
		l.add(stmt, tree.Name(stmt), KindFunction, start, end)
	case syntax.KindClassDeclaration:
		l.add(stmt, tree.Name(stmt), KindClass, start, end)
	case syntax.KindInterfaceDeclaration:
		l.add(stmt, tree.Name(stmt), KindInterface, start, end)
	case syntax.KindTypeAlias:
		l.add(stmt, tree.Name(stmt), KindTypeAlias, start, end)
	case syntax.KindEnumDeclaration:
		l.add(stmt, tree.Name(stmt), KindEnum, start, end)
	case syntax.KindNamespace:
		l.add(stmt, tree.Name(stmt), KindNamespace, start, end)
	case syntax.KindLexicalDeclaration, syntax.KindVariableDeclaration:
		for _, decl := range tree.NamedChildren(stmt) {
			if tree.Kind(decl) != syntax.KindVariableDeclarator {
				continue
			}
			for _, ident := range tree.BoundIdentifiers(tree.ChildByField(decl, "name")) {
				l.add(decl, tree.Text(ident), KindVariable, start, end)
			}
		}
	case syntax.KindExpressionStatement:
		named := tree.NamedChildren(stmt)
		if len(named) == 0 {
			return
		}
		expr := named[0]
		if tree.Kind(expr) == syntax.KindNamespace {
			l.statement(expr, start, end)
			return
		}
		if tree.Kind(expr) == syntax.KindAwaitExpression {
			if inner := tree.NamedChildren(expr); len(inner) > 0 {
				expr = inner[0]
			}
		}
		if tree.Kind(expr) == syntax.KindCallExpression {
			l.add(stmt, tree.Text(tree.ChildByField(expr, "function")), KindCall, start, end)
		}
	}
}
