package extract

import "github.com/mvp-joe/cortex-refactor/internal/syntax"

// binding is a name introduced somewhere in the original tree. owner is
// the node whose range the name is visible in.
type binding struct {
	name  string
	ident syntax.NodeID
	owner syntax.NodeID
}

// collectBindings builds the binding table of tree: variables,
// parameters, catch and loop bindings, nested function and class
// declarations, and class fields. Imports and top-level functions and
// classes are module globals and are left out.
func collectBindings(tree *syntax.Tree) []binding {
	var out []binding
	add := func(ident, owner syntax.NodeID) {
		if ident == syntax.NoNode || owner == syntax.NoNode {
			return
		}
		out = append(out, binding{name: tree.Text(ident), ident: ident, owner: owner})
	}
	addPattern := func(pattern, owner syntax.NodeID) {
		for _, ident := range tree.BoundIdentifiers(pattern) {
			add(ident, owner)
		}
	}

	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		n := tree.Node(id)
		switch {
		case n.Kind == syntax.KindVariableDeclarator:
			addPattern(tree.ChildByField(id, "name"), declaratorOwner(tree, id))

		case n.Kind.IsFunctionLike():
			if params := tree.ChildByField(id, "parameters"); params != syntax.NoNode {
				for _, p := range tree.NamedChildren(params) {
					switch tree.Kind(p) {
					case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
						addPattern(tree.ChildByField(p, "pattern"), id)
					default:
						addPattern(p, id)
					}
				}
			}
			if p := tree.ChildByField(id, "parameter"); p != syntax.NoNode {
				add(p, id)
			}
			if n.Kind == syntax.KindFunctionExpression {
				add(tree.ChildByField(id, "name"), id)
			}
			if n.Kind == syntax.KindFunctionDeclaration && !isTopLevel(tree, id) {
				add(tree.ChildByField(id, "name"), n.Parent)
			}

		case n.Kind == syntax.KindClassDeclaration && !isTopLevel(tree, id):
			add(tree.ChildByField(id, "name"), n.Parent)

		case n.Kind == syntax.KindCatchClause:
			addPattern(tree.ChildByField(id, "parameter"), id)

		case n.Kind == syntax.KindForInStatement:
			if declaresLoopVariable(tree, id) {
				addPattern(tree.ChildByField(id, "left"), id)
			}

		case n.Kind == syntax.KindFieldDefinition:
			add(tree.NameOf(id), n.Parent)
		}
		return true
	})
	return out
}

// declaratorOwner returns the node a declarator's names are visible in:
// the enclosing function for var, otherwise the block or loop holding the
// declaration.
func declaratorOwner(tree *syntax.Tree, declarator syntax.NodeID) syntax.NodeID {
	decl := tree.Parent(declarator)
	if tree.Kind(decl) == syntax.KindVariableDeclaration {
		if fn := tree.EnclosingFunction(decl); fn != syntax.NoNode {
			return fn
		}
		return tree.Root()
	}
	owner := tree.Parent(decl)
	if tree.Kind(owner) == syntax.KindExportStatement {
		owner = tree.Parent(owner)
	}
	return owner
}

// isTopLevel reports whether a declaration sits directly in the program,
// possibly behind an export.
func isTopLevel(tree *syntax.Tree, id syntax.NodeID) bool {
	parent := tree.Parent(id)
	if tree.Kind(parent) == syntax.KindExportStatement {
		parent = tree.Parent(parent)
	}
	return tree.Kind(parent) == syntax.KindProgram
}

func declaresLoopVariable(tree *syntax.Tree, loop syntax.NodeID) bool {
	for _, kw := range []string{"const", "let", "var"} {
		if tree.FindChildByType(loop, kw) != syntax.NoNode {
			return true
		}
	}
	return false
}
