package typeinfer

import "github.com/mvp-joe/cortex-refactor/internal/syntax"

// lookup finds the binding of an identifier reference: the nearest
// preceding declarator or parameter with the same name whose enclosing
// function also encloses the reference.
func (in *Inferencer) lookup(tree *syntax.Tree, ref syntax.NodeID) syntax.NodeID {
	name := tree.Text(ref)
	refStart := tree.Node(ref).Start
	best := syntax.NoNode
	bestStart := -1

	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		n := tree.Node(id)
		if n.Start > refStart {
			return false
		}
		target := syntax.NoNode
		switch n.Kind {
		case syntax.KindVariableDeclarator:
			target = tree.ChildByField(id, "name")
		case syntax.KindRequiredParameter, syntax.KindOptionalParameter:
			target = tree.ChildByField(id, "pattern")
		case syntax.KindFormalParameters:
			// JavaScript parameters are bare patterns.
			for _, p := range tree.NamedChildren(id) {
				if k := tree.Kind(p); k == syntax.KindRequiredParameter || k == syntax.KindOptionalParameter {
					continue
				}
				for _, ident := range tree.BoundIdentifiers(p) {
					if ident != ref && tree.Text(ident) == name && visible(tree, ident, ref) && tree.Node(ident).Start > bestStart {
						best, bestStart = ident, tree.Node(ident).Start
					}
				}
			}
		}
		if target == syntax.NoNode || target == ref {
			return true
		}
		for _, ident := range tree.BoundIdentifiers(target) {
			if ident == ref || tree.Text(ident) != name {
				continue
			}
			if visible(tree, ident, ref) && tree.Node(ident).Start > bestStart {
				best, bestStart = ident, tree.Node(ident).Start
			}
		}
		return true
	})
	return best
}

// visible reports whether a binding at decl can be seen from ref, judged
// by function nesting.
func visible(tree *syntax.Tree, decl, ref syntax.NodeID) bool {
	owner := tree.EnclosingFunction(decl)
	return owner == syntax.NoNode || tree.IsAncestor(owner, ref)
}

// isBinding reports whether ident declares a name rather than reading one.
func isBinding(tree *syntax.Tree, ident syntax.NodeID) bool {
	switch tree.Kind(tree.Parent(ident)) {
	case syntax.KindObjectPattern, syntax.KindArrayPattern, syntax.KindRestPattern, syntax.KindFormalParameters:
		return true
	case syntax.KindPairPattern, syntax.KindAssignmentPattern, syntax.KindObjectAssignmentPattern:
		f := tree.Node(ident).Field
		return f == "value" || f == "left"
	}
	return false
}
