package extract

import (
	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/mvp-joe/cortex-refactor/internal/typeinfer"
)

// analyzeReturns collects the explicit returns of the wrapped selection,
// ignoring nested function literals, and checks whether every path
// through the statements returns. shift converts wrapped offsets to
// buffer offsets.
func analyzeReturns(tree *syntax.Tree, body syntax.NodeID, statements []syntax.NodeID, vars []Variable, inferencer *typeinfer.Inferencer, shift int) Returns {
	var r Returns
	tree.Walk(body, func(id syntax.NodeID) bool {
		k := tree.Kind(id)
		if id != body && k.IsFunctionLike() {
			return false
		}
		if k != syntax.KindReturnStatement {
			return true
		}
		r.Has = true
		r.Types = append(r.Types, returnType(tree, id, vars, inferencer))
		n := tree.Node(id)
		site := returnSite{stmt: document.Range{Start: n.Start + shift, End: n.End + shift}}
		if named := tree.NamedChildren(id); len(named) > 0 {
			v := tree.Node(named[0])
			site.value = document.Range{Start: v.Start + shift, End: v.End + shift}
		}
		r.sites = append(r.sites, site)
		return false
	})
	if r.Has {
		r.AllPathsReturn = listReturns(tree, statements)
	}
	return r
}

func returnType(tree *syntax.Tree, ret syntax.NodeID, vars []Variable, inferencer *typeinfer.Inferencer) string {
	named := tree.NamedChildren(ret)
	if len(named) == 0 {
		return "void"
	}
	expr := named[0]
	// Dependencies are typed against the original tree; the wrapped tree
	// cannot see their declarations.
	if tree.Kind(expr) == syntax.KindIdentifier {
		for _, v := range vars {
			if v.Name == tree.Text(expr) {
				return v.Type
			}
		}
	}
	return inferencer.InferType(tree, expr)
}

// listReturns reports whether a statement list always returns or throws.
func listReturns(tree *syntax.Tree, statements []syntax.NodeID) bool {
	for _, s := range statements {
		if stmtReturns(tree, s) {
			return true
		}
	}
	return false
}

func stmtReturns(tree *syntax.Tree, stmt syntax.NodeID) bool {
	switch tree.Kind(stmt) {
	case syntax.KindReturnStatement, syntax.KindThrowStatement:
		return true
	case syntax.KindStatementBlock:
		return listReturns(tree, tree.NamedChildren(stmt))
	case syntax.KindLabeledStatement:
		return stmtReturns(tree, tree.ChildByField(stmt, "body"))
	case syntax.KindIfStatement:
		alt := tree.ChildByField(stmt, "alternative")
		if alt == syntax.NoNode {
			return false
		}
		return stmtReturns(tree, tree.ChildByField(stmt, "consequence")) && stmtReturns(tree, alt)
	case syntax.KindElseClause:
		return listReturns(tree, tree.NamedChildren(stmt))
	case syntax.KindTryStatement:
		if fin := tree.ChildByField(stmt, "finalizer"); fin != syntax.NoNode && stmtReturns(tree, tree.ChildByField(fin, "body")) {
			return true
		}
		if !stmtReturns(tree, tree.ChildByField(stmt, "body")) {
			return false
		}
		handler := tree.ChildByField(stmt, "handler")
		return handler == syntax.NoNode || stmtReturns(tree, tree.ChildByField(handler, "body"))
	case syntax.KindSwitchStatement:
		return switchReturns(tree, tree.ChildByField(stmt, "body"))
	}
	return false
}

// switchReturns requires a default clause and a return in every clause
// that has statements. Empty clauses fall through to the next one.
func switchReturns(tree *syntax.Tree, body syntax.NodeID) bool {
	clauses := tree.NamedChildren(body)
	hasDefault := false
	for i, c := range clauses {
		if tree.Kind(c) == syntax.KindSwitchDefault {
			hasDefault = true
		}
		stmts := tree.ChildrenByField(c, "body")
		if len(stmts) == 0 {
			if i == len(clauses)-1 {
				return false
			}
			continue
		}
		if !listReturns(tree, stmts) {
			return false
		}
	}
	return hasDefault
}
