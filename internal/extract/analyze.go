// Package extract turns a selected fragment into a new function. Analyze
// works out what the fragment depends on and what it hands back; Generate
// writes the function, the call site and one atomic edit plan.
package extract

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/mvp-joe/cortex-refactor/internal/typeinfer"
)

var (
	// ErrEmptySelection indicates a selection with no code in it.
	ErrEmptySelection = errors.New("selection is empty")

	// ErrSelectionParse indicates the selection is not a statement list.
	ErrSelectionParse = errors.New("selection does not parse as statements")

	// ErrUnsupportedSelection indicates a selection that parses but cannot
	// be replaced by a call: part of a larger expression, or an expression
	// that assigns a variable read afterwards.
	ErrUnsupportedSelection = errors.New("selection cannot be extracted")
)

// wrapperName names the synthetic function the selection is parsed in.
const wrapperName = "__extracted__"

const wrapperPrefix = "function " + wrapperName + "() {\n"

// Variable is a dependency of the selection: referenced inside it and
// declared outside it.
type Variable struct {
	Name                 string         `json:"name"`
	Type                 string         `json:"type"`
	IsModified           bool           `json:"is_modified"`
	IsUsedAfterSelection bool           `json:"is_used_after_selection"`
	Declaration          syntax.NodeID  `json:"-"`
	DeclarationRange     document.Range `json:"declaration_range"`
}

// Returns summarises the explicit return statements of the selection.
type Returns struct {
	Has            bool     `json:"has"`
	Types          []string `json:"types"`
	AllPathsReturn bool     `json:"all_paths_return"`

	sites []returnSite
}

// returnSite is one explicit return, in original buffer offsets. value is
// empty for a bare return.
type returnSite struct {
	stmt  document.Range
	value document.Range
}

// Dropped is an identifier that did not become a parameter.
type Dropped struct {
	Name   string
	Reason string
}

// Analysis is the dependency and return-value analysis of a selection.
type Analysis struct {
	Tree          *syntax.Tree
	Selection     document.Range
	SelectionText string
	Variables     []Variable
	Returns       Returns
	IsAsync       bool
	// ReachesTail reports that at most a terminal return statement follows
	// the selection in its statement list.
	ReachesTail bool
	// Scope is the function-like node enclosing the selection, or the
	// program.
	Scope   syntax.NodeID
	Dropped []Dropped
	// Expression is the node of the original tree when the selection is
	// exactly one expression, else NoNode. The function returns its value.
	Expression syntax.NodeID

	// openStatement is set when the selection is the expression of a
	// statement whose terminator lies outside it.
	openStatement bool

	wrapped    *syntax.Tree
	statements []syntax.NodeID
}

// Analyze analyses the selection [start,end) of tree. selectionText must
// be the source text of that range.
func Analyze(ctx context.Context, tree *syntax.Tree, selectionText string, start, end int, inferencer *typeinfer.Inferencer) (*Analysis, error) {
	if strings.TrimSpace(selectionText) == "" {
		return nil, ErrEmptySelection
	}
	if inferencer == nil {
		inferencer = typeinfer.New(nil)
	}

	wrapped, err := syntax.Parse(ctx, []byte(wrapperPrefix+selectionText+"\n}"), tree.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to parse selection: %w", err)
	}
	if wrapped.HasErrors() {
		return nil, ErrSelectionParse
	}
	body := wrapperBody(wrapped)
	if body == syntax.NoNode {
		return nil, ErrSelectionParse
	}

	a := &Analysis{
		Tree:          tree,
		Selection:     document.Range{Start: start, End: end},
		SelectionText: selectionText,
		wrapped:       wrapped,
		statements:    wrapped.NamedChildren(body),
		Expression:    syntax.NoNode,
	}
	if err := a.classify(); err != nil {
		return nil, err
	}

	anchor := firstCodeNode(tree, selectionText, start)
	a.Scope = tree.EnclosingFunction(anchor)
	if a.Scope == syntax.NoNode {
		a.Scope = tree.Root()
	}

	a.collectVariables(body, inferencer)
	a.IsAsync = containsAwait(wrapped, body)
	a.ReachesTail = reachesTail(tree, anchor, end)

	if a.Expression == syntax.NoNode {
		shift := start - len(wrapperPrefix)
		a.Returns = analyzeReturns(wrapped, body, a.statements, a.Variables, inferencer, shift)
		return a, nil
	}
	for _, v := range a.Variables {
		if v.IsModified && v.IsUsedAfterSelection {
			return nil, fmt.Errorf("%w: expression assigns %s, which is read afterwards", ErrUnsupportedSelection, v.Name)
		}
	}
	a.Returns = Returns{
		Has:            true,
		Types:          []string{inferencer.InferType(tree, a.Expression)},
		AllPathsReturn: true,
	}
	return a, nil
}

// classify decides how a selection that parses as a single expression
// statement is extracted. The original tree tells a whole statement from
// a whole expression and from part of one.
func (a *Analysis) classify() error {
	if len(a.statements) != 1 || a.wrapped.Kind(a.statements[0]) != syntax.KindExpressionStatement {
		return nil
	}
	tree := a.Tree
	r := trimmedRange(a.SelectionText, a.Selection)
	node := tree.DeepestAt(r.Start)
	for node != syntax.NoNode {
		if n := tree.Node(node); n.Start <= r.Start && r.End <= n.End {
			break
		}
		node = tree.Parent(node)
	}
	if node == syntax.NoNode || isStatementLike(tree, node) {
		return nil
	}
	n := tree.Node(node)
	if n.Start != r.Start || n.End != r.End {
		return fmt.Errorf("%w: selection covers part of an expression", ErrUnsupportedSelection)
	}
	if tree.Kind(n.Parent) == syntax.KindExpressionStatement {
		a.openStatement = tree.Node(n.Parent).End > r.End
		return nil
	}
	a.Expression = node
	return nil
}

// isStatementLike reports whether id is a statement or a container of
// statements or members.
func isStatementLike(tree *syntax.Tree, id syntax.NodeID) bool {
	k := tree.Kind(id)
	switch {
	case k.IsStatementList(), k == syntax.KindStatementBlock, k == syntax.KindClassBody,
		k == syntax.KindSwitchBody, k == syntax.KindElseClause, k == syntax.KindCatchClause,
		k == syntax.KindFinallyClause:
		return true
	}
	t := tree.Node(id).Type
	return strings.HasSuffix(t, "_statement") || strings.HasSuffix(t, "_declaration")
}

// wrapperBody returns the statement block of the synthetic wrapper.
func wrapperBody(wrapped *syntax.Tree) syntax.NodeID {
	for _, c := range wrapped.NamedChildren(wrapped.Root()) {
		if wrapped.Kind(c) == syntax.KindFunctionDeclaration && wrapped.Name(c) == wrapperName {
			return wrapped.ChildByField(c, "body")
		}
	}
	return syntax.NoNode
}

// firstCodeNode returns the deepest node at the first non-space byte of
// the selection.
func firstCodeNode(tree *syntax.Tree, text string, start int) syntax.NodeID {
	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	return tree.DeepestAt(start + lead)
}

// collectVariables finds the referenced identifiers of the wrapped body
// and resolves each against the original tree.
func (a *Analysis) collectVariables(body syntax.NodeID, inferencer *typeinfer.Inferencer) {
	names := referencedNames(a.wrapped, body)
	if len(names) == 0 {
		return
	}
	table := collectBindings(a.Tree)
	scopeEnd := a.Tree.Node(a.Scope).End
	if scopeEnd < a.Selection.End {
		scopeEnd = a.Selection.End
	}

	for _, name := range names {
		b, inside, ok := a.resolve(table, name)
		if !ok {
			reason := "no declaration"
			if inside {
				reason = "declared inside selection"
			}
			a.Dropped = append(a.Dropped, Dropped{Name: name, Reason: reason})
			continue
		}
		decl := a.Tree.Node(b.ident)
		a.Variables = append(a.Variables, Variable{
			Name:                 name,
			Type:                 inferencer.InferType(a.Tree, b.ident),
			IsModified:           isModified(a.SelectionText, name),
			IsUsedAfterSelection: usedIn(string(a.Tree.Source[a.Selection.End:scopeEnd]), name),
			Declaration:          b.ident,
			DeclarationRange:     document.Range{Start: decl.Start, End: decl.End},
		})
	}
}

// resolve picks the nearest visible binding of name that lies outside the
// selection. inside reports whether the name is declared in the selection.
func (a *Analysis) resolve(table []binding, name string) (best binding, inside, ok bool) {
	sel := a.Selection
	bestLen := -1
	for _, b := range table {
		if b.name != name {
			continue
		}
		start := a.Tree.Node(b.ident).Start
		if start >= sel.Start && start < sel.End {
			inside = true
			continue
		}
		owner := a.Tree.Node(b.owner)
		if owner.Start > sel.Start || owner.End < sel.End {
			continue
		}
		l := owner.End - owner.Start
		switch {
		case bestLen < 0 || l < bestLen:
			best, bestLen = b, l
		case l == bestLen && start < sel.Start && start > a.Tree.Node(best.ident).Start:
			best = b
		}
	}
	return best, inside, bestLen >= 0
}

// referencedNames lists identifier names read or written in the body, in
// first-reference order. Member property names have their own node kind
// and never appear; parameters of function literals inside the body are
// skipped where they are in scope.
func referencedNames(tree *syntax.Tree, body syntax.NodeID) []string {
	var names []string
	seen := make(map[string]bool)
	tree.Walk(body, func(id syntax.NodeID) bool {
		switch tree.Kind(id) {
		case syntax.KindIdentifier, syntax.KindShorthandPropertyIdentifier:
		default:
			return true
		}
		name := tree.Text(id)
		if seen[name] || boundByInnerFunction(tree, id, body) {
			return false
		}
		seen[name] = true
		names = append(names, name)
		return false
	})
	return names
}

// boundByInnerFunction reports whether ident is a parameter, or a
// reference to a parameter, of a function literal nested in body.
func boundByInnerFunction(tree *syntax.Tree, ident, body syntax.NodeID) bool {
	name := tree.Text(ident)
	for cur := tree.Parent(ident); cur != syntax.NoNode && cur != body; cur = tree.Parent(cur) {
		if !tree.Kind(cur).IsFunctionLike() {
			continue
		}
		for _, p := range parameterNames(tree, cur) {
			if p == name {
				return true
			}
		}
	}
	return false
}

func parameterNames(tree *syntax.Tree, fn syntax.NodeID) []string {
	var out []string
	if p := tree.ChildByField(fn, "parameter"); p != syntax.NoNode {
		out = append(out, tree.Text(p))
	}
	params := tree.ChildByField(fn, "parameters")
	for _, p := range tree.NamedChildren(params) {
		pattern := p
		if k := tree.Kind(p); k == syntax.KindRequiredParameter || k == syntax.KindOptionalParameter {
			pattern = tree.ChildByField(p, "pattern")
		}
		for _, ident := range tree.BoundIdentifiers(pattern) {
			out = append(out, tree.Text(ident))
		}
	}
	return out
}

// notIdentChar is the left context of a bare name: start of text or a
// byte that cannot end an identifier or a member access.
const notIdentChar = `(?:^|[^\w$.])`

// isModified reports whether text assigns, compound-assigns, increments
// or decrements name.
func isModified(text, name string) bool {
	q := regexp.QuoteMeta(name)
	assign := regexp.MustCompile(notIdentChar + q + `\s*(?:[-+*/%&|^]|\*\*|<<|>>>?|&&|\|\||\?\?)?=(?:[^=>]|$)`)
	pre := regexp.MustCompile(`(?:\+\+|--)\s*` + q + `(?:[^\w$]|$)`)
	post := regexp.MustCompile(notIdentChar + q + `\s*(?:\+\+|--)`)
	return assign.MatchString(text) || pre.MatchString(text) || post.MatchString(text)
}

// usedIn reports whether name occurs in text as a bare word.
func usedIn(text, name string) bool {
	re := regexp.MustCompile(notIdentChar + regexp.QuoteMeta(name) + `(?:[^\w$]|$)`)
	return re.MatchString(text)
}

// containsAwait reports an await outside nested function literals.
func containsAwait(tree *syntax.Tree, body syntax.NodeID) bool {
	found := false
	tree.Walk(body, func(id syntax.NodeID) bool {
		if found || (id != body && tree.Kind(id).IsFunctionLike()) {
			return false
		}
		if tree.Kind(id) == syntax.KindAwaitExpression {
			found = true
			return false
		}
		return true
	})
	return found
}

// reachesTail reports whether the selection ending at end is followed in
// its statement list by nothing, or only by a terminal return.
func reachesTail(tree *syntax.Tree, anchor syntax.NodeID, end int) bool {
	list := syntax.NoNode
	for _, id := range tree.Ancestors(anchor) {
		if tree.Kind(id).IsStatementList() {
			list = id
			break
		}
	}
	if list == syntax.NoNode {
		return false
	}
	var after []syntax.NodeID
	for _, stmt := range tree.NamedChildren(list) {
		if tree.Node(stmt).Start >= end {
			after = append(after, stmt)
		}
	}
	switch len(after) {
	case 0:
		return true
	case 1:
		return tree.Kind(after[0]) == syntax.KindReturnStatement
	}
	return false
}
