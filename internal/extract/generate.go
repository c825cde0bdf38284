package extract

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/mvp-joe/cortex-refactor/internal/typeinfer"
)

// Options control code generation.
type Options struct {
	// Indent is one indentation level of the generated body.
	Indent string
	// EmitTypes writes parameter and return annotations. Untyped dialects
	// never get annotations.
	EmitTypes bool
}

// DefaultOptions returns four-space indentation with types.
func DefaultOptions() Options {
	return Options{Indent: "    ", EmitTypes: true}
}

// Result is a generated extraction.
type Result struct {
	FunctionName    string             `json:"function_name"`
	Parameters      []Variable         `json:"parameters"`
	ReturnVariables []Variable         `json:"return_variables"`
	ReturnType      string             `json:"return_type"`
	FunctionCode    string             `json:"function_code"`
	FunctionCall    string             `json:"function_call"`
	InsertionPoint  int                `json:"insertion_point"`
	IsClassMethod   bool               `json:"is_class_method"`
	IsAsync         bool               `json:"is_async"`
	Plan            *document.EditPlan `json:"plan"`
}

// placement is where the new function goes.
type placement struct {
	classMember syntax.NodeID // member of a class body holding the selection
	classBody   syntax.NodeID
	topLevel    syntax.NodeID // program statement holding the selection
}

// Generate builds the function, the call that replaces the selection and
// the edit plan doing both. snap must be the snapshot the analysis was
// computed from.
func Generate(snap *document.Snapshot, a *Analysis, name string, opts Options) (*Result, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if opts.Indent == "" {
		opts.Indent = DefaultOptions().Indent
	}

	tree := a.Tree
	anchor := firstCodeNode(tree, a.SelectionText, a.Selection.Start)
	place := locate(tree, anchor)
	if err := checkConflict(tree, place, a.Variables, name); err != nil {
		return nil, err
	}

	typed := opts.EmitTypes && tree.Dialect.Typed()
	res := &Result{
		FunctionName:  name,
		Parameters:    a.Variables,
		IsClassMethod: place.classMember != syntax.NoNode,
		IsAsync:       a.IsAsync,
	}
	// When every path returns, nothing after the selection runs.
	if a.Expression == syntax.NoNode && a.ReachesTail && !a.Returns.AllPathsReturn {
		for _, v := range a.Variables {
			if v.IsModified && v.IsUsedAfterSelection {
				res.ReturnVariables = append(res.ReturnVariables, v)
			}
		}
	}
	res.ReturnType = returnTypeOf(a, res.ReturnVariables)

	var baseIndent string
	if res.IsClassMethod {
		baseIndent = snap.Indentation(snap.PositionAt(tree.Node(place.classMember).Start).Line)
	} else {
		baseIndent = snap.Indentation(snap.PositionAt(tree.Node(place.topLevel).Start).Line)
	}

	res.FunctionCode = functionCode(snap, a, res, place, baseIndent, opts.Indent, typed)
	res.FunctionCall = callSite(snap, a, res, opts.Indent)

	codeRange := trimmedRange(a.SelectionText, a.Selection)
	b := document.NewPlanBuilder(snap)
	if res.IsClassMethod {
		// After the member's own ";" separator.
		res.InsertionPoint = memberRange(tree, place.classBody, place.classMember).End
		b.Insert(res.InsertionPoint, "\n\n"+res.FunctionCode)
	} else {
		// Above the statement and its leading comments.
		start := memberRange(tree, tree.Root(), place.topLevel).Start
		res.InsertionPoint = snap.LineStart(snap.PositionAt(start).Line)
		b.Insert(res.InsertionPoint, res.FunctionCode+"\n\n")
	}
	b.Replace(codeRange, res.FunctionCall)

	plan, err := b.Build(fmt.Sprintf("extract function %s", name))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction plan: %w", err)
	}
	res.Plan = plan
	return res, nil
}

// memberRange returns the member range of scopeID holding node, or the
// node's own range when it is not a member.
func memberRange(tree *syntax.Tree, scopeID, node syntax.NodeID) document.Range {
	n := tree.Node(node)
	for _, m := range scope.ListMembers(tree, scopeID) {
		if m.Range.Start <= n.Start && n.End <= m.Range.End {
			return m.Range
		}
	}
	return document.Range{Start: n.Start, End: n.End}
}

func locate(tree *syntax.Tree, anchor syntax.NodeID) placement {
	p := placement{classMember: syntax.NoNode, classBody: syntax.NoNode, topLevel: syntax.NoNode}
	for _, id := range tree.Ancestors(anchor) {
		parent := tree.Parent(id)
		if p.classMember == syntax.NoNode && tree.Kind(parent) == syntax.KindClassBody {
			switch tree.Kind(id) {
			case syntax.KindMethodDefinition, syntax.KindFieldDefinition:
				p.classMember, p.classBody = id, parent
			}
		}
		if tree.Kind(parent) == syntax.KindProgram {
			p.topLevel = id
			break
		}
	}
	if p.topLevel == syntax.NoNode {
		p.topLevel = anchor
	}
	return p
}

// checkConflict rejects a name already declared at the top level, in the
// target class, or taken by a parameter.
func checkConflict(tree *syntax.Tree, place placement, vars []Variable, name string) error {
	members := scope.ListMembers(tree, tree.Root())
	if place.classBody != syntax.NoNode {
		members = append(members, scope.ListMembers(tree, place.classBody)...)
	}
	for _, m := range members {
		if m.Name == name && m.Kind != scope.KindCall {
			return fmt.Errorf("%w: %s %q", ErrNameConflict, m.Kind, name)
		}
	}
	for _, v := range vars {
		if v.Name == name {
			return fmt.Errorf("%w: variable %q", ErrNameConflict, name)
		}
	}
	return nil
}

// tagged reports that the selection may return early and also hands back
// variables. Every exit then yields { done, ... } so the call site can tell
// an early return from a fall through.
func tagged(a *Analysis, returnVars []Variable) bool {
	return a.Returns.Has && len(returnVars) > 0
}

func returnTypeOf(a *Analysis, returnVars []Variable) string {
	fields := make([]string, len(returnVars))
	for i, v := range returnVars {
		fields[i] = v.Name + ": " + v.Type
	}

	var t string
	switch {
	case tagged(a, returnVars):
		t = "{ done: true; value: " + typeinfer.Union(a.Returns.Types) + " } | { done: false; " + strings.Join(fields, "; ") + " }"
	case len(returnVars) == 1:
		t = returnVars[0].Type
	case len(returnVars) > 1:
		t = "{ " + strings.Join(fields, "; ") + " }"
	case a.Returns.Has:
		types := append([]string(nil), a.Returns.Types...)
		if !a.Returns.AllPathsReturn {
			types = append(types, "void")
		}
		t = typeinfer.Union(types)
	default:
		t = "void"
	}
	if a.IsAsync {
		t = "Promise<" + t + ">"
	}
	return t
}

func functionCode(snap *document.Snapshot, a *Analysis, res *Result, place placement, baseIndent, indent string, typed bool) string {
	params := make([]string, len(res.Parameters))
	for i, v := range res.Parameters {
		params[i] = v.Name
		if typed {
			params[i] += ": " + v.Type
		}
	}

	var header strings.Builder
	header.WriteString(baseIndent)
	if res.IsClassMethod {
		if typed {
			header.WriteString(visibility(a.Tree, place.classMember) + " ")
		}
		if a.Tree.FindChildByType(place.classMember, "static") != syntax.NoNode {
			header.WriteString("static ")
		}
	}
	if res.IsAsync {
		header.WriteString("async ")
	}
	if !res.IsClassMethod {
		header.WriteString("function ")
	}
	header.WriteString(res.FunctionName + "(" + strings.Join(params, ", ") + ")")
	if typed {
		header.WriteString(": " + res.ReturnType)
	}
	header.WriteString(" {")

	lines := []string{header.String()}
	for _, line := range bodyLines(snap, a, tagged(a, res.ReturnVariables)) {
		if strings.TrimSpace(line) == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, baseIndent+indent+line)
	}
	names := strings.Join(variableNames(res.ReturnVariables), ", ")
	switch {
	case len(res.ReturnVariables) == 0:
	case tagged(a, res.ReturnVariables):
		lines = append(lines, baseIndent+indent+"return { done: false, "+names+" };")
	case len(res.ReturnVariables) == 1:
		lines = append(lines, baseIndent+indent+"return "+names+";")
	default:
		lines = append(lines, baseIndent+indent+"return { "+names+" };")
	}
	lines = append(lines, baseIndent+"}")
	return strings.Join(lines, "\n")
}

// bodyLines returns the dedented body of the new function. A lone
// expression becomes the returned value; with tagged results every
// explicit return is rewritten to report done.
func bodyLines(snap *document.Snapshot, a *Analysis, tag bool) []string {
	r := trimmedRange(a.SelectionText, a.Selection)
	code := snap.Slice(r)
	switch {
	case a.Expression != syntax.NoNode:
		code = "return " + code + ";"
	case tag:
		code = tagReturns(code, r.Start, a.Returns.sites)
	}
	return dedent(snap.Indentation(snap.PositionAt(r.Start).Line), code)
}

// tagReturns rewrites the return statements of code, which starts at
// buffer offset base. sites are in ascending order.
func tagReturns(code string, base int, sites []returnSite) string {
	var b strings.Builder
	last := 0
	for _, site := range sites {
		start, end := site.stmt.Start-base, site.stmt.End-base
		if start < last || end > len(code) {
			continue
		}
		value := "undefined"
		if !site.value.IsEmpty() {
			value = code[site.value.Start-base : site.value.End-base]
		}
		b.WriteString(code[last:start])
		b.WriteString("return { done: true, value: " + value + " };")
		last = end
	}
	b.WriteString(code[last:])
	return b.String()
}

// visibility returns private unless the containing member is explicitly
// public. A method with no modifier is public as well; helpers extracted
// from it still get private.
func visibility(tree *syntax.Tree, member syntax.NodeID) string {
	if mod := tree.FindChildByKind(member, syntax.KindAccessibilityModifier); mod != syntax.NoNode && tree.Text(mod) == "public" {
		return "public"
	}
	return "private"
}

func callSite(snap *document.Snapshot, a *Analysis, res *Result, indent string) string {
	callee := res.FunctionName
	if res.IsClassMethod {
		callee = "this." + callee
	}
	call := callee + "(" + strings.Join(variableNames(res.Parameters), ", ") + ")"
	if res.IsAsync {
		call = "await " + call
	}

	codeStart := trimmedRange(a.SelectionText, a.Selection).Start
	lineIndent := snap.Indentation(snap.PositionAt(codeStart).Line)

	// The statement's own ";" is kept when it lies outside the selection.
	term := ";"
	if a.openStatement {
		term = ""
	}

	switch {
	case a.Expression != syntax.NoNode:
		return call
	case tagged(a, res.ReturnVariables):
		result := resultName(res.Parameters)
		assign := "({ " + strings.Join(variableNames(res.ReturnVariables), ", ") + " } = " + result + ");"
		if len(res.ReturnVariables) == 1 {
			v := res.ReturnVariables[0].Name
			assign = v + " = " + result + "." + v + ";"
		}
		return strings.Join([]string{
			"const " + result + " = " + call + ";",
			lineIndent + "if (" + result + ".done) {",
			lineIndent + indent + "return " + result + ".value;",
			lineIndent + "}",
			lineIndent + assign,
		}, "\n")
	case a.Returns.Has && a.Returns.AllPathsReturn:
		return "return " + call + ";"
	case a.Returns.Has:
		result := resultName(res.Parameters)
		return strings.Join([]string{
			"const " + result + " = " + call + ";",
			lineIndent + "if (" + result + " !== undefined) {",
			lineIndent + indent + "return " + result + ";",
			lineIndent + "}",
		}, "\n")
	case len(res.ReturnVariables) == 1:
		return res.ReturnVariables[0].Name + " = " + call + term
	case len(res.ReturnVariables) > 1:
		return "({ " + strings.Join(variableNames(res.ReturnVariables), ", ") + " } = " + call + ")" + term
	}
	return call + term
}

func resultName(params []Variable) string {
	name := "result"
	for taken := true; taken; {
		taken = false
		for _, p := range params {
			if p.Name == name {
				name = "_" + name
				taken = true
			}
		}
	}
	return name
}

func variableNames(vars []Variable) []string {
	out := make([]string, len(vars))
	for i, v := range vars {
		out[i] = v.Name
	}
	return out
}

// trimmedRange narrows the selection to exclude surrounding whitespace.
func trimmedRange(text string, sel document.Range) document.Range {
	lead := len(text) - len(strings.TrimLeft(text, " \t\r\n"))
	trail := len(text) - len(strings.TrimRight(text, " \t\r\n"))
	if lead+trail >= len(text) {
		return document.Range{Start: sel.Start, End: sel.Start}
	}
	return document.Range{Start: sel.Start + lead, End: sel.End - trail}
}

// dedent returns the lines of code with their common indentation removed.
// The first line is measured with firstIndent, the indentation of the line
// it starts on, so code starting mid-line dedents like the rest.
func dedent(firstIndent, code string) []string {
	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	lines[0] = firstIndent + lines[0]

	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || n < common {
			common = n
		}
	}
	for i, line := range lines {
		if len(line) >= common && common > 0 {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return lines
}
