// Package engine composes the resolver, scope, navigation, move and
// extraction packages into the operations hosts call. Every call parses
// the snapshot it is given and keeps nothing afterwards.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/extract"
	"github.com/mvp-joe/cortex-refactor/internal/move"
	"github.com/mvp-joe/cortex-refactor/internal/navigate"
	"github.com/mvp-joe/cortex-refactor/internal/resolve"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
	"github.com/mvp-joe/cortex-refactor/internal/typeinfer"
)

// Engine runs refactoring queries against buffer snapshots.
type Engine struct {
	logger      *slog.Logger
	window      int
	inferencer  *typeinfer.Inferencer
	extractOpts extract.Options
	defaultName string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRelocationWindow sets how many lines around the expected line the
// post-move cursor search covers.
func WithRelocationWindow(lines int) Option {
	return func(e *Engine) {
		if lines > 0 {
			e.window = lines
		}
	}
}

// WithOracle plugs in a semantic type oracle.
func WithOracle(oracle typeinfer.Oracle) Option {
	return func(e *Engine) {
		e.inferencer = typeinfer.New(oracle)
	}
}

// WithExtractionOptions sets code generation options.
func WithExtractionOptions(opts extract.Options) Option {
	return func(e *Engine) {
		e.extractOpts = opts
	}
}

// WithDefaultFunctionName sets the name used when extraction is asked for
// without one.
func WithDefaultFunctionName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.defaultName = name
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:      slog.New(slog.DiscardHandler),
		window:      move.DefaultWindow,
		inferencer:  typeinfer.New(nil),
		extractOpts: extract.DefaultOptions(),
		defaultName: "extracted",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) parse(ctx context.Context, snap *document.Snapshot) (*syntax.Tree, error) {
	tree, err := syntax.Parse(ctx, []byte(snap.Text), snap.Dialect)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrParseFailure, err)
	}
	if tree.HasErrors() {
		e.logger.Debug("buffer has syntax errors, querying recovered tree", "dialect", snap.Dialect)
	}
	return tree, nil
}

// Element is a resolved construct.
type Element struct {
	Kind  resolve.ElementKind `json:"kind"`
	Range document.Range      `json:"range"`
	Text  string              `json:"text"`
}

// ResolveElementRange returns the accepted range of the smallest construct
// of one of kinds under offset. An empty kinds list means every kind.
func (e *Engine) ResolveElementRange(ctx context.Context, snap *document.Snapshot, offset int, kinds []resolve.ElementKind) (*Element, error) {
	tree, err := e.parse(ctx, snap)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		kinds = resolve.AllKinds
	}
	m, ok := resolve.ResolveElement(tree, snap.Clamp(offset), kinds)
	if !ok {
		return nil, ErrNoElementFound
	}
	return &Element{Kind: m.Kind, Range: m.Range, Text: snap.Slice(m.Range)}, nil
}

// ScopeMembers lists the members of the scope enclosing offset.
func (e *Engine) ScopeMembers(ctx context.Context, snap *document.Snapshot, offset int) ([]scope.Member, error) {
	tree, err := e.parse(ctx, snap)
	if err != nil {
		return nil, err
	}
	return e.members(tree, snap.Clamp(offset))
}

func (e *Engine) members(tree *syntax.Tree, offset int) ([]scope.Member, error) {
	id := scope.FindScope(tree, offset)
	if id == syntax.NoNode {
		return nil, ErrNoScopeFound
	}
	members := scope.ListMembers(tree, id)
	e.logger.Debug("listed scope members", "scope", tree.Node(id).Type, "count", len(members))
	return members, nil
}

// NextMember returns the member after offset, wrapping to the first.
func (e *Engine) NextMember(ctx context.Context, snap *document.Snapshot, offset int) (*scope.Member, error) {
	return e.step(ctx, snap, offset, navigate.Next)
}

// PreviousMember returns the member before offset, wrapping to the last.
func (e *Engine) PreviousMember(ctx context.Context, snap *document.Snapshot, offset int) (*scope.Member, error) {
	return e.step(ctx, snap, offset, navigate.Previous)
}

func (e *Engine) step(ctx context.Context, snap *document.Snapshot, offset int, pick func([]scope.Member, int) (scope.Member, bool)) (*scope.Member, error) {
	members, err := e.ScopeMembers(ctx, snap, offset)
	if err != nil {
		return nil, err
	}
	m, ok := pick(members, snap.Clamp(offset))
	if !ok {
		return nil, ErrEmptyScope
	}
	return &m, nil
}

// MoveResult is the outcome of MoveMember.
type MoveResult struct {
	Applied    bool                 `json:"applied"`
	Reason     string               `json:"reason,omitempty"`
	Plan       *document.EditPlan   `json:"plan,omitempty"`
	Relocation move.Relocation      `json:"relocation"`
	Selections []document.Selection `json:"selections,omitempty"`
	// Warning is ErrRelocationFailure when the cursor fell back.
	Warning error `json:"-"`
}

// MoveMember moves the members touched by selections one step in dir.
// The scope is the one enclosing the first selection's active end.
func (e *Engine) MoveMember(ctx context.Context, snap *document.Snapshot, selections []document.Selection, dir move.Direction) (*MoveResult, error) {
	if len(selections) == 0 {
		return nil, fmt.Errorf("%w: no selection", ErrEmptySelection)
	}
	tree, err := e.parse(ctx, snap)
	if err != nil {
		return nil, err
	}
	members, err := e.members(tree, snap.Clamp(selections[0].Active))
	if err != nil {
		return nil, err
	}

	res, err := move.Plan(snap, members, selections, dir)
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		e.logger.Debug("move not applied", "reason", res.Reason, "direction", dir)
		if res.Reason == move.ReasonTooFewMembers {
			return nil, ErrEmptyScope
		}
		return &MoveResult{Reason: string(res.Reason)}, nil
	}

	reloc := move.Relocate(ctx, res.Text, snap.Dialect, res.Target, e.window)
	out := &MoveResult{
		Applied:    true,
		Plan:       res.Plan,
		Relocation: reloc,
		Selections: []document.Selection{document.Cursor(reloc.Offset)},
	}
	if reloc.Method == move.MethodFallback {
		out.Warning = ErrRelocationFailure
	}
	e.logger.Debug("moved member",
		"name", res.Target.Name,
		"direction", dir,
		"expected_line", res.Target.ExpectedLine,
		"relocation", reloc.Method,
		"line", reloc.Line)
	return out, nil
}

// SortMembers orders the slots of the scope enclosing offset by name. A
// nil plan means the scope is already sorted.
func (e *Engine) SortMembers(ctx context.Context, snap *document.Snapshot, offset int, ascending bool) (*document.EditPlan, error) {
	members, err := e.ScopeMembers(ctx, snap, offset)
	if err != nil {
		return nil, err
	}
	if len(scope.Slots(members)) < 2 {
		return nil, ErrEmptyScope
	}
	plan, changed, err := move.SortPlan(snap, members, ascending)
	if err != nil {
		return nil, err
	}
	if !changed {
		e.logger.Debug("scope already sorted", "members", len(members))
		return nil, nil
	}
	return plan, nil
}

// ExtractToFunction extracts the selection into a new function called
// name, or the configured default name when name is empty.
func (e *Engine) ExtractToFunction(ctx context.Context, snap *document.Snapshot, sel document.Range, name string) (*extract.Result, error) {
	if name == "" {
		name = e.defaultName
	}
	if err := extract.ValidateName(name); err != nil {
		return nil, err
	}
	sel = document.Range{Start: snap.Clamp(sel.Start), End: snap.Clamp(sel.End)}
	if sel.IsEmpty() {
		return nil, ErrEmptySelection
	}

	tree, err := e.parse(ctx, snap)
	if err != nil {
		return nil, err
	}
	a, err := extract.Analyze(ctx, tree, snap.Slice(sel), sel.Start, sel.End, e.inferencer)
	if err != nil {
		if errors.Is(err, extract.ErrSelectionParse) {
			return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
		}
		return nil, err
	}
	for _, d := range a.Dropped {
		e.logger.Debug("identifier not promoted to parameter", "name", d.Name, "reason", d.Reason)
	}

	res, err := extract.Generate(snap, a, name, e.extractOpts)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted function",
		"name", res.FunctionName,
		"parameters", len(res.Parameters),
		"return_type", res.ReturnType,
		"class_method", res.IsClassMethod)
	return res, nil
}
