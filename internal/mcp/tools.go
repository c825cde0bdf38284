package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cortex-refactor/internal/config"
	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/engine"
	"github.com/mvp-joe/cortex-refactor/internal/extract"
	"github.com/mvp-joe/cortex-refactor/internal/move"
	"github.com/mvp-joe/cortex-refactor/internal/resolve"
	"github.com/mvp-joe/cortex-refactor/internal/scope"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

type toolSet struct {
	engine  *engine.Engine
	matcher *config.DialectMatcher
	logger  *slog.Logger
}

func bufferOptions(extra ...mcp.ToolOption) []mcp.ToolOption {
	opts := []mcp.ToolOption{
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full text of the buffer")),
		mcp.WithString("dialect",
			mcp.Description("typescript (default), tsx or javascript")),
		mcp.WithString("path",
			mcp.Description("File path used to pick the dialect when dialect is omitted")),
		mcp.WithNumber("offset",
			mcp.Description("0-based byte offset of the cursor")),
		mcp.WithNumber("line",
			mcp.Description("1-based cursor line, used when offset is omitted")),
		mcp.WithNumber("column",
			mcp.Description("1-based cursor column, used with line")),
	}
	return append(opts, extra...)
}

func (ts *toolSet) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("cortex_resolve_element", bufferOptions(
		mcp.WithDescription("Find the smallest class, function, call, variable, property, multiline string or markup element under the cursor and return its range."),
		mcp.WithArray("kinds",
			mcp.Description("Element kinds to accept: class, function, call, variable, property, string, markup (default: all)"),
			mcp.WithStringItems()),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.resolveHandler())

	s.AddTool(mcp.NewTool("cortex_scope_members", bufferOptions(
		mcp.WithDescription("List the members of the innermost scope (class, interface, object literal, function body, namespace or file) enclosing the cursor."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.membersHandler())

	s.AddTool(mcp.NewTool("cortex_navigate_member", bufferOptions(
		mcp.WithDescription("Return the next or previous member of the enclosing scope, wrapping around at the ends."),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Enum("next", "previous"),
			mcp.Description("next or previous")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.navigateHandler())

	s.AddTool(mcp.NewTool("cortex_move_member", bufferOptions(
		mcp.WithDescription("Swap the selected member, or contiguous block of members, with its neighbour. Returns the edit plan, the new text and the relocated cursor."),
		mcp.WithString("direction",
			mcp.Required(),
			mcp.Enum("up", "down"),
			mcp.Description("up or down")),
		mcp.WithNumber("end",
			mcp.Description("0-based byte offset of the selection end (default: offset)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.moveHandler())

	s.AddTool(mcp.NewTool("cortex_sort_members", bufferOptions(
		mcp.WithDescription("Sort the members of the enclosing scope by name. Returns the edit plan and the new text."),
		mcp.WithBoolean("descending",
			mcp.Description("Sort Z to A (default: false)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.sortHandler())

	s.AddTool(mcp.NewTool("cortex_extract_function", bufferOptions(
		mcp.WithDescription("Extract the selected statements into a new function or method. Parameters, return values and the return type are derived from the surrounding code."),
		mcp.WithNumber("end",
			mcp.Description("0-based byte offset where the selection ends")),
		mcp.WithNumber("end_line",
			mcp.Description("1-based line where the selection ends, used when end is omitted")),
		mcp.WithNumber("end_column",
			mcp.Description("1-based column where the selection ends")),
		mcp.WithString("name",
			mcp.Description("Name of the new function (default from configuration)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)...), ts.extractHandler())
}

// PlanResponse is an edit plan together with the text it produces.
type PlanResponse struct {
	Plan *document.EditPlan `json:"plan,omitempty"`
	Text string             `json:"text,omitempty"`
}

// MembersResponse lists scope members.
type MembersResponse struct {
	Members []scope.Member `json:"members"`
	Total   int            `json:"total"`
}

// MoveResponse is the outcome of cortex_move_member.
type MoveResponse struct {
	engine.MoveResult
	Text    string `json:"text,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// SortResponse is the outcome of cortex_sort_members.
type SortResponse struct {
	PlanResponse
	Changed bool `json:"changed"`
}

// ExtractResponse is the outcome of cortex_extract_function.
type ExtractResponse struct {
	*extract.Result
	Text string `json:"text"`
}

func applied(plan *document.EditPlan, snap *document.Snapshot) (string, error) {
	if plan == nil {
		return "", nil
	}
	return plan.Apply(snap)
}

func (ts *toolSet) resolveHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ResolveArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		offset, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}
		kinds, err := resolve.ParseElementKinds(strings.Join(args.Kinds, ","))
		if err != nil {
			return toolError(fmt.Errorf("%w: %v", errInvalidArgument, err))
		}

		el, err := ts.engine.ResolveElementRange(ctx, snap, offset, kinds)
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(el)
	}
}

func (ts *toolSet) membersHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args BufferArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		offset, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}

		members, err := ts.engine.ScopeMembers(ctx, snap, offset)
		if err != nil {
			return toolError(err)
		}
		if members == nil {
			members = []scope.Member{}
		}
		return marshalToolResponse(MembersResponse{Members: members, Total: len(members)})
	}
}

func (ts *toolSet) navigateHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args NavigateArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		offset, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}

		var member *scope.Member
		switch strings.ToLower(args.Direction) {
		case "next":
			member, err = ts.engine.NextMember(ctx, snap, offset)
		case "previous", "prev":
			member, err = ts.engine.PreviousMember(ctx, snap, offset)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid direction %q (valid: next, previous)", args.Direction)), nil
		}
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(member)
	}
}

func (ts *toolSet) moveHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args MoveArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		dir, err := move.ParseDirection(args.Direction)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		start, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}
		end := start
		if args.End != nil {
			if end, err = offsetOf(snap, args.End, 0, 0, "end"); err != nil {
				return toolError(err)
			}
		}

		res, err := ts.engine.MoveMember(ctx, snap, []document.Selection{{Anchor: start, Active: end}}, dir)
		if err != nil {
			return toolError(err)
		}
		out := MoveResponse{MoveResult: *res}
		if res.Warning != nil {
			out.Warning = res.Warning.Error()
		}
		if out.Text, err = applied(res.Plan, snap); err != nil {
			return toolError(err)
		}
		return marshalToolResponse(out)
	}
}

func (ts *toolSet) sortHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SortArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		offset, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}

		plan, err := ts.engine.SortMembers(ctx, snap, offset, !args.Descending)
		if err != nil {
			return toolError(err)
		}
		out := SortResponse{PlanResponse: PlanResponse{Plan: plan}, Changed: plan != nil}
		if out.Text, err = applied(plan, snap); err != nil {
			return toolError(err)
		}
		return marshalToolResponse(out)
	}
}

func (ts *toolSet) extractHandler() toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args ExtractArgs
		if err := bindArguments(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		snap, err := args.snapshot(ts.matcher)
		if err != nil {
			return toolError(err)
		}
		start, err := args.position(snap)
		if err != nil {
			return toolError(err)
		}
		end, err := offsetOf(snap, args.End, args.EndLine, args.EndColumn, "end")
		if err != nil {
			return toolError(err)
		}

		res, err := ts.engine.ExtractToFunction(ctx, snap, document.Range{Start: start, End: end}, args.Name)
		if err != nil {
			return toolError(err)
		}
		text, err := applied(res.Plan, snap)
		if err != nil {
			return toolError(err)
		}
		ts.logger.Debug("extract tool", "function", res.FunctionName, "path", args.Path)
		return marshalToolResponse(ExtractResponse{Result: res, Text: text})
	}
}
