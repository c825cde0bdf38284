package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mvp-joe/cortex-refactor/internal/config"
	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/engine"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// errInvalidArgument marks argument problems the caller can fix.
var errInvalidArgument = errors.New("invalid argument")

// snapshot builds the buffer snapshot for a tool call. An explicit dialect
// wins over the path's glob match.
func (a BufferArgs) snapshot(matcher *config.DialectMatcher) (*document.Snapshot, error) {
	if a.Source == "" {
		return nil, fmt.Errorf("%w: source parameter is required", errInvalidArgument)
	}
	var dialect syntax.Dialect
	switch {
	case a.Dialect != "":
		d, err := syntax.ParseDialect(a.Dialect)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgument, err)
		}
		dialect = d
	default:
		dialect, _ = matcher.DialectFor(a.Path)
	}
	return document.NewSnapshot(a.Source, dialect), nil
}

// position returns the byte offset named by the arguments.
func (a BufferArgs) position(snap *document.Snapshot) (int, error) {
	return offsetOf(snap, a.Offset, a.Line, a.Column, "offset")
}

func offsetOf(snap *document.Snapshot, offset *int, line, column int, name string) (int, error) {
	if offset != nil {
		if *offset < 0 || *offset > len(snap.Text) {
			return 0, fmt.Errorf("%w: %s %d outside buffer of %d bytes", errInvalidArgument, name, *offset, len(snap.Text))
		}
		return *offset, nil
	}
	if line < 1 {
		return 0, fmt.Errorf("%w: %s or a 1-based line is required", errInvalidArgument, name)
	}
	if column < 1 {
		column = 1
	}
	return snap.OffsetAt(document.Position{Line: line - 1, Column: column - 1}), nil
}

// isUserError reports whether err should be shown to the caller as a tool
// error rather than failing the request.
func isUserError(err error) bool {
	for _, target := range []error{
		errInvalidArgument,
		engine.ErrParseFailure,
		engine.ErrNoElementFound,
		engine.ErrNoScopeFound,
		engine.ErrEmptyScope,
		engine.ErrInvalidFunctionName,
		engine.ErrNameConflict,
		engine.ErrEmptySelection,
		engine.ErrUnsupportedSelection,
		engine.ErrStaleSnapshot,
		engine.ErrOverlappingEdits,
		document.ErrEditOutOfRange,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// toolError converts err into the handler's return values.
func toolError(err error) (*mcp.CallToolResult, error) {
	if isUserError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response any) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
