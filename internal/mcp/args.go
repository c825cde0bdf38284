package mcp

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/mark3labs/mcp-go/mcp"
)

// BufferArgs are shared by every tool: the buffer text and a position in it.
// The position is either an offset or a 1-based line and column.
type BufferArgs struct {
	Source  string `json:"source"`
	Dialect string `json:"dialect"`
	Path    string `json:"path"`
	Offset  *int   `json:"offset"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// ResolveArgs are the arguments of cortex_resolve_element.
type ResolveArgs struct {
	BufferArgs
	Kinds []string `json:"kinds"`
}

// NavigateArgs are the arguments of cortex_navigate_member.
type NavigateArgs struct {
	BufferArgs
	Direction string `json:"direction"`
}

// MoveArgs are the arguments of cortex_move_member. Offset and End
// form the selection; End defaults to Offset.
type MoveArgs struct {
	BufferArgs
	Direction string `json:"direction"`
	End       *int   `json:"end"`
}

// SortArgs are the arguments of cortex_sort_members.
type SortArgs struct {
	BufferArgs
	Descending bool `json:"descending"`
}

// ExtractArgs are the arguments of cortex_extract_function. The selection
// runs from the start position to End or EndLine:EndColumn.
type ExtractArgs struct {
	BufferArgs
	End       *int   `json:"end"`
	EndLine   int    `json:"end_line"`
	EndColumn int    `json:"end_column"`
	Name      string `json:"name"`
}

// bindArguments decodes tool arguments into target. Clients often send
// every value as a string, so JSON encoded arrays, booleans and numbers
// inside strings are decoded first.
func bindArguments(request mcp.CallToolRequest, target any) error {
	if _, ok := request.GetRawArguments().(map[string]any); !ok {
		return fmt.Errorf("invalid arguments format")
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Squash:           true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func jsonStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	target := to
	if target.Kind() == reflect.Pointer {
		target = target.Elem()
	}
	switch {
	case target.Kind() == reflect.Slice && strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]"):
		out := reflect.New(target)
		if err := json.Unmarshal([]byte(raw), out.Interface()); err == nil {
			return out.Elem().Interface(), nil
		}
	case target.Kind() == reflect.Bool && (raw == "true" || raw == "false"):
		return raw == "true", nil
	case target.Kind() >= reflect.Int && target.Kind() <= reflect.Float64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}
