package syntax

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Dialect selects the grammar used to parse a buffer.
type Dialect string

const (
	TypeScript Dialect = "typescript"
	TSX        Dialect = "tsx"
	JavaScript Dialect = "javascript"
)

// Dialects lists every supported dialect in a stable order.
var Dialects = []Dialect{TypeScript, TSX, JavaScript}

// ParseDialect maps a user supplied name to a Dialect.
// Common aliases (ts, js, jsx) are accepted.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "typescript", "ts":
		return TypeScript, nil
	case "tsx":
		return TSX, nil
	case "javascript", "js", "jsx", "mjs", "cjs":
		return JavaScript, nil
	}
	return "", fmt.Errorf("unknown dialect %q (valid: typescript, tsx, javascript)", name)
}

// Typed reports whether the dialect accepts type annotations.
func (d Dialect) Typed() bool {
	return d == TypeScript || d == TSX
}

func (d Dialect) language() (*sitter.Language, error) {
	switch d {
	case TypeScript, "":
		return sitter.NewLanguage(typescript.LanguageTypescript()), nil
	case TSX:
		return sitter.NewLanguage(typescript.LanguageTSX()), nil
	case JavaScript:
		return sitter.NewLanguage(javascript.Language()), nil
	}
	return nil, fmt.Errorf("unsupported dialect %q", string(d))
}
