package extract

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrInvalidFunctionName indicates a name that is not a usable identifier.
	ErrInvalidFunctionName = errors.New("invalid function name")

	// ErrNameConflict indicates the name is already declared where the
	// function would be inserted.
	ErrNameConflict = errors.New("function name already in use")
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true, "let": true, "static": true, "implements": true, "interface": true,
	"package": true, "private": true, "protected": true, "public": true, "await": true,
	"async": true, "arguments": true, "eval": true, "undefined": true, "constructor": true,
}

// ValidateName rejects names that are not identifiers or are reserved.
func ValidateName(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %q is not an identifier", ErrInvalidFunctionName, name)
	}
	if reservedWords[name] {
		return fmt.Errorf("%w: %q is a reserved word", ErrInvalidFunctionName, name)
	}
	return nil
}
