package engine

import (
	"errors"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/extract"
)

// Sentinel errors returned by engine operations. Hosts report them as
// messages; none of them leaves the buffer modified.
var (
	// ErrParseFailure indicates the buffer or the selection could not be parsed.
	ErrParseFailure = errors.New("parse failure")

	// ErrNoElementFound indicates no construct of the requested kinds is under the cursor.
	ErrNoElementFound = errors.New("no element found")

	// ErrNoScopeFound indicates no scope encloses the offset.
	ErrNoScopeFound = errors.New("no scope found")

	// ErrEmptyScope indicates the scope has too few members for the operation.
	ErrEmptyScope = errors.New("scope has too few members")

	// ErrRelocationFailure is reported alongside a successful move when the
	// cursor fell back to the start of the expected line.
	ErrRelocationFailure = errors.New("could not relocate cursor to moved member")

	ErrInvalidFunctionName  = extract.ErrInvalidFunctionName
	ErrNameConflict         = extract.ErrNameConflict
	ErrEmptySelection       = extract.ErrEmptySelection
	ErrUnsupportedSelection = extract.ErrUnsupportedSelection
	ErrStaleSnapshot        = document.ErrStaleSnapshot
	ErrOverlappingEdits     = document.ErrOverlappingEdits
)
