package move

import (
	"context"
	"regexp"

	"github.com/mvp-joe/cortex-refactor/internal/document"
	"github.com/mvp-joe/cortex-refactor/internal/syntax"
)

// DefaultWindow is the number of lines searched on each side of the
// expected line before falling back to a re-parse.
const DefaultWindow = 10

// Method records how a relocation found its offset.
type Method string

const (
	MethodText     Method = "text"
	MethodTree     Method = "tree"
	MethodFallback Method = "fallback"
)

// Relocation is the cursor position chosen after a move.
type Relocation struct {
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Method Method `json:"method"`
}

// declarationPatterns returns line patterns that match name in a
// declaration position. Group 1 is the name.
func declarationPatterns(name string) []*regexp.Regexp {
	q := regexp.QuoteMeta(name)
	modifiers := `(?:(?:export|default|declare|public|private|protected|static|readonly|abstract|async|override|get|set|accessor)\s+)*`
	return []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?:@\S+\s+)*` + modifiers + `(?:(?:function\*?|class|interface|type|enum|namespace|module)\s+)?\*?(` + q + `)\s*[(<:=?!;,{]`),
		regexp.MustCompile(`^\s*` + modifiers + `(?:const|let|var)\s+[^=]*?(?:^|[^\w$])(` + q + `)(?:[^\w$]|$)`),
		regexp.MustCompile(`^\s*(?:await\s+)?(` + q + `)\s*\(`),
		regexp.MustCompile(`^\s*["']?(` + q + `)["']?\s*[:(]`),
	}
}

// Relocate finds the moved declaration in text. It searches lines within
// window of the expected line for a declaration-shaped match, then parses
// text once and picks the same-named declaration nearest the expected
// line, and finally falls back to the start of the expected line.
func Relocate(ctx context.Context, text string, dialect syntax.Dialect, target Target, window int) Relocation {
	snap := document.NewSnapshot(text, dialect)
	if window <= 0 {
		window = DefaultWindow
	}
	if target.Name != "" {
		if off, ok := searchLines(snap, target, window); ok {
			return Relocation{Offset: off, Line: snap.PositionAt(off).Line, Method: MethodText}
		}
		if off, ok := searchTree(ctx, snap, target); ok {
			return Relocation{Offset: off, Line: snap.PositionAt(off).Line, Method: MethodTree}
		}
	}
	off := snap.LineStart(target.ExpectedLine)
	return Relocation{Offset: off, Line: snap.PositionAt(off).Line, Method: MethodFallback}
}

func searchLines(snap *document.Snapshot, target Target, window int) (int, bool) {
	patterns := declarationPatterns(target.Name)
	// Expanding rings around the expected line; the nearest line wins and
	// the line above wins ties.
	for d := 0; d <= window; d++ {
		lines := []int{target.ExpectedLine - d}
		if d > 0 {
			lines = append(lines, target.ExpectedLine+d)
		}
		for _, line := range lines {
			if line < 0 || line >= snap.LineCount() {
				continue
			}
			text := snap.LineText(line)
			for _, re := range patterns {
				if loc := re.FindStringSubmatchIndex(text); loc != nil {
					return snap.LineStart(line) + loc[2], true
				}
			}
		}
	}
	return 0, false
}

func searchTree(ctx context.Context, snap *document.Snapshot, target Target) (int, bool) {
	tree, err := syntax.Parse(ctx, []byte(snap.Text), snap.Dialect)
	if err != nil {
		return 0, false
	}
	best, bestDist := -1, -1
	tree.Walk(tree.Root(), func(id syntax.NodeID) bool {
		n := tree.Node(id)
		at := syntax.NoNode
		switch {
		case n.Kind.IsDeclaration() && tree.Name(id) == target.Name:
			at = tree.NameOf(id)
		case n.Kind == syntax.KindPair && tree.Name(id) == target.Name:
			at = tree.NameOf(id)
		case n.Kind == syntax.KindCallExpression && tree.Text(tree.ChildByField(id, "function")) == target.Name:
			at = id
		}
		if at == syntax.NoNode {
			return true
		}
		dist := tree.Node(at).StartRow - target.ExpectedLine
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = tree.Node(at).Start, dist
		}
		return true
	})
	return best, best >= 0
}
