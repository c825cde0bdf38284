package syntax

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrParse indicates the grammar could not produce a tree for the input.
var ErrParse = errors.New("parse failed")

// Parse parses source in the given dialect and flattens the result into an
// arena. The tree-sitter tree is released before Parse returns, so the
// result holds no C memory and can outlive the parser.
func Parse(ctx context.Context, source []byte, dialect Dialect) (*Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	language, err := dialect.language()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("%w: failed to set %s language: %v", ErrParse, dialect, err)
	}

	tsTree := parser.Parse(source, nil)
	if tsTree == nil {
		return nil, fmt.Errorf("%w: no tree for %s source", ErrParse, dialect)
	}
	defer tsTree.Close()

	if dialect == "" {
		dialect = TypeScript
	}
	tree := &Tree{
		Dialect: dialect,
		Source:  source,
	}
	root := tsTree.RootNode()
	tree.errors = root.HasError()
	tree.flatten(root)

	return tree, nil
}

// flatten copies the tree-sitter tree into the arena with a cursor walk so
// field names are available for every child.
func (t *Tree) flatten(root *sitter.Node) {
	cursor := root.Walk()
	defer cursor.Close()

	t.Nodes = append(t.Nodes, t.newNode(root, "", NoNode))
	parents := []NodeID{0}

	if !cursor.GotoFirstChild() {
		return
	}
	for {
		parent := parents[len(parents)-1]
		node := cursor.Node()
		id := NodeID(len(t.Nodes))
		t.Nodes = append(t.Nodes, t.newNode(node, cursor.FieldName(), parent))
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)

		if cursor.GotoFirstChild() {
			parents = append(parents, id)
			continue
		}
		for !cursor.GotoNextSibling() {
			if !cursor.GotoParent() || len(parents) == 1 {
				return
			}
			parents = parents[:len(parents)-1]
		}
	}
}

func (t *Tree) newNode(n *sitter.Node, field string, parent NodeID) Node {
	// Keyword tokens share type names with named rules ("class", "function",
	// "string"), so only named nodes get a kind.
	kind := KindOther
	if n.IsNamed() {
		kind = KindOf(n.Kind())
	}
	return Node{
		ID:       NodeID(len(t.Nodes)),
		Kind:     kind,
		Type:     n.Kind(),
		Field:    field,
		Start:    int(n.StartByte()),
		End:      int(n.EndByte()),
		StartRow: int(n.StartPosition().Row),
		EndRow:   int(n.EndPosition().Row),
		Named:    n.IsNamed(),
		Missing:  n.IsMissing(),
		Parent:   parent,
	}
}
