package syntax

// NodeID addresses a node inside its Tree's arena.
type NodeID int32

// NoNode is returned by lookups that find nothing.
const NoNode NodeID = -1

// Node is one syntax node. Parent and Children are arena indices; the Tree
// owns every node.
type Node struct {
	ID       NodeID
	Kind     Kind
	Type     string // raw grammar type, e.g. "lexical_declaration"
	Field    string // field name in the parent, e.g. "name", "body"
	Start    int    // byte offset, inclusive
	End      int    // byte offset, exclusive
	StartRow int    // 0-based line of Start
	EndRow   int    // 0-based line of End
	Named    bool
	Missing  bool
	Parent   NodeID
	Children []NodeID
}

// Tree is a parsed buffer flattened into an arena of nodes.
type Tree struct {
	Dialect Dialect
	Source  []byte
	Nodes   []Node
	errors  bool
}

// Root returns the program node.
func (t *Tree) Root() NodeID {
	if len(t.Nodes) == 0 {
		return NoNode
	}
	return 0
}

// HasErrors reports whether the parser had to recover from syntax errors.
func (t *Tree) HasErrors() bool {
	return t.errors
}

// Node returns the node with the given id, or nil for NoNode.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.Nodes) {
		return nil
	}
	return &t.Nodes[id]
}

// Kind returns the kind of id, or KindOther for NoNode.
func (t *Tree) Kind(id NodeID) Kind {
	if n := t.Node(id); n != nil {
		return n.Kind
	}
	return KindOther
}

// Parent returns the parent of id, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	if n := t.Node(id); n != nil {
		return n.Parent
	}
	return NoNode
}

// Text returns the source text covered by id.
func (t *Tree) Text(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	return string(t.Source[n.Start:n.End])
}

// ChildByField returns the first child stored under field.
func (t *Tree) ChildByField(id NodeID, field string) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	for _, c := range n.Children {
		if t.Nodes[c].Field == field {
			return c
		}
	}
	return NoNode
}

// ChildrenByField returns every child stored under field.
func (t *Tree) ChildrenByField(id NodeID, field string) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	var out []NodeID
	for _, c := range n.Children {
		if t.Nodes[c].Field == field {
			out = append(out, c)
		}
	}
	return out
}

// NamedChildren returns the named children of id, skipping comments.
func (t *Tree) NamedChildren(id NodeID) []NodeID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	out := make([]NodeID, 0, len(n.Children))
	for _, c := range n.Children {
		cn := &t.Nodes[c]
		if cn.Named && cn.Kind != KindComment {
			out = append(out, c)
		}
	}
	return out
}

// FindChildByKind finds the first direct child of the given kind.
func (t *Tree) FindChildByKind(id NodeID, kind Kind) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	for _, c := range n.Children {
		if t.Nodes[c].Kind == kind {
			return c
		}
	}
	return NoNode
}

// FindChildByType finds the first direct child with the given raw grammar
// type. Anonymous tokens such as "async" or "=" are only reachable this way.
func (t *Tree) FindChildByType(id NodeID, nodeType string) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	for _, c := range n.Children {
		if t.Nodes[c].Type == nodeType {
			return c
		}
	}
	return NoNode
}

// Contains reports whether offset lies in [Start, End).
func (n *Node) Contains(offset int) bool {
	return n.Start <= offset && offset < n.End
}

// Covers reports whether offset lies in [Start, End]. A cursor that sits
// just after the last character of a token is still over that token.
func (n *Node) Covers(offset int) bool {
	return n.Start <= offset && offset <= n.End
}

// DeepestAt descends from the root to the deepest node containing offset.
// An offset at the very end of the buffer resolves to the root.
func (t *Tree) DeepestAt(offset int) NodeID {
	cur := t.Root()
	if cur == NoNode {
		return NoNode
	}
	for {
		next := NoNode
		for _, c := range t.Nodes[cur].Children {
			cn := &t.Nodes[c]
			if cn.Start == cn.End {
				continue
			}
			if cn.Contains(offset) {
				next = c
				break
			}
		}
		if next == NoNode {
			return cur
		}
		cur = next
	}
}

// Ancestors returns id followed by each of its ancestors up to the root.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	for cur := id; cur != NoNode; cur = t.Nodes[cur].Parent {
		out = append(out, cur)
	}
	return out
}

// IsAncestor reports whether anc is id or one of its ancestors.
func (t *Tree) IsAncestor(anc, id NodeID) bool {
	for cur := id; cur != NoNode; cur = t.Nodes[cur].Parent {
		if cur == anc {
			return true
		}
	}
	return false
}

// EnclosingOfKind returns the nearest strict ancestor of id with one of the kinds.
func (t *Tree) EnclosingOfKind(id NodeID, kinds ...Kind) NodeID {
	if id == NoNode {
		return NoNode
	}
	for cur := t.Nodes[id].Parent; cur != NoNode; cur = t.Nodes[cur].Parent {
		for _, k := range kinds {
			if t.Nodes[cur].Kind == k {
				return cur
			}
		}
	}
	return NoNode
}

// EnclosingFunction returns the nearest strict ancestor that is function-like.
func (t *Tree) EnclosingFunction(id NodeID) NodeID {
	if id == NoNode {
		return NoNode
	}
	for cur := t.Nodes[id].Parent; cur != NoNode; cur = t.Nodes[cur].Parent {
		if t.Nodes[cur].Kind.IsFunctionLike() {
			return cur
		}
	}
	return NoNode
}

// Walk visits id and its descendants depth first. Returning false from the
// visitor skips the node's children.
func (t *Tree) Walk(id NodeID, visitor func(NodeID) bool) {
	if t.Node(id) == nil {
		return
	}
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !visitor(cur) {
			continue
		}
		children := t.Nodes[cur].Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// NameOf returns the node holding the declared name of a declaration, or NoNode.
func (t *Tree) NameOf(id NodeID) NodeID {
	switch t.Kind(id) {
	case KindFieldDefinition:
		// JavaScript spells the field name "property".
		if name := t.ChildByField(id, "name"); name != NoNode {
			return name
		}
		return t.ChildByField(id, "property")
	case KindPair:
		return t.ChildByField(id, "key")
	case KindShorthandPropertyIdentifier:
		return id
	}
	return t.ChildByField(id, "name")
}

// Name returns the declared name text of a declaration.
func (t *Tree) Name(id NodeID) string {
	return t.Text(t.NameOf(id))
}

// BoundIdentifiers returns the identifiers bound by a declaration target:
// a plain identifier or any destructuring pattern.
func (t *Tree) BoundIdentifiers(pattern NodeID) []NodeID {
	var out []NodeID
	t.Walk(pattern, func(id NodeID) bool {
		switch t.Kind(id) {
		case KindIdentifier, KindShorthandPropertyPattern:
			out = append(out, id)
			return false
		case KindPairPattern:
			// Only the value side binds; the key names a property.
			if v := t.ChildByField(id, "value"); v != NoNode {
				out = append(out, t.BoundIdentifiers(v)...)
			}
			return false
		case KindAssignmentPattern, KindObjectAssignmentPattern:
			if l := t.ChildByField(id, "left"); l != NoNode {
				out = append(out, t.BoundIdentifiers(l)...)
			}
			return false
		case KindTypeAnnotation:
			return false
		}
		return true
	})
	return out
}
