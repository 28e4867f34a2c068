package parser

// Node is a node of the concrete syntax tree. Leaves carry the token they
// were shifted from; interior nodes carry children.
type Node struct {
	Symbol   Symbol
	Span     Span
	Token    *Token
	Children []Child
}

// Child is the edge from a node to one of its children. The field label
// belongs to the edge since one symbol may appear under different fields.
type Child struct {
	Field FieldID
	Node  *Node
}

func newLeaf(tok Token) *Node {
	return &Node{
		Symbol: tok.Symbol,
		Span:   tok.Span,
		Token:  &tok,
	}
}

func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// ChildByField returns the first child labeled f.
func (n *Node) ChildByField(f FieldID) *Node {
	for _, c := range n.Children {
		if c.Field == f {
			return c.Node
		}
	}
	return nil
}

// ChildrenOfSymbol returns the direct children with the given symbol.
func (n *Node) ChildrenOfSymbol(sym Symbol) []*Node {
	var result []*Node
	for _, c := range n.Children {
		if c.Node.Symbol == sym {
			result = append(result, c.Node)
		}
	}
	return result
}

// Leaves returns the leaves under n in source order.
func (n *Node) Leaves() []*Node {
	if n.IsLeaf() {
		return []*Node{n}
	}
	var leaves []*Node
	for _, c := range n.Children {
		leaves = append(leaves, c.Node.Leaves()...)
	}
	return leaves
}

// Tree is the result of a successful parse.
type Tree struct {
	Language *Language
	Source   []byte
	Root     *Node

	// Recovered holds the errors that recovery skipped over, in source
	// order. A tree with recovered errors is still a complete parse of
	// the remaining tokens.
	Recovered []*SyntaxError
}

// HasErrors reports whether recovery discarded any input.
func (t *Tree) HasErrors() bool {
	return len(t.Recovered) > 0
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	return string(t.Source[n.Span.Start.Offset:n.Span.End.Offset])
}

// Type returns the symbol name of n.
func (t *Tree) Type(n *Node) string {
	return t.Language.SymbolName(n.Symbol)
}

// IsNamed reports whether n is a named node rather than an anonymous
// literal.
func (t *Tree) IsNamed(n *Node) bool {
	return t.Language.Metadata(n.Symbol).Named
}

// ChildByFieldName returns the first child of n labeled with the named
// field.
func (t *Tree) ChildByFieldName(n *Node, name string) *Node {
	f, ok := t.Language.FieldByName(name)
	if !ok {
		return nil
	}
	return n.ChildByField(f)
}

// Walk visits the tree depth first in source order. field is the label of
// the edge leading to n. Returning false skips n's children.
func (t *Tree) Walk(fn func(n *Node, field FieldID, depth int) bool) {
	if t.Root == nil {
		return
	}
	walk(t.Root, 0, 0, fn)
}

func walk(n *Node, field FieldID, depth int, fn func(*Node, FieldID, int) bool) {
	if !fn(n, field, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c.Node, c.Field, depth+1, fn)
	}
}
