package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/sfinnie/helloLSP/parser"
)

// SExprEncoder writes trees as S-expressions:
//
//	(source_file (greeting salutation: (salutation) name: (name)))
//
// Anonymous leaves are left out unless ShowAnonymous is set, in which case
// they appear as quoted literals.
type SExprEncoder struct {
	ShowAnonymous bool

	w    io.Writer
	tree *parser.Tree
}

func NewSExprEncoder(w io.Writer) *SExprEncoder {
	return &SExprEncoder{w: w}
}

func (e *SExprEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *SExprEncoder) MarshalText() ([]byte, error) {
	if e.tree == nil || e.tree.Root == nil {
		return nil, fmt.Errorf("sexp: no tree")
	}
	var sb strings.Builder
	e.node(&sb, e.tree.Root)
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func (e *SExprEncoder) node(sb *strings.Builder, n *parser.Node) {
	if !e.tree.IsNamed(n) {
		fmt.Fprintf(sb, "%q", e.tree.Text(n))
		return
	}
	sb.WriteString("(")
	sb.WriteString(e.tree.Type(n))
	for _, c := range n.Children {
		if !e.ShowAnonymous && !e.tree.IsNamed(c.Node) {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(fieldPrefix(e.tree, c.Field))
		e.node(sb, c.Node)
	}
	sb.WriteString(")")
}
