package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/sfinnie/helloLSP/parser"
)

// LineEncoder writes one line per node, indented by depth:
//
//	source_file	1:1-1:12
//	  greeting	1:1-1:12
//	    salutation: salutation	1:1-1:6
//	      hello	1:1-1:6	"hello"
type LineEncoder struct {
	w    io.Writer
	tree *parser.Tree
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	return write(e.w, e)
}

func (e *LineEncoder) MarshalText() ([]byte, error) {
	t := e.tree
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("lines: no tree")
	}
	var sb strings.Builder
	t.Walk(func(n *parser.Node, field parser.FieldID, depth int) bool {
		fmt.Fprintf(&sb, "%s%s%s\t%s", strings.Repeat("  ", depth), fieldPrefix(t, field), t.Type(n), n.Span)
		if n.IsLeaf() {
			fmt.Fprintf(&sb, "\t%q", n.Token.Literal)
		}
		sb.WriteByte('\n')
		return true
	})
	for _, err := range t.Recovered {
		fmt.Fprintf(&sb, "recovered\t%s\n", err)
	}
	return []byte(sb.String()), nil
}
