package format

import (
	"encoding/json"
	"io"

	"github.com/sfinnie/helloLSP/parser"
)

type JSONEncoder struct {
	w    io.Writer
	tree *parser.Tree
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(tree *parser.Tree) error {
	e.tree = tree
	if err := write(e.w, e); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, "\n")
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(treeToJSON(e.tree), "", "  ")
}

type jsonTree struct {
	Language string       `json:"language"`
	Root     *jsonNode    `json:"root,omitempty"`
	Errors   []*jsonError `json:"errors,omitempty"`
}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Field    string      `json:"field,omitempty"`
	Named    bool        `json:"named"`
	Text     string      `json:"text,omitempty"`
	Span     jsonSpan    `json:"span"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonError struct {
	Kind     string       `json:"kind"`
	Message  string       `json:"message"`
	Position jsonPosition `json:"position"`
	Got      string       `json:"got,omitempty"`
	Expected []string     `json:"expected,omitempty"`
}

func treeToJSON(t *parser.Tree) *jsonTree {
	if t == nil {
		return &jsonTree{}
	}
	jt := &jsonTree{}
	if t.Language != nil {
		jt.Language = t.Language.Name
	}
	if t.Root != nil {
		jt.Root = nodeToJSON(t, t.Root, 0)
	}
	for _, err := range t.Recovered {
		jt.Errors = append(jt.Errors, errorToJSON(err))
	}
	return jt
}

func nodeToJSON(t *parser.Tree, n *parser.Node, field parser.FieldID) *jsonNode {
	jn := &jsonNode{
		Kind:  t.Type(n),
		Field: t.Language.FieldName(field),
		Named: t.IsNamed(n),
		Span:  spanToJSON(n.Span),
	}
	if n.IsLeaf() {
		jn.Text = n.Token.Literal
	}
	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, c := range n.Children {
			jn.Children[i] = nodeToJSON(t, c.Node, c.Field)
		}
	}
	return jn
}

func spanToJSON(s parser.Span) jsonSpan {
	return jsonSpan{Start: positionToJSON(s.Start), End: positionToJSON(s.End)}
}

func positionToJSON(p parser.Position) jsonPosition {
	return jsonPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func errorToJSON(err *parser.SyntaxError) *jsonError {
	return &jsonError{
		Kind:     err.Kind.String(),
		Message:  err.Message(),
		Position: positionToJSON(err.Position),
		Got:      err.Token.Literal,
		Expected: err.Expected,
	}
}

// MarshalError renders a syntax error in the JSON layout used for
// recovered errors.
func MarshalError(err *parser.SyntaxError) ([]byte, error) {
	return json.MarshalIndent(errorToJSON(err), "", "  ")
}
