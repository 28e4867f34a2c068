// Package format renders syntax trees and syntax errors for people and
// tools.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/sfinnie/helloLSP/parser"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(tree *parser.Tree) error
}

// Names lists the formats understood by New.
var Names = []string{"sexp", "json", "lines"}

// New returns the encoder for the named format.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "sexp":
		return NewSExprEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "lines":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}

func write(w io.Writer, m encoding.TextMarshaler) error {
	text, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}

func fieldPrefix(tree *parser.Tree, field parser.FieldID) string {
	if field == 0 {
		return ""
	}
	return tree.Language.FieldName(field) + ": "
}
