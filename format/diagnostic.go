package format

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rivo/uniseg"

	"github.com/sfinnie/helloLSP/parser"
)

var (
	bold    = color.New(color.Bold)
	errText = color.New(color.Bold, color.FgRed)
	caret   = color.New(color.FgGreen)
)

// WriteDiagnostic prints err compiler style: the location and message, the
// offending source line, and a caret under the offending text.
//
//	greet.txt:1:1: syntax error: unexpected name "hola", expected end, hello or goodbye
//	hola Alice
//	^^^^
func WriteDiagnostic(w io.Writer, filename string, source []byte, err *parser.SyntaxError) error {
	loc := err.Position.String()
	if filename != "" {
		loc = filename + ":" + loc
	}
	line, col := sourceLine(source, err.Position)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", bold.Sprint(loc+":"), errText.Sprint(err.Message()))
	sb.WriteString(line)
	sb.WriteByte('\n')
	sb.WriteString(indentFor(line[:col]))
	sb.WriteString(caret.Sprint(strings.Repeat("^", caretWidth(line[col:], err.Span().Len()))))
	sb.WriteByte('\n')

	_, werr := io.WriteString(w, sb.String())
	return werr
}

// sourceLine returns the line containing pos and the byte offset of pos
// within it.
func sourceLine(source []byte, pos parser.Position) (string, int) {
	off := min(pos.Offset, len(source))
	start := bytes.LastIndexByte(source[:off], '\n') + 1
	end := bytes.IndexByte(source[off:], '\n')
	if end < 0 {
		end = len(source)
	} else {
		end += off
	}
	line := strings.TrimSuffix(string(source[start:end]), "\r")
	return line, min(off-start, len(line))
}

// indentFor returns blanks covering the display width of prefix. Tabs are
// kept so the caret lines up whatever the tab width.
func indentFor(prefix string) string {
	var sb strings.Builder
	g := uniseg.NewGraphemes(prefix)
	for g.Next() {
		s := g.Str()
		if s == "\t" {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", uniseg.StringWidth(s)))
	}
	return sb.String()
}

// caretWidth is the display width of the first n bytes of rest, at least 1.
func caretWidth(rest string, n int) int {
	n = min(n, len(rest))
	return max(uniseg.StringWidth(rest[:n]), 1)
}
