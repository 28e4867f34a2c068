package workspace

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/sfinnie/helloLSP/parser"
)

// LSP positions count UTF-16 code units within a line; parser positions
// count bytes.

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		n += max(utf16.RuneLen(r), 1)
		b = b[size:]
	}
	return n
}

// toProtocolPosition converts a parser position in content.
func toProtocolPosition(content []byte, p parser.Position) protocol.Position {
	lineStart := p.Offset - (p.Column - 1)
	lineStart = max(min(lineStart, len(content)), 0)
	end := max(min(p.Offset, len(content)), lineStart)
	return protocol.Position{
		Line:      protocol.UInteger(max(p.Line-1, 0)),
		Character: protocol.UInteger(utf16Len(content[lineStart:end])),
	}
}

func toProtocolRange(content []byte, s parser.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(content, s.Start),
		End:   toProtocolPosition(content, s.End),
	}
}

// offsetOf converts an LSP position to a byte offset in content. Positions
// past the end of a line clamp to the line end; lines past the end of the
// content clamp to the content end.
func offsetOf(content []byte, pos protocol.Position) int {
	off := 0
	for line := protocol.UInteger(0); line < pos.Line; line++ {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return len(content)
		}
		off += i + 1
	}
	units := 0
	for off < len(content) && content[off] != '\n' {
		r, size := utf8.DecodeRune(content[off:])
		w := max(utf16.RuneLen(r), 1)
		if protocol.UInteger(units+w) > pos.Character {
			break
		}
		units += w
		off += size
	}
	return off
}
