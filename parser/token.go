package parser

import "fmt"

// Position is a location in source text. Line and Column are 1-based;
// Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open byte range [Start.Offset, End.Offset).
type Span struct {
	Start Position
	End   Position
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// Token is one lexeme produced by the lexer.
type Token struct {
	Symbol  Symbol
	Span    Span
	Literal string
}

func (t Token) IsEnd() bool {
	return t.Symbol == SymbolEnd
}

func (t Token) IsError() bool {
	return t.Symbol == SymbolError
}

func (t Token) String() string {
	return fmt.Sprintf("%s %d %q", t.Span.Start, t.Symbol, t.Literal)
}
