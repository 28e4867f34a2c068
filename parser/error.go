package parser

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a SyntaxError.
type ErrorKind int

const (
	// LexicalError: the input at the position matches no token.
	LexicalError ErrorKind = iota
	// SyntacticError: the token is valid but not allowed here.
	SyntacticError
	// UnexpectedEndOfInput: the input ended while more was required.
	UnexpectedEndOfInput
)

var errorKindNames = map[ErrorKind]string{
	LexicalError:         "lexical error",
	SyntacticError:       "syntax error",
	UnexpectedEndOfInput: "unexpected end of input",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "unknown error"
}

// SyntaxError reports the token a parse could not continue with.
type SyntaxError struct {
	Kind     ErrorKind
	Position Position
	Token    Token
	State    StateID

	// Unexpected is the symbol name of Token; Expected the names of the
	// terminals the state would have accepted.
	Unexpected string
	Expected   []string

	// Recovered holds the errors recovery skipped over before the parse
	// stopped, in source order.
	Recovered []*SyntaxError
}

func newSyntaxError(lang *Language, state StateID, tok Token) *SyntaxError {
	kind := SyntacticError
	switch tok.Symbol {
	case SymbolEnd:
		kind = UnexpectedEndOfInput
	case SymbolError:
		kind = LexicalError
	}

	var expected []string
	for _, sym := range lang.Expected(state) {
		expected = append(expected, lang.SymbolName(sym))
	}

	return &SyntaxError{
		Kind:       kind,
		Position:   tok.Span.Start,
		Token:      tok,
		State:      state,
		Unexpected: lang.SymbolName(tok.Symbol),
		Expected:   expected,
	}
}

// Span returns the source range of the offending token.
func (e *SyntaxError) Span() Span {
	return e.Token.Span
}

// Expects reports whether name is in the expected set.
func (e *SyntaxError) Expects(name string) bool {
	for _, n := range e.Expected {
		if n == name {
			return true
		}
	}
	return false
}

func (e *SyntaxError) Error() string {
	return e.Position.String() + ": " + e.Message()
}

// Message is the error text without the position.
func (e *SyntaxError) Message() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Kind != UnexpectedEndOfInput {
		fmt.Fprintf(&b, ": unexpected %s %q", e.Unexpected, e.Token.Literal)
	}
	if len(e.Expected) > 0 {
		b.WriteString(", expected ")
		b.WriteString(JoinAlternatives(e.Expected))
	}
	return b.String()
}

// JoinAlternatives renders names as "a", "a or b", "a, b or c".
func JoinAlternatives(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}
