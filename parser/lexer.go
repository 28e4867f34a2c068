package parser

import (
	"unicode"
	"unicode/utf8"
)

// LexState is one state of the lexer DFA.
type LexState struct {
	Accept      Symbol
	HasAccept   bool
	EOF         int // state entered at end of input, -1 if none
	Transitions []LexTransition
}

// LexTransition moves to Next on a rune in [Lo, Hi]. A Skip transition
// discards the consumed rune and restarts the token at the cursor.
type LexTransition struct {
	Lo, Hi rune
	Next   int
	Skip   bool
}

func (s *LexState) transition(r rune) (LexTransition, bool) {
	for _, t := range s.Transitions {
		if t.Lo <= r && r <= t.Hi {
			return t, true
		}
	}
	return LexTransition{}, false
}

// Lexer runs the DFA of a Language over one input. It is not safe for
// concurrent use; the Language it reads from is.
type Lexer struct {
	states []LexState
	input  []byte
	pos    Position
}

func NewLexer(lang *Language, input []byte) *Lexer {
	return &Lexer{
		states: lang.LexStates,
		input:  input,
		pos:    Position{Line: 1, Column: 1},
	}
}

// Position returns the cursor position.
func (l *Lexer) Position() Position {
	return l.pos
}

func (l *Lexer) atEOF() bool {
	return l.pos.Offset >= len(l.input)
}

func (l *Lexer) peek() (rune, int) {
	return utf8.DecodeRune(l.input[l.pos.Offset:])
}

func (l *Lexer) advance(r rune, size int) {
	l.pos.Offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column += size
	}
}

// Next scans one token starting in the DFA state entry. At end of input it
// returns a SymbolEnd token; input no state accepts yields a SymbolError
// token covering the offending run of non-space characters.
func (l *Lexer) Next(entry uint16) Token {
	state := int(entry)
	start := l.pos
	eofTaken := false

	var (
		accepted  bool
		acceptSym Symbol
		acceptEnd Position
	)

	for state >= 0 && state < len(l.states) {
		st := &l.states[state]
		if st.HasAccept {
			accepted = true
			acceptSym = st.Accept
			acceptEnd = l.pos
		}

		if l.atEOF() {
			if st.EOF >= 0 && !eofTaken {
				eofTaken = true
				state = st.EOF
				continue
			}
			break
		}

		r, size := l.peek()
		t, ok := st.transition(r)
		if !ok {
			break
		}
		l.advance(r, size)
		if t.Skip {
			start = l.pos
			accepted = false
		}
		state = t.Next
	}

	if accepted {
		l.pos = acceptEnd
		return l.token(acceptSym, start, acceptEnd)
	}

	l.pos = start
	if l.atEOF() {
		return l.token(SymbolEnd, start, start)
	}
	return l.errorToken(start)
}

func (l *Lexer) errorToken(start Position) Token {
	r, size := l.peek()
	l.advance(r, size)
	for !l.atEOF() {
		r, size = l.peek()
		if unicode.IsSpace(r) {
			break
		}
		l.advance(r, size)
	}
	return l.token(SymbolError, start, l.pos)
}

func (l *Lexer) token(sym Symbol, start, end Position) Token {
	return Token{
		Symbol:  sym,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

// Tokenize scans the whole input from a single entry state. The final
// token is always the end token.
func (l *Lexer) Tokenize(entry uint16) []Token {
	var tokens []Token
	for {
		tok := l.Next(entry)
		tokens = append(tokens, tok)
		if tok.IsEnd() {
			return tokens
		}
	}
}
