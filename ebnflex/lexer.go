// Package ebnflex provides lexical scanning based on EBNF grammars.
//
// Tokens are the lexical productions (lowercase names) that a syntactic
// production refers to directly, and the string literals that appear in
// syntactic productions. Helper productions such as letter are only matched
// as part of a token.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// KindEOF and KindError are the kinds of the end token and of input that no
// token production matches.
const (
	KindEOF   = "EOF"
	KindError = "ERROR"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

type Option func(*Lexer)

// WithPriority ranks token productions for matches of equal length. Earlier
// names win; unlisted productions rank after listed ones, alphabetically.
func WithPriority(names ...string) Option {
	return func(l *Lexer) {
		for i, name := range names {
			l.priority[name] = i
		}
	}
}

// Lexer tokenizes input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	tokens   []string
	literals []string
	priority map[string]int
	input    []byte
	pos      Position
	memo     map[memoKey]int  // match length, -1 = no match
	visiting map[memoKey]bool // cycle detection
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string, opts ...Option) *Lexer {
	l := &Lexer{
		grammar:  grammar,
		priority: make(map[string]int),
		input:    input,
		pos:      Position{Filename: filename, Line: 1, Column: 1},
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.tokens, l.literals = l.tokenProductions()
	return l
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

func isLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(r)
}

// TokenKinds returns the token productions in priority order, followed by
// the literal tokens. The kind of a literal token is its text.
func (l *Lexer) TokenKinds() []string {
	kinds := append([]string(nil), l.tokens...)
	return append(kinds, l.literals...)
}

func (l *Lexer) tokenProductions() ([]string, []string) {
	refs := make(map[string]bool)
	lits := make(map[string]bool)
	syntactic := false
	for name, prod := range l.grammar {
		if isLexical(name) || prod.Expr == nil {
			continue
		}
		syntactic = true
		collectNames(prod.Expr, refs, lits)
	}

	var names []string
	for name, prod := range l.grammar {
		if !isLexical(name) || prod.Expr == nil {
			continue
		}
		if syntactic && !refs[name] {
			continue
		}
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		pi, iok := l.priority[names[i]]
		pj, jok := l.priority[names[j]]
		switch {
		case iok && jok:
			return pi < pj
		case iok != jok:
			return iok
		}
		return names[i] < names[j]
	})

	literals := make([]string, 0, len(lits))
	for lit := range lits {
		literals = append(literals, lit)
	}
	sort.Strings(literals)
	return names, literals
}

func collectNames(expr ebnf.Expression, names, literals map[string]bool) {
	switch e := expr.(type) {
	case *ebnf.Name:
		names[e.String] = true
	case *ebnf.Token:
		if e.String != "" {
			literals[e.String] = true
		}
	case ebnf.Sequence:
		for _, item := range e {
			collectNames(item, names, literals)
		}
	case ebnf.Alternative:
		for _, alt := range e {
			collectNames(alt, names, literals)
		}
	case *ebnf.Repetition:
		collectNames(e.Body, names, literals)
	case *ebnf.Option:
		collectNames(e.Body, names, literals)
	case *ebnf.Group:
		collectNames(e.Body, names, literals)
	}
}

// KindsOf returns every token production that matches all of literal, in
// priority order. A keyword literal usually also matches the more general
// productions.
func (l *Lexer) KindsOf(literal string) []string {
	m := &Lexer{
		grammar: l.grammar,
		input:   []byte(literal),
		memo:    make(map[memoKey]int),
	}
	var kinds []string
	for _, name := range l.tokens {
		m.visiting = make(map[memoKey]bool)
		if n, ok := m.tryMatch(l.grammar[name].Expr, 0); ok && n == len(literal) {
			kinds = append(kinds, name)
		}
	}
	for _, lit := range l.literals {
		if lit == literal {
			kinds = append(kinds, lit)
		}
	}
	return kinds
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return l.pos
}

func (l *Lexer) atEOF() bool {
	return l.pos.Offset >= len(l.input)
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRune(l.input[l.pos.Offset:])
	l.pos.Offset += size
	if r == '\n' {
		l.pos.Line++
		l.pos.Column = 1
	} else {
		l.pos.Column += size
	}
	return r
}

func (l *Lexer) skipSpace() {
	for !l.atEOF() {
		r, _ := utf8.DecodeRune(l.input[l.pos.Offset:])
		if !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// NextToken returns the next token from the input. Whitespace between
// tokens is skipped. The longest match wins; equally long matches go to the
// production with the higher priority. At end of input it returns an EOF
// token together with io.EOF.
func (l *Lexer) NextToken() (Token, error) {
	l.skipSpace()
	if l.atEOF() {
		return Token{Kind: KindEOF, Position: l.pos}, io.EOF
	}

	start := l.pos

	// Positions shift between tokens.
	l.memo = make(map[memoKey]int)

	var bestKind string
	var bestLen int

	for _, name := range l.tokens {
		l.visiting = make(map[memoKey]bool)
		n, _ := l.tryMatch(l.grammar[name].Expr, start.Offset)
		if n > bestLen {
			bestLen = n
			bestKind = name
		}
	}
	for _, lit := range l.literals {
		if n, ok := l.tryMatchToken(lit, start.Offset); ok && n > bestLen {
			bestLen = n
			bestKind = lit
		}
	}

	if bestLen == 0 {
		l.advance()
		for !l.atEOF() {
			r, _ := utf8.DecodeRune(l.input[l.pos.Offset:])
			if unicode.IsSpace(r) {
				break
			}
			l.advance()
		}
		return Token{
			Kind:     KindError,
			Literal:  string(l.input[start.Offset:l.pos.Offset]),
			Position: start,
		}, nil
	}

	for l.pos.Offset < start.Offset+bestLen {
		l.advance()
	}

	return Token{
		Kind:     bestKind,
		Literal:  string(l.input[start.Offset:l.pos.Offset]),
		Position: start,
	}, nil
}

// tryMatch reports whether expr matches at offset and how many bytes the
// match covers. Repetitions and options match the empty string.
func (l *Lexer) tryMatch(expr ebnf.Expression, offset int) (int, bool) {
	switch e := expr.(type) {
	case *ebnf.Token:
		return l.tryMatchToken(e.String, offset)

	case *ebnf.Range:
		return l.tryMatchRange(e.Begin.String, e.End.String, offset)

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n, ok := l.tryMatch(item, offset+total)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true

	case ebnf.Alternative:
		best, matched := 0, false
		for _, alt := range e {
			if n, ok := l.tryMatch(alt, offset); ok && (!matched || n > best) {
				best, matched = n, true
			}
		}
		return best, matched

	case *ebnf.Repetition:
		total := 0
		for {
			n, ok := l.tryMatch(e.Body, offset+total)
			if !ok || n == 0 {
				return total, true
			}
			total += n
		}

	case *ebnf.Option:
		n, _ := l.tryMatch(e.Body, offset)
		return n, true

	case *ebnf.Group:
		return l.tryMatch(e.Body, offset)

	case *ebnf.Name:
		return l.tryMatchName(e.String, offset)
	}
	return 0, false
}

// tryMatchName matches a named production with memoization and cycle
// detection.
func (l *Lexer) tryMatchName(name string, offset int) (int, bool) {
	key := memoKey{name: name, offset: offset}

	if result, ok := l.memo[key]; ok {
		return max(result, 0), result >= 0
	}

	// Left recursion.
	if l.visiting[key] {
		return 0, false
	}

	prod, ok := l.grammar[name]
	if !ok || prod.Expr == nil {
		l.memo[key] = -1
		return 0, false
	}

	l.visiting[key] = true
	n, matched := l.tryMatch(prod.Expr, offset)
	delete(l.visiting, key)

	if matched {
		l.memo[key] = n
	} else {
		l.memo[key] = -1
	}
	return n, matched
}

func (l *Lexer) tryMatchToken(s string, offset int) (int, bool) {
	if offset+len(s) > len(l.input) {
		return 0, false
	}
	if string(l.input[offset:offset+len(s)]) == s {
		return len(s), true
	}
	return 0, false
}

// tryMatchRange matches one rune in a range such as "a" … "z".
func (l *Lexer) tryMatchRange(begin, end string, offset int) (int, bool) {
	if offset >= len(l.input) {
		return 0, false
	}
	lo, _ := utf8.DecodeRuneInString(begin)
	hi, _ := utf8.DecodeRuneInString(end)
	r, size := utf8.DecodeRune(l.input[offset:])
	if r == utf8.RuneError || r < lo || r > hi {
		return 0, false
	}
	return size, true
}

// Tokenize reads all tokens from input. The last token is the EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		tokens = append(tokens, tok)
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
	}
}
