// Package parse recognizes token streams against the syntactic productions
// of an EBNF grammar with an Earley parser.
//
// Uppercase productions are nonterminals. Lowercase productions and string
// literals are terminals, matched against tokens from package ebnflex.
package parse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/sfinnie/helloLSP/ebnflex"
)

// Token is one input symbol. Kinds lists every token production the
// literal matches, so a keyword may also stand for a name.
type Token struct {
	Kinds    []string
	Literal  string
	Position ebnflex.Position
}

// symbol is one element of a rule's right-hand side.
type symbol struct {
	name     string
	terminal bool
	literal  bool // terminal matched by literal text instead of kind
}

func (s symbol) String() string {
	if s.literal {
		return strconv.Quote(s.name)
	}
	return s.name
}

type rule struct {
	lhs string
	rhs []symbol
}

// Grammar is an EBNF grammar flattened into plain rules. Groups, options
// and repetitions become synthetic nonterminals.
type Grammar struct {
	start    string
	rules    []rule
	byLHS    map[string][]int
	nullable map[string]bool
	synth    int
}

func isSyntactic(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// Compile flattens the productions reachable from start.
func Compile(g ebnf.Grammar, start string) (*Grammar, error) {
	prod, ok := g[start]
	if !ok || prod.Expr == nil {
		return nil, fmt.Errorf("production %q not found in grammar", start)
	}
	if !isSyntactic(start) {
		return nil, fmt.Errorf("start production %q is lexical", start)
	}

	c := &Grammar{
		start:    start,
		byLHS:    make(map[string][]int),
		nullable: make(map[string]bool),
	}
	done := map[string]bool{start: true}
	pending := []string{start}
	for len(pending) > 0 {
		name := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		prod, ok := g[name]
		if !ok {
			return nil, fmt.Errorf("undefined production %q", name)
		}
		refs := c.define(name, prod.Expr)
		for _, ref := range refs {
			if !done[ref] {
				done[ref] = true
				pending = append(pending, ref)
			}
		}
	}
	c.computeNullable()
	return c, nil
}

// define adds the rules for name and returns the syntactic productions it
// refers to.
func (c *Grammar) define(name string, expr ebnf.Expression) []string {
	var refs []string
	for _, alt := range c.alternatives(expr, &refs) {
		c.addRule(name, alt)
	}
	return refs
}

func (c *Grammar) addRule(lhs string, rhs []symbol) {
	c.byLHS[lhs] = append(c.byLHS[lhs], len(c.rules))
	c.rules = append(c.rules, rule{lhs: lhs, rhs: rhs})
}

func (c *Grammar) alternatives(expr ebnf.Expression, refs *[]string) [][]symbol {
	if alt, ok := expr.(ebnf.Alternative); ok {
		result := make([][]symbol, 0, len(alt))
		for _, e := range alt {
			result = append(result, c.sequence(e, refs))
		}
		return result
	}
	return [][]symbol{c.sequence(expr, refs)}
}

func (c *Grammar) sequence(expr ebnf.Expression, refs *[]string) []symbol {
	switch e := expr.(type) {
	case nil:
		return nil
	case ebnf.Sequence:
		syms := make([]symbol, 0, len(e))
		for _, item := range e {
			syms = append(syms, c.lower(item, refs))
		}
		return syms
	}
	return []symbol{c.lower(expr, refs)}
}

// lower turns one expression into a single symbol.
func (c *Grammar) lower(expr ebnf.Expression, refs *[]string) symbol {
	switch e := expr.(type) {
	case *ebnf.Name:
		if isSyntactic(e.String) {
			*refs = append(*refs, e.String)
			return symbol{name: e.String}
		}
		return symbol{name: e.String, terminal: true}

	case *ebnf.Token:
		return symbol{name: e.String, terminal: true, literal: true}

	case *ebnf.Group:
		name := c.synthetic("group")
		for _, alt := range c.alternatives(e.Body, refs) {
			c.addRule(name, alt)
		}
		return symbol{name: name}

	case *ebnf.Option:
		name := c.synthetic("option")
		for _, alt := range c.alternatives(e.Body, refs) {
			c.addRule(name, alt)
		}
		c.addRule(name, nil)
		return symbol{name: name}

	case *ebnf.Repetition:
		// name = ε | body name
		name := c.synthetic("repeat")
		self := symbol{name: name}
		c.addRule(name, nil)
		for _, alt := range c.alternatives(e.Body, refs) {
			c.addRule(name, append(alt, self))
		}
		return self
	}

	// Nested sequences, alternatives and ranges outside lexical productions.
	name := c.synthetic("expr")
	for _, alt := range c.alternatives(expr, refs) {
		c.addRule(name, alt)
	}
	return symbol{name: name}
}

func (c *Grammar) synthetic(kind string) string {
	c.synth++
	return fmt.Sprintf("%s#%d", kind, c.synth)
}

func (c *Grammar) computeNullable() {
	for changed := true; changed; {
		changed = false
		for _, r := range c.rules {
			if c.nullable[r.lhs] {
				continue
			}
			all := true
			for _, s := range r.rhs {
				if s.terminal || !c.nullable[s.name] {
					all = false
					break
				}
			}
			if all {
				c.nullable[r.lhs] = true
				changed = true
			}
		}
	}
}

// item is an Earley item: a rule, the dot position in its right-hand side
// and the chart position where it started.
type item struct {
	rule   int
	dot    int
	origin int
}

type itemSet struct {
	items []item
	seen  map[item]bool
}

func (s *itemSet) add(it item) {
	if s.seen[it] {
		return
	}
	s.seen[it] = true
	s.items = append(s.items, it)
}

// Error reports the first token no rule could consume.
type Error struct {
	Position ebnflex.Position
	Literal  string
	AtEOF    bool
	Expected []string
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Position.String())
	if e.AtEOF {
		sb.WriteString(": unexpected end of input")
	} else {
		fmt.Fprintf(&sb, ": unexpected %q", e.Literal)
	}
	if len(e.Expected) > 0 {
		sb.WriteString(", expected " + strings.Join(e.Expected, ", "))
	}
	return sb.String()
}

// Recognize reports whether tokens form a sentence of the start production.
// A rejected input yields an *Error.
func (c *Grammar) Recognize(tokens []Token) error {
	n := len(tokens)
	chart := make([]itemSet, n+1)
	for i := range chart {
		chart[i].seen = make(map[item]bool)
	}
	for _, r := range c.byLHS[c.start] {
		chart[0].add(item{rule: r})
	}

	for i := 0; i <= n; i++ {
		for j := 0; j < len(chart[i].items); j++ {
			it := chart[i].items[j]
			rhs := c.rules[it.rule].rhs
			if it.dot == len(rhs) {
				c.complete(chart, i, it)
				continue
			}
			next := rhs[it.dot]
			if next.terminal {
				if i < n && matches(next, tokens[i]) {
					chart[i+1].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
				}
				continue
			}
			for _, r := range c.byLHS[next.name] {
				chart[i].add(item{rule: r, origin: i})
			}
			if c.nullable[next.name] {
				chart[i].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
			}
		}
	}

	for _, it := range chart[n].items {
		r := c.rules[it.rule]
		if r.lhs == c.start && it.origin == 0 && it.dot == len(r.rhs) {
			return nil
		}
	}
	return c.failure(chart, tokens)
}

func (c *Grammar) complete(chart []itemSet, pos int, done item) {
	lhs := c.rules[done.rule].lhs
	waiting := &chart[done.origin]
	for k := 0; k < len(waiting.items); k++ {
		it := waiting.items[k]
		rhs := c.rules[it.rule].rhs
		if it.dot < len(rhs) && !rhs[it.dot].terminal && rhs[it.dot].name == lhs {
			chart[pos].add(item{rule: it.rule, dot: it.dot + 1, origin: it.origin})
		}
	}
}

func matches(s symbol, tok Token) bool {
	if s.literal {
		return tok.Literal == s.name
	}
	for _, kind := range tok.Kinds {
		if kind == s.name {
			return true
		}
	}
	return false
}

// failure builds the error for the furthest chart position that still
// holds items.
func (c *Grammar) failure(chart []itemSet, tokens []Token) error {
	furthest := 0
	for i := len(chart) - 1; i >= 0; i-- {
		if len(chart[i].items) > 0 {
			furthest = i
			break
		}
	}

	expected := make(map[string]bool)
	for _, it := range chart[furthest].items {
		rhs := c.rules[it.rule].rhs
		if it.dot < len(rhs) && rhs[it.dot].terminal {
			expected[rhs[it.dot].String()] = true
		}
	}
	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	err := &Error{Position: ebnflex.Position{Line: 1, Column: 1}, Expected: names}
	if furthest < len(tokens) {
		err.Position = tokens[furthest].Position
		err.Literal = tokens[furthest].Literal
	} else {
		err.AtEOF = true
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			err.Position = last.Position
			err.Position.Offset += len(last.Literal)
			err.Position.Column += len(last.Literal)
		}
	}
	return err
}

// Tokens reads every token from l and records the kinds each literal can
// stand for. The EOF token is dropped.
func Tokens(l *ebnflex.Lexer) ([]Token, error) {
	raw, err := l.Tokenize()
	if err != nil {
		return nil, err
	}
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if tok.Kind == ebnflex.KindEOF {
			continue
		}
		kinds := []string{tok.Kind}
		if tok.Kind != ebnflex.KindError {
			kinds = l.KindsOf(tok.Literal)
		}
		tokens = append(tokens, Token{Kinds: kinds, Literal: tok.Literal, Position: tok.Position})
	}
	return tokens, nil
}

// Recognize tokenizes input with the lexical productions of g and checks it
// against start.
func Recognize(g ebnf.Grammar, start string, input []byte, filename string, opts ...ebnflex.Option) error {
	c, err := Compile(g, start)
	if err != nil {
		return err
	}
	tokens, err := Tokens(ebnflex.NewLexer(g, input, filename, opts...))
	if err != nil {
		return err
	}
	return c.Recognize(tokens)
}
