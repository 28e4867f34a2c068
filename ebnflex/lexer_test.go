package ebnflex

import (
	"io"
	"strings"
	"testing"

	"golang.org/x/exp/ebnf"
)

const testGrammar = `
Program = { Statement } .
Statement = keyword ident | number .

keyword = "let" | "if" .
ident   = letter { letter | digit } .
number  = digit { digit } .
letter  = "a" … "z" | "A" … "Z" | "_" .
digit   = "0" … "9" .
`

func mustGrammar(t *testing.T, src string) ebnf.Grammar {
	t.Helper()
	grammar, err := ebnf.Parse("test.ebnf", strings.NewReader(src))
	if err != nil {
		t.Fatalf("ebnf.Parse: %v", err)
	}
	return grammar
}

func TestTokenKinds(t *testing.T) {
	l := NewLexer(mustGrammar(t, testGrammar), nil, "", WithPriority("keyword"))
	got := l.TokenKinds()
	want := []string{"keyword", "ident", "number"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("TokenKinds() = %v, want %v", got, want)
	}
}

func TestNextToken(t *testing.T) {
	tests := []struct {
		input string
		kinds []string
		lits  []string
	}{
		{"let x", []string{"keyword", "ident"}, []string{"let", "x"}},
		{"letter", []string{"ident"}, []string{"letter"}},
		{"if a1 42", []string{"keyword", "ident", "number"}, []string{"if", "a1", "42"}},
		{"  x\n\ty ", []string{"ident", "ident"}, []string{"x", "y"}},
		{"a", []string{"ident"}, []string{"a"}},
		{"x #!? y", []string{"ident", KindError, "ident"}, []string{"x", "#!?", "y"}},
		{"", nil, nil},
	}

	grammar := mustGrammar(t, testGrammar)
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l := NewLexer(grammar, []byte(tt.input), "", WithPriority("keyword"))
			tokens, err := l.Tokenize()
			if err != nil {
				t.Fatalf("Tokenize: %v", err)
			}
			if last := tokens[len(tokens)-1]; last.Kind != KindEOF {
				t.Errorf("last Kind = %q, want %q", last.Kind, KindEOF)
			}
			tokens = tokens[:len(tokens)-1]
			if len(tokens) != len(tt.kinds) {
				t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(tt.kinds))
			}
			for i, tok := range tokens {
				if tok.Kind != tt.kinds[i] {
					t.Errorf("token %d Kind = %q, want %q", i, tok.Kind, tt.kinds[i])
				}
				if tok.Literal != tt.lits[i] {
					t.Errorf("token %d Literal = %q, want %q", i, tok.Literal, tt.lits[i])
				}
			}
		})
	}
}

func TestPriorityBreaksTies(t *testing.T) {
	grammar := mustGrammar(t, testGrammar)

	l := NewLexer(grammar, []byte("let"), "", WithPriority("keyword"))
	tok, _ := l.NextToken()
	if tok.Kind != "keyword" {
		t.Errorf("with keyword priority Kind = %q, want %q", tok.Kind, "keyword")
	}

	l = NewLexer(grammar, []byte("let"), "", WithPriority("ident", "keyword"))
	tok, _ = l.NextToken()
	if tok.Kind != "ident" {
		t.Errorf("with ident priority Kind = %q, want %q", tok.Kind, "ident")
	}
}

func TestPositions(t *testing.T) {
	l := NewLexer(mustGrammar(t, testGrammar), []byte("let\n  ab"), "in.txt")
	l.NextToken()
	tok, _ := l.NextToken()

	want := Position{Filename: "in.txt", Offset: 6, Line: 2, Column: 3}
	if tok.Position != want {
		t.Errorf("Position = %+v, want %+v", tok.Position, want)
	}
	if got := tok.Position.String(); got != "in.txt:2:3" {
		t.Errorf("Position.String() = %q, want %q", got, "in.txt:2:3")
	}

	tok, err := l.NextToken()
	if err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
	if tok.Position.Offset != 8 {
		t.Errorf("EOF Offset = %d, want 8", tok.Position.Offset)
	}
}

func TestLexicalOnlyGrammar(t *testing.T) {
	grammar := mustGrammar(t, `word = "a" … "z" { "a" … "z" } .`)
	l := NewLexer(grammar, []byte("abc de"), "")
	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 3 || tokens[0].Literal != "abc" || tokens[1].Literal != "de" {
		t.Errorf("tokens = %v, want abc, de, EOF", tokens)
	}
}

func TestMultibyteRange(t *testing.T) {
	grammar := mustGrammar(t, `greek = "α" … "ω" { "α" … "ω" } .`)
	l := NewLexer(grammar, []byte("αβγ"), "")
	tok, _ := l.NextToken()
	if tok.Kind != "greek" || tok.Literal != "αβγ" {
		t.Errorf("token = %v, want greek \"αβγ\"", tok)
	}
}

func TestKindsOf(t *testing.T) {
	l := NewLexer(mustGrammar(t, testGrammar), nil, "", WithPriority("keyword"))
	tests := []struct {
		literal string
		want    string
	}{
		{"let", "keyword,ident"},
		{"x1", "ident"},
		{"42", "number"},
		{"4x", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := strings.Join(l.KindsOf(tt.literal), ","); got != tt.want {
			t.Errorf("KindsOf(%q) = %q, want %q", tt.literal, got, tt.want)
		}
	}
}

func TestLiteralTokens(t *testing.T) {
	grammar := mustGrammar(t, `
List  = "[" { ident [ "," ] } "]" .
ident = "a" … "z" { "a" … "z" } .
`)
	l := NewLexer(grammar, []byte("[ab, c]"), "")
	if got := strings.Join(l.TokenKinds(), " "); got != "ident , [ ]" {
		t.Errorf("TokenKinds() = %q, want %q", got, "ident , [ ]")
	}

	tokens, err := l.Tokenize()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, tok := range tokens {
		got = append(got, tok.Kind+"="+tok.Literal)
	}
	want := "[=[ ident=ab ,=, ident=c ]=] EOF="
	if strings.Join(got, " ") != want {
		t.Errorf("tokens = %q, want %q", strings.Join(got, " "), want)
	}
}
