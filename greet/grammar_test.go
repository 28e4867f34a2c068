package greet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sfinnie/helloLSP/ebnf/parse"
	"github.com/sfinnie/helloLSP/ebnflex"
	"github.com/sfinnie/helloLSP/parser"
)

func TestVerifyGrammar(t *testing.T) {
	if err := VerifyGrammar(); err != nil {
		t.Fatalf("VerifyGrammar() = %v", err)
	}
}

func TestGrammarProductions(t *testing.T) {
	grammar, err := ParseGrammar()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"SourceFile", "Greeting", "Salutation", "hello", "goodbye", "name", "letter"} {
		if _, ok := grammar[name]; !ok {
			t.Errorf("production %s missing", name)
		}
	}
}

func TestGrammarIsCopied(t *testing.T) {
	g := Grammar()
	g[0] = 'X'
	if bytes.Equal(g, Grammar()) {
		t.Errorf("Grammar() returned shared storage")
	}
}

// sentences returns every sequence of up to n words from vocabulary.
func sentences(vocabulary []string, n int) []string {
	result := []string{""}
	layer := []string{""}
	for i := 0; i < n; i++ {
		var next []string
		for _, prefix := range layer {
			for _, w := range vocabulary {
				next = append(next, strings.TrimSpace(prefix+" "+w))
			}
		}
		result = append(result, next...)
		layer = next
	}
	return result
}

func TestParserAgreesWithGrammar(t *testing.T) {
	grammar, err := ParseGrammar()
	if err != nil {
		t.Fatal(err)
	}
	recognizer, err := parse.Compile(grammar, StartProduction)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	p := NewParser(parser.WithMaxRecoveries(0))

	for _, input := range sentences([]string{"hello", "Goodbye", "Alice", "42"}, 5) {
		tokens, err := parse.Tokens(ebnflex.NewLexer(grammar, []byte(input), "", ebnflex.WithPriority(TokenPriority...)))
		if err != nil {
			t.Fatalf("Tokens(%q): %v", input, err)
		}
		grammarErr := recognizer.Recognize(tokens)
		_, tableErr := p.Parse([]byte(input))
		if (grammarErr == nil) != (tableErr == nil) {
			t.Errorf("%q: grammar says %v, tables say %v", input, grammarErr, tableErr)
		}
	}
}
