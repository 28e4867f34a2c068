package greet

import (
	"bytes"
	"testing"

	"github.com/sfinnie/helloLSP/ebnflex"
	"github.com/sfinnie/helloLSP/parser"
)

func TestLanguageValidate(t *testing.T) {
	lang := Language()
	if err := lang.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if lang.StateCount() != 8 {
		t.Errorf("StateCount() = %d, want 8", lang.StateCount())
	}
	if lang.SymbolCount() != 8 {
		t.Errorf("SymbolCount() = %d, want 8", lang.SymbolCount())
	}
	if Language() != lang {
		t.Errorf("Language() built twice")
	}
}

func TestSymbolMetadata(t *testing.T) {
	lang := Language()
	tests := []struct {
		sym     parser.Symbol
		name    string
		visible bool
		named   bool
	}{
		{SymEnd, "end", false, true},
		{SymHello, "hello", true, false},
		{SymGoodbye, "goodbye", true, false},
		{SymName, "name", true, true},
		{SymSourceFile, "source_file", true, true},
		{SymGreeting, "greeting", true, true},
		{SymSalutation, "salutation", true, true},
		{SymSourceFileRepeat1, "source_file_repeat1", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := lang.Metadata(tt.sym)
			if m.Name != tt.name {
				t.Errorf("Name = %q, want %q", m.Name, tt.name)
			}
			if m.Visible != tt.visible {
				t.Errorf("Visible = %v, want %v", m.Visible, tt.visible)
			}
			if m.Named != tt.named {
				t.Errorf("Named = %v, want %v", m.Named, tt.named)
			}
		})
	}

	if got, ok := lang.FieldByName("salutation"); !ok || got != FieldSalutation {
		t.Errorf("FieldByName(salutation) = %d, %v, want %d, true", got, ok, FieldSalutation)
	}
	if got := lang.FieldName(FieldName); got != "name" {
		t.Errorf("FieldName(FieldName) = %q, want %q", got, "name")
	}
}

func TestActions(t *testing.T) {
	lang := Language()
	tests := []struct {
		state parser.StateID
		sym   parser.Symbol
		want  string
	}{
		{1, SymEnd, "[reduce(4, 0)]"},
		{1, SymHello, "[shift(5)]"},
		{3, SymGoodbye, "[reduce(7, 2) shift_repeat(5)]"},
		{4, SymHello, "[reduce(5, 2, production=1)]"},
		{5, SymName, "[reduce(6, 1)]"},
		{6, SymEnd, "[accept]"},
		{7, SymName, "[shift(4)]"},
		{0, SymHello, "[recover]"},
		{1, SymName, "[]"},
		{4, SymName, "[]"},
		{5, SymEnd, "[]"},
	}
	for _, tt := range tests {
		got := formatActions(lang.Actions(tt.state, tt.sym))
		if got != tt.want {
			t.Errorf("Actions(%d, %s) = %s, want %s", tt.state, lang.SymbolName(tt.sym), got, tt.want)
		}
	}

	gotos := []struct {
		from parser.StateID
		sym  parser.Symbol
		want parser.StateID
	}{
		{1, SymSourceFile, 6},
		{1, SymGreeting, 2},
		{1, SymSalutation, 7},
		{2, SymGreeting, 3},
		{2, SymSourceFileRepeat1, 3},
		{3, SymSalutation, 7},
	}
	for _, tt := range gotos {
		got, ok := lang.Goto(tt.from, tt.sym)
		if !ok || got != tt.want {
			t.Errorf("Goto(%d, %s) = %d, %v, want %d", tt.from, lang.SymbolName(tt.sym), got, ok, tt.want)
		}
	}
}

func formatActions(actions []parser.Action) string {
	var b bytes.Buffer
	b.WriteString("[")
	for i, a := range actions {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(a.String())
	}
	b.WriteString("]")
	return b.String()
}

func TestExpectedMatchesTable(t *testing.T) {
	lang := Language()
	for state := 1; state < lang.StateCount(); state++ {
		expected := make(map[parser.Symbol]bool)
		for _, sym := range lang.Expected(parser.StateID(state)) {
			expected[sym] = true
		}
		for sym := 0; sym < lang.TokenCount; sym++ {
			has := len(lang.Actions(parser.StateID(state), parser.Symbol(sym))) > 0
			if has != expected[parser.Symbol(sym)] {
				t.Errorf("state %d: %s expected = %v, has actions = %v", state, lang.SymbolName(parser.Symbol(sym)), expected[parser.Symbol(sym)], has)
			}
		}
	}
}

func TestRecoveryRow(t *testing.T) {
	lang := Language()
	tests := []struct {
		sym  parser.Symbol
		want bool
	}{
		{SymEnd, false},
		{SymHello, true},
		{SymGoodbye, true},
		{SymName, false},
		{parser.SymbolError, true},
	}
	for _, tt := range tests {
		if got := lang.CanRecover(tt.sym); got != tt.want {
			t.Errorf("CanRecover(%s) = %v, want %v", lang.SymbolName(tt.sym), got, tt.want)
		}
	}
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input string
		entry uint16
		sym   parser.Symbol
		lit   string
	}{
		{"hello", lexMain, SymHello, "hello"},
		{"Hello", lexMain, SymHello, "Hello"},
		{"goodbye", lexMain, SymGoodbye, "goodbye"},
		{"Goodbye", lexMain, SymGoodbye, "Goodbye"},
		{"HELLO", lexMain, SymName, "HELLO"},
		{"hell", lexMain, SymName, "hell"},
		{"goodby", lexMain, SymName, "goodby"},
		{"h", lexMain, SymName, "h"},
		{"Alice", lexMain, SymName, "Alice"},
		{"  \t\nBob", lexMain, SymName, "Bob"},
		{"", lexMain, SymEnd, ""},
		{"   ", lexMain, SymEnd, ""},
		{"42", lexMain, parser.SymbolError, "42"},
		{"#x y", lexMain, parser.SymbolError, "#x"},
		{"hello", lexName, SymName, "hello"},
		{" goodbye", lexName, SymName, "goodbye"},
		{"", lexName, SymEnd, ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := parser.NewLexer(Language(), []byte(tt.input)).Next(tt.entry)
			if tok.Symbol != tt.sym {
				t.Errorf("Symbol = %s, want %s", Language().SymbolName(tok.Symbol), Language().SymbolName(tt.sym))
			}
			if tok.Literal != tt.lit {
				t.Errorf("Literal = %q, want %q", tok.Literal, tt.lit)
			}
		})
	}
}

func TestLongestMatch(t *testing.T) {
	tests := []struct {
		input string
		want  []parser.Symbol
	}{
		{"helloworld", []parser.Symbol{SymName, SymEnd}},
		{"hello world", []parser.Symbol{SymHello, SymName, SymEnd}},
		{"goodbyes", []parser.Symbol{SymName, SymEnd}},
		{"hello42", []parser.Symbol{SymHello, parser.SymbolError, SymEnd}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens := parser.NewLexer(Language(), []byte(tt.input)).Tokenize(lexMain)
			if len(tokens) != len(tt.want) {
				t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(tt.want))
			}
			for i, tok := range tokens {
				if tok.Symbol != tt.want[i] {
					t.Errorf("token %d = %s, want %s", i, Language().SymbolName(tok.Symbol), Language().SymbolName(tt.want[i]))
				}
			}
		})
	}
}

func TestTokenPositions(t *testing.T) {
	tokens := parser.NewLexer(Language(), []byte("hello\n  Bob")).Tokenize(lexMain)
	bob := tokens[1]
	want := parser.Position{Offset: 8, Line: 2, Column: 3}
	if bob.Span.Start != want {
		t.Errorf("Start = %v, want %v", bob.Span.Start, want)
	}
	if bob.Span.End.Offset != 11 {
		t.Errorf("End.Offset = %d, want 11", bob.Span.End.Offset)
	}
	end := tokens[2]
	if end.Span.Start.Offset != 11 || end.Span.Len() != 0 {
		t.Errorf("end span = %v, want zero width at 11", end.Span)
	}
}

// The DFA must tokenize exactly like the EBNF description of the tokens.
func TestLexerAgreesWithEBNF(t *testing.T) {
	grammar, err := ParseGrammar()
	if err != nil {
		t.Fatal(err)
	}
	inputs := []string{
		"hello Alice",
		"Hello goodbye Goodbye",
		"helloworld",
		"hell goodby HELLO",
		"hello42 x",
		"a\tb\nc",
		"gGoodbye hHello",
		"héllo",
		"",
		"   ",
	}
	lang := Language()
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			dfa := parser.NewLexer(lang, []byte(input)).Tokenize(lexMain)
			ref, err := ebnflex.NewLexer(grammar, []byte(input), "", ebnflex.WithPriority(TokenPriority...)).Tokenize()
			if err != nil {
				t.Fatal(err)
			}
			if len(dfa) != len(ref) {
				t.Fatalf("dfa %v, ebnf %v", dfa, ref)
			}
			for i := range dfa {
				kind := lang.SymbolName(dfa[i].Symbol)
				switch dfa[i].Symbol {
				case SymEnd:
					kind = ebnflex.KindEOF
				case parser.SymbolError:
					kind = ebnflex.KindError
				}
				if kind != ref[i].Kind {
					t.Errorf("token %d kind: dfa %s, ebnf %s", i, kind, ref[i].Kind)
				}
				if dfa[i].Literal != ref[i].Literal {
					t.Errorf("token %d literal: dfa %q, ebnf %q", i, dfa[i].Literal, ref[i].Literal)
				}
				if dfa[i].Span.Start.Offset != ref[i].Position.Offset {
					t.Errorf("token %d offset: dfa %d, ebnf %d", i, dfa[i].Span.Start.Offset, ref[i].Position.Offset)
				}
			}
		})
	}
}
