package workspace

import (
	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

// Semantic token types, in legend order.
const (
	TokenTypeKeyword = iota
	TokenTypeVariable
)

var SemanticTokenTypes = []string{"keyword", "variable"}

type semanticToken struct {
	span      parser.Span
	tokenType int
}

// SemanticTokens encodes the salutations and names of a document in the
// relative form of textDocument/semanticTokens. Documents that do not parse
// are classified token by token.
func SemanticTokens(doc *Document) []uint32 {
	if doc == nil {
		return []uint32{}
	}
	var tokens []semanticToken
	if doc.Result != nil && doc.Result.Tree != nil {
		tokens = treeTokens(doc.Result.Tree)
	} else {
		tokens = lexedTokens(doc.Content)
	}
	return encodeTokens(doc.Content, tokens)
}

func classify(sym parser.Symbol) (int, bool) {
	switch sym {
	case greet.SymHello, greet.SymGoodbye:
		return TokenTypeKeyword, true
	case greet.SymName:
		return TokenTypeVariable, true
	}
	return 0, false
}

func treeTokens(tree *parser.Tree) []semanticToken {
	var tokens []semanticToken
	for _, leaf := range tree.Root.Leaves() {
		if tt, ok := classify(leaf.Symbol); ok {
			tokens = append(tokens, semanticToken{span: leaf.Span, tokenType: tt})
		}
	}
	return tokens
}

// lexedTokens classifies the tokens of a document that failed to parse. The
// main lexer entry state recognises every terminal.
func lexedTokens(content []byte) []semanticToken {
	var tokens []semanticToken
	lexer := parser.NewLexer(greet.Language(), content)
	for _, tok := range lexer.Tokenize(0) {
		if tt, ok := classify(tok.Symbol); ok {
			tokens = append(tokens, semanticToken{span: tok.Span, tokenType: tt})
		}
	}
	return tokens
}

func encodeTokens(content []byte, tokens []semanticToken) []uint32 {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32
	for _, tok := range tokens {
		r := toProtocolRange(content, tok.span)
		line, char := r.Start.Line, r.Start.Character
		deltaChar := char
		if line == prevLine {
			deltaChar = char - prevChar
		}
		data = append(data, line-prevLine, deltaChar, r.End.Character-char, uint32(tok.tokenType), 0)
		prevLine, prevChar = line, char
	}
	return data
}
