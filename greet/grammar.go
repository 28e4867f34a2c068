package greet

import (
	"bytes"
	_ "embed"
	"fmt"

	"golang.org/x/exp/ebnf"
)

// StartProduction is the root production of the EBNF grammar.
const StartProduction = "SourceFile"

//go:embed greet.ebnf
var grammarSource []byte

// Grammar returns the EBNF description of the language.
func Grammar() []byte {
	return bytes.Clone(grammarSource)
}

// ParseGrammar parses the embedded EBNF description.
func ParseGrammar() (ebnf.Grammar, error) {
	grammar, err := ebnf.Parse("greet.ebnf", bytes.NewReader(grammarSource))
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

// VerifyGrammar checks that every production of the EBNF description is
// defined and reachable from StartProduction.
func VerifyGrammar() error {
	grammar, err := ParseGrammar()
	if err != nil {
		return err
	}
	if err := ebnf.Verify(grammar, StartProduction); err != nil {
		return fmt.Errorf("verify grammar: %w", err)
	}
	return nil
}

// TokenPriority orders the lexical productions for ties between equally long
// matches: keywords win over names.
var TokenPriority = []string{"hello", "goodbye", "name"}
