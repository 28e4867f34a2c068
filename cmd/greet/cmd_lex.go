package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sfinnie/helloLSP/ebnflex"
	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

func newLexCmd() *cobra.Command {
	var useEBNF bool

	cmd := &cobra.Command{
		Use:   "lex [file]",
		Short: "Print the tokens of a greet file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, source, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if useEBNF {
				grammar, err := greet.ParseGrammar()
				if err != nil {
					return err
				}
				l := ebnflex.NewLexer(grammar, source, name, ebnflex.WithPriority(greet.TokenPriority...))
				tokens, err := l.Tokenize()
				if err != nil {
					return fmt.Errorf("lex: %w", err)
				}
				for _, tok := range tokens {
					fmt.Fprintf(out, "%d:%d\t%s\t%q\n", tok.Position.Line, tok.Position.Column, tok.Kind, tok.Literal)
				}
				return nil
			}

			lang, err := settings.Language()
			if err != nil {
				return err
			}
			for _, tok := range parser.NewLexer(lang, source).Tokenize(0) {
				fmt.Fprintf(out, "%s\t%s\t%q\n", tok.Span.Start, lang.SymbolName(tok.Symbol), tok.Literal)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useEBNF, "ebnf", false, "tokenize with the EBNF grammar instead of the lexer tables")

	return cmd
}

// readInput reads the named file, or standard input when args is empty.
func readInput(cmd *cobra.Command, args []string) (string, []byte, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return args[0], data, nil
}
