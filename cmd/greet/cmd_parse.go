package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sfinnie/helloLSP/format"
	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

const greetingsFormat = "greetings"

// parseResult is the outcome for one input, kept so output stays in
// argument order.
type parseResult struct {
	name   string
	source []byte
	tree   *parser.Tree
	err    error
}

func newParseCmd() *cobra.Command {
	var outputFormat string
	var maxRecoveries int
	var tablesPath string

	cmd := &cobra.Command{
		Use:   "parse [file...]",
		Short: "Parse greet files and print their syntax trees",
		Long:  "Parse greet files and print their syntax trees. Standard input is parsed when no file is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputFormat != greetingsFormat && !slices.Contains(format.Names, outputFormat) {
				return fmt.Errorf("unknown format %q", outputFormat)
			}
			if cmd.Flags().Changed("max-recoveries") {
				settings.Parser.MaxRecoveries = maxRecoveries
			}
			if cmd.Flags().Changed("tables") {
				settings.Parser.Tables = tablesPath
			}
			if err := settings.Validate(); err != nil {
				return err
			}
			lang, err := settings.Language()
			if err != nil {
				return err
			}
			p := parser.New(lang, settings.ParserOptions()...)

			var results []*parseResult
			if len(args) == 0 {
				source, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				r := &parseResult{name: "<stdin>", source: source}
				r.tree, r.err = p.Parse(source)
				results = append(results, r)
			} else {
				results, err = parseFiles(p, args)
				if err != nil {
					return err
				}
			}

			return printResults(cmd.OutOrStdout(), cmd.ErrOrStderr(), outputFormat, results)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "sexp", "output format ("+strings.Join(append(format.Names, greetingsFormat), ", ")+")")
	cmd.Flags().IntVar(&maxRecoveries, "max-recoveries", parser.DefaultMaxRecoveries, "tokens that may be skipped in a row before a parse fails")
	cmd.Flags().StringVar(&tablesPath, "tables", "", "binary parse tables to use instead of the built-in ones")

	return cmd
}

// parseFiles reads and parses files concurrently. Only read failures are
// returned as errors; syntax errors are recorded per result.
func parseFiles(p *parser.Parser, files []string) ([]*parseResult, error) {
	results := make([]*parseResult, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range files {
		g.Go(func() error {
			source, err := os.ReadFile(name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			r := &parseResult{name: name, source: source}
			r.tree, r.err = p.Parse(source)
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(stdout, stderr io.Writer, outputFormat string, results []*parseResult) error {
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			if err := printParseError(stderr, r); err != nil {
				return err
			}
			continue
		}
		for _, recovered := range r.tree.Recovered {
			if err := format.WriteDiagnostic(stderr, r.name, r.source, recovered); err != nil {
				return err
			}
		}
		if err := printTree(stdout, outputFormat, r); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed to parse", failed, len(results))
	}
	return nil
}

func printParseError(w io.Writer, r *parseResult) error {
	var serr *parser.SyntaxError
	if errors.As(r.err, &serr) {
		for _, recovered := range serr.Recovered {
			if err := format.WriteDiagnostic(w, r.name, r.source, recovered); err != nil {
				return err
			}
		}
		return format.WriteDiagnostic(w, r.name, r.source, serr)
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", r.name, r.err)
	return err
}

func printTree(w io.Writer, outputFormat string, r *parseResult) error {
	if outputFormat == greetingsFormat {
		return printGreetings(w, r)
	}
	var buf bytes.Buffer
	enc, err := format.New(outputFormat, &buf)
	if err != nil {
		return err
	}
	if err := enc.Encode(r.tree); err != nil {
		return fmt.Errorf("encode %s: %w", r.name, err)
	}
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}
	_, err = w.Write(buf.Bytes())
	return err
}

func printGreetings(w io.Writer, r *parseResult) error {
	for _, g := range greet.Greetings(r.tree) {
		kind := "greeting"
		if g.IsFarewell() {
			kind = "farewell"
		}
		if _, err := fmt.Fprintf(w, "%s:%s\t%s\t%s\t%s\n", r.name, g.Span.Start, kind, g.Salutation, g.Name); err != nil {
			return err
		}
	}
	return nil
}
