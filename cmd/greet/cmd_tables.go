package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sfinnie/helloLSP/config"
	"github.com/sfinnie/helloLSP/parser"
)

func newTablesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Export and inspect parse tables",
	}

	cmd.AddCommand(newTablesExportCmd())
	cmd.AddCommand(newTablesDumpCmd())

	return cmd
}

func newTablesExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write the configured parse tables in binary form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := settings.Language()
			if err != nil {
				return err
			}
			data, err := lang.MarshalBinary()
			if err != nil {
				return fmt.Errorf("encode tables: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write tables: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(data), args[0])
			return nil
		},
	}
}

func newTablesDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump [file]",
		Short: "Print parse tables, from a binary file or the configured ones",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lang *parser.Language
			var err error
			if len(args) == 1 {
				lang, err = config.LoadTables(args[0])
			} else {
				lang, err = settings.Language()
			}
			if err != nil {
				return err
			}
			return dumpTables(cmd.OutOrStdout(), lang)
		},
	}
}

func dumpTables(w io.Writer, lang *parser.Language) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "language %s: %d states, %d symbols (%d terminals), initial state %d\n\n",
		lang.Name, lang.StateCount(), lang.SymbolCount(), lang.TokenCount, lang.InitialState)

	fmt.Fprintln(tw, "symbol\tname\tvisible\tnamed")
	for i := 0; i < lang.SymbolCount(); i++ {
		sym := parser.Symbol(i)
		md := lang.Metadata(sym)
		fmt.Fprintf(tw, "%d\t%s\t%t\t%t\n", sym, md.Name, md.Visible, md.Named)
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "state\tlex\tsymbol\tactions")
	for s := 0; s < lang.StateCount(); s++ {
		state := parser.StateID(s)
		lex := uint16(0)
		if s < len(lang.LexModes) {
			lex = lang.LexModes[s].LexState
		}
		for i := 0; i < lang.SymbolCount(); i++ {
			sym := parser.Symbol(i)
			var cell string
			if lang.IsTerminal(sym) {
				actions := lang.Actions(state, sym)
				if len(actions) == 0 {
					continue
				}
				parts := make([]string, len(actions))
				for j, a := range actions {
					parts[j] = a.String()
				}
				cell = strings.Join(parts, ", ")
			} else {
				next, ok := lang.Goto(state, sym)
				if !ok {
					continue
				}
				cell = fmt.Sprintf("goto(%d)", next)
			}
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", state, lex, lang.SymbolName(sym), cell)
		}
	}
	return tw.Flush()
}
