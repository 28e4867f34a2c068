package workspace

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/sfinnie/helloLSP/parser"
)

const diagnosticSource = "greet"

// Diagnostics reports the syntax errors of a document: the errors recovery
// skipped over and the error that stopped the parse, in source order.
func Diagnostics(doc *Document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if doc == nil || doc.Result == nil {
		return diagnostics
	}
	r := doc.Result
	if r.Tree != nil {
		for _, err := range r.Tree.Recovered {
			diagnostics = append(diagnostics, syntaxDiagnostic(doc.Content, err))
		}
	}
	if serr := r.SyntaxError(); serr != nil {
		for _, err := range serr.Recovered {
			diagnostics = append(diagnostics, syntaxDiagnostic(doc.Content, err))
		}
		diagnostics = append(diagnostics, syntaxDiagnostic(doc.Content, serr))
	} else if r.Err != nil {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Severity: severityPtr(protocol.DiagnosticSeverityError),
			Source:   strPtr(diagnosticSource),
			Message:  r.Err.Error(),
		})
	}
	return diagnostics
}

func syntaxDiagnostic(content []byte, err *parser.SyntaxError) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    toProtocolRange(content, err.Span()),
		Severity: severityPtr(protocol.DiagnosticSeverityError),
		Code:     &protocol.IntegerOrString{Value: codeOf(err.Kind)},
		Source:   strPtr(diagnosticSource),
		Message:  Explain(err),
	}
}

func codeOf(kind parser.ErrorKind) string {
	switch kind {
	case parser.LexicalError:
		return "invalid-token"
	case parser.UnexpectedEndOfInput:
		return "incomplete-greeting"
	}
	return "unexpected-token"
}

// Explain phrases a syntax error for someone writing greetings.
func Explain(err *parser.SyntaxError) string {
	switch {
	case err.Kind == parser.LexicalError:
		return fmt.Sprintf("%q is not a name: names are made of letters only", err.Token.Literal)
	case err.Kind == parser.UnexpectedEndOfInput && err.Expects("name"):
		return "Greeting must have form <salutation> <name>, e.g. Hello Martha"
	case err.Expects("hello") || err.Expects("goodbye"):
		return fmt.Sprintf("Greeting must start with either 'Hello' or 'Goodbye', found %q", err.Token.Literal)
	}
	return err.Message()
}

func severityPtr(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
