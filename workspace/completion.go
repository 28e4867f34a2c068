package workspace

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

type CompletionKind int

const (
	CompletionKindKeyword CompletionKind = iota
	CompletionKindName
)

type CompletionItem struct {
	Label      string
	Kind       CompletionKind
	Detail     string
	InsertText string
}

var salutations = []CompletionItem{
	{Label: "Hello", Kind: CompletionKindKeyword, Detail: "salutation", InsertText: "Hello "},
	{Label: "Goodbye", Kind: CompletionKindKeyword, Detail: "salutation", InsertText: "Goodbye "},
}

// Completions suggests what may be typed at offset: salutations where a
// greeting can start and the document's names where a name is expected.
// The word under the cursor filters the suggestions.
func (w *Workspace) Completions(doc *Document, offset int) []CompletionItem {
	if doc == nil {
		return nil
	}
	offset = min(max(offset, 0), len(doc.Content))
	start := wordStart(doc.Content, offset)
	word := string(doc.Content[start:offset])

	expected, ok := w.expectedAt(doc.Content[:start])
	if !ok {
		return nil
	}

	var items []CompletionItem
	if expected["hello"] || expected["goodbye"] {
		for _, item := range salutations {
			if matchesWord(item.Label, word) {
				items = append(items, item)
			}
		}
	}
	if expected["name"] {
		for _, name := range documentNames(doc) {
			if name != word && matchesWord(name, word) {
				items = append(items, CompletionItem{
					Label:      name,
					Kind:       CompletionKindName,
					Detail:     "name",
					InsertText: name,
				})
			}
		}
	}
	return items
}

// expectedAt returns the terminals the grammar accepts after prefix. It
// fails when prefix has an error before its end.
func (w *Workspace) expectedAt(prefix []byte) (map[string]bool, bool) {
	set := make(map[string]bool)
	_, err := w.parser.Parse(prefix)
	if err == nil {
		set["hello"] = true
		set["goodbye"] = true
		return set, true
	}
	var serr *parser.SyntaxError
	if !errors.As(err, &serr) || serr.Kind != parser.UnexpectedEndOfInput {
		return nil, false
	}
	for _, name := range serr.Expected {
		set[name] = true
	}
	return set, true
}

// documentNames returns the distinct names of a document. Names of a
// document that does not parse come from its tokens.
func documentNames(doc *Document) []string {
	if doc.Result != nil && doc.Result.Tree != nil {
		return greet.Names(doc.Result.Tree)
	}
	var names []string
	seen := make(map[string]bool)
	for _, tok := range lexedTokens(doc.Content) {
		if tok.tokenType != TokenTypeVariable {
			continue
		}
		name := string(doc.Content[tok.span.Start.Offset:tok.span.End.Offset])
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func wordStart(content []byte, offset int) int {
	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRune(content[:start])
		if !unicode.IsLetter(r) {
			break
		}
		start -= size
	}
	return start
}

func matchesWord(label, word string) bool {
	return strings.HasPrefix(strings.ToLower(label), strings.ToLower(word))
}
