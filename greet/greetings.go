package greet

import "github.com/sfinnie/helloLSP/parser"

// Greeting is one salutation addressed to a name.
type Greeting struct {
	Salutation string
	Name       string
	Span       parser.Span
	NameSpan   parser.Span
}

// Greetings extracts the greetings of a parsed document in source order.
func Greetings(tree *parser.Tree) []Greeting {
	if tree == nil || tree.Root == nil {
		return nil
	}
	var result []Greeting
	for _, g := range tree.Root.ChildrenOfSymbol(SymGreeting) {
		sal := g.ChildByField(FieldSalutation)
		name := g.ChildByField(FieldName)
		if sal == nil || name == nil {
			continue
		}
		result = append(result, Greeting{
			Salutation: tree.Text(sal),
			Name:       tree.Text(name),
			Span:       g.Span,
			NameSpan:   name.Span,
		})
	}
	return result
}

// Names returns the distinct names greeted in tree, in order of first
// appearance.
func Names(tree *parser.Tree) []string {
	seen := make(map[string]bool)
	var names []string
	for _, g := range Greetings(tree) {
		if seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		names = append(names, g.Name)
	}
	return names
}

// IsFarewell reports whether the greeting says goodbye.
func (g Greeting) IsFarewell() bool {
	return len(g.Salutation) > 0 && (g.Salutation[0] == 'g' || g.Salutation[0] == 'G')
}
