package parser

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// DefaultMaxRecoveries bounds consecutive token discards unless overridden.
const DefaultMaxRecoveries = 3

type Option func(*Parser)

// WithMaxRecoveries sets how many lookaheads may be discarded in a row
// before a parse fails. Zero disables recovery.
func WithMaxRecoveries(n int) Option {
	return func(p *Parser) {
		if n < 0 {
			n = 0
		}
		p.maxRecoveries = n
	}
}

// WithLogger sets the logger that traces parser actions.
func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// Parser interprets the tables of one Language. A Parser holds no per-parse
// state, so one value may serve concurrent Parse calls.
type Parser struct {
	lang          *Language
	maxRecoveries int
	log           commonlog.Logger
}

// New returns a parser for lang.
func New(lang *Language, opts ...Option) *Parser {
	p := &Parser{
		lang:          lang,
		maxRecoveries: DefaultMaxRecoveries,
		log:           commonlog.GetLogger("greet.parser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Language() *Language {
	return p.lang
}

func (p *Parser) MaxRecoveries() int {
	return p.maxRecoveries
}

// stackEntry pairs a parser state with the node shifted or reduced into it.
// The bootstrap entry has no node.
type stackEntry struct {
	state StateID
	node  *Node
}

// run is the state of one Parse call.
type run struct {
	p          *Parser
	lexer      *Lexer
	stack      []stackEntry
	lookahead  Token
	recoveries int
	tree       *Tree
}

// Parse parses source into a tree. A failed parse returns a *SyntaxError;
// inconsistent tables return a plain error.
func (p *Parser) Parse(source []byte) (*Tree, error) {
	if p.lang == nil {
		return nil, fmt.Errorf("parse: no language")
	}
	r := &run{
		p:     p,
		lexer: NewLexer(p.lang, source),
		stack: []stackEntry{{state: p.lang.InitialState}},
		tree:  &Tree{Language: p.lang, Source: source},
	}
	r.lookahead = r.lexer.Next(p.lexMode(p.lang.InitialState))
	return r.loop()
}

func (p *Parser) lexMode(state StateID) uint16 {
	if int(state) < len(p.lang.LexModes) {
		return p.lang.LexModes[state].LexState
	}
	return 0
}

func (r *run) top() StateID {
	return r.stack[len(r.stack)-1].state
}

func (r *run) loop() (*Tree, error) {
	lang := r.p.lang
	for {
		state := r.top()
		actions := lang.Actions(state, r.lookahead.Symbol)
		if len(actions) == 0 {
			if err := r.recover(state); err != nil {
				return nil, err
			}
			continue
		}

	chain:
		for _, action := range actions {
			switch action.Kind {
			case ActionShift:
				r.shift(action)

			case ActionReduce:
				if err := r.reduce(action); err != nil {
					return nil, err
				}

			case ActionAccept:
				r.tree.Root = r.stack[len(r.stack)-1].node
				r.p.log.Debugf("accept %s", lang.SymbolName(r.tree.Root.Symbol))
				return r.tree, nil

			case ActionRecover:
				if err := r.recover(r.top()); err != nil {
					return nil, err
				}
				break chain

			default:
				return nil, fmt.Errorf("state %d: unknown action kind %d", state, action.Kind)
			}
		}
	}
}

func (r *run) shift(a Action) {
	r.p.log.Debugf("shift %s %q -> %d", r.p.lang.SymbolName(r.lookahead.Symbol), r.lookahead.Literal, a.State)
	r.stack = append(r.stack, stackEntry{state: a.State, node: newLeaf(r.lookahead)})
	r.lookahead = r.lexer.Next(r.p.lexMode(a.State))
	r.recoveries = 0
}

// recover discards the lookahead when the tables allow it, and otherwise
// returns the syntax error for the current state.
func (r *run) recover(state StateID) error {
	lang := r.p.lang
	err := newSyntaxError(lang, state, r.lookahead)
	if r.recoveries >= r.p.maxRecoveries || !lang.CanRecover(r.lookahead.Symbol) {
		err.Recovered = r.tree.Recovered
		return err
	}
	r.recoveries++
	r.tree.Recovered = append(r.tree.Recovered, err)
	r.p.log.Debugf("recover: discard %s %q at %s", err.Unexpected, r.lookahead.Literal, err.Position)
	r.lookahead = r.lexer.Next(r.p.lexMode(state))
	return nil
}

func (r *run) reduce(a Action) error {
	lang := r.p.lang
	n := int(a.ChildCount)
	if n > len(r.stack)-1 {
		return fmt.Errorf("reduce %s: stack holds %d entries, need %d", lang.SymbolName(a.Symbol), len(r.stack)-1, n)
	}

	node := r.build(a, r.stack[len(r.stack)-n:])
	r.stack = r.stack[:len(r.stack)-n]

	from := r.top()
	next, ok := lang.Goto(from, a.Symbol)
	if !ok {
		return fmt.Errorf("reduce %s: no goto from state %d", lang.SymbolName(a.Symbol), from)
	}
	r.p.log.Debugf("reduce %s/%d -> %d", lang.SymbolName(a.Symbol), n, next)
	r.stack = append(r.stack, stackEntry{state: next, node: node})
	return nil
}

// build assembles the node for a reduce. Children produced by hidden
// non-terminals, such as repetition helpers, are spliced into the new node.
func (r *run) build(a Action, popped []stackEntry) *Node {
	lang := r.p.lang
	labels := make([]FieldID, len(popped))
	for _, f := range lang.Fields(a.ProductionID) {
		if int(f.ChildIndex) < len(labels) {
			labels[f.ChildIndex] = f.Field
		}
	}

	node := &Node{Symbol: a.Symbol}
	for i, e := range popped {
		child := e.node
		if child == nil {
			continue
		}
		if !child.IsLeaf() && !lang.Metadata(child.Symbol).Visible {
			for _, gc := range child.Children {
				if gc.Field == 0 {
					gc.Field = labels[i]
				}
				node.Children = append(node.Children, gc)
			}
			continue
		}
		node.Children = append(node.Children, Child{Field: labels[i], Node: child})
	}

	if len(node.Children) > 0 {
		node.Span = Span{
			Start: node.Children[0].Node.Span.Start,
			End:   node.Children[len(node.Children)-1].Node.Span.End,
		}
	} else {
		at := r.lookahead.Span.Start
		node.Span = Span{Start: at, End: at}
	}
	return node
}
