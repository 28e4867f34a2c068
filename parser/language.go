// Package parser implements a table-driven parsing engine: a lexer DFA
// feeding a shift-reduce interpreter over tree-sitter style parse tables.
//
// The tables are supplied by a Language value. A Language is immutable once
// built and may be shared by any number of concurrent parses.
package parser

import (
	"errors"
	"fmt"
)

// Symbol is a grammar symbol id. Terminals come first, followed by
// non-terminals.
type Symbol uint16

// StateID is a parser state index.
type StateID uint16

// FieldID is a field name index. Zero means no field.
type FieldID uint16

const (
	// SymbolEnd is the end-of-input sentinel.
	SymbolEnd Symbol = 0
	// SymbolError marks tokens the lexer could not match. It is never
	// used as a table index.
	SymbolError Symbol = 0xFFFF
)

// ErrorState is the table row consulted for Recover actions.
const ErrorState StateID = 0

// SymbolMetadata describes how a symbol appears in trees.
type SymbolMetadata struct {
	Name    string
	Visible bool
	Named   bool
}

// FieldMapEntry assigns a field to the child at ChildIndex of a production.
type FieldMapEntry struct {
	Field      FieldID
	ChildIndex uint8
}

// LexMode selects the lexer entry state for a parser state.
type LexMode struct {
	LexState uint16
}

// Language holds every table needed to lex and parse one grammar.
type Language struct {
	Name string

	Symbols    []SymbolMetadata
	TokenCount int
	FieldNames []string // index 0 is ""

	// FieldMap is indexed by production id.
	FieldMap [][]FieldMapEntry

	// States below LargeStateCount live in ParseTable, indexed by symbol.
	// The rest live in SmallParseTable, located through SmallParseTableMap.
	// For terminals a table value indexes ParseActions, for non-terminals
	// it is the goto state. Zero means no entry.
	LargeStateCount    int
	ParseTable         [][]uint16
	SmallParseTable    []uint16
	SmallParseTableMap []uint32
	ParseActions       []ActionEntry

	LexModes  []LexMode
	LexStates []LexState

	InitialState StateID
}

// StateCount returns the number of parser states.
func (l *Language) StateCount() int {
	return len(l.LexModes)
}

// SymbolCount returns the number of symbols.
func (l *Language) SymbolCount() int {
	return len(l.Symbols)
}

// IsTerminal reports whether sym is produced by the lexer.
func (l *Language) IsTerminal(sym Symbol) bool {
	return sym == SymbolError || int(sym) < l.TokenCount
}

// SymbolName returns the display name of sym.
func (l *Language) SymbolName(sym Symbol) string {
	if sym == SymbolError {
		return "ERROR"
	}
	if int(sym) < len(l.Symbols) {
		return l.Symbols[sym].Name
	}
	return fmt.Sprintf("symbol(%d)", sym)
}

// Metadata returns the metadata of sym. SymbolError is visible and named.
func (l *Language) Metadata(sym Symbol) SymbolMetadata {
	if int(sym) < len(l.Symbols) {
		return l.Symbols[sym]
	}
	return SymbolMetadata{Name: l.SymbolName(sym), Visible: true, Named: true}
}

// FieldName returns the name of f, or "" for no field.
func (l *Language) FieldName(f FieldID) string {
	if int(f) < len(l.FieldNames) {
		return l.FieldNames[f]
	}
	return ""
}

// FieldByName returns the id of the named field.
func (l *Language) FieldByName(name string) (FieldID, bool) {
	for i, n := range l.FieldNames {
		if i > 0 && n == name {
			return FieldID(i), true
		}
	}
	return 0, false
}

// Fields returns the field assignments of a production.
func (l *Language) Fields(productionID uint16) []FieldMapEntry {
	if int(productionID) < len(l.FieldMap) {
		return l.FieldMap[productionID]
	}
	return nil
}

func (l *Language) lookup(state StateID, sym Symbol) uint16 {
	if sym == SymbolError || int(sym) >= len(l.Symbols) {
		return 0
	}
	if int(state) < l.LargeStateCount {
		if int(state) >= len(l.ParseTable) {
			return 0
		}
		row := l.ParseTable[state]
		if int(sym) < len(row) {
			return row[sym]
		}
		return 0
	}

	i := int(state) - l.LargeStateCount
	if i >= len(l.SmallParseTableMap) {
		return 0
	}
	table := l.SmallParseTable
	idx := int(l.SmallParseTableMap[i])
	groups := int(table[idx])
	idx++
	for g := 0; g < groups; g++ {
		value := table[idx]
		count := int(table[idx+1])
		idx += 2
		for _, s := range table[idx : idx+count] {
			if Symbol(s) == sym {
				return value
			}
		}
		idx += count
	}
	return 0
}

// Actions returns the action chain for a terminal in a state. An empty
// result means the terminal is a syntax error there.
func (l *Language) Actions(state StateID, sym Symbol) []Action {
	if !l.IsTerminal(sym) {
		return nil
	}
	idx := l.lookup(state, sym)
	if int(idx) >= len(l.ParseActions) {
		return nil
	}
	return l.ParseActions[idx].Actions
}

// Goto returns the state reached from state after reducing to sym.
func (l *Language) Goto(state StateID, sym Symbol) (StateID, bool) {
	if l.IsTerminal(sym) {
		return 0, false
	}
	v := l.lookup(state, sym)
	return StateID(v), v != 0
}

// Expected lists the terminals that have a non-recover action in state,
// in symbol order.
func (l *Language) Expected(state StateID) []Symbol {
	var syms []Symbol
	for s := 0; s < l.TokenCount; s++ {
		for _, a := range l.Actions(state, Symbol(s)) {
			if a.Kind != ActionRecover {
				syms = append(syms, Symbol(s))
				break
			}
		}
	}
	return syms
}

// HasRecovery reports whether the language defines any Recover action.
func (l *Language) HasRecovery() bool {
	for s := 0; s < l.TokenCount; s++ {
		if l.recovers(Symbol(s)) {
			return true
		}
	}
	return false
}

// CanRecover reports whether a lookahead of sym may be discarded.
// Lexical error tokens may be discarded whenever the language defines
// recovery at all.
func (l *Language) CanRecover(sym Symbol) bool {
	if sym == SymbolEnd {
		return false
	}
	if sym == SymbolError {
		return l.HasRecovery()
	}
	return l.recovers(sym)
}

func (l *Language) recovers(sym Symbol) bool {
	for _, a := range l.Actions(ErrorState, sym) {
		if a.Kind == ActionRecover {
			return true
		}
	}
	return false
}

var errInvalidLanguage = errors.New("invalid language")

// Validate checks that the tables are consistent with each other.
func (l *Language) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", errInvalidLanguage, l.Name, fmt.Sprintf(format, args...))
	}

	if len(l.Symbols) == 0 || l.TokenCount <= 0 || l.TokenCount > len(l.Symbols) {
		return invalid("token count %d out of range for %d symbols", l.TokenCount, len(l.Symbols))
	}
	if len(l.FieldNames) == 0 || l.FieldNames[0] != "" {
		return invalid("field names must start with the empty name")
	}
	states := l.StateCount()
	if states == 0 {
		return invalid("no parser states")
	}
	if int(l.InitialState) >= states {
		return invalid("initial state %d out of range", l.InitialState)
	}
	if l.LargeStateCount != len(l.ParseTable) || l.LargeStateCount > states {
		return invalid("large state count %d does not match %d dense rows", l.LargeStateCount, len(l.ParseTable))
	}
	if len(l.SmallParseTableMap) != states-l.LargeStateCount {
		return invalid("small parse table map has %d rows, want %d", len(l.SmallParseTableMap), states-l.LargeStateCount)
	}
	if len(l.ParseActions) == 0 || len(l.ParseActions[0].Actions) != 0 {
		return invalid("parse action 0 must be the empty entry")
	}

	checkValue := func(state int, sym Symbol, v uint16) error {
		if v == 0 {
			return nil
		}
		if int(sym) >= len(l.Symbols) {
			return invalid("state %d: symbol %d out of range", state, sym)
		}
		if l.IsTerminal(sym) {
			if int(v) >= len(l.ParseActions) {
				return invalid("state %d: action index %d out of range", state, v)
			}
		} else if int(v) >= states {
			return invalid("state %d: goto %d out of range", state, v)
		}
		return nil
	}

	for state, row := range l.ParseTable {
		if len(row) != len(l.Symbols) {
			return invalid("dense row %d has %d columns, want %d", state, len(row), len(l.Symbols))
		}
		for sym, v := range row {
			if err := checkValue(state, Symbol(sym), v); err != nil {
				return err
			}
		}
	}
	for i, off := range l.SmallParseTableMap {
		state := l.LargeStateCount + i
		idx := int(off)
		if idx >= len(l.SmallParseTable) {
			return invalid("state %d: small table offset %d out of range", state, off)
		}
		groups := int(l.SmallParseTable[idx])
		idx++
		for g := 0; g < groups; g++ {
			if idx+2 > len(l.SmallParseTable) {
				return invalid("state %d: truncated small table group", state)
			}
			v, n := l.SmallParseTable[idx], int(l.SmallParseTable[idx+1])
			idx += 2
			if idx+n > len(l.SmallParseTable) {
				return invalid("state %d: truncated small table symbols", state)
			}
			for _, s := range l.SmallParseTable[idx : idx+n] {
				if err := checkValue(state, Symbol(s), v); err != nil {
					return err
				}
			}
			idx += n
		}
	}

	for i, entry := range l.ParseActions {
		for _, a := range entry.Actions {
			switch a.Kind {
			case ActionShift:
				if int(a.State) >= states {
					return invalid("action %d: shift to unknown state %d", i, a.State)
				}
			case ActionReduce:
				if l.IsTerminal(a.Symbol) || int(a.Symbol) >= len(l.Symbols) {
					return invalid("action %d: reduce to non-production symbol %d", i, a.Symbol)
				}
				for _, f := range l.Fields(a.ProductionID) {
					if f.ChildIndex >= a.ChildCount || int(f.Field) >= len(l.FieldNames) {
						return invalid("action %d: bad field map for production %d", i, a.ProductionID)
					}
				}
			case ActionAccept, ActionRecover:
			default:
				return invalid("action %d: unknown kind %d", i, a.Kind)
			}
		}
	}

	for state, m := range l.LexModes {
		if int(m.LexState) >= len(l.LexStates) {
			return invalid("state %d: lex state %d out of range", state, m.LexState)
		}
	}
	for i, ls := range l.LexStates {
		if ls.EOF >= len(l.LexStates) || ls.EOF < -1 {
			return invalid("lex state %d: eof target %d out of range", i, ls.EOF)
		}
		if ls.HasAccept && !l.IsTerminal(ls.Accept) {
			return invalid("lex state %d: accepts non-terminal %d", i, ls.Accept)
		}
		for _, t := range ls.Transitions {
			if t.Next < 0 || t.Next >= len(l.LexStates) || t.Lo > t.Hi {
				return invalid("lex state %d: bad transition %q-%q -> %d", i, t.Lo, t.Hi, t.Next)
			}
		}
	}
	return nil
}
