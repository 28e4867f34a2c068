// Package greet defines the greeting language: a sequence of greetings such
// as "Hello Alice goodbye Bob", each a salutation followed by a name.
package greet

import (
	"sync"

	"github.com/sfinnie/helloLSP/parser"
)

const (
	SymEnd parser.Symbol = iota
	SymHello
	SymGoodbye
	SymName
	SymSourceFile
	SymGreeting
	SymSalutation
	SymSourceFileRepeat1
)

const (
	FieldName parser.FieldID = iota + 1
	FieldSalutation
)

const (
	largeStateCount = 4
	tokenCount      = 4

	productionGreeting = 1
)

// Parse action entries, referenced from the parse tables by index.
const (
	actNone = iota
	actRecover
	actReduceEmptyFile
	actShiftSalutation
	actReduceFile
	actReduceRepeat
	actReduceRepeatShift
	actReduceGreeting
	actReduceSalutation
	actAccept
	actShiftName
)

// Lexer entry states.
const (
	lexMain = 0
	lexName = 11
)

var Language = sync.OnceValue(newLanguage)

// NewParser returns a parser for the greeting language.
func NewParser(opts ...parser.Option) *parser.Parser {
	return parser.New(Language(), opts...)
}

func newLanguage() *parser.Language {
	return &parser.Language{
		Name: "greet",
		Symbols: []parser.SymbolMetadata{
			SymEnd:               {Name: "end", Visible: false, Named: true},
			SymHello:             {Name: "hello", Visible: true, Named: false},
			SymGoodbye:           {Name: "goodbye", Visible: true, Named: false},
			SymName:              {Name: "name", Visible: true, Named: true},
			SymSourceFile:        {Name: "source_file", Visible: true, Named: true},
			SymGreeting:          {Name: "greeting", Visible: true, Named: true},
			SymSalutation:        {Name: "salutation", Visible: true, Named: true},
			SymSourceFileRepeat1: {Name: "source_file_repeat1", Visible: false, Named: false},
		},
		TokenCount: tokenCount,
		FieldNames: []string{"", "name", "salutation"},
		FieldMap: [][]parser.FieldMapEntry{
			productionGreeting: {
				{Field: FieldName, ChildIndex: 1},
				{Field: FieldSalutation, ChildIndex: 0},
			},
		},

		LargeStateCount: largeStateCount,
		ParseTable: [][]uint16{
			// end, hello, goodbye, name, source_file, greeting, salutation, source_file_repeat1
			0: {actRecover, actRecover, actRecover, 0, 0, 0, 0, 0},
			1: {actReduceEmptyFile, actShiftSalutation, actShiftSalutation, 0, 6, 2, 7, 2},
			2: {actReduceFile, actShiftSalutation, actShiftSalutation, 0, 0, 3, 7, 3},
			3: {actReduceRepeat, actReduceRepeatShift, actReduceRepeatShift, 0, 0, 3, 7, 3},
		},
		SmallParseTable: []uint16{
			// state 4
			1,
			actReduceGreeting, 3, uint16(SymEnd), uint16(SymHello), uint16(SymGoodbye),
			// state 5
			1,
			actReduceSalutation, 1, uint16(SymName),
			// state 6
			1,
			actAccept, 1, uint16(SymEnd),
			// state 7
			1,
			actShiftName, 1, uint16(SymName),
		},
		SmallParseTableMap: []uint32{0, 6, 10, 14},
		ParseActions: []parser.ActionEntry{
			actNone:              {},
			actRecover:           {Actions: []parser.Action{parser.Recover()}},
			actReduceEmptyFile:   {Reusable: true, Actions: []parser.Action{parser.Reduce(SymSourceFile, 0)}},
			actShiftSalutation:   {Reusable: true, Actions: []parser.Action{parser.Shift(5)}},
			actReduceFile:        {Reusable: true, Actions: []parser.Action{parser.Reduce(SymSourceFile, 1)}},
			actReduceRepeat:      {Reusable: true, Actions: []parser.Action{parser.Reduce(SymSourceFileRepeat1, 2)}},
			actReduceRepeatShift: {Reusable: true, Actions: []parser.Action{parser.Reduce(SymSourceFileRepeat1, 2), parser.ShiftRepeat(5)}},
			actReduceGreeting:    {Reusable: true, Actions: []parser.Action{parser.ReduceProduction(SymGreeting, 2, productionGreeting)}},
			actReduceSalutation:  {Reusable: true, Actions: []parser.Action{parser.Reduce(SymSalutation, 1)}},
			actAccept:            {Reusable: true, Actions: []parser.Action{parser.Accept()}},
			actShiftName:         {Reusable: true, Actions: []parser.Action{parser.Shift(4)}},
		},

		LexModes: []parser.LexMode{
			{LexState: lexMain},
			{LexState: lexMain},
			{LexState: lexMain},
			{LexState: lexMain},
			{LexState: lexMain},
			{LexState: lexName},
			{LexState: lexMain},
			{LexState: lexName},
		},
		LexStates:    lexStates(),
		InitialState: 1,
	}
}

const nameState = 15

func letters(next int) []parser.LexTransition {
	return []parser.LexTransition{
		{Lo: 'A', Hi: 'Z', Next: next},
		{Lo: 'a', Hi: 'z', Next: next},
	}
}

func whitespace(restart int) []parser.LexTransition {
	return []parser.LexTransition{
		{Lo: '\t', Hi: '\n', Next: restart, Skip: true},
		{Lo: '\r', Hi: '\r', Next: restart, Skip: true},
		{Lo: ' ', Hi: ' ', Next: restart, Skip: true},
	}
}

// keyword is a state inside a salutation. What has been read so far is
// also a complete name, and any letter other than the expected one
// continues as a name.
func keyword(ch rune, next int) parser.LexState {
	return parser.LexState{
		Accept:      SymName,
		HasAccept:   true,
		EOF:         -1,
		Transitions: append([]parser.LexTransition{{Lo: ch, Hi: ch, Next: next}}, letters(nameState)...),
	}
}

func accepting(sym parser.Symbol) parser.LexState {
	return parser.LexState{
		Accept:      sym,
		HasAccept:   true,
		EOF:         -1,
		Transitions: letters(nameState),
	}
}

func lexStates() []parser.LexState {
	var start []parser.LexTransition
	start = append(start,
		parser.LexTransition{Lo: 'G', Hi: 'G', Next: 9},
		parser.LexTransition{Lo: 'H', Hi: 'H', Next: 3},
		parser.LexTransition{Lo: 'g', Hi: 'g', Next: 9},
		parser.LexTransition{Lo: 'h', Hi: 'h', Next: 3},
	)
	start = append(start, whitespace(lexMain)...)
	start = append(start, letters(nameState)...)

	var names []parser.LexTransition
	names = append(names, whitespace(lexName)...)
	names = append(names, letters(nameState)...)

	return []parser.LexState{
		0:  {EOF: 12, Transitions: start},
		1:  keyword('b', 10), // good
		2:  keyword('d', 1),  // goo
		3:  keyword('e', 5),  // h
		4:  keyword('e', 14), // goodby
		5:  keyword('l', 6),  // he
		6:  keyword('l', 8),  // hel
		7:  keyword('o', 2),  // go
		8:  keyword('o', 13), // hell
		9:  keyword('o', 7),  // g
		10: keyword('y', 4),  // goodb
		11: {EOF: -1, Transitions: names},
		12: {Accept: SymEnd, HasAccept: true, EOF: -1},
		13: accepting(SymHello),
		14: accepting(SymGoodbye),
		15: accepting(SymName),
	}
}
