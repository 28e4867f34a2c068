package parser

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the binary table format. The format is protobuf wire
// encoding; unknown fields are skipped so newer writers stay readable.
const (
	fieldLanguageName         protowire.Number = 1
	fieldLanguageSymbol       protowire.Number = 2
	fieldLanguageTokenCount   protowire.Number = 3
	fieldLanguageFieldName    protowire.Number = 4
	fieldLanguageFieldMap     protowire.Number = 5
	fieldLanguageLargeStates  protowire.Number = 6
	fieldLanguageParseRow     protowire.Number = 7
	fieldLanguageSmallTable   protowire.Number = 8
	fieldLanguageSmallMap     protowire.Number = 9
	fieldLanguageParseAction  protowire.Number = 10
	fieldLanguageLexMode      protowire.Number = 11
	fieldLanguageLexState     protowire.Number = 12
	fieldLanguageInitialState protowire.Number = 13

	fieldSymbolName    protowire.Number = 1
	fieldSymbolVisible protowire.Number = 2
	fieldSymbolNamed   protowire.Number = 3

	fieldProductionEntry protowire.Number = 1
	fieldEntryField      protowire.Number = 1
	fieldEntryChild      protowire.Number = 2

	fieldActionEntryReusable protowire.Number = 1
	fieldActionEntryAction   protowire.Number = 2

	fieldActionKind         protowire.Number = 1
	fieldActionState        protowire.Number = 2
	fieldActionSymbol       protowire.Number = 3
	fieldActionChildCount   protowire.Number = 4
	fieldActionProductionID protowire.Number = 5
	fieldActionRepetition   protowire.Number = 6

	fieldLexStateAccept     protowire.Number = 1
	fieldLexStateHasAccept  protowire.Number = 2
	fieldLexStateEOF        protowire.Number = 3
	fieldLexStateTransition protowire.Number = 4

	fieldTransitionLo   protowire.Number = 1
	fieldTransitionHi   protowire.Number = 2
	fieldTransitionNext protowire.Number = 3
	fieldTransitionSkip protowire.Number = 4
)

var ErrMalformedTables = errors.New("malformed table data")

// MarshalBinary encodes the language tables.
func (l *Language) MarshalBinary() ([]byte, error) {
	var b []byte
	b = appendString(b, fieldLanguageName, l.Name)
	for _, s := range l.Symbols {
		var m []byte
		m = appendString(m, fieldSymbolName, s.Name)
		m = appendBool(m, fieldSymbolVisible, s.Visible)
		m = appendBool(m, fieldSymbolNamed, s.Named)
		b = appendMessage(b, fieldLanguageSymbol, m)
	}
	b = appendVarint(b, fieldLanguageTokenCount, uint64(l.TokenCount))
	for _, name := range l.FieldNames {
		b = protowire.AppendTag(b, fieldLanguageFieldName, protowire.BytesType)
		b = protowire.AppendString(b, name)
	}
	for _, entries := range l.FieldMap {
		var m []byte
		for _, e := range entries {
			var em []byte
			em = appendVarint(em, fieldEntryField, uint64(e.Field))
			em = appendVarint(em, fieldEntryChild, uint64(e.ChildIndex))
			m = appendMessage(m, fieldProductionEntry, em)
		}
		b = appendMessage(b, fieldLanguageFieldMap, m)
	}
	b = appendVarint(b, fieldLanguageLargeStates, uint64(l.LargeStateCount))
	for _, row := range l.ParseTable {
		b = appendPacked16(b, fieldLanguageParseRow, row)
	}
	b = appendPacked16(b, fieldLanguageSmallTable, l.SmallParseTable)
	b = appendPacked32(b, fieldLanguageSmallMap, l.SmallParseTableMap)
	for _, entry := range l.ParseActions {
		var m []byte
		m = appendBool(m, fieldActionEntryReusable, entry.Reusable)
		for _, a := range entry.Actions {
			var am []byte
			am = appendVarint(am, fieldActionKind, uint64(a.Kind))
			am = appendVarint(am, fieldActionState, uint64(a.State))
			am = appendVarint(am, fieldActionSymbol, uint64(a.Symbol))
			am = appendVarint(am, fieldActionChildCount, uint64(a.ChildCount))
			am = appendVarint(am, fieldActionProductionID, uint64(a.ProductionID))
			am = appendBool(am, fieldActionRepetition, a.Repetition)
			m = appendMessage(m, fieldActionEntryAction, am)
		}
		b = appendMessage(b, fieldLanguageParseAction, m)
	}
	modes := make([]uint16, len(l.LexModes))
	for i, m := range l.LexModes {
		modes[i] = m.LexState
	}
	b = appendPacked16(b, fieldLanguageLexMode, modes)
	for _, ls := range l.LexStates {
		var m []byte
		m = appendVarint(m, fieldLexStateAccept, uint64(ls.Accept))
		m = appendBool(m, fieldLexStateHasAccept, ls.HasAccept)
		m = protowire.AppendTag(m, fieldLexStateEOF, protowire.VarintType)
		m = protowire.AppendVarint(m, protowire.EncodeZigZag(int64(ls.EOF)))
		for _, t := range ls.Transitions {
			var tm []byte
			tm = appendVarint(tm, fieldTransitionLo, uint64(t.Lo))
			tm = appendVarint(tm, fieldTransitionHi, uint64(t.Hi))
			tm = appendVarint(tm, fieldTransitionNext, uint64(t.Next))
			tm = appendBool(tm, fieldTransitionSkip, t.Skip)
			m = appendMessage(m, fieldLexStateTransition, tm)
		}
		b = appendMessage(b, fieldLanguageLexState, m)
	}
	b = appendVarint(b, fieldLanguageInitialState, uint64(l.InitialState))
	return b, nil
}

// UnmarshalLanguage decodes tables written by MarshalBinary and validates
// them.
func UnmarshalLanguage(data []byte) (*Language, error) {
	l := &Language{}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldLanguageName:
			s, n := protowire.ConsumeString(b)
			l.Name = s
			return n, nil
		case fieldLanguageSymbol:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			s, err := decodeSymbol(m)
			l.Symbols = append(l.Symbols, s)
			return n, err
		case fieldLanguageTokenCount:
			v, n := protowire.ConsumeVarint(b)
			l.TokenCount = int(v)
			return n, nil
		case fieldLanguageFieldName:
			s, n := protowire.ConsumeString(b)
			l.FieldNames = append(l.FieldNames, s)
			return n, nil
		case fieldLanguageFieldMap:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			entries, err := decodeProduction(m)
			l.FieldMap = append(l.FieldMap, entries)
			return n, err
		case fieldLanguageLargeStates:
			v, n := protowire.ConsumeVarint(b)
			l.LargeStateCount = int(v)
			return n, nil
		case fieldLanguageParseRow:
			row, n, err := consumePacked16(b)
			l.ParseTable = append(l.ParseTable, row)
			return n, err
		case fieldLanguageSmallTable:
			v, n, err := consumePacked16(b)
			l.SmallParseTable = v
			return n, err
		case fieldLanguageSmallMap:
			v, n, err := consumePacked32(b)
			l.SmallParseTableMap = v
			return n, err
		case fieldLanguageParseAction:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			entry, err := decodeActionEntry(m)
			l.ParseActions = append(l.ParseActions, entry)
			return n, err
		case fieldLanguageLexMode:
			v, n, err := consumePacked16(b)
			for _, s := range v {
				l.LexModes = append(l.LexModes, LexMode{LexState: s})
			}
			return n, err
		case fieldLanguageLexState:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			ls, err := decodeLexState(m)
			l.LexStates = append(l.LexStates, ls)
			return n, err
		case fieldLanguageInitialState:
			v, n := protowire.ConsumeVarint(b)
			l.InitialState = StateID(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return l, nil
}

func decodeSymbol(data []byte) (SymbolMetadata, error) {
	var s SymbolMetadata
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldSymbolName:
			v, n := protowire.ConsumeString(b)
			s.Name = v
			return n, nil
		case fieldSymbolVisible:
			v, n := protowire.ConsumeVarint(b)
			s.Visible = protowire.DecodeBool(v)
			return n, nil
		case fieldSymbolNamed:
			v, n := protowire.ConsumeVarint(b)
			s.Named = protowire.DecodeBool(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return s, err
}

func decodeProduction(data []byte) ([]FieldMapEntry, error) {
	var entries []FieldMapEntry
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num != fieldProductionEntry {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		m, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return n, nil
		}
		var e FieldMapEntry
		err := consumeFields(m, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			switch num {
			case fieldEntryField:
				v, n := protowire.ConsumeVarint(b)
				e.Field = FieldID(v)
				return n, nil
			case fieldEntryChild:
				v, n := protowire.ConsumeVarint(b)
				e.ChildIndex = uint8(v)
				return n, nil
			}
			return protowire.ConsumeFieldValue(num, typ, b), nil
		})
		entries = append(entries, e)
		return n, err
	})
	return entries, err
}

func decodeActionEntry(data []byte) (ActionEntry, error) {
	var entry ActionEntry
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldActionEntryReusable:
			v, n := protowire.ConsumeVarint(b)
			entry.Reusable = protowire.DecodeBool(v)
			return n, nil
		case fieldActionEntryAction:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			a, err := decodeAction(m)
			entry.Actions = append(entry.Actions, a)
			return n, err
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return entry, err
}

func decodeAction(data []byte) (Action, error) {
	var a Action
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeVarint(b)
		switch num {
		case fieldActionKind:
			a.Kind = ActionKind(v)
		case fieldActionState:
			a.State = StateID(v)
		case fieldActionSymbol:
			a.Symbol = Symbol(v)
		case fieldActionChildCount:
			a.ChildCount = uint8(v)
		case fieldActionProductionID:
			a.ProductionID = uint16(v)
		case fieldActionRepetition:
			a.Repetition = protowire.DecodeBool(v)
		}
		return n, nil
	})
	return a, err
}

func decodeLexState(data []byte) (LexState, error) {
	ls := LexState{EOF: -1}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldLexStateAccept:
			v, n := protowire.ConsumeVarint(b)
			ls.Accept = Symbol(v)
			return n, nil
		case fieldLexStateHasAccept:
			v, n := protowire.ConsumeVarint(b)
			ls.HasAccept = protowire.DecodeBool(v)
			return n, nil
		case fieldLexStateEOF:
			v, n := protowire.ConsumeVarint(b)
			ls.EOF = int(protowire.DecodeZigZag(v))
			return n, nil
		case fieldLexStateTransition:
			m, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			t, err := decodeTransition(m)
			ls.Transitions = append(ls.Transitions, t)
			return n, err
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	return ls, err
}

func decodeTransition(data []byte) (LexTransition, error) {
	var t LexTransition
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeVarint(b)
		switch num {
		case fieldTransitionLo:
			t.Lo = rune(v)
		case fieldTransitionHi:
			t.Hi = rune(v)
		case fieldTransitionNext:
			t.Next = int(v)
		case fieldTransitionSkip:
			t.Skip = protowire.DecodeBool(v)
		}
		return n, nil
	})
	return t, err
}

// consumeFields walks the fields of one message. fn returns the number of
// bytes it consumed from the field value, or a negative protowire error.
func consumeFields(data []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformedTables, protowire.ParseError(n))
		}
		data = data[n:]
		m, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformedTables, num, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, m []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, m)
}

func appendPacked16(b []byte, num protowire.Number, vs []uint16) []byte {
	var p []byte
	for _, v := range vs {
		p = protowire.AppendVarint(p, uint64(v))
	}
	return appendMessage(b, num, p)
}

func appendPacked32(b []byte, num protowire.Number, vs []uint32) []byte {
	var p []byte
	for _, v := range vs {
		p = protowire.AppendVarint(p, uint64(v))
	}
	return appendMessage(b, num, p)
}

func consumePacked16(b []byte) ([]uint16, int, error) {
	p, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, n, nil
	}
	vs := []uint16{}
	for len(p) > 0 {
		v, m := protowire.ConsumeVarint(p)
		if m < 0 {
			return nil, 0, fmt.Errorf("%w: packed value: %v", ErrMalformedTables, protowire.ParseError(m))
		}
		if v > 0xFFFF {
			return nil, 0, fmt.Errorf("%w: packed value %d overflows 16 bits", ErrMalformedTables, v)
		}
		vs = append(vs, uint16(v))
		p = p[m:]
	}
	return vs, n, nil
}

func consumePacked32(b []byte) ([]uint32, int, error) {
	p, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, n, nil
	}
	vs := []uint32{}
	for len(p) > 0 {
		v, m := protowire.ConsumeVarint(p)
		if m < 0 {
			return nil, 0, fmt.Errorf("%w: packed value: %v", ErrMalformedTables, protowire.ParseError(m))
		}
		vs = append(vs, uint32(v))
		p = p[m:]
	}
	return vs, n, nil
}
