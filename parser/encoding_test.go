package parser

import (
	"bytes"
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncodingRoundTrip(t *testing.T) {
	data, err := toyLanguage().MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	l, err := UnmarshalLanguage(data)
	if err != nil {
		t.Fatalf("UnmarshalLanguage() = %v", err)
	}
	if l.Name != "toy" || l.TokenCount != 2 || l.InitialState != 1 {
		t.Errorf("decoded header = %q %d %d", l.Name, l.TokenCount, l.InitialState)
	}
	if l.LexStates[1].EOF != -1 || l.LexStates[0].EOF != 1 {
		t.Errorf("EOF targets = %d, %d", l.LexStates[0].EOF, l.LexStates[1].EOF)
	}
	again, _ := l.MarshalBinary()
	if !bytes.Equal(again, data) {
		t.Errorf("re-encoded tables differ")
	}
	if _, err := New(l).Parse([]byte("a")); err != nil {
		t.Errorf("decoded Parse() = %v", err)
	}
}

func TestEncodingSkipsUnknownFields(t *testing.T) {
	data, _ := toyLanguage().MarshalBinary()
	data = protowire.AppendTag(data, 99, protowire.VarintType)
	data = protowire.AppendVarint(data, 7)
	if _, err := UnmarshalLanguage(data); err != nil {
		t.Errorf("UnmarshalLanguage() = %v", err)
	}
}

func TestEncodingMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated tag", []byte{0xff}},
		{"truncated bytes", protowire.AppendTag(nil, fieldLanguageName, protowire.BytesType)},
		{"packed overflow", appendPacked32(nil, fieldLanguageLexMode, []uint32{1 << 20})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLanguage(tt.data)
			if !errors.Is(err, ErrMalformedTables) {
				t.Errorf("UnmarshalLanguage() = %v, want ErrMalformedTables", err)
			}
		})
	}
}

func TestEncodingInvalidTables(t *testing.T) {
	l := toyLanguage()
	l.InitialState = 12
	data, _ := l.MarshalBinary()
	_, err := UnmarshalLanguage(data)
	if !errors.Is(err, errInvalidLanguage) {
		t.Errorf("UnmarshalLanguage() = %v, want invalid language", err)
	}
}
