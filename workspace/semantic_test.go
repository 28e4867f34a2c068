package workspace

import (
	"reflect"
	"testing"
)

func TestSemanticTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []uint32
	}{
		{"empty", "", []uint32{}},
		{"one line", "Hello Alice", []uint32{
			0, 0, 5, TokenTypeKeyword, 0,
			0, 6, 5, TokenTypeVariable, 0,
		}},
		{"two lines", "Hello Alice\n  goodbye Bob", []uint32{
			0, 0, 5, TokenTypeKeyword, 0,
			0, 6, 5, TokenTypeVariable, 0,
			1, 2, 7, TokenTypeKeyword, 0,
			0, 8, 3, TokenTypeVariable, 0,
		}},
		{"recovered error skipped", "hello 42 Bob", []uint32{
			0, 0, 5, TokenTypeKeyword, 0,
			0, 9, 3, TokenTypeVariable, 0,
		}},
		{"failed parse falls back to tokens", "Alice hello", []uint32{
			0, 0, 5, TokenTypeVariable, 0,
			0, 6, 5, TokenTypeKeyword, 0,
		}},
		{"utf-16 columns", "hello 42é Bob", []uint32{
			0, 0, 5, TokenTypeKeyword, 0,
			0, 10, 3, TokenTypeVariable, 0,
		}},
	}

	w := newTestWorkspace(t, t.TempDir())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := w.Open("untitled:"+tt.name, 1, []byte(tt.content))
			got := SemanticTokens(doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SemanticTokens(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}
