package greet

import (
	"reflect"
	"testing"
)

func TestGreetings(t *testing.T) {
	tree := mustParse(t, "Hello Alice\ngoodbye Bob hello Alice")

	got := Greetings(tree)
	if len(got) != 3 {
		t.Fatalf("got %d greetings, want 3", len(got))
	}
	want := []struct {
		salutation, name string
		farewell         bool
	}{
		{"Hello", "Alice", false},
		{"goodbye", "Bob", true},
		{"hello", "Alice", false},
	}
	for i, w := range want {
		if got[i].Salutation != w.salutation || got[i].Name != w.name {
			t.Errorf("greeting %d = %s %s, want %s %s", i, got[i].Salutation, got[i].Name, w.salutation, w.name)
		}
		if got[i].IsFarewell() != w.farewell {
			t.Errorf("greeting %d IsFarewell() = %v, want %v", i, got[i].IsFarewell(), w.farewell)
		}
	}
	if got[1].Span.Start.Line != 2 || got[1].NameSpan.Start.Column != 9 {
		t.Errorf("greeting 1 at %v, name at %v", got[1].Span.Start, got[1].NameSpan.Start)
	}

	if names := Names(tree); !reflect.DeepEqual(names, []string{"Alice", "Bob"}) {
		t.Errorf("Names() = %v, want [Alice Bob]", names)
	}
}

func TestGreetingsEmpty(t *testing.T) {
	if got := Greetings(mustParse(t, "")); len(got) != 0 {
		t.Errorf("Greetings() = %v, want none", got)
	}
	if got := Greetings(nil); got != nil {
		t.Errorf("Greetings(nil) = %v, want nil", got)
	}
}
