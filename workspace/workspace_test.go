package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestWorkspace(t *testing.T, root string) *Workspace {
	t.Helper()
	w, err := New(root, nil, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseCache(t *testing.T) {
	w := newTestWorkspace(t, t.TempDir())

	first := w.Parse([]byte("hello Alice"))
	second := w.Parse([]byte("hello Alice"))
	if first != second {
		t.Errorf("Parse of identical content returned distinct results")
	}
	if got := w.CacheLen(); got != 1 {
		t.Errorf("CacheLen() = %d, want 1", got)
	}

	other := w.Parse([]byte("goodbye Bob"))
	if other == first {
		t.Errorf("Parse of different content returned the cached result")
	}
	if got := w.CacheLen(); got != 2 {
		t.Errorf("CacheLen() = %d, want 2", got)
	}
}

func TestParseCacheEvicts(t *testing.T) {
	w, err := New(t.TempDir(), nil, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, src := range []string{"hello A", "hello B", "hello C"} {
		w.Parse([]byte(src))
	}
	if got := w.CacheLen(); got != 2 {
		t.Errorf("CacheLen() = %d, want 2", got)
	}
}

func TestParseResult(t *testing.T) {
	w := newTestWorkspace(t, t.TempDir())

	ok := w.Parse([]byte("hello Alice goodbye Bob"))
	if ok.Err != nil || ok.SyntaxError() != nil {
		t.Fatalf("Err = %v, want nil", ok.Err)
	}
	if got := len(ok.Greetings()); got != 2 {
		t.Errorf("len(Greetings()) = %d, want 2", got)
	}

	bad := w.Parse([]byte("hello"))
	if bad.Tree != nil {
		t.Errorf("Tree = %v, want nil", bad.Tree)
	}
	if bad.SyntaxError() == nil {
		t.Errorf("SyntaxError() = nil, want an error")
	}
}

func TestOpenChangeClose(t *testing.T) {
	w := newTestWorkspace(t, t.TempDir())
	uri := "untitled:one"

	doc := w.Open(uri, 1, []byte("hello Alice"))
	if !doc.Open || doc.Version != 1 {
		t.Errorf("Open = %v, Version = %d, want true, 1", doc.Open, doc.Version)
	}
	if got := w.Get(uri); got != doc {
		t.Errorf("Get(%q) = %v, want the opened document", uri, got)
	}

	doc = w.Change(uri, 2, []byte("hello"))
	if !doc.Open || doc.Version != 2 || string(doc.Content) != "hello" {
		t.Errorf("after Change: Open = %v, Version = %d, Content = %q", doc.Open, doc.Version, doc.Content)
	}
	if doc.Result.Err == nil {
		t.Errorf("Result.Err = nil, want a syntax error")
	}

	w.Close(uri)
	if got := w.Get(uri); got != nil {
		t.Errorf("Get after Close = %v, want nil", got)
	}
}

func TestCloseRereadsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.greet")
	writeFile(t, path, "goodbye Bob")

	w := newTestWorkspace(t, root)
	uri := pathToURI(path)
	w.Open(uri, 3, []byte("hello"))
	w.Close(uri)

	doc := w.Get(uri)
	if doc == nil {
		t.Fatalf("Get(%q) = nil after Close, want the file on disk", uri)
	}
	if doc.Open || string(doc.Content) != "goodbye Bob" {
		t.Errorf("Open = %v, Content = %q, want false, %q", doc.Open, doc.Content, "goodbye Bob")
	}
}

func TestScanAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.greet"), "hello Alice")
	writeFile(t, filepath.Join(root, "sub", "b.greet"), "hello")
	writeFile(t, filepath.Join(root, ".hidden", "c.greet"), "hello Carol")
	writeFile(t, filepath.Join(root, "notes.txt"), "hello Dave")

	w := newTestWorkspace(t, root)
	if err := w.ScanAll(); err != nil {
		t.Fatalf("ScanAll: %v", err)
	}

	want := []string{
		pathToURI(filepath.Join(root, "a.greet")),
		pathToURI(filepath.Join(root, "sub", "b.greet")),
	}
	got := w.URIs()
	if len(got) != len(want) {
		t.Fatalf("URIs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("URIs()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScanFileKeepsOpenDocument(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.greet")
	writeFile(t, path, "hello Disk")

	w := newTestWorkspace(t, root)
	uri := pathToURI(path)
	w.Open(uri, 1, []byte("hello Editor"))

	doc, err := w.ScanFile(path)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if string(doc.Content) != "hello Editor" {
		t.Errorf("Content = %q, want %q", doc.Content, "hello Editor")
	}

	w.RemoveFile(path)
	if w.Get(uri) == nil {
		t.Errorf("RemoveFile dropped an open document")
	}
}

func TestURIPathRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "with space.greet")
	uri := pathToURI(path)
	got, err := uriToPath(uri)
	if err != nil {
		t.Fatalf("uriToPath(%q): %v", uri, err)
	}
	if got != path {
		t.Errorf("uriToPath(pathToURI(%q)) = %q", path, got)
	}
}
