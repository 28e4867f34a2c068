// Package workspace keeps the parsed state of .greet documents and serves it
// over the Language Server Protocol.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/tliron/commonlog"

	"github.com/sfinnie/helloLSP/greet"
	"github.com/sfinnie/helloLSP/parser"
)

// Extension is the file extension of greet documents.
const Extension = ".greet"

// DefaultCacheSize is the number of parse results kept when none is
// configured.
const DefaultCacheSize = 128

type Workspace struct {
	mu      sync.RWMutex
	rootDir string
	parser  *parser.Parser
	docs    map[string]*Document
	cache   *lru.Cache[uint64, *ParseResult]
	log     commonlog.Logger
}

// Document is one text document known to the workspace. Open documents are
// owned by the editor; the others were read from disk.
type Document struct {
	URI     string
	Version int32
	Content []byte
	Open    bool
	Result  *ParseResult
}

// ParseResult is the outcome of parsing one document text. Results are
// shared between documents with identical content and must not be
// modified.
type ParseResult struct {
	Source []byte
	Tree   *parser.Tree
	Err    error
}

// SyntaxError returns the error that stopped the parse, if it was a syntax
// error.
func (r *ParseResult) SyntaxError() *parser.SyntaxError {
	var serr *parser.SyntaxError
	if errors.As(r.Err, &serr) {
		return serr
	}
	return nil
}

// Greetings returns the greetings of a successful parse.
func (r *ParseResult) Greetings() []greet.Greeting {
	return greet.Greetings(r.Tree)
}

func New(rootDir string, p *parser.Parser, cacheSize int) (*Workspace, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[uint64, *ParseResult](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	if p == nil {
		p = greet.NewParser()
	}
	return &Workspace{
		rootDir: rootDir,
		parser:  p,
		docs:    make(map[string]*Document),
		cache:   cache,
		log:     commonlog.GetLogger("greet.workspace"),
	}, nil
}

func (w *Workspace) RootDir() string {
	return w.rootDir
}

func (w *Workspace) Parser() *parser.Parser {
	return w.parser
}

// Parse parses content, reusing the result of an earlier parse of the same
// bytes.
func (w *Workspace) Parse(content []byte) *ParseResult {
	key := xxhash.Sum64(content)
	if r, ok := w.cache.Get(key); ok && bytes.Equal(r.Source, content) {
		return r
	}
	source := bytes.Clone(content)
	tree, err := w.parser.Parse(source)
	r := &ParseResult{Source: source, Tree: tree, Err: err}
	w.cache.Add(key, r)
	return r
}

// CacheLen returns the number of cached parse results.
func (w *Workspace) CacheLen() int {
	return w.cache.Len()
}

// Open records a document opened by the editor.
func (w *Workspace) Open(uri string, version int32, content []byte) *Document {
	return w.update(uri, version, content, true)
}

// Change replaces the text of a document.
func (w *Workspace) Change(uri string, version int32, content []byte) *Document {
	w.mu.RLock()
	open := true
	if doc, ok := w.docs[uri]; ok {
		open = doc.Open
	}
	w.mu.RUnlock()
	return w.update(uri, version, content, open)
}

func (w *Workspace) update(uri string, version int32, content []byte, open bool) *Document {
	result := w.Parse(content)
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: result.Source,
		Open:    open,
		Result:  result,
	}

	w.mu.Lock()
	w.docs[uri] = doc
	w.mu.Unlock()

	if result.Err != nil {
		w.log.Debugf("%s: %s", uri, result.Err)
	}
	return doc
}

// Close forgets an editor document. Documents that exist on disk are
// re-read so workspace diagnostics stay current.
func (w *Workspace) Close(uri string) {
	w.mu.Lock()
	delete(w.docs, uri)
	w.mu.Unlock()

	if path, err := uriToPath(uri); err == nil && strings.HasSuffix(path, Extension) {
		if _, err := os.Stat(path); err == nil {
			w.ScanFile(path)
		}
	}
}

func (w *Workspace) Get(uri string) *Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.docs[uri]
}

// URIs returns the URIs of all documents, sorted.
func (w *Workspace) URIs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uris := make([]string, 0, len(w.docs))
	for uri := range w.docs {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// ScanAll reads every greet document under the root directory.
func (w *Workspace) ScanAll() error {
	return filepath.Walk(w.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if path != w.rootDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == Extension {
			w.ScanFile(path)
		}
		return nil
	})
}

// ScanFile reads a document from disk unless the editor has it open.
func (w *Workspace) ScanFile(path string) (*Document, error) {
	uri := pathToURI(path)
	if doc := w.Get(uri); doc != nil && doc.Open {
		return doc, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return w.update(uri, 0, content, false), nil
}

// RemoveFile forgets a document read from disk.
func (w *Workspace) RemoveFile(path string) {
	uri := pathToURI(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if doc, ok := w.docs[uri]; ok && !doc.Open {
		delete(w.docs, uri)
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}
