package workspace

import (
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/sfinnie/helloLSP/parser"
)

const lsName = "greet"

var completionTriggers = []string{" "}

type serverOptions struct {
	parser        *parser.Parser
	cacheSize     int
	watch         bool
	pollInterval  time.Duration
	progressDelay time.Duration
}

type ServerOption func(*serverOptions)

// WithParser sets the parser used for documents.
func WithParser(p *parser.Parser) ServerOption {
	return func(o *serverOptions) {
		o.parser = p
	}
}

func WithCacheSize(n int) ServerOption {
	return func(o *serverOptions) {
		o.cacheSize = n
	}
}

// WithWatch enables polling the workspace for changed files.
func WithWatch(watch bool, interval time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.watch = watch
		if interval > 0 {
			o.pollInterval = interval
		}
	}
}

func WithProgressDelay(d time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.progressDelay = d
	}
}

type LSPServer struct {
	workspace     *Workspace
	handler       protocol.Handler
	server        *server.Server
	version       string
	options       serverOptions
	registrations registrations
	watcher       *FileWatcher
	log           commonlog.Logger

	notifyMu sync.Mutex
	notify   glsp.NotifyFunc
}

func NewLSPServer(version string, opts ...ServerOption) *LSPServer {
	ls := &LSPServer{
		version: version,
		options: serverOptions{
			cacheSize:     DefaultCacheSize,
			watch:         true,
			pollInterval:  time.Second,
			progressDelay: 2 * time.Second,
		},
		log: commonlog.GetLogger("greet.lsp"),
	}
	for _, opt := range opts {
		opt(&ls.options)
	}

	ls.handler = protocol.Handler{
		Initialize:                     ls.initialize,
		Initialized:                    ls.initialized,
		Shutdown:                       ls.shutdown,
		SetTrace:                       ls.setTrace,
		TextDocumentDidOpen:            ls.textDocumentDidOpen,
		TextDocumentDidChange:          ls.textDocumentDidChange,
		TextDocumentDidClose:           ls.textDocumentDidClose,
		TextDocumentCompletion:         ls.textDocumentCompletion,
		TextDocumentSemanticTokensFull: ls.textDocumentSemanticTokensFull,
		WorkspaceExecuteCommand:        ls.executeCommand,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

// Workspace returns the workspace created by initialize, or nil before it.
func (ls *LSPServer) Workspace() *Workspace {
	return ls.workspace
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ws, err := New(rootDir, ls.options.parser, ls.options.cacheSize)
	if err != nil {
		return nil, err
	}
	ls.workspace = ws
	ls.log.Infof("initialize %s", rootDir)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: completionTriggers,
	}
	capabilities.SemanticTokensProvider = &protocol.SemanticTokensOptions{
		Legend: protocol.SemanticTokensLegend{
			TokenTypes:     SemanticTokenTypes,
			TokenModifiers: []string{},
		},
		Full: true,
	}
	capabilities.ExecuteCommandProvider = &protocol.ExecuteCommandOptions{
		Commands: Commands,
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	ls.notifyMu.Lock()
	ls.notify = ctx.Notify
	ls.notifyMu.Unlock()

	if err := ls.workspace.ScanAll(); err != nil {
		ls.log.Errorf("scan %s: %s", ls.workspace.RootDir(), err)
	}
	for _, uri := range ls.workspace.URIs() {
		ls.publish(ls.workspace.Get(uri))
	}

	if ls.options.watch {
		ls.watcher = NewFileWatcher(ls.workspace, ls.options.pollInterval, ls.fileChanged)
		ls.watcher.Start()
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	if ls.watcher != nil {
		ls.watcher.Stop()
		ls.watcher = nil
	}
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	if ls.workspace == nil {
		return nil
	}
	doc := ls.workspace.Open(params.TextDocument.URI, params.TextDocument.Version, []byte(params.TextDocument.Text))
	ls.publishWith(ctx.Notify, doc)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if ls.workspace == nil || len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return nil
	}
	doc := ls.workspace.Change(params.TextDocument.URI, params.TextDocument.Version, []byte(textChange.Text))
	ls.publishWith(ctx.Notify, doc)
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	if ls.workspace == nil {
		return nil
	}
	uri := params.TextDocument.URI
	ls.workspace.Close(uri)
	if doc := ls.workspace.Get(uri); doc != nil {
		ls.publishWith(ctx.Notify, doc)
	} else {
		ctx.Notify(methodPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	if ls.workspace == nil {
		return nil, nil
	}
	doc := ls.workspace.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	completions := ls.workspace.Completions(doc, offsetOf(doc.Content, params.Position))
	if len(completions) == 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, c := range completions {
		kind := toProtocolKind(c.Kind)
		detail := c.Detail
		insertText := c.InsertText

		items = append(items, protocol.CompletionItem{
			Label:      c.Label,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insertText,
		})
	}

	return items, nil
}

func (ls *LSPServer) textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	if ls.workspace == nil {
		return &protocol.SemanticTokens{Data: []protocol.UInteger{}}, nil
	}
	doc := ls.workspace.Get(params.TextDocument.URI)
	return &protocol.SemanticTokens{Data: SemanticTokens(doc)}, nil
}

// fileChanged publishes diagnostics for a document the watcher re-read or
// dropped.
func (ls *LSPServer) fileChanged(uri string) {
	if doc := ls.workspace.Get(uri); doc != nil {
		ls.publish(doc)
		return
	}
	ls.notifyMu.Lock()
	notify := ls.notify
	ls.notifyMu.Unlock()
	if notify != nil {
		notify(methodPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
}

func (ls *LSPServer) publish(doc *Document) {
	ls.notifyMu.Lock()
	notify := ls.notify
	ls.notifyMu.Unlock()
	if notify != nil {
		ls.publishWith(notify, doc)
	}
}

func (ls *LSPServer) publishWith(notify glsp.NotifyFunc, doc *Document) {
	if doc == nil {
		return
	}
	diagnostics := Diagnostics(doc)
	ls.log.Debugf("publish %d diagnostics for %s", len(diagnostics), doc.URI)
	notify(methodPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: diagnostics,
	})
}

func toProtocolKind(kind CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	case CompletionKindName:
		return protocol.CompletionItemKindVariable
	default:
		return protocol.CompletionItemKindText
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
