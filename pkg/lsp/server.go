// Package lsp implements a stdio language server that runs the tcab
// front-end over open documents and publishes the resulting diagnostics.
// It speaks only the document-sync subset of the protocol; everything else
// answers with "method not implemented".
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/dubya62/tcab/pkg/compiler"
	"github.com/dubya62/tcab/pkg/diag"
)

// ServerConfig holds configuration for the LSP server.
type ServerConfig struct {
	Logger   *zap.SugaredLogger
	Compiler *compiler.Compiler
	Version  string
}

// Server implements the tcab diagnostics server.
type Server struct {
	config      ServerConfig
	initialized bool

	connMu sync.RWMutex
	conn   jsonrpc2.Conn
	ctx    context.Context

	docsMu sync.RWMutex
	docs   map[protocol.DocumentURI]string
}

// NewServer creates a new LSP server instance.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Compiler == nil {
		cfg.Compiler = compiler.New(nil)
	}
	return &Server{
		config: cfg,
		docs:   make(map[protocol.DocumentURI]string),
	}
}

// SetConn stores the client connection and context (thread-safe). It must
// be called before the handler starts serving.
func (s *Server) SetConn(conn jsonrpc2.Conn, ctx context.Context) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.conn = conn
	s.ctx = ctx
}

// Handler returns the JSON-RPC2 handler routing LSP requests.
func (s *Server) Handler() jsonrpc2.Handler {
	return s.handleRequest
}

func (s *Server) handleRequest(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.config.Logger.Debugf("received request: %s", req.Method())

	switch req.Method() {
	case "initialize":
		return s.handleInitialize(ctx, reply, req)
	case "initialized":
		return reply(ctx, nil, nil)
	case "shutdown":
		s.config.Logger.Infof("shutdown requested")
		return reply(ctx, nil, nil)
	case "exit":
		return reply(ctx, nil, nil)
	case "textDocument/didOpen":
		return s.handleDidOpen(ctx, reply, req)
	case "textDocument/didChange":
		return s.handleDidChange(ctx, reply, req)
	case "textDocument/didSave":
		return reply(ctx, nil, nil)
	case "textDocument/didClose":
		return s.handleDidClose(ctx, reply, req)
	default:
		s.config.Logger.Debugf("method %s not implemented", req.Method())
		return reply(ctx, nil, fmt.Errorf("method not implemented: %s", req.Method()))
	}
}

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.InitializeParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, fmt.Errorf("invalid initialize params: %w", err))
	}

	result := protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "tcab-lsp",
			Version: s.config.Version,
		},
	}

	s.initialized = true
	s.config.Logger.Infof("server initialized")
	return reply(ctx, result, nil)
}

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.docsMu.Lock()
	s.docs[params.TextDocument.URI] = params.TextDocument.Text
	s.docsMu.Unlock()

	s.checkDocument(params.TextDocument.URI, params.TextDocument.Text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	// Full sync: the last change carries the complete document.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.docsMu.Lock()
	s.docs[params.TextDocument.URI] = text
	s.docsMu.Unlock()

	s.checkDocument(params.TextDocument.URI, text)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.docsMu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.docsMu.Unlock()

	// Clear stale diagnostics for the closed document.
	s.publish(params.TextDocument.URI, nil)
	return reply(ctx, nil, nil)
}

// checkDocument runs the front-end over the buffer and publishes the
// resulting diagnostics, grouped by originating file.
func (s *Server) checkDocument(docURI protocol.DocumentURI, text string) {
	path := docURI.Filename()

	prog, err := s.config.Compiler.CompileSource(path, []byte(text))
	if err != nil {
		s.config.Logger.Warnf("compile failed for %s: %v", path, err)
		s.publish(docURI, []protocol.Diagnostic{{
			Range:    protocol.Range{},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "tcab",
			Message:  err.Error(),
		}})
		return
	}

	byFile := make(map[string][]protocol.Diagnostic)
	for _, d := range prog.Diags.Items() {
		file := d.File
		if file == "*" || file == "" {
			file = path
		}
		byFile[file] = append(byFile[file], toProtocol(d))
	}

	// The open document always gets a publish, clearing old findings when
	// the list is empty.
	s.publish(docURI, byFile[path])
	delete(byFile, path)

	for file, diags := range byFile {
		abs, err := filepath.Abs(file)
		if err != nil {
			abs = file
		}
		s.publish(uri.File(abs), diags)
	}
}

func toProtocol(d diag.Diagnostic) protocol.Diagnostic {
	line := uint32(0)
	if d.Line > 0 {
		line = uint32(d.Line - 1)
	}
	msg := d.Cause
	if d.Suggestion != "" {
		msg += " (" + d.Suggestion + ")"
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: 0},
			End:   protocol.Position{Line: line, Character: uint32(len(d.Source))},
		},
		Severity: protocol.DiagnosticSeverityError,
		Source:   "tcab",
		Message:  msg,
	}
}

func (s *Server) publish(docURI protocol.DocumentURI, diags []protocol.Diagnostic) {
	s.connMu.RLock()
	conn, ctx := s.conn, s.ctx
	s.connMu.RUnlock()
	if conn == nil {
		return
	}
	if diags == nil {
		diags = []protocol.Diagnostic{}
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diags,
	}
	if err := conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.config.Logger.Warnf("failed to publish diagnostics: %v", err)
	}
}
