// Package lsp serves document outlines over the Language Server Protocol:
// headings as document symbols, sections as folding ranges and the
// command registry through workspace/executeCommand.
package lsp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/scanner"
	"github.com/dgallion1/docnav/internal/search"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/sourcegraph/jsonrpc2"
	"go.lsp.dev/protocol"
)

// CommandPrefix namespaces registry commands in workspace/executeCommand.
const CommandPrefix = "docnav."

// OutlineMethod is the notification sent after every outline change.
const OutlineMethod = "docnav/outline"

// OutlineParams is the payload of OutlineMethod.
type OutlineParams struct {
	URI     protocol.DocumentURI `json:"uri"`
	Forest  []*outline.Node      `json:"forest"`
	Instant bool                 `json:"instant"`
	Query   string               `json:"query,omitempty"`
	Search  []search.Result      `json:"search,omitempty"`
}

// document is one open text document.
type document struct {
	sess   *session.Session
	cursor *session.Cursor
	unsub  func()
}

// Server handles one LSP connection.
type Server struct {
	sessions *session.Manager
	display  *config.Display
	commands *commands.Registry
	log      *slog.Logger

	mu       sync.Mutex
	docs     map[protocol.DocumentURI]*document
	shutdown bool
	exited   chan struct{}
	exitOnce sync.Once
}

// NewServer creates a server opening sessions through sessions.
func NewServer(sessions *session.Manager, display *config.Display, cmds *commands.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		display:  display,
		commands: cmds,
		log:      log,
		docs:     make(map[protocol.DocumentURI]*document),
		exited:   make(chan struct{}),
	}
}

// Serve runs the protocol over rwc until the client exits, the connection
// drops or ctx is cancelled. Open documents are closed on return.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handle))
	defer s.closeAll()

	select {
	case <-conn.DisconnectNotify():
		return nil
	case <-s.exited:
		return conn.Close()
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

func (s *Server) handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	s.mu.Lock()
	down := s.shutdown
	s.mu.Unlock()
	if down && req.Method != "exit" {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidRequest, Message: "server is shutting down"}
	}

	switch req.Method {
	case "initialize":
		return s.initialize(), nil
	case "initialized":
		return nil, nil
	case "shutdown":
		s.mu.Lock()
		s.shutdown = true
		s.mu.Unlock()
		return nil, nil
	case "exit":
		s.exitOnce.Do(func() { close(s.exited) })
		return nil, nil

	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return nil, s.didOpen(conn, params)
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return nil, s.didChange(params)
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		s.didClose(params.TextDocument.URI)
		return nil, nil

	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		doc, err := s.settled(ctx, params.TextDocument.URI)
		if err != nil {
			return nil, err
		}
		return documentSymbols(doc.sess.Forest()), nil
	case "textDocument/foldingRange":
		var params protocol.FoldingRangeParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		doc, err := s.settled(ctx, params.TextDocument.URI)
		if err != nil {
			return nil, err
		}
		return foldingRanges(doc.sess.TableRanges("")), nil
	case "workspace/executeCommand":
		var params protocol.ExecuteCommandParams
		if err := unmarshal(req, &params); err != nil {
			return nil, err
		}
		return s.executeCommand(ctx, params)
	}

	if req.Notif || strings.HasPrefix(req.Method, "$/") {
		return nil, nil
	}
	return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not handled: " + req.Method}
}

func (s *Server) initialize() protocol.InitializeResult {
	names := make([]string, 0, len(s.commands.List()))
	for _, c := range s.commands.List() {
		names = append(names, CommandPrefix+c.Name)
	}
	return protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			DocumentSymbolProvider: true,
			FoldingRangeProvider:   true,
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{Commands: names},
		},
		ServerInfo: &protocol.ServerInfo{Name: "docnav"},
	}
}

func (s *Server) didOpen(conn *jsonrpc2.Conn, params protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	s.didClose(item.URI)

	filename := uriFilename(item.URI)
	format, err := scanner.Resolve(string(item.LanguageID), filename)
	if err != nil {
		format = string(item.LanguageID)
	}
	sess, err := s.sessions.Open(filename, format, []byte(item.Text))
	if err != nil {
		return invalidParams(err)
	}
	uri := item.URI
	unsub := sess.Subscribe(func(u session.Update) {
		err := conn.Notify(context.Background(), OutlineMethod, OutlineParams{
			URI: uri, Forest: u.Forest, Instant: u.Instant, Query: u.Query, Search: u.Search,
		})
		if err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
			s.log.Warn("outline notification failed", "uri", uri, "error", err)
		}
	})

	s.mu.Lock()
	s.docs[uri] = &document{sess: sess, unsub: unsub}
	s.mu.Unlock()
	s.log.Info("document opened", "uri", uri, "format", format, "session_id", sess.ID)
	return nil
}

// didChange applies full-text changes. With full sync the last change
// carries the whole document.
func (s *Server) didChange(params protocol.DidChangeTextDocumentParams) error {
	doc, err := s.doc(params.TextDocument.URI)
	if err != nil {
		return err
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	return doc.sess.Update([]byte(text))
}

func (s *Server) didClose(uri protocol.DocumentURI) {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	delete(s.docs, uri)
	s.mu.Unlock()
	if !ok {
		return
	}
	doc.unsub()
	if err := s.sessions.Close(doc.sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		s.log.Warn("close session failed", "uri", uri, "error", err)
	}
}

func (s *Server) closeAll() {
	s.mu.Lock()
	uris := make([]protocol.DocumentURI, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	s.mu.Unlock()
	for _, uri := range uris {
		s.didClose(uri)
	}
}

func (s *Server) doc(uri protocol.DocumentURI) (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "document not open: " + string(uri)}
	}
	return doc, nil
}

// settled returns the document once its pending rebuilds finished.
func (s *Server) settled(ctx context.Context, uri protocol.DocumentURI) (*document, error) {
	doc, err := s.doc(uri)
	if err != nil {
		return nil, err
	}
	if err := doc.sess.Sync(ctx); err != nil {
		return nil, err
	}
	return doc, nil
}

// commandArgs are the optional second argument of executeCommand.
type commandArgs struct {
	Row   *int   `json:"row"`
	Query string `json:"query"`
}

// executeCommand runs docnav.<name>. The first argument is the document
// URI for document commands; an optional second object may carry the
// cursor row and a search query.
func (s *Server) executeCommand(ctx context.Context, params protocol.ExecuteCommandParams) (any, error) {
	name, ok := strings.CutPrefix(params.Command, CommandPrefix)
	if !ok {
		return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "unknown command: " + params.Command}
	}
	env := commands.Env{Display: s.display}

	if len(params.Arguments) > 0 {
		raw, ok := params.Arguments[0].(string)
		if !ok {
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "first argument must be a document uri"}
		}
		doc, err := s.settled(ctx, protocol.DocumentURI(raw))
		if err != nil {
			return nil, err
		}
		env.Session = doc.sess

		var args commandArgs
		if len(params.Arguments) > 1 {
			data, err := json.Marshal(params.Arguments[1])
			if err != nil {
				return nil, invalidParams(err)
			}
			if err := json.Unmarshal(data, &args); err != nil {
				return nil, invalidParams(err)
			}
		}
		env.Query = args.Query
		if args.Row != nil {
			c, err := s.cursor(doc, *args.Row)
			if err != nil {
				return nil, err
			}
			env.CursorID = c.ID
		} else if doc.cursor != nil {
			env.CursorID = doc.cursor.ID
		}
	}

	res, err := s.commands.Run(ctx, name, env)
	switch {
	case errors.Is(err, commands.ErrUnknown), errors.Is(err, commands.ErrNoSession), errors.Is(err, session.ErrNoCursor):
		return nil, invalidParams(err)
	case err != nil:
		return nil, err
	}
	return res, nil
}

// cursor places the document's cursor at row, creating it on first use.
func (s *Server) cursor(doc *document, row int) (*session.Cursor, error) {
	s.mu.Lock()
	c := doc.cursor
	s.mu.Unlock()
	if c != nil {
		return c, c.Move(row, false)
	}
	c, err := doc.sess.AddCursor(row)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc.cursor = c
	s.mu.Unlock()
	return c, nil
}

func unmarshal(req *jsonrpc2.Request, v any) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return invalidParams(err)
	}
	return nil
}

func invalidParams(err error) error {
	return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
}

// uriFilename returns the base name of a document URI.
func uriFilename(uri protocol.DocumentURI) string {
	u, err := url.Parse(string(uri))
	if err != nil || u.Path == "" {
		return path.Base(string(uri))
	}
	return path.Base(u.Path)
}

type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error { return nil }

// Stdio is the process's standard input and output as a connection.
func Stdio() io.ReadWriteCloser { return stdio{os.Stdin, os.Stdout} }
