package lsp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docnav/internal/commands"
	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/session"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

const doc = "intro\n" + // 0
	"# A\n" + // 1
	"text\n" + // 2
	"## A.1\n" + // 3
	"text\n" + // 4
	"# B\n" + // 5
	"text\n" // 6

const uri = protocol.DocumentURI("file:///work/notes.md")

type client struct {
	conn *jsonrpc2.Conn

	mu       sync.Mutex
	outlines []OutlineParams
}

func (c *client) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Method == OutlineMethod && req.Params != nil {
		var p OutlineParams
		if err := json.Unmarshal(*req.Params, &p); err == nil {
			c.mu.Lock()
			c.outlines = append(c.outlines, p)
			c.mu.Unlock()
		}
	}
	return nil, nil
}

func (c *client) outlineCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.outlines)
}

func (c *client) lastOutline() (OutlineParams, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.outlines) == 0 {
		return OutlineParams{}, false
	}
	return c.outlines[len(c.outlines)-1], true
}

func start(t *testing.T) (*client, *session.Manager, <-chan error) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr := session.NewManager(session.Options{}, time.Hour, log)
	t.Cleanup(mgr.Stop)
	srv := NewServer(mgr, config.NewDisplay(config.DefaultDisplay()), commands.Default(), log)

	a, b := net.Pipe()
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), a) }()

	c := &client{}
	stream := jsonrpc2.NewBufferedStream(b, jsonrpc2.VSCodeObjectCodec{})
	c.conn = jsonrpc2.NewConn(context.Background(), stream, jsonrpc2.HandlerWithError(c.handle))
	t.Cleanup(func() { c.conn.Close() })
	return c, mgr, done
}

func call(t *testing.T, c *client, method string, params, result any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.conn.Call(ctx, method, params, result))
}

func notify(t *testing.T, c *client, method string, params any) {
	t.Helper()
	require.NoError(t, c.conn.Notify(context.Background(), method, params))
}

func open(t *testing.T, c *client, text string) {
	t.Helper()
	notify(t, c, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uri, LanguageID: "markdown", Version: 1, Text: text},
	})
}

func TestInitialize(t *testing.T) {
	c, _, _ := start(t)

	var res protocol.InitializeResult
	call(t, c, "initialize", protocol.InitializeParams{}, &res)
	require.Equal(t, "docnav", res.ServerInfo.Name)
	require.NotNil(t, res.Capabilities.ExecuteCommandProvider)
	require.Contains(t, res.Capabilities.ExecuteCommandProvider.Commands, "docnav.fold-as-table")
	require.Equal(t, true, res.Capabilities.DocumentSymbolProvider)
}

func TestDocumentSymbolsAndFolding(t *testing.T) {
	c, _, _ := start(t)
	call(t, c, "initialize", protocol.InitializeParams{}, &protocol.InitializeResult{})
	open(t, c, doc)

	var syms []protocol.DocumentSymbol
	call(t, c, "textDocument/documentSymbol", protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}, &syms)
	require.Len(t, syms, 2)
	require.Equal(t, "A", syms[0].Name)
	require.Equal(t, uint32(1), syms[0].Range.Start.Line)
	require.Equal(t, uint32(4), syms[0].Range.End.Line)
	require.Equal(t, uint32(1), syms[0].SelectionRange.End.Line)
	require.Len(t, syms[0].Children, 1)
	require.Equal(t, "A.1", syms[0].Children[0].Name)

	var ranges []protocol.FoldingRange
	call(t, c, "textDocument/foldingRange", protocol.FoldingRangeParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		},
	}, &ranges)
	require.Len(t, ranges, 4)
	require.Equal(t, protocol.FoldingRangeKind("comment"), ranges[0].Kind)
	require.Equal(t, uint32(0), ranges[0].EndLine)

	notify(t, c, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{{Text: "# Only\n"}},
	})
	require.Eventually(t, func() bool {
		var syms []protocol.DocumentSymbol
		call(t, c, "textDocument/documentSymbol", protocol.DocumentSymbolParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		}, &syms)
		return len(syms) == 1 && syms[0].Name == "Only"
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool { return c.outlineCount() >= 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestExecuteCommand(t *testing.T) {
	c, _, _ := start(t)
	open(t, c, doc)

	var res commands.Result
	call(t, c, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command:   "docnav.fold-section-at-1",
		Arguments: []any{string(uri), map[string]any{"row": 4}},
	}, &res)
	require.Len(t, res.Folds, 1)
	require.Equal(t, 1, res.Folds[0].Start)
	require.Equal(t, 4, res.Folds[0].End)

	res = commands.Result{}
	call(t, c, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command:   "docnav.next-node",
		Arguments: []any{string(uri)},
	}, &res)
	require.Equal(t, "B", res.Node.Text)

	res = commands.Result{}
	call(t, c, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command:   "docnav.search",
		Arguments: []any{string(uri), map[string]any{"query": "b"}},
	}, &res)
	require.Len(t, res.Search, 1)
	require.Eventually(t, func() bool {
		p, ok := c.lastOutline()
		return ok && p.Query == "b" && len(p.Search) == 1
	}, 5*time.Second, 10*time.Millisecond)

	call(t, c, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command:   "docnav.clear",
		Arguments: []any{string(uri)},
	}, nil)
	require.Eventually(t, func() bool {
		p, ok := c.lastOutline()
		return ok && p.Query == "" && p.Search == nil
	}, 5*time.Second, 10*time.Millisecond)

	res = commands.Result{}
	call(t, c, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command: "docnav.info-toggle",
	}, &res)
	require.False(t, res.Display.Categories["info"])

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.conn.Call(ctx, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command: "docnav.fold-as-table",
	}, nil)
	var rpcErr *jsonrpc2.Error
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, int64(jsonrpc2.CodeInvalidParams), rpcErr.Code)

	err = c.conn.Call(ctx, "workspace/executeCommand", protocol.ExecuteCommandParams{
		Command:   "docnav.fold-as-table",
		Arguments: []any{"file:///not/open.md"},
	}, nil)
	require.ErrorAs(t, err, &rpcErr)
}

func TestCloseAndExit(t *testing.T) {
	c, mgr, done := start(t)
	open(t, c, doc)
	require.Eventually(t, func() bool { return len(mgr.List()) == 1 }, 5*time.Second, 10*time.Millisecond)

	notify(t, c, "textDocument/didClose", protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	})
	require.Eventually(t, func() bool { return len(mgr.List()) == 0 }, 5*time.Second, 10*time.Millisecond)

	open(t, c, doc)
	call(t, c, "shutdown", nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := c.conn.Call(ctx, "textDocument/documentSymbol", protocol.DocumentSymbolParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
	}, nil)
	require.Error(t, err)

	notify(t, c, "exit", nil)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not exit")
	}
	require.Empty(t, mgr.List(), "exit closes open documents")
}
