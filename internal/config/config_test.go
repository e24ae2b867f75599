package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/docnav/internal/outline"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DEBOUNCE", "SESSION_TTL", "TRACE_VISIBLE", "TASKLIST_USE_HEADERS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected port 8091, got %s", cfg.Port)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Errorf("expected 300ms debounce, got %s", cfg.Debounce)
	}
	if !cfg.TraceVisible || !cfg.TasklistUseHeaders || cfg.SofistikInBlock {
		t.Errorf("unexpected switch defaults: %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DEBOUNCE", "50ms")
	t.Setenv("SESSION_TTL", "-1s")
	t.Setenv("MARK_LINES", "true")
	t.Setenv("MAX_DOCUMENT_BYTES", "not-a-number")
	cfg := Load()
	if cfg.Debounce != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %s", cfg.Debounce)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("expected invalid TTL to fall back to 1h, got %s", cfg.SessionTTL)
	}
	if !cfg.MarkLines {
		t.Error("expected MARK_LINES to be set")
	}
	if cfg.MaxDocumentBytes != 10485760 {
		t.Errorf("expected default document limit, got %d", cfg.MaxDocumentBytes)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{Port: "8091"}).Validate(); err == nil {
		t.Error("expected missing API key to fail")
	}
	if err := (Config{Port: "x", APIKey: "k"}).Validate(); err == nil {
		t.Error("expected non-numeric port to fail")
	}
	if err := (Config{Port: "8091", APIKey: "k"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDisplay_SubscribeAndToggle(t *testing.T) {
	d := NewDisplay(DefaultDisplay())
	var calls atomic.Int32
	var last DisplayState
	cancel := d.Subscribe(func(s DisplayState) {
		calls.Add(1)
		last = s
	})

	d.SetCategories([]string{outline.TagInfo}, nil)
	if calls.Load() != 1 {
		t.Fatalf("expected 1 notification, got %d", calls.Load())
	}
	if last.Shows(outline.TagInfo) {
		t.Error("expected info hidden after toggle")
	}

	off := false
	d.SetCategories(outline.Categories, &off)
	for _, c := range outline.Categories {
		if d.Snapshot().Shows(c) {
			t.Errorf("expected %s hidden", c)
		}
	}

	cancel()
	d.Update(func(s *DisplayState) { s.TextWrap = true })
	if calls.Load() != 2 {
		t.Errorf("expected no notification after cancel, got %d calls", calls.Load())
	}
	if !d.Snapshot().TextWrap {
		t.Error("expected text wrap on")
	}
}

func TestDisplay_SnapshotIsCopy(t *testing.T) {
	d := NewDisplay(DefaultDisplay())
	s := d.Snapshot()
	s.Categories[outline.TagError] = false
	if !d.Snapshot().Shows(outline.TagError) {
		t.Error("expected snapshot mutation not to leak")
	}
}

func TestShowChildren(t *testing.T) {
	n := &outline.Node{StackCount: 1}
	m := &outline.Node{}
	s := DefaultDisplay()
	if !s.ShowChildren(m) {
		t.Error("expected expand mode to show children")
	}
	s.Tree = TreeCollapse
	if s.ShowChildren(n) {
		t.Error("expected collapse mode to hide children")
	}
	s.Tree = TreeAuto
	if !s.ShowChildren(n) || s.ShowChildren(m) {
		t.Error("expected auto mode to follow the cursor stack")
	}
}

func TestDisplayFile_RoundTripAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prefs", "display.yaml")

	s, err := LoadDisplayFile(path)
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if s.Tree != TreeExpand {
		t.Errorf("expected defaults, got tree %q", s.Tree)
	}

	s.Tree = TreeAuto
	s.Categories[outline.TagWarning] = false
	if err := SaveDisplayFile(path, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadDisplayFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Tree != TreeAuto || got.Shows(outline.TagWarning) {
		t.Errorf("expected saved preferences, got %+v", got)
	}
}

func TestDisplayFile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.yaml")
	if err := os.WriteFile(path, []byte("categories:\n  error: false\ntext_wrap: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadDisplayFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Shows(outline.TagError) || !s.Shows(outline.TagInfo) || !s.TextWrap {
		t.Errorf("expected partial override, got %+v", s)
	}
}

func TestDisplayFile_BadTreeMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "display.yaml")
	if err := os.WriteFile(path, []byte("tree: sideways\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDisplayFile(path); err == nil {
		t.Error("expected error for unknown tree mode")
	}
}
