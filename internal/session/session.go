// Package session owns the live outline of one open document: debounced,
// coalesced rebuilds, cursor handles, the visible region and folds.
package session

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docnav/internal/config"
	"github.com/dgallion1/docnav/internal/fold"
	"github.com/dgallion1/docnav/internal/outline"
	"github.com/dgallion1/docnav/internal/scanner"
	"github.com/dgallion1/docnav/internal/search"
	"github.com/dgallion1/docnav/internal/visibility"
	"github.com/google/uuid"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")
	// ErrTooLarge is returned when a document exceeds the size limit.
	ErrTooLarge = errors.New("document too large")
	// ErrNoCursor is returned for unknown cursor ids.
	ErrNoCursor = errors.New("cursor not found")
)

// Change is an edited row range, inclusive.
type Change struct {
	StartRow int `json:"start_row"`
	EndRow   int `json:"end_row"`
}

// Update is delivered to subscribers after every change of the annotated
// outline. Forest is a snapshot the subscriber may keep.
type Update struct {
	Forest  []*outline.Node
	Instant bool // A change touched the visible rows, or this is the first build
	Query   string
	Search  []search.Result // Filter results of Query over Forest; nil without a query
}

// Options configures a session.
type Options struct {
	Debounce         time.Duration
	TraceVisible     bool
	MarkerKindRaw    bool
	MaxDocumentBytes int64
	Scanner          scanner.Options
	Stats            *RebuildStats // Optional; records every scan
}

// OptionsFromConfig derives session options from the process config.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		Debounce:         cfg.Debounce,
		TraceVisible:     cfg.TraceVisible,
		MarkerKindRaw:    cfg.MarkerKindRaw,
		MaxDocumentBytes: cfg.MaxDocumentBytes,
		Scanner: scanner.Options{
			TasklistUseHeaders: cfg.TasklistUseHeaders,
			SofistikInBlock:    cfg.SofistikInBlock,
		},
	}
}

// request is one rebuild order. seq orders requests; a finished rebuild is
// installed only while its seq is still the latest.
type request struct {
	seq     uint64
	text    []byte
	hash    string
	scanner scanner.Scanner
	instant bool
}

// Session is one open document. All forest mutation happens under mu.
type Session struct {
	ID string

	base *slog.Logger
	log  *slog.Logger
	opts Options

	mu        sync.Mutex
	filename  string
	format    string
	scan      scanner.Scanner // nil for unsupported formats
	text      []byte
	forest    []*outline.Node
	bounds    outline.Bounds
	built     bool
	builtHash string
	lastErr   error
	cursors   map[string]*Cursor
	viewport  *[2]int
	visibleID []string
	query     string
	changed   []Change
	folds     *fold.Memory
	subs      map[int]func(Update)
	nextSub   int
	updatedAt time.Time
	closed    bool

	seq      uint64 // latest request
	started  uint64 // latest request picked up by the worker
	finished uint64 // latest request the worker completed
	want     request
	timer    *time.Timer
	armed    bool
	busy     bool
	idle     chan struct{}

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New opens a session for text in format and requests the first build.
// An unsupported format yields a session with a nil forest.
func New(filename, format string, text []byte, opts Options, log *slog.Logger) (*Session, error) {
	if opts.MaxDocumentBytes > 0 && int64(len(text)) > opts.MaxDocumentBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(text))
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:        uuid.NewString(),
		filename:  filename,
		opts:      opts,
		cursors:   make(map[string]*Cursor),
		folds:     fold.NewMemory(0),
		subs:      make(map[int]func(Update)),
		updatedAt: time.Now(),
		idle:      make(chan struct{}),
		kick:      make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	close(s.idle)
	s.base = log.With("session_id", s.ID)
	s.log = s.base
	s.setFormatLocked(format)
	s.text = text

	go s.run()

	s.mu.Lock()
	s.requestLocked(true)
	s.mu.Unlock()
	return s, nil
}

// setFormatLocked resolves the scanner for format. Unsupported formats
// leave the scanner nil, which builds a nil forest.
func (s *Session) setFormatLocked(format string) {
	s.format = format
	s.scan = nil
	s.log = s.base.With("format", format)
	sc, err := scanner.ForFormat(format, s.opts.Scanner)
	if err != nil {
		if !errors.Is(err, scanner.ErrUnsupported) {
			s.log.Warn("scanner lookup failed", "format", format, "error", err)
		}
		return
	}
	s.scan = sc
}

// Filename returns the name of the active document.
func (s *Session) Filename() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filename
}

// Format returns the active format identifier.
func (s *Session) Format() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// Supported reports whether the active format has a scanner.
func (s *Session) Supported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scan != nil
}

// UpdatedAt returns the time of the last operation on the session.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) touchLocked() { s.updatedAt = time.Now() }

func (s *Session) markBusyLocked() {
	if !s.busy {
		s.busy = true
		s.idle = make(chan struct{})
	}
}

func (s *Session) markIdleLocked() {
	if s.busy {
		s.busy = false
		close(s.idle)
	}
}

func (s *Session) settleLocked() {
	if !s.armed && s.finished == s.seq {
		s.markIdleLocked()
	}
}

// requestLocked records a rebuild of the current text and wakes the
// worker. A request made while a rebuild runs replaces any queued one.
func (s *Session) requestLocked(instant bool) {
	if s.closed {
		return
	}
	s.seq++
	sum := sha256.Sum256(s.text)
	s.want = request{
		seq:     s.seq,
		text:    s.text,
		hash:    fmt.Sprintf("%x", sum[:]),
		scanner: s.scan,
		instant: instant,
	}
	s.markBusyLocked()
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Update replaces the document text. The rebuild runs once edits have
// been quiet for the debounce interval.
func (s *Session) Update(text []byte, changes ...Change) error {
	if s.opts.MaxDocumentBytes > 0 && int64(len(text)) > s.opts.MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(text))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.touchLocked()
	s.text = text
	s.changed = append(s.changed, changes...)

	if s.opts.Debounce <= 0 {
		s.requestLocked(s.changesVisibleLocked())
		return nil
	}
	s.armed = true
	s.markBusyLocked()
	if s.timer == nil {
		s.timer = time.AfterFunc(s.opts.Debounce, s.debounced)
	} else {
		s.timer.Reset(s.opts.Debounce)
	}
	return nil
}

func (s *Session) debounced() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed || s.closed {
		return
	}
	s.armed = false
	s.requestLocked(s.changesVisibleLocked())
}

// changesVisibleLocked reports whether a pending change overlaps the
// viewport, and clears the pending changes.
func (s *Session) changesVisibleLocked() bool {
	defer func() { s.changed = nil }()
	if s.viewport == nil {
		return false
	}
	top, bot := s.viewport[0], s.viewport[1]
	for _, c := range s.changed {
		if c.StartRow <= bot && c.EndRow >= top {
			return true
		}
	}
	return false
}

// Refresh requests a rebuild immediately, bypassing the debounce.
func (s *Session) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.touchLocked()
	if s.armed {
		s.armed = false
		s.timer.Stop()
	}
	s.requestLocked(true)
	return nil
}

// Switch replaces the document and format. Cursors are detached, the
// visible marks cleared and any rebuild in flight is discarded.
func (s *Session) Switch(filename, format string, text []byte) error {
	if s.opts.MaxDocumentBytes > 0 && int64(len(text)) > s.opts.MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(text))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.touchLocked()
	for _, c := range s.cursors {
		c.t.Detach()
	}
	visibility.Clear(s.forest)
	s.visibleID = nil
	if s.armed {
		s.armed = false
		s.timer.Stop()
	}
	s.changed = nil
	s.filename = filename
	s.setFormatLocked(format)
	s.text = text
	s.built = false
	s.builtHash = ""
	s.folds.UnfoldAll()
	s.requestLocked(true)
	return nil
}

// Sync waits until no rebuild is pending or running.
func (s *Session) Sync(ctx context.Context) error {
	s.mu.Lock()
	busy, ch := s.busy, s.idle
	s.mu.Unlock()
	if !busy {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker and discards the forest. Further operations
// return ErrClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.armed = false
	s.forest = nil
	s.subs = nil
	s.markIdleLocked()
	s.mu.Unlock()

	s.cancel()
	<-s.done
	s.log.Debug("session closed")
}

// run is the single rebuild worker of the session.
func (s *Session) run() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.kick:
		}

		s.mu.Lock()
		req := s.want
		if req.seq == s.started {
			s.mu.Unlock()
			continue
		}
		s.started = req.seq
		s.mu.Unlock()

		res, err := s.rebuild(req)
		s.install(req, res, err)
	}
}

// rebuild scans outside the session lock. Panics in scanners are turned
// into errors so the session survives them.
func (s *Session) rebuild(req request) (res scanner.Result, err error) {
	if req.scanner == nil {
		return scanner.Result{Bounds: outline.NewLines(string(req.text))}, nil
	}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scanner panic: %v", r)
		}
		s.opts.Stats.Record(time.Since(start), err != nil)
	}()
	return req.scanner.Scan(s.ctx, req.text)
}

func (s *Session) install(req request, res scanner.Result, err error) {
	s.mu.Lock()
	log := s.log
	if req.seq > s.finished {
		s.finished = req.seq
	}

	if s.closed || req.seq != s.seq {
		s.settleLocked()
		s.mu.Unlock()
		log.Debug("rebuild superseded", "seq", req.seq)
		return
	}
	if err != nil {
		s.lastErr = err
		s.settleLocked()
		s.mu.Unlock()
		log.Error("rebuild failed", "error", err)
		return
	}

	first := !s.built
	var forest []*outline.Node
	if req.scanner != nil {
		forest = outline.Build(res.Entries, res.Bounds)
	}
	s.forest = forest
	s.bounds = res.Bounds
	s.built = true
	s.builtHash = req.hash
	s.lastErr = nil
	for _, c := range s.cursors {
		c.t.Replay(forest)
	}
	s.markVisibleLocked()
	s.folds.SetLineCount(res.Bounds.LastRow() + 1)

	notify := s.updateLocked(req.instant || first)
	s.settleLocked()
	s.mu.Unlock()
	log.Debug("outline rebuilt", "nodes", outline.Count(forest), "seq", req.seq)
	notify()
}

// updateLocked snapshots the forest for subscribers. The returned function
// delivers it and must be called without holding mu.
func (s *Session) updateLocked(instant bool) func() {
	if len(s.subs) == 0 {
		return func() {}
	}
	u := Update{Forest: outline.Clone(s.forest), Instant: instant, Query: s.query}
	u.Search = search.Filter(s.query, u.Forest)
	subs := make([]func(Update), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return func() {
		for _, fn := range subs {
			fn(u)
		}
	}
}

// Subscribe registers fn for outline updates. The returned function
// removes the registration.
func (s *Session) Subscribe(fn func(Update)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) markVisibleLocked() {
	switch {
	case !s.opts.TraceVisible:
		visibility.Clear(s.forest)
	case s.visibleID != nil:
		visibility.MarkSet(s.forest, s.visibleID)
	case s.viewport != nil:
		visibility.MarkRange(s.forest, s.viewport[0], s.viewport[1])
	}
}

// SetViewport records the visible row range and marks visible nodes.
func (s *Session) SetViewport(rowTop, rowBot int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if rowBot < rowTop {
		rowTop, rowBot = rowBot, rowTop
	}
	s.touchLocked()
	s.viewport = &[2]int{rowTop, rowBot}
	s.visibleID = nil
	s.markVisibleLocked()
	notify := s.updateLocked(false)
	s.mu.Unlock()
	notify()
	return nil
}

// SetVisibleIDs marks visible the nodes whose ExternalID is in ids, for
// viewers that report destinations instead of rows.
func (s *Session) SetVisibleIDs(ids []string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.touchLocked()
	if ids == nil {
		ids = []string{}
	}
	s.visibleID = append([]string(nil), ids...)
	s.markVisibleLocked()
	notify := s.updateLocked(false)
	s.mu.Unlock()
	notify()
	return nil
}

// Snapshot is a JSON-safe copy of the session state.
type Snapshot struct {
	ID          string          `json:"session_id"`
	Filename    string          `json:"filename"`
	Format      string          `json:"format"`
	Supported   bool            `json:"supported"`
	Built       bool            `json:"built"`
	ContentHash string          `json:"content_hash,omitempty"`
	LastRow     int             `json:"last_row"`
	Forest      []*outline.Node `json:"forest"`
	Cursors     []CursorState   `json:"cursors"`
	Folds       []fold.Range    `json:"folds"`
	Query       string          `json:"query,omitempty"`
	Search      []search.Result `json:"search,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// Snapshot returns a copy of the annotated forest and session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:          s.ID,
		Filename:    s.filename,
		Format:      s.format,
		Supported:   s.scan != nil,
		Built:       s.built,
		ContentHash: s.builtHash,
		Forest:      outline.Clone(s.forest),
		Cursors:     []CursorState{},
		Folds:       s.folds.Folds(),
		Query:       s.query,
	}
	snap.Search = search.Filter(s.query, snap.Forest)
	if snap.Forest == nil {
		snap.Forest = []*outline.Node{}
	}
	if s.bounds != nil {
		snap.LastRow = s.bounds.LastRow()
	}
	for _, c := range s.cursors {
		snap.Cursors = append(snap.Cursors, c.stateLocked())
	}
	sortCursors(snap.Cursors)
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// Forest returns a snapshot copy of the annotated forest.
func (s *Session) Forest() []*outline.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return outline.Clone(s.forest)
}

// Search runs the fuzzy filter over the last installed forest.
func (s *Session) Search(query string) []search.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	return search.Filter(query, s.forest)
}

// Query returns the active search query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// SetQuery makes query the active search, returning its results over the
// last installed forest. Snapshots and updates carry the filtered results
// until the query is cleared with an empty string. Later rebuilds reapply
// it to the new forest.
func (s *Session) SetQuery(query string) ([]search.Result, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.touchLocked()
	s.query = query
	results := search.Filter(query, s.forest)
	notify := s.updateLocked(false)
	s.mu.Unlock()
	notify()
	return results, nil
}

// Markers returns the line markers of the last installed forest.
func (s *Session) Markers() []outline.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return outline.Markers(s.forest, s.opts.MarkerKindRaw)
}
