// Package editor owns the live board: it applies commands to the document,
// keeps derived geometry current, records settled history and writes the
// board back to its store.
package editor

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	appevents "flowboard/application/events"
	"flowboard/application/history"
	"flowboard/application/ports"
	"flowboard/application/selection"
	"flowboard/domain/config"
	"flowboard/domain/core/aggregates"
	"flowboard/domain/core/valueobjects"
	"flowboard/domain/events"
	"flowboard/domain/services/layout"
	"flowboard/pkg/debounce"

	"go.uber.org/zap"
)

// DefaultScreen is the surface extent assumed when no renderer is attached
var DefaultScreen = valueobjects.Size{Width: 1280, Height: 720}

// Options configures a session
type Options struct {
	BoardKey string
	Config   config.EditorConfig
	Layout   *layout.Engine
	Store    ports.DocumentStore
	Bus      *appevents.Bus
	Surface  ports.Surface
	Clock    debounce.Clock
	Logger   *zap.Logger
	// Seed fills an empty board with the starter flow
	Seed bool
	Rand *rand.Rand
	Now  func() time.Time
}

// Session is the single owner of a board's document. All commands serialize
// on one mutex; debounce timers re-enter through the same mutex.
type Session struct {
	mu      sync.Mutex
	saveMu  sync.Mutex
	key     string
	cfg     config.EditorConfig
	doc     *aggregates.Document
	sel     *selection.Selection
	hist    *history.Manager
	engine  *layout.Engine
	store   ports.DocumentStore
	bus     *appevents.Bus
	surface ports.Surface
	logger  *zap.Logger
	rnd     *rand.Rand
	now     func() time.Time

	layoutTimer   *debounce.Debouncer
	snapshotTimer *debounce.Debouncer
	persistTimer  *debounce.Debouncer

	// replaying is set while undo/redo installs a snapshot so the install is not
	// recorded. mutate clears it once the timers are armed.
	replaying bool
	// unlaid and unrecorded mark graph changes that still owe a layout pass or a
	// history entry. Timer callbacks consult them under mu.
	unlaid     bool
	unrecorded bool
	pending    []events.DomainEvent
	closed     bool
}

var errClosed = errors.New("session closed")

// Open loads the board from the store (or seeds it), settles its layout and
// records the opening history entry. Store failures are logged, never returned.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Bus == nil {
		opts.Bus = appevents.NewBus(opts.Logger)
	}
	if opts.Layout == nil {
		opts.Layout = layout.NewEngine(config.DefaultLayoutConfig(), nil)
	}
	if opts.Config.HistoryLimit == 0 {
		opts.Config = config.DefaultEditorConfig()
	}
	if opts.BoardKey == "" {
		opts.BoardKey = DefaultBoardKey
	}
	if opts.Surface == nil {
		opts.Surface = ports.FixedSurface(DefaultScreen)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Session{
		key:     opts.BoardKey,
		cfg:     opts.Config,
		sel:     selection.New(opts.Config.MaxClickSelection),
		hist:    history.New(opts.Config.HistoryLimit),
		engine:  opts.Layout,
		store:   opts.Store,
		bus:     opts.Bus,
		surface: opts.Surface,
		logger:  opts.Logger.With(zap.String("board", opts.BoardKey)),
		rnd:     opts.Rand,
		now:     opts.Now,
	}
	s.layoutTimer = debounce.New(opts.Clock, s.cfg.LayoutDebounce, func() { s.locked(s.layoutDueLocked) })
	s.snapshotTimer = debounce.New(opts.Clock, s.cfg.SnapshotDebounce, func() { s.locked(s.snapshotDueLocked) })
	s.persistTimer = debounce.New(opts.Clock, s.cfg.PersistDebounce, s.persistInBackground)

	s.doc = s.loadDocument(ctx, opts.Seed)
	s.doc.SetClock(s.now)
	s.engine.ApplyAll(s.doc)
	s.doc.MarkEventsAsCommitted()
	s.hist.Push(s.doc.Graph())

	s.logger.Info("Board opened",
		zap.Int("nodes", s.doc.NodeCount()),
		zap.Int("edges", s.doc.EdgeCount()),
	)
	return s, nil
}

func (s *Session) loadDocument(ctx context.Context, seed bool) *aggregates.Document {
	if s.store != nil {
		state, err := s.store.Load(ctx, s.key)
		switch {
		case err != nil:
			s.logger.Warn("Failed to load board, starting fresh", zap.Error(err))
		case state != nil:
			doc, err := aggregates.ReconstructDocument(s.key, *state)
			if err == nil {
				return doc
			}
			s.logger.Warn("Stored board is invalid, starting fresh", zap.Error(err))
		}
	}
	if seed {
		return SeedDocument(s.key)
	}
	return aggregates.NewDocument(s.key)
}

// Key returns the board key
func (s *Session) Key() string {
	return s.key
}

// Bus returns the event bus the session publishes on
func (s *Session) Bus() *appevents.Bus {
	return s.bus
}

// SetSurface attaches the rendering surface used for viewport-relative placement
func (s *Session) SetSurface(surface ports.Surface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if surface == nil {
		surface = ports.FixedSurface(DefaultScreen)
	}
	s.surface = surface
}

// UpdateConfig applies new editor tunables. Pending timers keep their old delay.
func (s *Session) UpdateConfig(cfg config.EditorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.layoutTimer.SetDelay(cfg.LayoutDebounce)
	s.snapshotTimer.SetDelay(cfg.SnapshotDebounce)
	s.persistTimer.SetDelay(cfg.PersistDebounce)
	if evicted := s.hist.SetLimit(cfg.HistoryLimit); evicted > 0 {
		s.logger.Debug("History trimmed to new limit", zap.Int("evicted", evicted))
	}
	s.sel = reCap(s.sel, cfg.MaxClickSelection)
}

// Snapshot returns a deep copy of the live document
func (s *Session) Snapshot() aggregates.DocumentState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.State()
}

// Version returns the document's mutation counter
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Version()
}

// Selection returns the selected ids in pick order
func (s *Session) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.IDs()
}

// HistoryStats returns the 1-based history position and entry count
func (s *Session) HistoryStats() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.Stats()
}

// CanUndo reports whether undo would change the document
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanUndo() || s.unrecorded
}

// CanRedo reports whether redo would change the document
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.CanRedo() && !s.unrecorded
}

// Settle runs every pending timer now: group layout, history snapshot, then the store write.
func (s *Session) Settle(ctx context.Context) error {
	s.locked(s.settleGraphLocked)
	if s.persistTimer.Cancel() {
		return s.persist(ctx)
	}
	return nil
}

// Flush writes the current document to the store immediately
func (s *Session) Flush(ctx context.Context) error {
	s.persistTimer.Cancel()
	return s.persist(ctx)
}

// Close settles pending work and stops the timers. It returns once no store
// write is in flight. The session must not be used afterwards.
func (s *Session) Close(ctx context.Context) error {
	err := s.Settle(ctx)
	s.mu.Lock()
	s.closed = true
	s.layoutTimer.Cancel()
	s.snapshotTimer.Cancel()
	s.persistTimer.Cancel()
	s.mu.Unlock()

	s.saveMu.Lock()
	s.saveMu.Unlock()
	return err
}

// locked runs session-internal work (timer callbacks, settling) under the
// mutex and publishes the resulting events after unlocking. Internal work
// re-arms timers itself.
func (s *Session) locked(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn()
	pending := s.drainLocked()
	s.mu.Unlock()

	s.bus.Publish(pending...)
}

// mutate runs a command under the mutex, arms the debounce timers when the
// graph changed, and publishes the resulting events after unlocking.
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	before := s.doc.Version()
	err := fn()
	if s.doc.Version() != before {
		s.graphChangedLocked()
	}
	s.replaying = false
	pending := s.drainLocked()
	s.mu.Unlock()

	s.bus.Publish(pending...)
	return err
}

func (s *Session) graphChangedLocked() {
	s.persistTimer.Trigger()
	if s.replaying {
		return
	}
	s.unlaid = true
	s.unrecorded = true
	s.layoutTimer.Trigger()
	s.snapshotTimer.Trigger()
}

func (s *Session) drainLocked() []events.DomainEvent {
	out := s.doc.GetUncommittedEvents()
	s.doc.MarkEventsAsCommitted()
	out = append(out, s.pending...)
	s.pending = nil
	return out
}

func (s *Session) emitLocked(e events.DomainEvent) {
	s.pending = append(s.pending, e)
}

// relayoutLocked refits groups. Layout changes count as edits for history
// and persistence but do not re-arm the layout timer.
func (s *Session) relayoutLocked() {
	s.unlaid = false
	if changed := s.engine.ApplyGroups(s.doc); len(changed) > 0 {
		s.unrecorded = true
		s.snapshotTimer.Trigger()
		s.persistTimer.Trigger()
	}
}

// layoutDueLocked and snapshotDueLocked run when a timer fires. The work may
// already have been done by a settle that took the mutex first.
func (s *Session) layoutDueLocked() {
	if s.unlaid {
		s.relayoutLocked()
	}
}

func (s *Session) snapshotDueLocked() {
	if s.unrecorded {
		s.recordLocked()
	}
}

func (s *Session) recordLocked() {
	s.unrecorded = false
	evicted := s.hist.Push(s.doc.Graph())
	current, total := s.hist.Stats()
	s.emitLocked(events.NewHistoryRecorded(s.key, current-1, total, evicted, s.now()))
}

// settleGraphLocked runs a pending layout pass, then a pending snapshot
func (s *Session) settleGraphLocked() {
	s.layoutTimer.Cancel()
	s.layoutDueLocked()
	s.snapshotTimer.Cancel()
	s.snapshotDueLocked()
}

func (s *Session) persistInBackground() {
	s.mu.Lock()
	timeout := s.cfg.SaveTimeout
	s.mu.Unlock()
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	_ = s.persist(ctx)
}

// persist writes the document. Failures are logged and published, and the
// in-memory document stays authoritative.
func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	took, nodes, edges, err := s.save(ctx)
	if errors.Is(err, errClosed) {
		s.logger.Debug("Store write skipped, session closed")
		return nil
	}
	if err != nil {
		s.logger.Warn("Failed to persist board",
			zap.Error(err),
			zap.Duration("duration", took),
		)
		s.bus.Publish(events.NewPersistFailed(s.key, s.key, err, s.now()))
		return err
	}
	s.logger.Debug("Board persisted",
		zap.Int("nodes", nodes),
		zap.Int("edges", edges),
		zap.Duration("duration", took),
	)
	s.bus.Publish(events.NewDocumentSaved(s.key, s.key, took, s.now()))
	return nil
}

// save serializes writers so an older state never lands after a newer one
func (s *Session) save(ctx context.Context) (took time.Duration, nodes, edges int, err error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, 0, 0, errClosed
	}
	state := s.doc.State()
	s.mu.Unlock()

	start := time.Now()
	err = s.store.Save(ctx, s.key, state)
	return time.Since(start), len(state.Nodes), len(state.Edges), err
}

func reCap(sel *selection.Selection, clickCap int) *selection.Selection {
	next := selection.New(clickCap)
	next.Replace(sel.IDs())
	return next
}
