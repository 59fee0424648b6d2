// Package store holds the single application Document and applies every
// state transition to it. It persists the Document after each transition
// once a user has logged in and owns the running study timer.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gaspar-hub/academic-hub/internal/domain/document"
	"github.com/gaspar-hub/academic-hub/internal/domain/session"
	"github.com/gaspar-hub/academic-hub/internal/domain/shared"
	"github.com/gaspar-hub/academic-hub/pkg/logger"
	"github.com/gaspar-hub/academic-hub/pkg/timeutil"
)

// Persistence loads and saves the Document under a single key.
type Persistence interface {
	// Load returns the stored Document. found is false when nothing is
	// stored yet.
	Load(ctx context.Context) (doc document.Document, found bool, err error)

	// Save replaces the stored Document.
	Save(ctx context.Context, doc document.Document) error

	// Clear removes the stored Document.
	Clear(ctx context.Context) error
}

// Op is a pure transition.
type Op func(document.Document) document.Document

// Listener is notified after each transition with the new Document and its
// revision.
type Listener func(doc document.Document, revision uint64)

// ══════════════════════════════════════════════════════════════════════════════
// OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

type options struct {
	log           *logger.Logger
	ids           shared.IDGenerator
	clock         timeutil.Clock
	dailyRollover bool
	saveTimeout   time.Duration
	teachers      []string
}

// Option configures a Store.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithIDGenerator sets the source of fresh ids.
func WithIDGenerator(g shared.IDGenerator) Option {
	return func(o *options) {
		if g != nil {
			o.ids = g
		}
	}
}

// WithClock sets the clock used for "today".
func WithClock(c timeutil.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithDailyRollover resets today's study time when the day changes.
func WithDailyRollover(enabled bool) Option {
	return func(o *options) { o.dailyRollover = enabled }
}

// WithSaveTimeout bounds a single save.
func WithSaveTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.saveTimeout = d
		}
	}
}

// WithTeacherEmails sets the emails allowed to log in as teacher.
func WithTeacherEmails(emails []string) Option {
	return func(o *options) { o.teachers = slices.Clone(emails) }
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store owns the Document. All methods are safe for concurrent use; each
// transition is applied and persisted under one lock.
type Store struct {
	opts        options
	persistence Persistence

	mu        sync.Mutex
	doc       document.Document
	revision  uint64
	saveErr   error
	listeners map[int]Listener
	nextID    int

	// timerMu guards the study timer. It is never held together with mu.
	timerMu sync.Mutex
	timer   session.Timer
}

// Open loads the persisted Document, or initializes a fresh one when
// nothing is stored. A stored record that cannot be decoded is returned as
// an error wrapping shared.ErrMalformedDocument.
func Open(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	o := options{
		log:         logger.Nop(),
		ids:         shared.UUIDGenerator,
		clock:       timeutil.System,
		saveTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		opts:        o,
		persistence: p,
		listeners:   make(map[int]Listener),
	}

	doc, found, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if !found {
		doc = document.Initialize(s.today())
		s.opts.log.Debug("no stored record, starting fresh")
	}
	if o.dailyRollover {
		doc = document.RollOverDay(doc, s.today())
	}
	s.doc = doc
	return s, nil
}

// Document returns the current Document.
func (s *Store) Document() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Revision counts the transitions applied since Open.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// LastSaveError returns the error of the most recent save, or nil when it
// succeeded or no save happened yet.
func (s *Store) LastSaveError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveErr
}

// Subscribe registers fn for every later transition. The returned function
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Apply runs op on the current Document, stores the result and, when a user
// is logged in, persists it. Save failures are logged and kept for
// LastSaveError; they do not undo the transition.
func (s *Store) Apply(ctx context.Context, op Op) document.Document {
	s.mu.Lock()
	next := s.doc
	if s.opts.dailyRollover {
		next = document.RollOverDay(next, s.today())
	}
	next = op(next)
	s.doc = next
	s.revision++
	rev := s.revision
	if next.HasUser() {
		s.saveLocked(ctx, next)
	}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next, rev)
	}
	return next
}

func (s *Store) saveLocked(ctx context.Context, doc document.Document) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.saveTimeout)
	defer cancel()

	start := time.Now()
	err := s.persistence.Save(ctx, doc)
	s.saveErr = err
	if err != nil {
		s.opts.log.Warn("failed to save document",
			logger.Revision(s.revision),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
		return
	}
	s.opts.log.Debug("document saved", logger.Revision(s.revision), logger.Latency(time.Since(start)))
}

func (s *Store) today() shared.Date {
	return shared.DateOf(timeutil.Today(s.opts.clock))
}

func (s *Store) newID() string {
	return s.opts.ids.NewID()
}
