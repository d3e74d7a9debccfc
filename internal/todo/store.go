// Package todo implements the task store: the single in-memory authority over
// the task list, its derived views, and change notification.
//
// Every state change is written through to the Persister as one full-list
// save. Empty input and unknown ids are silent no-ops; they neither write nor
// notify.
package todo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JamesPrial/atlantis-todos/internal/storage"
)

// Persister loads and saves the complete task list.
//
// *storage.Adapter is the production implementation.
type Persister interface {
	Load(ctx context.Context) ([]storage.Task, error)
	Save(ctx context.Context, tasks []storage.Task) error
}

// Snapshot is an immutable copy of the task list at a given version.
type Snapshot struct {
	// Version increases by one on every state change.
	Version uint64         `json:"version"`
	Tasks   []storage.Task `json:"tasks"`
}

// Listener receives a snapshot after each state change.
type Listener func(Snapshot)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for load and save failures.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator replaces the random UUID id generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Store owns the task list.
//
// The list is copy-on-write: every mutation installs a fresh slice, so a
// slice obtained from the store is never modified afterwards. All methods are
// safe for concurrent use.
type Store struct {
	persister Persister
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	mu      sync.Mutex
	tasks   []storage.Task
	version uint64
	loaded  bool

	subMu     sync.Mutex
	listeners map[uint64]Listener
	nextSub   uint64
}

// NewStore creates an empty, not yet initialized Store.
func NewStore(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
		newID:     uuid.NewString,
		tasks:     make([]storage.Task, 0),
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize hydrates the store from the persister. Once a load succeeds
// later calls do nothing.
//
// Missing or unparseable stored data is logged and the store starts empty.
// Any other read failure is returned and the store stays unloaded, so the
// next call retries. Mutating methods call Initialize implicitly and refuse
// to write until a load has succeeded.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	tasks, err := s.persister.Load(ctx)
	var decodeErr *storage.DeserializationError
	switch {
	case errors.As(err, &decodeErr):
		s.logger.Printf("Failed to parse stored todos, starting empty: %v", err)
	case errors.Is(err, storage.ErrNotFound):
		// nothing stored yet
	case err != nil:
		s.logger.Printf("Failed to load stored todos: %v", err)
		return fmt.Errorf("failed to load tasks: %w", err)
	default:
		s.tasks = s.sanitize(tasks)
	}

	s.loaded = true
	return nil
}

// sanitize drops entries that would break the list invariants: blank text,
// missing ids and duplicate ids (the first occurrence wins).
func (s *Store) sanitize(tasks []storage.Task) []storage.Task {
	seen := make(map[string]struct{}, len(tasks))
	clean := make([]storage.Task, 0, len(tasks))
	dropped := 0

	for _, t := range tasks {
		t.Text = strings.TrimSpace(t.Text)
		if _, dup := seen[t.ID]; dup || t.ID == "" || t.Text == "" {
			dropped++
			continue
		}
		seen[t.ID] = struct{}{}
		clean = append(clean, t)
	}

	if dropped > 0 {
		s.logger.Printf("Dropped %d invalid stored todo(s)", dropped)
	}
	return clean
}

// Add creates a task from text and puts it at the front of the list.
//
// Returns nil without writing if text is blank after trimming. A load
// failure is returned with a nil task and nothing written; any other error
// means the task was added in memory but could not be persisted.
func (s *Store) Add(ctx context.Context, text string) (*storage.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	task := storage.Task{
		ID:        s.uniqueIDLocked(),
		Text:      text,
		Completed: false,
		CreatedAt: s.now().UnixMilli(),
	}

	next := make([]storage.Task, 0, len(s.tasks)+1)
	next = append(next, task)
	next = append(next, s.tasks...)

	snap, err := s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.notify(snap)
	return &task, err
}

// uniqueIDLocked draws ids until one is not in use by a live task.
func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id
		}
	}
}

// Toggle flips the completed flag of the task with id.
//
// Returns the updated task, or nil if no task has that id.
func (s *Store) Toggle(ctx context.Context, id string) (*storage.Task, error) {
	return s.update(ctx, id, func(t *storage.Task) bool {
		t.Completed = !t.Completed
		return true
	})
}

// Edit replaces the text of the task with id.
//
// Returns nil without writing if newText is blank after trimming, equals the
// current text, or no task has that id. id, Completed and CreatedAt are kept.
func (s *Store) Edit(ctx context.Context, id, newText string) (*storage.Task, error) {
	newText = strings.TrimSpace(newText)
	if newText == "" {
		return nil, nil
	}

	return s.update(ctx, id, func(t *storage.Task) bool {
		if t.Text == newText {
			return false
		}
		t.Text = newText
		return true
	})
}

// update applies fn to a copy of the task with id and commits it if fn
// reports a change.
func (s *Store) update(ctx context.Context, id string, fn func(*storage.Task) bool) (*storage.Task, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, nil
	}

	next := slices.Clone(s.tasks)
	if !fn(&next[i]) {
		s.mu.Unlock()
		return nil, nil
	}
	task := next[i]

	snap, err := s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.notify(snap)
	return &task, err
}

// Remove deletes the task with id. Returns false if no task has that id.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return false, err
	}

	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}

	next := slices.Delete(slices.Clone(s.tasks), i, i+1)

	snap, err := s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.notify(snap)
	return true, err
}

// ClearCompleted deletes every completed task in a single write and returns
// how many were removed.
func (s *Store) ClearCompleted(ctx context.Context) (int, error) {
	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return 0, err
	}

	next := make([]storage.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			next = append(next, t)
		}
	}

	removed := len(s.tasks) - len(next)
	if removed == 0 {
		s.mu.Unlock()
		return 0, nil
	}

	snap, err := s.commitLocked(ctx, next)
	s.mu.Unlock()

	s.notify(snap)
	return removed, err
}

// commitLocked installs next as the current list and writes it through.
//
// The in-memory change stands even if the write fails.
func (s *Store) commitLocked(ctx context.Context, next []storage.Task) (Snapshot, error) {
	s.tasks = next
	s.version++
	snap := Snapshot{Version: s.version, Tasks: next}

	if err := s.persister.Save(ctx, next); err != nil {
		s.logger.Printf("Failed to persist todos: %v", err)
		return snap, fmt.Errorf("failed to persist tasks: %w", err)
	}

	return snap, nil
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.tasks, func(t storage.Task) bool {
		return t.ID == id
	})
}

// Get returns the task with id.
func (s *Store) Get(id string) (storage.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i], true
	}
	return storage.Task{}, false
}

// Tasks returns a copy of the full list, newest first.
func (s *Store) Tasks() []storage.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Snapshot returns the current list together with its version.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Version: s.version, Tasks: slices.Clone(s.tasks)}
}

// View returns a lazily evaluated sequence of the tasks matching f, in list
// order. The sequence reads the list as it was when View was called.
func (s *Store) View(f Filter) iter.Seq[storage.Task] {
	s.mu.Lock()
	tasks := s.tasks
	s.mu.Unlock()

	return func(yield func(storage.Task) bool) {
		for _, t := range tasks {
			if f.Match(t) && !yield(t) {
				return
			}
		}
	}
}

// Filtered collects View(f) into a slice. The result is never nil.
func (s *Store) Filtered(f Filter) []storage.Task {
	out := make([]storage.Task, 0)
	for t := range s.View(f) {
		out = append(out, t)
	}
	return out
}

// Stats counts tasks over the full list, regardless of any filter.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeStats(s.tasks)
}

// Subscribe registers fn to be called after every state change. The
// returned function removes the subscription and may be called more than
// once.
//
// Listeners run synchronously on the goroutine that made the change, after
// the store lock is released. Concurrent changes may deliver snapshots out
// of order; compare Version to discard stale ones.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(Snapshot{Version: snap.Version, Tasks: slices.Clone(snap.Tasks)})
	}
}
