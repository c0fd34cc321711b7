package task

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Listener receives every snapshot published after a successful mutation.
type Listener interface {
	TasksChanged(Snapshot)
}

// ListenerFunc adapts a function into a Listener.
type ListenerFunc func(Snapshot)

// TasksChanged executes f(s).
func (f ListenerFunc) TasksChanged(s Snapshot) {
	if f == nil {
		return
	}
	f(s)
}

// StoreOption customizes Store construction.
type StoreOption func(*Store)

// WithIDGenerator replaces the uuid-backed id source.
func WithIDGenerator(gen func() string) StoreOption {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithEmptyRenames sets whether Update stores blank names. Blank renames are
// stored by default; passing false makes Update reject them.
func WithEmptyRenames(allow bool) StoreOption {
	return func(s *Store) {
		s.allowEmptyRename = allow
	}
}

// maxIDAttempts bounds how often Add asks the id source for a fresh id
// before falling back to a sequence suffix.
const maxIDAttempts = 4

type subscription struct {
	id       int
	listener Listener
}

// Store owns the task collection. It is the only place tasks are mutated.
type Store struct {
	mu               sync.Mutex
	tasks            []Task
	seq              uint64
	newID            func() string
	allowEmptyRename bool

	subs    []subscription
	nextSub int
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{newID: uuid.NewString, allowEmptyRename: true}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Add appends a task named name. Blank names are rejected without mutation.
func (s *Store) Add(name string) (Task, error) {
	if IsBlank(name) {
		return Task{}, fmt.Errorf("task: add: %w", ErrEmptySubmission)
	}
	s.mu.Lock()
	id, err := s.freshIDLocked()
	if err != nil {
		s.mu.Unlock()
		return Task{}, fmt.Errorf("task: add: %w", err)
	}
	s.seq++
	created := Task{ID: id, Name: name, Seq: s.seq}
	s.tasks = append(s.tasks, created)
	snap, listeners := s.publishLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return created, nil
}

// Update replaces the name of the task with the given id in place.
func (s *Store) Update(id, newName string) error {
	s.mu.Lock()
	if !s.allowEmptyRename && IsBlank(newName) {
		s.mu.Unlock()
		return fmt.Errorf("task: update %q: %w", id, ErrEmptySubmission)
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task: update %q: %w", id, ErrNotFound)
	}
	s.tasks[idx].Name = newName
	snap, listeners := s.publishLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// Delete removes the task with the given id, keeping the order of the rest.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("task: delete %q: %w", id, ErrNotFound)
	}
	remaining := make([]Task, 0, len(s.tasks)-1)
	remaining = append(remaining, s.tasks[:idx]...)
	remaining = append(remaining, s.tasks[idx+1:]...)
	s.tasks = remaining
	snap, listeners := s.publishLocked()
	s.mu.Unlock()

	notify(listeners, snap)
	return nil
}

// Snapshot returns a copy of the current collection.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexLocked(id); idx >= 0 {
		return s.tasks[idx], true
	}
	return Task{}, false
}

// Len reports the number of tasks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// AllowsEmptyRenames reports the rename policy.
func (s *Store) AllowsEmptyRenames() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allowEmptyRename
}

// SetEmptyRenames changes the rename policy for later Update calls.
func (s *Store) SetEmptyRenames(allow bool) {
	s.mu.Lock()
	s.allowEmptyRename = allow
	s.mu.Unlock()
}

// Subscribe registers l for future snapshots. The returned func removes it.
func (s *Store) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, listener: l})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// freshIDLocked returns an id no live task carries. A source that keeps
// repeating itself gets the next sequence number appended.
func (s *Store) freshIDLocked() (string, error) {
	var id string
	for i := 0; i < maxIDAttempts; i++ {
		id = s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	id = fmt.Sprintf("%s-%d", id, s.seq+1)
	if s.indexLocked(id) >= 0 {
		return "", fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	return id, nil
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) snapshotLocked() Snapshot {
	out := make(Snapshot, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) publishLocked() (Snapshot, []Listener) {
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.listener
	}
	return s.snapshotLocked(), listeners
}

func notify(listeners []Listener, snap Snapshot) {
	for _, l := range listeners {
		// listeners never share a backing array
		own := make(Snapshot, len(snap))
		copy(own, snap)
		l.TasksChanged(own)
	}
}
