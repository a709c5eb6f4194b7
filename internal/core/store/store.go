// Package store holds the authoritative in-memory workspace state: the
// document list, the active document, the busy flag and the session user.
//
// Every mutation is applied atomically and then announced to all subscribers
// on the mutating goroutine, before the mutating call returns. Subscribers see
// one Change per mutation, in mutation order. A listener may read the store
// while handling a Change but must not mutate it from that goroutine.
package store

import (
	"slices"
	"sync"

	"github.com/kirillkom/docestate/internal/core/domain"
)

type Action string

const (
	ActionAddDocument        Action = "add_document"
	ActionUpdateDocument     Action = "update_document"
	ActionSetCurrentDocument Action = "set_current_document"
	ActionSetLoading         Action = "set_loading"
	ActionSetUser            Action = "set_user"
	ActionLogout             Action = "logout"

	// ActionSnapshot tags a Change produced by Current rather than a mutation.
	ActionSnapshot Action = "snapshot"
)

// Change is delivered to subscribers after each mutation.
type Change struct {
	Sequence uint64          `json:"sequence"`
	Action   Action          `json:"action"`
	State    domain.AppState `json:"state"`
}

type Listener func(Change)

type DocumentStore struct {
	// dispatchMu serializes mutate+notify so snapshots reach listeners in order.
	dispatchMu sync.Mutex

	mu        sync.RWMutex
	documents []domain.Document
	current   *domain.Document
	loading   bool
	user      *domain.User
	sequence  uint64

	subsMu    sync.Mutex
	subs      map[uint64]Listener
	nextSubID uint64
	closed    bool
}

func New() *DocumentStore {
	return &DocumentStore{
		documents: []domain.Document{},
		subs:      make(map[uint64]Listener),
	}
}

// AddDocument inserts doc at the front. Ids are not checked for uniqueness.
func (s *DocumentStore) AddDocument(doc domain.Document) {
	s.mutate(ActionAddDocument, func() {
		next := make([]domain.Document, 0, len(s.documents)+1)
		next = append(next, doc.Clone())
		next = append(next, s.documents...)
		s.documents = next
	})
}

// UpdateDocument merges patch into every document whose id matches. An
// unknown id leaves the list unchanged; subscribers are notified either way.
// The result reports whether anything matched.
func (s *DocumentStore) UpdateDocument(id string, patch domain.DocumentPatch) bool {
	matched := false
	s.mutate(ActionUpdateDocument, func() {
		next := make([]domain.Document, len(s.documents))
		for i, doc := range s.documents {
			if doc.ID == id {
				next[i] = patch.Apply(doc)
				matched = true
				continue
			}
			next[i] = doc
		}
		s.documents = next
	})
	return matched
}

// SetCurrentDocument stores a copy of doc, or clears it when doc is nil.
func (s *DocumentStore) SetCurrentDocument(doc *domain.Document) {
	s.mutate(ActionSetCurrentDocument, func() {
		s.current = cloneDocument(doc)
	})
}

func (s *DocumentStore) SetLoading(loading bool) {
	s.mutate(ActionSetLoading, func() {
		s.loading = loading
	})
}

func (s *DocumentStore) SetUser(user *domain.User) {
	s.mutate(ActionSetUser, func() {
		s.user = cloneUser(user)
	})
}

// Logout clears the user, every document and the current document together.
// The busy flag is left as is.
func (s *DocumentStore) Logout() {
	s.mutate(ActionLogout, func() {
		s.user = nil
		s.documents = []domain.Document{}
		s.current = nil
	})
}

func (s *DocumentStore) State() domain.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *DocumentStore) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDocuments(s.documents)
}

// Document returns the first document with the given id.
func (s *DocumentStore) Document(id string) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, doc := range s.documents {
		if doc.ID == id {
			return doc.Clone(), true
		}
	}
	return domain.Document{}, false
}

func (s *DocumentStore) Stats() domain.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CountByStatus(s.documents)
}

// Current returns the state together with the sequence of the mutation that
// produced it.
func (s *DocumentStore) Current() Change {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Change{
		Sequence: s.sequence,
		Action:   ActionSnapshot,
		State:    s.snapshotLocked(),
	}
}

// Sequence returns the number of mutations applied so far.
func (s *DocumentStore) Sequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sequence
}

// Subscribe registers fn for every future Change. The returned func removes
// the subscription and is safe to call more than once.
func (s *DocumentStore) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}

	s.subsMu.Lock()
	if s.closed {
		s.subsMu.Unlock()
		return func() {}
	}
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *DocumentStore) SubscriberCount() int {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return len(s.subs)
}

// Close drops every subscriber. The store keeps accepting mutations but
// nobody is notified afterwards.
func (s *DocumentStore) Close() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.closed = true
	s.subs = make(map[uint64]Listener)
}

func (s *DocumentStore) mutate(action Action, apply func()) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	apply()
	s.sequence++
	change := Change{
		Sequence: s.sequence,
		Action:   action,
		State:    s.snapshotLocked(),
	}
	s.mu.Unlock()

	for _, fn := range s.listeners() {
		fn(change)
	}
}

func (s *DocumentStore) listeners() []Listener {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if len(s.subs) == 0 {
		return nil
	}
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Listener, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.subs[id])
	}
	return out
}

func (s *DocumentStore) snapshotLocked() domain.AppState {
	return domain.AppState{
		Documents:       cloneDocuments(s.documents),
		CurrentDocument: cloneDocument(s.current),
		IsLoading:       s.loading,
		User:            cloneUser(s.user),
	}
}

func cloneDocuments(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		out[i] = doc.Clone()
	}
	return out
}

func cloneDocument(doc *domain.Document) *domain.Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	return &out
}

func cloneUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	out := *user
	return &out
}
