package session

import (
	"sync"
)

// ChangeKind identifies what a store mutation touched.
type ChangeKind int

const (
	// ChangeContent means a document's content was replaced.
	ChangeContent ChangeKind = iota
	// ChangeName means a document was renamed.
	ChangeName
	// ChangeStructure means a document was added or removed.
	ChangeStructure
	// ChangeActive means the active document changed.
	ChangeActive
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeContent:
		return "content"
	case ChangeName:
		return "name"
	case ChangeStructure:
		return "structure"
	case ChangeActive:
		return "active"
	default:
		return "unknown"
	}
}

// Change describes a single store mutation.
type Change struct {
	Kind ChangeKind
	ID   string
}

// Listener is called after a mutation has been applied.
type Listener func(Change)

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the id source used by Create.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithTemplate sets the content given to documents made by Create.
func WithTemplate(template string) Option {
	return func(s *Store) {
		s.template = template
	}
}

// Store owns the ordered documents of a session and the active pointer.
//
// The store is never empty and the active id always resolves to one of its
// documents. Getters return copies; mutate through the store methods only.
type Store struct {
	mu        sync.RWMutex
	docs      []*Document
	activeID  string
	template  string
	newID     func() string
	listeners []Listener
}

// NewStore creates a store from an initial document list and active id.
// An empty list is replaced by a single template document. An active id that
// does not resolve falls back to the first document.
func NewStore(docs []Document, activeID string, opts ...Option) *Store {
	s := &Store{
		template: DefaultTemplate,
		newID:    NewID,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.docs = make([]*Document, 0, len(docs))
	for i := range docs {
		d := docs[i]
		s.docs = append(s.docs, &d)
	}
	if len(s.docs) == 0 {
		s.docs = append(s.docs, s.newDocument())
	}
	s.activeID = activeID
	s.ensureActiveLocked()

	return s
}

func (s *Store) newDocument() *Document {
	return &Document{ID: s.newID(), Content: s.template}
}

// OnChange registers a listener. Listeners run synchronously after the
// store lock is released.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) notify(changes ...Change) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, c := range changes {
		for _, l := range listeners {
			l(c)
		}
	}
}

// Create appends a new template document and makes it active.
func (s *Store) Create() Document {
	s.mu.Lock()
	doc := s.newDocument()
	s.docs = append(s.docs, doc)
	s.activeID = doc.ID
	created := *doc
	s.mu.Unlock()

	s.notify(Change{Kind: ChangeStructure, ID: created.ID}, Change{Kind: ChangeActive, ID: created.ID})
	return created
}

// CanClose reports why id could not be closed, or nil if Close would
// remove it.
func (s *Store) CanClose(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.indexLocked(id) < 0 {
		return ErrDocumentNotFound
	}
	if len(s.docs) <= 1 {
		return ErrLastDocument
	}
	return nil
}

// Close removes the document with id. It is a no-op when the store holds a
// single document or id is unknown. If the closed document was active, the
// document before it becomes active, or the first one.
// Close does not consult dirty state; callers gate it.
func (s *Store) Close(id string) bool {
	s.mu.Lock()
	if len(s.docs) <= 1 {
		s.mu.Unlock()
		return false
	}
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}

	s.docs = append(s.docs[:idx], s.docs[idx+1:]...)

	changes := []Change{{Kind: ChangeStructure, ID: id}}
	if s.activeID == id {
		neighbor := idx - 1
		if neighbor < 0 {
			neighbor = 0
		}
		s.activeID = s.docs[neighbor].ID
		changes = append(changes, Change{Kind: ChangeActive, ID: s.activeID})
	}
	if s.ensureActiveLocked() {
		changes = append(changes, Change{Kind: ChangeActive, ID: s.activeID})
	}
	s.mu.Unlock()

	s.notify(changes...)
	return true
}

// SetActive makes id the active document. Unknown ids are ignored.
func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	if s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return false
	}
	changed := s.activeID != id
	s.activeID = id
	s.mu.Unlock()

	if changed {
		s.notify(Change{Kind: ChangeActive, ID: id})
	}
	return true
}

// UpdateContent replaces the content of document id.
func (s *Store) UpdateContent(id, content string) bool {
	return s.update(id, ChangeContent, func(d *Document) { d.Content = content })
}

// UpdateName replaces the name of document id. Any string is accepted.
func (s *Store) UpdateName(id, name string) bool {
	return s.update(id, ChangeName, func(d *Document) { d.Name = name })
}

func (s *Store) update(id string, kind ChangeKind, fn func(*Document)) bool {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	fn(s.docs[idx])
	s.mu.Unlock()

	s.notify(Change{Kind: kind, ID: id})
	return true
}

// Next activates the document after the active one, wrapping around.
func (s *Store) Next() Document {
	return s.step(1)
}

// Previous activates the document before the active one, wrapping around.
func (s *Store) Previous() Document {
	return s.step(-1)
}

func (s *Store) step(delta int) Document {
	s.mu.Lock()
	idx := s.indexLocked(s.activeID)
	n := len(s.docs)
	next := ((idx+delta)%n + n) % n
	doc := *s.docs[next]
	changed := doc.ID != s.activeID
	s.activeID = doc.ID
	s.mu.Unlock()

	if changed {
		s.notify(Change{Kind: ChangeActive, ID: doc.ID})
	}
	return doc
}

// Active returns the active document.
func (s *Store) Active() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.docs[s.indexLocked(s.activeID)]
}

// ActiveID returns the id of the active document.
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Get returns the document with id.
func (s *Store) Get(id string) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return Document{}, false
	}
	return *s.docs[idx], true
}

// All returns copies of all documents in tab order.
func (s *Store) All() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]Document, len(s.docs))
	for i, d := range s.docs {
		docs[i] = *d
	}
	return docs
}

// Count returns the number of documents.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Index returns the tab position of id, or -1.
func (s *Store) Index(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(id)
}

func (s *Store) indexLocked(id string) int {
	for i, d := range s.docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// ensureActiveLocked reassigns the active id to the first document when it
// no longer resolves. Reports whether it changed anything.
func (s *Store) ensureActiveLocked() bool {
	if s.indexLocked(s.activeID) >= 0 {
		return false
	}
	s.activeID = s.docs[0].ID
	return true
}
