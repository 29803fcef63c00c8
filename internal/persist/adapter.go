package persist

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/mdstudio/internal/debounce"
	"github.com/dshills/mdstudio/internal/session"
)

// Default debounce delays for the two save channels.
const (
	DefaultDocumentsDelay = 300 * time.Millisecond
	DefaultActiveDelay    = 150 * time.Millisecond
)

// Source tells where the bootstrap documents came from.
type Source string

const (
	// SourceFiles means the current multi-document key was used.
	SourceFiles Source = "files"
	// SourceLegacy means the single-document legacy keys were migrated.
	SourceLegacy Source = "legacy"
	// SourceDefault means nothing usable was stored.
	SourceDefault Source = "default"
)

// Snapshot is the session state read at bootstrap.
type Snapshot struct {
	Documents []session.Document
	ActiveID  string
	Source    Source

	// activeStored is true when the stored active id resolved as-is.
	activeStored bool
}

// Stats counts writes performed by an Adapter.
type Stats struct {
	DocumentWrites int64
	ActiveWrites   int64
	Failures       int64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithKeys overrides the store keys.
func WithKeys(k Keys) Option {
	return func(a *Adapter) {
		a.keys = k
	}
}

// WithDelays sets the documents and active-id debounce delays.
// Non-positive values keep the defaults.
func WithDelays(documents, active time.Duration) Option {
	return func(a *Adapter) {
		if documents > 0 {
			a.documentsDelay = documents
		}
		if active > 0 {
			a.activeDelay = active
		}
	}
}

// WithTemplate sets the content used when nothing is stored.
func WithTemplate(t string) Option {
	return func(a *Adapter) {
		a.template = t
	}
}

// Adapter loads a session from a KV and keeps the KV in sync with it.
type Adapter struct {
	kv             KV
	keys           Keys
	logger         *slog.Logger
	template       string
	documentsDelay time.Duration
	activeDelay    time.Duration

	mu        sync.Mutex
	store     *session.Store
	documents *debounce.Debouncer
	active    *debounce.Debouncer
	closed    atomic.Bool

	documentWrites atomic.Int64
	activeWrites   atomic.Int64
	failures       atomic.Int64
}

// New creates an adapter for kv.
func New(kv KV, opts ...Option) *Adapter {
	a := &Adapter{
		kv:             kv,
		keys:           DefaultKeys(),
		logger:         slog.New(slog.DiscardHandler),
		template:       session.DefaultTemplate,
		documentsDelay: DefaultDocumentsDelay,
		activeDelay:    DefaultActiveDelay,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.documents = debounce.New(a.documentsDelay, a.saveDocuments)
	a.active = debounce.New(a.activeDelay, a.saveActive)
	return a
}

// Keys returns the keys the adapter reads and writes.
func (a *Adapter) Keys() Keys {
	return a.keys
}

// get reads key, treating store errors as absence.
func (a *Adapter) get(key string) (string, bool) {
	v, ok, err := a.kv.Get(key)
	if err != nil {
		a.logger.Warn("reading persisted key failed, treating as absent", "key", key, "error", err)
		return "", false
	}
	return v, ok
}

// Load reads the persisted session. It never fails: malformed state is
// treated as absent and the result always holds at least one document.
func (a *Adapter) Load() Snapshot {
	var snap Snapshot

	if raw, ok := a.get(a.keys.Files); ok {
		if docs, valid := DecodeDocuments(raw); valid {
			snap.Documents = docs
			snap.Source = SourceFiles
		} else {
			a.logger.Warn("persisted documents are malformed, ignoring", "key", a.keys.Files)
		}
	}

	if snap.Documents == nil {
		content, hasContent := a.get(a.keys.LegacyContent)
		name, hasName := a.get(a.keys.LegacyFilename)
		if !hasContent {
			content = a.template
		}
		snap.Source = SourceDefault
		if hasContent || hasName {
			snap.Source = SourceLegacy
		}
		snap.Documents = []session.Document{session.NewDocument(name, content)}
	}

	snap.ActiveID = snap.Documents[0].ID
	if id, ok := a.get(a.keys.ActiveID); ok && id != "" {
		for _, d := range snap.Documents {
			if d.ID == id {
				snap.ActiveID = id
				snap.activeStored = true
				break
			}
		}
	}

	a.logger.Debug("session loaded",
		"source", string(snap.Source),
		"documents", len(snap.Documents),
		"active", snap.ActiveID)
	return snap
}

// Bootstrap loads the session, builds a store from it and attaches the
// adapter. State that was migrated or repaired during load is scheduled
// for writing.
func (a *Adapter) Bootstrap(opts ...session.Option) *session.Store {
	snap := a.Load()
	opts = append([]session.Option{session.WithTemplate(a.template)}, opts...)
	store := session.NewStore(snap.Documents, snap.ActiveID, opts...)
	a.Attach(store)

	if snap.Source != SourceFiles {
		a.documents.Trigger()
	}
	if !snap.activeStored {
		a.active.Trigger()
	}
	return store
}

// Attach subscribes the adapter to store changes. Content, name and
// structural changes schedule a documents write; active changes schedule an
// active-id write.
func (a *Adapter) Attach(store *session.Store) {
	a.mu.Lock()
	a.store = store
	a.mu.Unlock()

	store.OnChange(func(c session.Change) {
		if a.closed.Load() {
			return
		}
		switch c.Kind {
		case session.ChangeActive:
			a.active.Trigger()
		default:
			a.documents.Trigger()
		}
	})
}

func (a *Adapter) attached() *session.Store {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.store
}

// saveDocuments writes the store's current document list.
func (a *Adapter) saveDocuments() {
	store := a.attached()
	if store == nil {
		return
	}
	value, err := EncodeDocuments(store.All())
	if err == nil {
		err = a.kv.Set(a.keys.Files, value)
	}
	if err != nil {
		a.failures.Add(1)
		a.logger.Warn("saving documents failed", "key", a.keys.Files, "error", err)
		return
	}
	a.documentWrites.Add(1)
}

// saveActive writes the store's current active id.
func (a *Adapter) saveActive() {
	store := a.attached()
	if store == nil {
		return
	}
	id := store.ActiveID()
	if id == "" {
		return
	}
	if err := a.kv.Set(a.keys.ActiveID, id); err != nil {
		a.failures.Add(1)
		a.logger.Warn("saving active document failed", "key", a.keys.ActiveID, "error", err)
		return
	}
	a.activeWrites.Add(1)
}

// Pending reports whether either channel has a write scheduled.
func (a *Adapter) Pending() bool {
	return a.documents.IsPending() || a.active.IsPending()
}

// Flush performs any scheduled writes immediately.
func (a *Adapter) Flush() {
	a.documents.Flush()
	a.active.Flush()
}

// Close flushes pending writes and stops reacting to store changes.
func (a *Adapter) Close() {
	a.closed.Store(true)
	a.Flush()
}

// Stats returns write counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		DocumentWrites: a.documentWrites.Load(),
		ActiveWrites:   a.activeWrites.Load(),
		Failures:       a.failures.Load(),
	}
}
