package dirty

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dshills/mdstudio/internal/session"
)

// ErrNoPendingClose indicates Confirm was called with no close pending.
var ErrNoPendingClose = errors.New("no close pending")

// Policy decides what happens to a close request made while the
// confirmation dialog is already open.
type Policy int

const (
	// PolicyQueue keeps requests in arrival order and asks about them one
	// at a time. A repeated request for a queued id replaces its callback.
	PolicyQueue Policy = iota
	// PolicyReplace keeps one pending request; a new one overwrites it.
	PolicyReplace
)

// String returns the policy name as used in configuration.
func (p Policy) String() string {
	switch p {
	case PolicyQueue:
		return "queue"
	case PolicyReplace:
		return "replace"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name.
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "queue":
		return PolicyQueue, true
	case "replace":
		return PolicyReplace, true
	default:
		return 0, false
	}
}

// Lookup resolves documents by id. *session.Store satisfies it.
type Lookup interface {
	Get(id string) (session.Document, bool)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithPolicy sets the pending-close policy.
func WithPolicy(p Policy) Option {
	return func(t *Tracker) {
		t.policy = p
	}
}

// WithTemplate sets the baseline content for the status check.
func WithTemplate(template string) Option {
	return func(t *Tracker) {
		t.template = template
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

type request struct {
	id      string
	proceed func()
}

// Tracker derives document status and drives close confirmation.
// The prompt-disable flag lives only as long as the Tracker.
type Tracker struct {
	mu            sync.Mutex
	docs          Lookup
	template      string
	policy        Policy
	logger        *slog.Logger
	disablePrompt bool
	pending       []request // pending[0] is the request the dialog shows
}

// NewTracker creates a tracker reading documents from docs.
func NewTracker(docs Lookup, opts ...Option) *Tracker {
	t := &Tracker{
		docs:     docs,
		template: session.DefaultTemplate,
		policy:   PolicyQueue,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the pending-close policy.
func (t *Tracker) Policy() Policy {
	return t.policy
}

// Status returns the current status of id. Unknown ids are Clean.
func (t *Tracker) Status(id string) Status {
	doc, ok := t.docs.Get(id)
	if !ok {
		return Clean
	}
	return StatusOf(doc.Content, doc.Name, t.template)
}

// SetDisablePrompt turns the confirmation prompt off or on for the rest of
// the session.
func (t *Tracker) SetDisablePrompt(disabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disablePrompt = disabled
}

// DisablePrompt reports whether prompts are disabled.
func (t *Tracker) DisablePrompt() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.disablePrompt
}

// DialogOpen reports whether a confirmation is waiting for an answer.
func (t *Tracker) DialogOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending) > 0
}

// PendingID returns the id the dialog is asking about.
func (t *Tracker) PendingID() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.pending) == 0 {
		return "", false
	}
	return t.pending[0].id, true
}

// Queued returns every pending id in the order they will be asked about.
func (t *Tracker) Queued() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, len(t.pending))
	for i, r := range t.pending {
		ids[i] = r.id
	}
	return ids
}

// RequestClose calls proceed immediately when id is Clean or prompts are
// disabled and reports true. Otherwise it records the request, opens the
// dialog and reports false; proceed then runs on Confirm.
func (t *Tracker) RequestClose(id string, proceed func()) bool {
	status := t.Status(id)

	t.mu.Lock()
	if status == Clean || t.disablePrompt {
		t.mu.Unlock()
		t.logger.Debug("close proceeds without prompt", "id", id, "status", status.String())
		proceed()
		return true
	}

	req := request{id: id, proceed: proceed}
	switch {
	case t.policy == PolicyReplace:
		if len(t.pending) > 0 && t.pending[0].id != id {
			t.logger.Debug("pending close replaced", "previous", t.pending[0].id, "id", id)
		}
		t.pending = []request{req}
	default:
		replaced := false
		for i := range t.pending {
			if t.pending[i].id == id {
				t.pending[i] = req
				replaced = true
				break
			}
		}
		if !replaced {
			t.pending = append(t.pending, req)
		}
	}
	t.mu.Unlock()

	t.logger.Debug("close awaits confirmation", "id", id)
	return false
}

// Confirm answers the dialog with "close": the pending request is removed
// and its proceed callback runs. Later queued requests that no longer need
// a prompt run as well.
func (t *Tracker) Confirm() error {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return ErrNoPendingClose
	}
	head := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()

	t.logger.Debug("close confirmed", "id", head.id)
	head.proceed()
	t.drain()
	return nil
}

// Cancel answers the dialog with "keep": the pending request is dropped.
// Reports whether anything was pending.
func (t *Tracker) Cancel() bool {
	t.mu.Lock()
	if len(t.pending) == 0 {
		t.mu.Unlock()
		return false
	}
	head := t.pending[0]
	t.pending = t.pending[1:]
	t.mu.Unlock()

	t.logger.Debug("close cancelled", "id", head.id)
	t.drain()
	return true
}

// Forget drops any pending request for id, for example after the document
// was removed by other means.
func (t *Tracker) Forget(id string) {
	t.mu.Lock()
	kept := t.pending[:0]
	for _, r := range t.pending {
		if r.id != id {
			kept = append(kept, r)
		}
	}
	t.pending = kept
	t.mu.Unlock()
}

// drain runs queued requests at the head of the queue that no longer need
// confirmation: their document became Clean, disappeared, or prompts were
// disabled while the dialog was open.
func (t *Tracker) drain() {
	for {
		t.mu.Lock()
		if len(t.pending) == 0 {
			t.mu.Unlock()
			return
		}
		head := t.pending[0]
		disabled := t.disablePrompt
		t.mu.Unlock()

		_, exists := t.docs.Get(head.id)
		if exists && !disabled && t.Status(head.id) == Modified {
			return
		}

		t.mu.Lock()
		if len(t.pending) == 0 || t.pending[0].id != head.id {
			t.mu.Unlock()
			continue
		}
		t.pending = t.pending[1:]
		t.mu.Unlock()

		if exists {
			head.proceed()
		}
	}
}
