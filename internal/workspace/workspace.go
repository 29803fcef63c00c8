// Package workspace ties one editing session together: the document store,
// its persistence, close confirmation, theme and export. A Workspace is
// created once and passed to whatever drives it; there is no package-level
// session state.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/dshills/mdstudio/internal/dirty"
	"github.com/dshills/mdstudio/internal/engine/position"
	"github.com/dshills/mdstudio/internal/engine/transform"
	"github.com/dshills/mdstudio/internal/export"
	"github.com/dshills/mdstudio/internal/persist"
	"github.com/dshills/mdstudio/internal/session"
	"github.com/dshills/mdstudio/internal/theme"
)

// ErrUnknownAction indicates Apply was given a name not in the catalog.
var ErrUnknownAction = errors.New("unknown action")

// Option configures a Workspace.
type Option func(*options)

type options struct {
	logger       *slog.Logger
	keys         persist.Keys
	docsDelay    time.Duration
	activeDelay  time.Duration
	policy       dirty.Policy
	defaultTheme theme.Theme
	renderer     export.Renderer
	pdfWriter    export.PDFWriter
	sessionOpts  []session.Option
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithKeys sets the store keys.
func WithKeys(k persist.Keys) Option {
	return func(o *options) {
		o.keys = k
	}
}

// WithDelays sets the documents and active-id save delays.
func WithDelays(documents, active time.Duration) Option {
	return func(o *options) {
		o.docsDelay = documents
		o.activeDelay = active
	}
}

// WithClosePolicy sets how close requests made while a confirmation is open
// are handled.
func WithClosePolicy(p dirty.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithDefaultTheme sets the theme used when none is stored.
func WithDefaultTheme(t theme.Theme) Option {
	return func(o *options) {
		o.defaultTheme = t
	}
}

// WithPDF sets the collaborators used by ExportPDF.
func WithPDF(r export.Renderer, w export.PDFWriter) Option {
	return func(o *options) {
		o.renderer = r
		o.pdfWriter = w
	}
}

// WithSessionOptions passes options through to the document store.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) {
		o.sessionOpts = append(o.sessionOpts, opts...)
	}
}

// Workspace is the session context object.
type Workspace struct {
	store    *session.Store
	adapter  *persist.Adapter
	tracker  *dirty.Tracker
	theme    *theme.Manager
	exporter *export.Exporter
	logger   *slog.Logger

	mu      sync.Mutex
	surface Surface
}

// Open loads the session persisted in kv and wires every component to it.
// Open never fails: unusable persisted state yields a fresh session.
func Open(kv persist.KV, opts ...Option) *Workspace {
	o := options{
		logger:       slog.New(slog.DiscardHandler),
		keys:         persist.DefaultKeys(),
		policy:       dirty.PolicyQueue,
		defaultTheme: theme.Light,
	}
	for _, opt := range opts {
		opt(&o)
	}

	adapter := persist.New(kv,
		persist.WithLogger(o.logger.With("component", "persist")),
		persist.WithKeys(o.keys),
		persist.WithDelays(o.docsDelay, o.activeDelay))
	store := adapter.Bootstrap(o.sessionOpts...)
	themes := theme.NewManager(kv, o.keys.Theme, o.defaultTheme, o.logger.With("component", "theme"))

	w := &Workspace{
		store:   store,
		adapter: adapter,
		tracker: dirty.NewTracker(store,
			dirty.WithPolicy(o.policy),
			dirty.WithLogger(o.logger.With("component", "dirty"))),
		theme: themes,
		exporter: &export.Exporter{
			Renderer: o.renderer,
			Writer:   o.pdfWriter,
			Themer:   themes,
			Logger:   o.logger.With("component", "export"),
		},
		logger: o.logger,
	}

	store.OnChange(func(c session.Change) {
		if c.Kind != session.ChangeStructure {
			return
		}
		if _, ok := store.Get(c.ID); !ok {
			w.tracker.Forget(c.ID)
		}
	})

	w.logger.Info("workspace opened",
		"documents", store.Count(),
		"active", store.ActiveID(),
		"theme", string(themes.Effective()))
	return w
}

// Store returns the document store.
func (w *Workspace) Store() *session.Store { return w.store }

// Tracker returns the dirty tracker.
func (w *Workspace) Tracker() *dirty.Tracker { return w.tracker }

// Theme returns the theme manager.
func (w *Workspace) Theme() *theme.Manager { return w.theme }

// Documents returns every open document in tab order.
func (w *Workspace) Documents() []session.Document { return w.store.All() }

// Active returns the active document.
func (w *Workspace) Active() session.Document { return w.store.Active() }

// Create opens a new document from the template and activates it.
func (w *Workspace) Create() session.Document {
	doc := w.store.Create()
	w.logger.Debug("document created", "id", doc.ID)
	return doc
}

// Activate makes id the active document.
func (w *Workspace) Activate(id string) bool {
	return w.store.SetActive(id)
}

// Next activates the document after the active one, wrapping around.
func (w *Workspace) Next() session.Document {
	return w.store.Next()
}

// Previous activates the document before the active one, wrapping around.
func (w *Workspace) Previous() session.Document {
	return w.store.Previous()
}

// EditContent replaces the content of id.
func (w *Workspace) EditContent(id, content string) bool {
	return w.store.UpdateContent(id, content)
}

// Rename sets the name of id. Names are stored as typed.
func (w *Workspace) Rename(id, name string) bool {
	return w.store.UpdateName(id, name)
}

// Status returns the modification status of id.
func (w *Workspace) Status(id string) dirty.Status {
	return w.tracker.Status(id)
}

// SetSurface attaches the editing surface showing the active document.
// nil detaches it.
func (w *Workspace) SetSurface(s Surface) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.surface = s
}

// AttachLineColumnEditor attaches a line/column addressed editor, converting
// positions against the active document's content.
func (w *Workspace) AttachLineColumnEditor(ed LineColumnEditor, unit position.Unit) *LineColumnSurface {
	s := NewLineColumnSurface(ed, unit, func() string {
		return w.store.Active().Content
	})
	w.SetSurface(s)
	return s
}

func (w *Workspace) currentSurface() Surface {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.surface
}

// Apply runs the named toolbar action against the active document.
// It reports false without error when no surface is ready.
func (w *Workspace) Apply(name string) (bool, error) {
	a, ok := LookupAction(name)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return w.ApplyOp(a.Op), nil
}

// ApplyOp transforms the active document at the surface selection, stores
// the new content and restores the selection.
func (w *Workspace) ApplyOp(op transform.Op) bool {
	surface := w.currentSurface()
	if surface == nil {
		w.logger.Debug("transform skipped, no editing surface", "kind", op.Kind.String())
		return false
	}
	sel, ok := surface.Selection()
	if !ok {
		w.logger.Debug("transform skipped, surface not ready", "kind", op.Kind.String())
		return false
	}

	doc := w.store.Active()
	res := op.Apply(doc.Content, sel)
	w.store.UpdateContent(doc.ID, res.Text)
	surface.SetSelection(res.Selection)
	return true
}

// RequestClose asks to close id. Closing the last document is refused
// silently. A modified document opens the confirmation instead of closing.
// Reports whether the document was closed.
func (w *Workspace) RequestClose(id string) bool {
	if err := w.store.CanClose(id); err != nil {
		w.logger.Debug("close refused", "id", id, "error", err)
		return false
	}
	closed := false
	w.tracker.RequestClose(id, func() {
		closed = w.closeNow(id)
	})
	return closed
}

func (w *Workspace) closeNow(id string) bool {
	if !w.store.Close(id) {
		return false
	}
	w.logger.Debug("document closed", "id", id, "active", w.store.ActiveID())
	return true
}

// PendingClose returns the document the confirmation is asking about.
func (w *Workspace) PendingClose() (string, bool) {
	return w.tracker.PendingID()
}

// ConfirmClose answers the confirmation with "close".
func (w *Workspace) ConfirmClose() error {
	return w.tracker.Confirm()
}

// CancelClose answers the confirmation with "keep".
func (w *Workspace) CancelClose() bool {
	return w.tracker.Cancel()
}

// SetDisablePrompt turns close confirmation off for the rest of the session.
func (w *Workspace) SetDisablePrompt(disabled bool) {
	w.tracker.SetDisablePrompt(disabled)
}

// ExportMarkdown returns id's content as a downloadable markdown file.
func (w *Workspace) ExportMarkdown(id string) (export.Blob, error) {
	doc, ok := w.store.Get(id)
	if !ok {
		return export.Blob{}, &export.Error{Format: "markdown", Err: session.ErrDocumentNotFound}
	}
	return export.Markdown(doc), nil
}

// ExportPDF renders id as a PDF into out with the light theme forced for
// the duration.
func (w *Workspace) ExportPDF(ctx context.Context, id string, out io.Writer) error {
	doc, ok := w.store.Get(id)
	if !ok {
		return &export.Error{Format: "pdf", Err: session.ErrDocumentNotFound}
	}
	return w.exporter.PDF(ctx, doc, out)
}

// Flush writes any scheduled saves now.
func (w *Workspace) Flush() {
	w.adapter.Flush()
}

// Close flushes pending saves and detaches persistence.
func (w *Workspace) Close() {
	w.adapter.Close()
	w.logger.Info("workspace closed", "documents", w.store.Count())
}
