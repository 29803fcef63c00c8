// Package export turns documents into downloadable artifacts.
//
// Markdown export is self-contained. PDF export depends on two external
// collaborators: a Renderer that turns markdown into HTML and a PDFWriter
// that paginates that HTML. While they run the light theme is forced, and
// the override is always lifted before PDF returns, including when a
// collaborator fails or panics.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/dshills/mdstudio/internal/session"
)

// MarkdownMediaType is the media type of exported markdown.
const MarkdownMediaType = "text/markdown;charset=utf-8"

// fallbackBaseName is used when a document has neither name nor id.
const fallbackBaseName = "document"

// Export errors.
var (
	// ErrNoRenderer indicates PDF export was requested without a renderer.
	ErrNoRenderer = errors.New("no markdown renderer configured")

	// ErrNoPDFWriter indicates PDF export was requested without a writer.
	ErrNoPDFWriter = errors.New("no pdf writer configured")
)

// Error reports a failed export.
type Error struct {
	Format   string // "markdown" or "pdf"
	Filename string
	Err      error
}

func (e *Error) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("export %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("export %s %s: %v", e.Format, e.Filename, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Blob is an exported artifact.
type Blob struct {
	Data      []byte
	MediaType string
	Filename  string
}

// WriteTo implements io.WriterTo.
func (b Blob) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Data)
	return int64(n), err
}

// BaseName returns the file name stem for doc: its trimmed name, else its
// id, else "document".
func BaseName(doc session.Document) string {
	if name := strings.TrimSpace(doc.Name); name != "" {
		return name
	}
	if doc.ID != "" {
		return doc.ID
	}
	return fallbackBaseName
}

// Markdown exports the raw content of doc.
func Markdown(doc session.Document) Blob {
	return Blob{
		Data:      []byte(doc.Content),
		MediaType: MarkdownMediaType,
		Filename:  BaseName(doc) + ".md",
	}
}

// Renderer converts markdown to an HTML snapshot.
type Renderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

// PDFOptions are the page settings handed to the PDF writer.
type PDFOptions struct {
	Filename     string
	MarginMM     [2]float64 // vertical, horizontal
	Format       string
	Orientation  string
	Scale        float64
	ImageQuality float64
	Background   string
}

// DefaultPDFOptions returns A4 portrait pages with 10mm margins.
func DefaultPDFOptions(filename string) PDFOptions {
	return PDFOptions{
		Filename:     filename,
		MarginMM:     [2]float64{10, 10},
		Format:       "a4",
		Orientation:  "portrait",
		Scale:        2,
		ImageQuality: 0.98,
		Background:   "#ffffff",
	}
}

// PDFWriter paginates an HTML snapshot into w.
type PDFWriter interface {
	WritePDF(ctx context.Context, html string, opts PDFOptions, w io.Writer) error
}

// Themer can force the light theme temporarily.
type Themer interface {
	ForceLight() (restore func())
}

// Exporter bundles the collaborators needed for PDF export.
type Exporter struct {
	Renderer Renderer
	Writer   PDFWriter
	Themer   Themer
	Logger   *slog.Logger
}

// PDF renders doc and writes it as a PDF to w. The light theme is forced
// for the duration and restored on every exit path. Collaborator panics are
// returned as errors.
func (e *Exporter) PDF(ctx context.Context, doc session.Document, w io.Writer) (err error) {
	filename := BaseName(doc) + ".pdf"
	if e.Renderer == nil {
		return &Error{Format: "pdf", Filename: filename, Err: ErrNoRenderer}
	}
	if e.Writer == nil {
		return &Error{Format: "pdf", Filename: filename, Err: ErrNoPDFWriter}
	}
	if err := ctx.Err(); err != nil {
		return &Error{Format: "pdf", Filename: filename, Err: err}
	}

	if e.Themer != nil {
		restore := e.Themer.ForceLight()
		defer restore()
	}
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Format: "pdf", Filename: filename, Err: fmt.Errorf("panic: %v", r)}
			e.logger().Error("pdf export panicked", "file", filename, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	html, err := e.Renderer.Render(ctx, doc.Content)
	if err != nil {
		e.logger().Error("rendering markdown failed", "file", filename, "error", err)
		return &Error{Format: "pdf", Filename: filename, Err: err}
	}
	if err := e.Writer.WritePDF(ctx, html, DefaultPDFOptions(filename), w); err != nil {
		e.logger().Error("writing pdf failed", "file", filename, "error", err)
		return &Error{Format: "pdf", Filename: filename, Err: err}
	}
	return nil
}

func (e *Exporter) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Logger
}
