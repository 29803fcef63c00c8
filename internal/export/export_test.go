package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mdstudio/internal/persist"
	"github.com/dshills/mdstudio/internal/session"
	"github.com/dshills/mdstudio/internal/theme"
)

type fakeRenderer struct {
	err   error
	panic bool
	seen  theme.Theme
	tm    *theme.Manager
}

func (f *fakeRenderer) Render(_ context.Context, md string) (string, error) {
	if f.tm != nil {
		f.seen = f.tm.Effective()
	}
	if f.panic {
		panic("renderer exploded")
	}
	if f.err != nil {
		return "", f.err
	}
	return "<p>" + md + "</p>", nil
}

type fakeWriter struct {
	err  error
	opts PDFOptions
}

func (f *fakeWriter) WritePDF(_ context.Context, html string, opts PDFOptions, w io.Writer) error {
	f.opts = opts
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "%PDF "+html)
	return err
}

func darkManager() *theme.Manager {
	return theme.NewManager(persist.NewMemKV(0), "mdstudio-theme", theme.Dark, nil)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "notes", BaseName(session.Document{ID: "id", Name: "  notes "}))
	assert.Equal(t, "id", BaseName(session.Document{ID: "id", Name: "   "}))
	assert.Equal(t, "document", BaseName(session.Document{}))
}

func TestMarkdown(t *testing.T) {
	blob := Markdown(session.Document{ID: "abc", Content: "# hi"})
	assert.Equal(t, "abc.md", blob.Filename)
	assert.Equal(t, MarkdownMediaType, blob.MediaType)

	var buf bytes.Buffer
	n, err := blob.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, "# hi", buf.String())
}

func TestPDF_Success(t *testing.T) {
	tm := darkManager()
	r := &fakeRenderer{tm: tm}
	w := &fakeWriter{}
	e := &Exporter{Renderer: r, Writer: w, Themer: tm}

	var out bytes.Buffer
	require.NoError(t, e.PDF(context.Background(), session.Document{Name: "report", Content: "x"}, &out))

	assert.Equal(t, "%PDF <p>x</p>", out.String())
	assert.Equal(t, "report.pdf", w.opts.Filename)
	assert.Equal(t, "a4", w.opts.Format)
	assert.Equal(t, theme.Light, r.seen, "light theme forced while rendering")
	assert.Equal(t, theme.Dark, tm.Effective(), "theme restored")
}

func TestPDF_RestoresThemeOnFailure(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		renderer *fakeRenderer
		writer   *fakeWriter
	}{
		{"renderer error", &fakeRenderer{err: boom}, &fakeWriter{}},
		{"writer error", &fakeRenderer{}, &fakeWriter{err: boom}},
		{"renderer panic", &fakeRenderer{panic: true}, &fakeWriter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := darkManager()
			e := &Exporter{Renderer: tt.renderer, Writer: tt.writer, Themer: tm}

			err := e.PDF(context.Background(), session.Document{ID: "d"}, io.Discard)
			require.Error(t, err)
			var exportErr *Error
			require.ErrorAs(t, err, &exportErr)
			assert.Equal(t, "d.pdf", exportErr.Filename)
			assert.False(t, tm.Forced())
			assert.Equal(t, theme.Dark, tm.Effective())
		})
	}
}

func TestPDF_MissingCollaborators(t *testing.T) {
	tm := darkManager()

	err := (&Exporter{Writer: &fakeWriter{}, Themer: tm}).PDF(context.Background(), session.Document{}, io.Discard)
	assert.ErrorIs(t, err, ErrNoRenderer)

	err = (&Exporter{Renderer: &fakeRenderer{}, Themer: tm}).PDF(context.Background(), session.Document{}, io.Discard)
	assert.ErrorIs(t, err, ErrNoPDFWriter)
	assert.False(t, tm.Forced())
}

func TestPDF_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := &Exporter{Renderer: &fakeRenderer{}, Writer: &fakeWriter{}}
	err := e.PDF(ctx, session.Document{}, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
}
