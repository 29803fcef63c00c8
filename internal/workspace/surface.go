package workspace

import (
	"github.com/dshills/mdstudio/internal/engine/position"
	"github.com/dshills/mdstudio/internal/engine/transform"
)

// Surface is the editing surface showing the active document. Offsets are
// byte offsets into the document content.
type Surface interface {
	// Selection returns the current selection. ok is false while the
	// surface is not ready.
	Selection() (sel transform.Range, ok bool)
	// SetSelection moves the selection after a transform.
	SetSelection(sel transform.Range)
}

// LineColumnEditor is an editing surface that addresses text by line and
// column instead of byte offset.
type LineColumnEditor interface {
	Selection() (start, end position.Point, ok bool)
	SetSelection(start, end position.Point)
}

// LineColumnSurface adapts a LineColumnEditor to Surface. Every conversion
// goes through a position.Converter built over the current text.
type LineColumnSurface struct {
	editor LineColumnEditor
	unit   position.Unit
	text   func() string
}

// NewLineColumnSurface wraps editor. text returns the content the editor
// currently shows.
func NewLineColumnSurface(editor LineColumnEditor, unit position.Unit, text func() string) *LineColumnSurface {
	return &LineColumnSurface{editor: editor, unit: unit, text: text}
}

// Selection implements Surface.
func (s *LineColumnSurface) Selection() (transform.Range, bool) {
	if s.editor == nil {
		return transform.Range{}, false
	}
	start, end, ok := s.editor.Selection()
	if !ok {
		return transform.Range{}, false
	}
	return position.NewConverter(s.text(), s.unit).Range(start, end)
}

// SetSelection implements Surface.
func (s *LineColumnSurface) SetSelection(sel transform.Range) {
	if s.editor == nil {
		return
	}
	start, end, ok := position.NewConverter(s.text(), s.unit).Points(sel)
	if !ok {
		return
	}
	s.editor.SetSelection(start, end)
}
