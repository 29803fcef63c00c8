// Package session holds the ordered collection of open documents and the
// active-document pointer.
package session

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultTemplate is the starter content of every new document. It is also
// the baseline the dirty check compares against.
const DefaultTemplate = "# Markdown Studio\n\n- Live preview on the right\n- Monaco editor on the left\n\nMath: $\\int_0^1 x^2 \\mathrm{d}x = \\tfrac{1}{3}$\n\n\n\n\n"

// UnnamedTitle is shown for documents whose name is blank.
const UnnamedTitle = "New Document"

// Document is one named text buffer within a session.
// ID is assigned at creation and never changes.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NewDocument creates a document with a fresh id.
func NewDocument(name, content string) Document {
	return Document{
		ID:      NewID(),
		Name:    name,
		Content: content,
	}
}

// NewID returns a new random document id.
func NewID() string {
	return uuid.NewString()
}

// IsUnnamed reports whether the name is empty or whitespace only.
func (d Document) IsUnnamed() bool {
	return strings.TrimSpace(d.Name) == ""
}

// DisplayName returns the trimmed name, or UnnamedTitle for blank names.
func (d Document) DisplayName() string {
	if d.IsUnnamed() {
		return UnnamedTitle
	}
	return strings.TrimSpace(d.Name)
}
