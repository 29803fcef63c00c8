package dirty

import (
	"strings"

	"github.com/dshills/mdstudio/internal/session"
)

// Status is the derived modification state of a document.
type Status int

const (
	// Clean means the document matches the template and is unnamed.
	Clean Status = iota
	// Modified means the content or name differs from a fresh document.
	Modified
)

// String returns the status name.
func (s Status) String() string {
	if s == Modified {
		return "modified"
	}
	return "clean"
}

// StatusOf computes the status of content and name against template.
func StatusOf(content, name, template string) Status {
	if content != template || strings.TrimSpace(name) != "" {
		return Modified
	}
	return Clean
}

// DocumentStatus computes the status of doc against the default template.
func DocumentStatus(doc session.Document) Status {
	return StatusOf(doc.Content, doc.Name, session.DefaultTemplate)
}
