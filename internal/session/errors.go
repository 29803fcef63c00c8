package session

import "errors"

// Session errors.
var (
	// ErrDocumentNotFound indicates a document id is not part of the session.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrLastDocument indicates an attempt to close the only document.
	ErrLastDocument = errors.New("cannot close last document")
)
