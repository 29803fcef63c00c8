// Package persist saves a session to a durable key-value store and restores
// it at start-up.
//
// Loading is synchronous and never fails: malformed or missing state falls
// back to the legacy single-document keys and then to a fresh template
// document. Saving is asynchronous through two debounced channels, one for
// the document list and one for the active id, so a burst of edits results
// in a single write that reflects the final state. Write failures are
// logged and dropped; the in-memory session stays authoritative.
//
// Keys (with the default "mdstudio-" prefix):
//
//	mdstudio-files     JSON array of {"id","name","content"}
//	mdstudio-activeId  plain id string
//	mdstudio-content   legacy plain content string (read only)
//	mdstudio-filename  legacy plain name string (read only)
//	mdstudio-theme     "light" or "dark" (owned by the theme package)
package persist
