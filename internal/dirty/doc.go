// Package dirty derives the modified/clean status of documents and runs the
// close-confirmation flow for modified documents.
//
// Status is a static heuristic, not a diff against the last saved state: a
// document is Modified when its content differs from the default template
// or its trimmed name is non-empty. Editing a document back to exactly the
// template with a blank name reports it Clean again, even though it was
// modified at some point. Callers must not read more into it than that.
//
// Close flow:
//
//	RequestClose(id, proceed)
//	    Clean or prompts disabled -> proceed() now
//	    Modified                  -> dialog opens, proceed deferred
//	Confirm()                     -> dialog closes, deferred proceed() runs
//	Cancel()                      -> dialog closes, nothing is removed
//
// With PolicyQueue (the default) a request made while the dialog is open
// waits its turn behind the current one. PolicyReplace keeps a single slot
// and a new request silently replaces the pending one.
package dirty
