// Package transform implements the selection-aware text edits issued by the
// formatting toolbar.
//
// Every function is pure: it takes the full buffer text and a half-open
// selection [Start, End) of byte offsets and returns the new text together
// with the selection the editing surface should show afterwards. Offsets are
// UTF-8 code units. Surfaces that address text by line and column translate
// through the position package before and after calling in here.
//
// The three edit shapes are:
//
//   - WrapSelection: surround the selection with delimiters ("**bold**").
//   - InsertLinePrefix: prefix every line the selection touches ("> quote").
//   - InsertBlock: insert a block of text after the selection end.
//
// Basic usage:
//
//	res := transform.WrapSelection("hello world", transform.NewRange(0, 5), "**", "**")
//	// res.Text == "**hello** world"
//	// res.Selection == [2:7)
package transform
