package transform

import "strings"

// Result is the outcome of a transform: the full replacement text and the
// selection to restore on the editing surface.
type Result struct {
	Text      string
	Selection Range
}

// Kind identifies which edit shape an operation uses.
type Kind int

const (
	// KindWrap surrounds the selection with Before and After.
	KindWrap Kind = iota
	// KindLinePrefix prepends Before to every touched line.
	KindLinePrefix
	// KindBlock inserts Before after the selection end.
	KindBlock
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindWrap:
		return "wrap"
	case KindLinePrefix:
		return "line-prefix"
	case KindBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Op is a transform described as data so it can be stored in action tables.
type Op struct {
	Kind   Kind
	Before string
	// After is only used by KindWrap. Empty means "same as Before"
	// unless NoAfter is set.
	After string
	// NoAfter makes a KindWrap insert Before with no closing delimiter.
	NoAfter bool
}

// Apply runs the operation against text and sel.
func (o Op) Apply(text string, sel Range) Result {
	switch o.Kind {
	case KindLinePrefix:
		return InsertLinePrefix(text, sel, o.Before)
	case KindBlock:
		return InsertBlock(text, sel, o.Before)
	default:
		after := o.After
		if after == "" && !o.NoAfter {
			after = o.Before
		}
		return WrapSelection(text, sel, o.Before, after)
	}
}

// WrapSelection surrounds the selected text with before and after.
//
// The returned selection spans the originally selected text, shifted past
// before, never the delimiters. A caret lands between before and after.
func WrapSelection(text string, sel Range, before, after string) Result {
	sel = sel.Normalize(len(text))

	var b strings.Builder
	b.Grow(len(text) + len(before) + len(after))
	b.WriteString(text[:sel.Start])
	b.WriteString(before)
	b.WriteString(text[sel.Start:sel.End])
	b.WriteString(after)
	b.WriteString(text[sel.End:])

	return Result{
		Text:      b.String(),
		Selection: NewRange(sel.Start+len(before), sel.End+len(before)),
	}
}

// InsertLinePrefix prepends prefix to every line intersected by the
// selection, starting from the beginning of the line that contains
// sel.Start. A caret prefixes the single line it sits on.
func InsertLinePrefix(text string, sel Range, prefix string) Result {
	sel = sel.Normalize(len(text))

	lineStart := LineStart(text, sel.Start)
	lines := strings.Split(text[lineStart:sel.End], "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}

	var b strings.Builder
	b.Grow(len(text) + len(prefix)*len(lines))
	b.WriteString(text[:lineStart])
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString(text[sel.End:])

	return Result{
		Text:      b.String(),
		Selection: NewRange(sel.Start+len(prefix), sel.End+len(prefix)*len(lines)),
	}
}

// InsertBlock inserts block at the selection end. Selected text is kept.
// The caret is placed immediately after the inserted block, on whatever
// line the block ends on.
func InsertBlock(text string, sel Range, block string) Result {
	sel = sel.Normalize(len(text))

	caret := sel.End + len(block)
	if i := strings.LastIndexByte(block, '\n'); i >= 0 {
		// start of the final inserted line plus its length
		lastLineStart := sel.End + i + 1
		caret = lastLineStart + len(block[i+1:])
	}

	return Result{
		Text:      text[:sel.End] + block + text[sel.End:],
		Selection: Caret(caret),
	}
}

// LineStart returns the offset of the first byte of the line containing
// offset.
func LineStart(text string, offset ByteOffset) ByteOffset {
	offset = clamp(offset, len(text))
	return strings.LastIndexByte(text[:offset], '\n') + 1
}
