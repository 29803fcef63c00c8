package transform

import "fmt"

// ByteOffset is a position in the buffer measured in UTF-8 code units.
type ByteOffset = int

// Range represents a selection in the buffer.
// Start is inclusive, End is exclusive: [Start, End).
// A Range with Start == End is a caret.
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// NewRange creates a new Range from start and end offsets.
func NewRange(start, end ByteOffset) Range {
	return Range{Start: start, End: end}
}

// Caret creates an empty range at offset.
func Caret(offset ByteOffset) Range {
	return Range{Start: offset, End: offset}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End)
}

// Len returns the length of the range in bytes.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// Normalize returns r with Start <= End and both ends clamped to [0, size].
func (r Range) Normalize(size int) Range {
	if r.Start > r.End {
		r.Start, r.End = r.End, r.Start
	}
	r.Start = clamp(r.Start, size)
	r.End = clamp(r.End, size)
	return r
}

func clamp(off ByteOffset, size int) ByteOffset {
	if off < 0 {
		return 0
	}
	if off > size {
		return size
	}
	return off
}
