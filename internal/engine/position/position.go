package position

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/mdstudio/internal/engine/transform"
)

// Unit is the measure used for the column of a Point.
type Unit int

const (
	// UnitByte measures columns in UTF-8 bytes.
	UnitByte Unit = iota
	// UnitUTF16 measures columns in UTF-16 code units.
	UnitUTF16
	// UnitGrapheme measures columns in grapheme clusters.
	UnitGrapheme
)

// String returns the unit name as used in configuration.
func (u Unit) String() string {
	switch u {
	case UnitByte:
		return "byte"
	case UnitUTF16:
		return "utf16"
	case UnitGrapheme:
		return "grapheme"
	default:
		return "unknown"
	}
}

// ParseUnit parses a unit name. Unknown names return false.
func ParseUnit(s string) (Unit, bool) {
	switch strings.ToLower(s) {
	case "byte", "bytes", "utf8":
		return UnitByte, true
	case "utf16", "utf-16":
		return UnitUTF16, true
	case "grapheme", "graphemes":
		return UnitGrapheme, true
	default:
		return 0, false
	}
}

// Point is a line and column position. Both are 0-indexed.
type Point struct {
	Line   int
	Column int
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Converter maps between byte offsets and Points for one text snapshot.
type Converter struct {
	text       string
	unit       Unit
	lineStarts []int
}

// NewConverter indexes text for conversions in the given unit.
func NewConverter(text string, unit Unit) *Converter {
	starts := make([]int, 1, strings.Count(text, "\n")+1)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Converter{text: text, unit: unit, lineStarts: starts}
}

// LineCount returns the number of lines. An empty text has one line.
func (c *Converter) LineCount() int {
	return len(c.lineStarts)
}

// line returns the text of line n without its trailing newline.
func (c *Converter) line(n int) string {
	start := c.lineStarts[n]
	end := len(c.text)
	if n+1 < len(c.lineStarts) {
		end = c.lineStarts[n+1] - 1
	}
	return c.text[start:end]
}

// Offset converts p to a byte offset. A column past the end of the line
// clamps to the line end. Returns false when the line does not exist or the
// column is negative.
func (c *Converter) Offset(p Point) (transform.ByteOffset, bool) {
	if p.Line < 0 || p.Line >= len(c.lineStarts) || p.Column < 0 {
		return 0, false
	}
	return c.lineStarts[p.Line] + columnToByte(c.line(p.Line), p.Column, c.unit), true
}

// Point converts a byte offset to a Point. Returns false when offset is
// outside [0, len(text)].
func (c *Converter) Point(offset transform.ByteOffset) (Point, bool) {
	if offset < 0 || offset > len(c.text) {
		return Point{}, false
	}
	// last line whose start is <= offset
	n := sort.Search(len(c.lineStarts), func(i int) bool {
		return c.lineStarts[i] > offset
	}) - 1
	line := c.line(n)
	col := offset - c.lineStarts[n]
	if col > len(line) {
		col = len(line)
	}
	return Point{Line: n, Column: byteToColumn(line, col, c.unit)}, true
}

// Range converts a pair of Points into an offset range. The ends are
// swapped when start is after end.
func (c *Converter) Range(start, end Point) (transform.Range, bool) {
	s, ok := c.Offset(start)
	if !ok {
		return transform.Range{}, false
	}
	e, ok := c.Offset(end)
	if !ok {
		return transform.Range{}, false
	}
	if s > e {
		s, e = e, s
	}
	return transform.NewRange(s, e), true
}

// Points converts an offset range back to a pair of Points.
func (c *Converter) Points(r transform.Range) (start, end Point, ok bool) {
	if start, ok = c.Point(r.Start); !ok {
		return Point{}, Point{}, false
	}
	if end, ok = c.Point(r.End); !ok {
		return Point{}, Point{}, false
	}
	return start, end, true
}

// columnToByte returns the byte index in line for column col.
// A column that falls inside a multi-unit character rounds down to its start.
func columnToByte(line string, col int, unit Unit) int {
	switch unit {
	case UnitUTF16:
		units := 0
		for i, r := range line {
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			if units+n > col {
				return i
			}
			units += n
		}
		return len(line)
	case UnitGrapheme:
		pos := 0
		state := -1
		rest := line
		for n := 0; n < col && len(rest) > 0; n++ {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			pos += len(cluster)
		}
		return pos
	default:
		if col > len(line) {
			return len(line)
		}
		// never split a UTF-8 sequence
		for col > 0 && col < len(line) && !utf8.RuneStart(line[col]) {
			col--
		}
		return col
	}
}

// byteToColumn returns the column in unit for byte index b in line.
func byteToColumn(line string, b int, unit Unit) int {
	prefix := line[:b]
	switch unit {
	case UnitUTF16:
		units := 0
		for _, r := range prefix {
			n := utf16.RuneLen(r)
			if n < 0 {
				n = 1
			}
			units += n
		}
		return units
	case UnitGrapheme:
		return uniseg.GraphemeClusterCount(prefix)
	default:
		return b
	}
}
