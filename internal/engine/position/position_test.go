package position

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mdstudio/internal/engine/transform"
)

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
		ok   bool
	}{
		{"byte", UnitByte, true},
		{"UTF16", UnitUTF16, true},
		{"utf-16", UnitUTF16, true},
		{"grapheme", UnitGrapheme, true},
		{"columns", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseUnit(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if ok {
			assert.Equal(t, tt.want, got, tt.in)
			assert.NotEqual(t, "unknown", got.String())
		}
	}
}

func TestConverter_ASCII(t *testing.T) {
	c := NewConverter("a\nbc\n\ndef", UnitByte)
	require.Equal(t, 4, c.LineCount())

	cases := []struct {
		p   Point
		off int
	}{
		{Point{0, 0}, 0},
		{Point{0, 1}, 1},
		{Point{1, 0}, 2},
		{Point{1, 2}, 4},
		{Point{2, 0}, 5},
		{Point{3, 3}, 9},
	}
	for _, tc := range cases {
		off, ok := c.Offset(tc.p)
		require.True(t, ok, tc.p.String())
		assert.Equal(t, tc.off, off, tc.p.String())

		p, ok := c.Point(tc.off)
		require.True(t, ok)
		assert.Equal(t, tc.p, p)
	}
}

func TestConverter_ClampsAndRejects(t *testing.T) {
	c := NewConverter("ab\ncd", UnitByte)

	off, ok := c.Offset(Point{0, 99})
	require.True(t, ok)
	assert.Equal(t, 2, off)

	_, ok = c.Offset(Point{2, 0})
	assert.False(t, ok)
	_, ok = c.Offset(Point{0, -1})
	assert.False(t, ok)
	_, ok = c.Point(-1)
	assert.False(t, ok)
	_, ok = c.Point(6)
	assert.False(t, ok)

	p, ok := c.Point(2)
	require.True(t, ok)
	assert.Equal(t, Point{0, 2}, p)
}

func TestConverter_UTF16(t *testing.T) {
	// "é" is 2 bytes/1 unit, "😀" is 4 bytes/2 units
	text := "é😀x\n😀"
	c := NewConverter(text, UnitUTF16)

	off, ok := c.Offset(Point{0, 3})
	require.True(t, ok)
	assert.Equal(t, 6, off)
	assert.Equal(t, "x", text[off:off+1])

	// column inside the surrogate pair rounds down
	off, ok = c.Offset(Point{0, 2})
	require.True(t, ok)
	assert.Equal(t, 2, off)

	p, ok := c.Point(len(text))
	require.True(t, ok)
	assert.Equal(t, Point{1, 2}, p)
}

func TestConverter_Grapheme(t *testing.T) {
	// flag emoji is one grapheme made of two regional indicators
	text := "🇩🇪ab"
	c := NewConverter(text, UnitGrapheme)

	off, ok := c.Offset(Point{0, 1})
	require.True(t, ok)
	assert.Equal(t, 8, off)

	p, ok := c.Point(9)
	require.True(t, ok)
	assert.Equal(t, Point{0, 2}, p)
}

func TestConverter_ByteNeverSplitsRune(t *testing.T) {
	c := NewConverter("é", UnitByte)
	off, ok := c.Offset(Point{0, 1})
	require.True(t, ok)
	assert.Equal(t, 0, off)
}

func TestConverter_RangeRoundTrip(t *testing.T) {
	text := "line one\nline two\nline three"
	c := NewConverter(text, UnitUTF16)

	r, ok := c.Range(Point{2, 4}, Point{0, 5})
	require.True(t, ok)
	assert.Equal(t, transform.NewRange(5, 22), r)

	start, end, ok := c.Points(r)
	require.True(t, ok)
	assert.Equal(t, Point{0, 5}, start)
	assert.Equal(t, Point{2, 4}, end)

	_, ok = c.Range(Point{9, 0}, Point{0, 0})
	assert.False(t, ok)
}

func TestPointCompare(t *testing.T) {
	assert.Equal(t, -1, Point{0, 5}.Compare(Point{1, 0}))
	assert.Equal(t, 1, Point{1, 1}.Compare(Point{1, 0}))
	assert.Equal(t, 0, Point{2, 2}.Compare(Point{2, 2}))
}
