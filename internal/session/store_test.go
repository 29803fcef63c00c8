package session

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	}
}

func docs(ids ...string) []Document {
	out := make([]Document, len(ids))
	for i, id := range ids {
		out[i] = Document{ID: id, Content: "content " + id}
	}
	return out
}

func TestNewStore_Empty(t *testing.T) {
	s := NewStore(nil, "", WithIDGenerator(seqIDs()))

	require.Equal(t, 1, s.Count())
	active := s.Active()
	assert.Equal(t, "doc-1", active.ID)
	assert.Equal(t, "", active.Name)
	assert.Equal(t, DefaultTemplate, active.Content)
	assert.Equal(t, "doc-1", s.ActiveID())
}

func TestNewStore_ActiveFallback(t *testing.T) {
	s := NewStore(docs("a", "b"), "missing")
	assert.Equal(t, "a", s.ActiveID())

	s = NewStore(docs("a", "b"), "b")
	assert.Equal(t, "b", s.ActiveID())
}

func TestNewStore_CopiesInput(t *testing.T) {
	in := docs("a")
	s := NewStore(in, "a")
	in[0].Content = "mutated"

	doc, ok := s.Get("a")
	require.True(t, ok)
	assert.Equal(t, "content a", doc.Content)
}

func TestStore_Create(t *testing.T) {
	s := NewStore(docs("a"), "a", WithIDGenerator(seqIDs()), WithTemplate("tmpl"))

	doc := s.Create()
	assert.Equal(t, "doc-1", doc.ID)
	assert.Equal(t, "tmpl", doc.Content)
	assert.Equal(t, "", doc.Name)
	assert.Equal(t, doc.ID, s.ActiveID())
	assert.Equal(t, 1, s.Index(doc.ID))
}

func TestStore_CloseLastDocumentIsNoop(t *testing.T) {
	s := NewStore(docs("only"), "only")

	assert.ErrorIs(t, s.CanClose("only"), ErrLastDocument)
	assert.False(t, s.Close("only"))
	assert.Equal(t, 1, s.Count())
	assert.Equal(t, "only", s.ActiveID())
}

func TestStore_CloseNeighbor(t *testing.T) {
	tests := []struct {
		name       string
		active     string
		close      string
		wantActive string
		wantOrder  []string
	}{
		{"active middle picks previous", "b", "b", "a", []string{"a", "c"}},
		{"active first picks new first", "a", "a", "b", []string{"b", "c"}},
		{"active last picks previous", "c", "c", "b", []string{"a", "b"}},
		{"inactive keeps active", "c", "a", "c", []string{"b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(docs("a", "b", "c"), tt.active)
			require.NoError(t, s.CanClose(tt.close))
			require.True(t, s.Close(tt.close))

			assert.Equal(t, tt.wantActive, s.ActiveID())
			var order []string
			for _, d := range s.All() {
				order = append(order, d.ID)
			}
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}

func TestStore_CloseUnknown(t *testing.T) {
	s := NewStore(docs("a", "b"), "a")
	assert.ErrorIs(t, s.CanClose("zzz"), ErrDocumentNotFound)
	assert.False(t, s.Close("zzz"))
	assert.Equal(t, 2, s.Count())
}

func TestStore_SetActive(t *testing.T) {
	s := NewStore(docs("a", "b"), "a")
	assert.True(t, s.SetActive("b"))
	assert.Equal(t, "b", s.ActiveID())
	assert.False(t, s.SetActive("nope"))
	assert.Equal(t, "b", s.ActiveID())
}

func TestStore_Updates(t *testing.T) {
	s := NewStore(docs("a"), "a")

	assert.True(t, s.UpdateContent("a", "new"))
	assert.True(t, s.UpdateName("a", "   "))
	assert.False(t, s.UpdateContent("x", "ignored"))
	assert.False(t, s.UpdateName("x", "ignored"))

	doc := s.Active()
	assert.Equal(t, "new", doc.Content)
	assert.Equal(t, "   ", doc.Name)
}

func TestStore_NextPrevious(t *testing.T) {
	s := NewStore(docs("a", "b", "c"), "c")
	assert.Equal(t, "a", s.Next().ID)
	assert.Equal(t, "b", s.Next().ID)
	assert.Equal(t, "a", s.Previous().ID)
	assert.Equal(t, "c", s.Previous().ID)
}

func TestStore_Listeners(t *testing.T) {
	s := NewStore(docs("a", "b"), "b", WithIDGenerator(seqIDs()))

	var got []Change
	s.OnChange(func(c Change) { got = append(got, c) })

	s.UpdateContent("a", "x")
	s.UpdateName("a", "n")
	s.SetActive("b") // already active
	s.SetActive("a")
	s.Close("a")
	doc := s.Create()

	assert.Equal(t, []Change{
		{Kind: ChangeContent, ID: "a"},
		{Kind: ChangeName, ID: "a"},
		{Kind: ChangeActive, ID: "a"},
		{Kind: ChangeStructure, ID: "a"},
		{Kind: ChangeActive, ID: "b"},
		{Kind: ChangeStructure, ID: doc.ID},
		{Kind: ChangeActive, ID: doc.ID},
	}, got)
}

func TestStore_InvariantsUnderRandomOps(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewStore(nil, "", WithIDGenerator(seqIDs()))
	seen := map[string]bool{}

	for i := 0; i < 2000; i++ {
		all := s.All()
		pick := all[rng.Intn(len(all))].ID
		switch rng.Intn(4) {
		case 0:
			doc := s.Create()
			require.False(t, seen[doc.ID], "id reused")
			seen[doc.ID] = true
		case 1, 2:
			s.Close(pick)
		case 3:
			s.SetActive(pick)
		}

		require.GreaterOrEqual(t, s.Count(), 1)
		_, ok := s.Get(s.ActiveID())
		require.True(t, ok, "active id must resolve")
	}
}

func TestDocument_DisplayName(t *testing.T) {
	assert.Equal(t, UnnamedTitle, Document{Name: "  \t"}.DisplayName())
	assert.True(t, Document{}.IsUnnamed())
	assert.Equal(t, "notes", Document{Name: " notes "}.DisplayName())
}

func TestNewDocument_UniqueIDs(t *testing.T) {
	a := NewDocument("", "")
	b := NewDocument("", "")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "content", ChangeContent.String())
	assert.Equal(t, "structure", ChangeStructure.String())
	assert.Equal(t, "unknown", ChangeKind(9).String())
}
