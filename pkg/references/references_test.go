package references

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pipeline"
	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/registry"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

func TestDelimiters(t *testing.T) {
	tests := []struct {
		text          string
		before, after string
	}{
		{"Intro text [1] body [2] more [3] end", "[", "]"},
		{"a 1) ref one 2) ref two 9) unrelated 3) ref three", " ", ")"},
		{"(1) Smith (2) Jones (3) Brown", "(", ")"},
		{"Refs 1. Smith 2. Jones", " ", "."},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			before, after, ok := Delimiters(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.before, before)
			assert.Equal(t, tt.after, after)
		})
	}

	_, _, ok := Delimiters("no numbers here")
	assert.False(t, ok)
}

func TestSplitBracketed(t *testing.T) {
	text := "Intro text [1] body [2] more [3] end"

	withTrailing := DefaultConfig().Split(text)
	assert.Equal(t, []Entry{
		{Content: "body", Order: 1},
		{Content: "more", Order: 2},
		{Content: "end", Order: 3},
	}, withTrailing)

	cfg := DefaultConfig()
	cfg.CloseTrailing = false
	assert.Equal(t, []Entry{
		{Content: "body", Order: 1},
		{Content: "more", Order: 2},
	}, cfg.Split(text))
}

func TestSplitFoldsBrokenSequence(t *testing.T) {
	entries := DefaultConfig().Split("a 1) ref one 2) ref two 9) unrelated 3) ref three")

	assert.Equal(t, []Entry{
		{Content: "ref one", Order: 1},
		{Content: "ref two 9) unrelated", Order: 2},
		{Content: "ref three", Order: 3},
	}, entries)
}

func TestSplitWithoutNumbers(t *testing.T) {
	assert.Empty(t, DefaultConfig().Split("just prose without any citations"))
	assert.Empty(t, DefaultConfig().Split(""))
}

func TestSplitSingleDelimiter(t *testing.T) {
	assert.Equal(t, []Entry{{Content: "only one", Order: 4}}, DefaultConfig().Split("see [4] only one"))

	cfg := DefaultConfig()
	cfg.CloseTrailing = false
	assert.Empty(t, cfg.Split("see [4] only one"))
}

func TestLetterRatio(t *testing.T) {
	assert.InDelta(t, 0.2, LetterRatio("a1234"), 1e-9)
	assert.InDelta(t, 0.5, LetterRatio("ab12"), 1e-9)
	assert.InDelta(t, 0.05, LetterRatio("a"+strings.Repeat("1", 19)), 1e-9)
	assert.Equal(t, 0.0, LetterRatio(""))
	assert.Equal(t, 1.0, LetterRatio("Ünïcödé"))
}

func TestEligibleIsInclusive(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.Eligible(0.2))
	assert.True(t, cfg.Eligible(0.5))
	assert.True(t, cfg.Eligible(0.35))
	assert.False(t, cfg.Eligible(0.05))
	assert.False(t, cfg.Eligible(0.51))
}

// sectionRegistry feeds every show_text event in as one section
func sectionRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(Sections, nil, func(c *receiver.Context) error {
		return c.For(event.ShowText, func(ev event.Event) *spatial.Object {
			return spatial.NewObject().
				SetText("content", ev.Text).
				SetNum("letter_ratio", LetterRatio(ev.Text))
		})
	}))
	require.NoError(t, Register(reg, DefaultConfig()))
	return reg
}

func TestReferencesType(t *testing.T) {
	p, err := pipeline.New(sectionRegistry(t), pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	refs := "[1] Smith 2001 12 [2] Jones 1999 34 [3] Brown 2005 56"
	prose := "This section is ordinary prose [1] with a bracket [2] or two."
	table := "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 x"
	require.True(t, DefaultConfig().Eligible(LetterRatio(refs)))
	require.False(t, DefaultConfig().Eligible(LetterRatio(prose)))
	require.False(t, DefaultConfig().Eligible(LetterRatio(table)))

	res, err := p.Run(context.Background(), []string{Type}, event.Slice{
		{Name: event.ShowText, Text: prose},
		{Name: event.ShowText, Text: refs},
		{Name: event.ShowText, Text: table},
	})
	require.NoError(t, err)
	assert.True(t, res.Explicit(Type))
	assert.False(t, res.Explicit(Sections))

	objs, err := res.Objects(Type)
	require.NoError(t, err)
	require.Len(t, objs, 3)
	assert.Equal(t, "Smith 2001 12", objs[0].Text("content"))
	assert.Equal(t, 1.0, objs[0].Num("order"))
	assert.Equal(t, "Brown 2005 56", objs[2].Text("content"))
	assert.Equal(t, 3.0, objs[2].Num("order"))
	assert.Equal(t, []string{"content", "order"}, objs[0].Keys())
}
