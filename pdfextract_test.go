package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyhub-apps/pdfextract-golang/pkg/layout"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/references"
	"github.com/pyhub-apps/pdfextract-golang/pkg/render"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const referenceLine = "[1] Smith 2001 12 [2] Jones 1999 34 [3] Brown 2005 56"

// writeReferencePDF writes a one-page PDF holding a single line of
// numbered references
func writeReferencePDF(t *testing.T) string {
	t.Helper()
	page := "BT\n/F1 10 Tf\n72 700 Td\n(" + referenceLine + ") Tj\nET"
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(page), page),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	path := filepath.Join(t.TempDir(), "refs.pdf")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
	return path
}

func TestParseReferences(t *testing.T) {
	ex, err := New(WithLogger(quiet))
	require.NoError(t, err)

	res, err := ex.Parse(context.Background(), writeReferencePDF(t), References)
	require.NoError(t, err)

	assert.True(t, res.Explicit(References))
	assert.False(t, res.Explicit(Sections))
	assert.Equal(t, References, res.Order[len(res.Order)-1])

	runs, err := res.Objects(TextRuns)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, referenceLine, runs[0].Text("content"))

	refs, err := res.Objects(References)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, "Smith 2001 12", refs[0].Text("content"))
	assert.Equal(t, "Jones 1999 34", refs[1].Text("content"))
	assert.Equal(t, "Brown 2005 56", refs[2].Text("content"))
}

func TestParseEachBackend(t *testing.T) {
	path := writeReferencePDF(t)
	for _, b := range pdf.Backends() {
		t.Run(string(b), func(t *testing.T) {
			ex, err := New(WithBackend(b), WithLogger(quiet))
			require.NoError(t, err)

			res, err := ex.Parse(context.Background(), path, TextRuns)
			require.NoError(t, err)
			runs, err := res.Objects(TextRuns)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.InDelta(t, 72, runs[0].Num("x"), 1e-9)
			assert.InDelta(t, 700, runs[0].Num("y"), 1e-9)
		})
	}
}

func TestParseAlterAndConvert(t *testing.T) {
	ex, err := New(WithLogger(quiet))
	require.NoError(t, err)
	path := writeReferencePDF(t)

	res, err := ex.Parse(context.Background(), path, TextRuns)
	require.NoError(t, err)
	require.NoError(t, res.Alter(TextRuns, spatial.NewSchema().
		Attr("height", spatial.GrowByPercent(1)).
		Attr("y", spatial.ShrinkBy(5))))

	runs, err := res.Objects(TextRuns)
	require.NoError(t, err)
	assert.InDelta(t, 20, runs[0].Num("height"), 1e-9)
	assert.InDelta(t, 695, runs[0].Num("y"), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, ex.Convert(context.Background(), path, &buf, render.FormatXML, References))
	out := buf.String()
	assert.Contains(t, out, "<references>")
	assert.Contains(t, out, `<reference order="1">Smith 2001 12</reference>`)
	assert.NotContains(t, out, "<sections>")

	assert.Error(t, ex.Convert(context.Background(), path, &buf, "docx", References))
}

func TestParseErrors(t *testing.T) {
	ex, err := New(WithLogger(quiet))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = ex.Parse(ctx, writeReferencePDF(t), "figures")
	assert.ErrorIs(t, err, spatial.ErrUnknownType)

	garbage := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf"), 0644))
	_, err = ex.Parse(ctx, garbage, TextRuns)
	require.Error(t, err)
	for _, b := range pdf.Backends() {
		assert.Contains(t, err.Error(), string(b))
	}
}

func TestCustomRegistry(t *testing.T) {
	reg, err := NewRegistry(layout.DefaultConfig(), references.DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, reg.Register("page_count", []string{Pages}, func(c *receiver.Context) error {
		return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
			pages, err := deps.Objects(Pages)
			if err != nil {
				return nil, err
			}
			return []*spatial.Object{spatial.NewObject().SetNum("count", float64(len(pages)))}, nil
		})
	}))

	ex, err := New(WithRegistry(reg), WithLogger(quiet))
	require.NoError(t, err)
	assert.Contains(t, ex.Types(), "page_count")

	res, err := ex.Parse(context.Background(), writeReferencePDF(t), "page_count")
	require.NoError(t, err)
	objs, err := res.Objects("page_count")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, 1.0, objs[0].Num("count"))
}

func TestExtractorBackends(t *testing.T) {
	ex, err := New(WithLogger(quiet))
	require.NoError(t, err)
	assert.Equal(t, pdf.Backends(), ex.Backends())

	ex, err = New(WithBackend(pdf.PDFCPU), WithLogger(quiet))
	require.NoError(t, err)
	backends := ex.Backends()
	assert.Equal(t, []pdf.Backend{pdf.PDFCPU}, backends)
	backends[0] = pdf.Dslipak
	assert.Equal(t, []pdf.Backend{pdf.PDFCPU}, ex.Backends())
}
