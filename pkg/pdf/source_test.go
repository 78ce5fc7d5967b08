package pdf

import (
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

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// buildPDF assembles a PDF from object bodies, numbered from 1, with
// correct xref offsets. Object 1 must be the catalog.
func buildPDF(objects ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, body := range objects {
		offsets[i+1] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return []byte(b.String())
}

func stream(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(data), data)
}

func writeSamplePDF(t *testing.T) string {
	t.Helper()
	page := "BT\n/F1 12 Tf\n72 720 Td\n(Hello World) Tj\nET\nBT\n/F2 10 Tf\n72 700 Td\n<00010002> Tj\nET"
	cmap := "1 begincodespacerange <0000> <FFFF> endcodespacerange\n" +
		"2 beginbfchar <0001> <03A9> <0002> <00E9> endbfchar"

	raw := buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 /MediaBox [0 0 612 792] >>",
		"<< /Type /Page /Parent 2 0 R /Contents 4 0 R /Resources << /Font << /F1 5 0 R /F2 6 0 R >> >> >>",
		stream(page),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /ToUnicode 7 0 R >>",
		stream(cmap),
	)

	path := filepath.Join(t.TempDir(), "sample.pdf")
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBackend, b)

	b, err = ParseBackend("PDFCPU")
	require.NoError(t, err)
	assert.Equal(t, PDFCPU, b)

	_, err = ParseBackend("poppler")
	assert.Error(t, err)
}

func TestFileSourceBackends(t *testing.T) {
	path := writeSamplePDF(t)

	for _, backend := range Backends() {
		t.Run(string(backend), func(t *testing.T) {
			src := Open(path, WithBackend(backend), WithLogger(quiet))
			assert.Equal(t, path, src.Path())
			assert.Equal(t, backend, src.Backend())

			var events []event.Event
			require.NoError(t, src.ForEach(context.Background(), func(ev event.Event) error {
				events = append(events, ev)
				return nil
			}))
			require.NotEmpty(t, events)

			first, last := events[0], events[len(events)-1]
			assert.Equal(t, event.BeginPage, first.Name)
			assert.Equal(t, 1, first.Page)
			assert.InDelta(t, 612, first.PageWidth, 1e-9)
			assert.InDelta(t, 792, first.PageHeight, 1e-9)
			assert.Equal(t, event.EndPage, last.Name)

			var shown []event.Event
			for _, ev := range events {
				if event.IsTextShow(ev.Name) {
					shown = append(shown, ev)
				}
			}
			require.Len(t, shown, 2)

			assert.Equal(t, "Hello World", shown[0].Text)
			assert.InDelta(t, 72, shown[0].X, 1e-9)
			assert.InDelta(t, 720, shown[0].Y, 1e-9)
			assert.InDelta(t, 12, shown[0].FontSize, 1e-9)

			assert.Equal(t, "Ωé", shown[1].Text)
			assert.Equal(t, "F2", shown[1].Font)
		})
	}
}

func TestFileSourceErrors(t *testing.T) {
	ctx := context.Background()
	noop := func(event.Event) error { return nil }

	err := Open(filepath.Join(t.TempDir(), "missing.pdf")).ForEach(ctx, noop)
	assert.ErrorContains(t, err, "failed to open file")

	err = Open(writeSamplePDF(t), WithBackend("poppler")).ForEach(ctx, noop)
	assert.ErrorContains(t, err, "unknown PDF backend")

	garbage := filepath.Join(t.TempDir(), "garbage.pdf")
	require.NoError(t, os.WriteFile(garbage, []byte("not a pdf"), 0644))
	for _, backend := range Backends() {
		err := Open(garbage, WithBackend(backend), WithLogger(quiet)).ForEach(ctx, noop)
		assert.Error(t, err, backend)
	}
}

func TestFileSourceStopsOnCallbackError(t *testing.T) {
	path := writeSamplePDF(t)
	stop := fmt.Errorf("stop")

	calls := 0
	err := Open(path, WithLogger(quiet)).ForEach(context.Background(), func(event.Event) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}
