package pdf

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pyhub-apps/pdfextract-golang/pkg/content"
)

// maxTreeDepth bounds the walk up the page tree for inherited attributes
const maxTreeDepth = 32

// value is the object model of the ledongthuc and dslipak readers, which
// share their API but not their types
type value[V any] interface {
	Key(key string) V
	Index(i int) V
	Len() int
	Keys() []string
	IsNull() bool
	Float64() float64
	Reader() io.ReadCloser
}

// inherited looks key up on the page, then on its ancestors
func inherited[V value[V]](page V, key string) V {
	node := page
	for depth := 0; depth < maxTreeDepth && !node.IsNull(); depth++ {
		if v := node.Key(key); !v.IsNull() {
			return v
		}
		node = node.Key("Parent")
	}
	return page.Key(key)
}

// objectPage reads the size, content streams and ToUnicode maps of a page
// object
func objectPage[V value[V]](number int, page V, logger *slog.Logger) content.Page {
	p := content.Page{Number: number, Width: 612, Height: 792}

	// MediaBox is [x0 y0 x1 y1]
	if box := inherited(page, "MediaBox"); box.Len() == 4 {
		p.Width = box.Index(2).Float64() - box.Index(0).Float64()
		p.Height = box.Index(3).Float64() - box.Index(1).Float64()
	}

	contents := page.Key("Contents")
	streams := []V{contents}
	if n := contents.Len(); n > 0 {
		streams = streams[:0]
		for i := 0; i < n; i++ {
			streams = append(streams, contents.Index(i))
		}
	}
	for _, s := range streams {
		if s.IsNull() {
			continue
		}
		data, err := readStream(s)
		if err != nil {
			logger.Debug("skipping unreadable content stream", "page", number, "error", err)
			continue
		}
		p.Contents = append(p.Contents, data)
	}

	fonts := inherited(page, "Resources").Key("Font")
	maps := make(map[string][]byte)
	for _, name := range fonts.Keys() {
		tu := fonts.Key(name).Key("ToUnicode")
		if tu.IsNull() {
			continue
		}
		data, err := readStream(tu)
		if err != nil {
			logger.Debug("skipping unreadable ToUnicode map", "page", number, "font", name, "error", err)
			continue
		}
		maps[name] = data
	}
	p.Fonts = parseFonts(maps, logger)

	return p
}

func readStream[V value[V]](v V) ([]byte, error) {
	rc := v.Reader()
	defer rc.Close()
	return io.ReadAll(rc)
}

// recoverMalformed turns a reader panic into an error. Both object readers
// panic on malformed input rather than returning errors.
func recoverMalformed(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("malformed PDF: %v", r)
	}
}
