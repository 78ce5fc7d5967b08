package render

import (
	"bufio"
	"io"
)

// TextRenderer writes the content attribute of every object, one per line.
// Types without content are skipped; types are separated by a blank line.
type TextRenderer struct {
	all bool
}

// Render writes res as plain text
func (r *TextRenderer) Render(w io.Writer, res Result) error {
	types, err := selected(res, r.all)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	written := false
	for _, t := range types {
		first := true
		for _, o := range t.objects {
			if !o.Has(contentKey) {
				continue
			}
			if first && written {
				bw.WriteString("\n")
			}
			first = false
			written = true
			bw.WriteString(o.Text(contentKey))
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}
