package layout

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/pyhub-apps/pdfextract-golang/pkg/event"
	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

var textShowEvents = []string{
	event.ShowText,
	event.ShowTextWithPositioning,
	event.MoveToNextLineShowText,
	event.SetSpacingNextLineShow,
}

func buildPages(c *receiver.Context) error {
	return c.For(event.BeginPage, func(ev event.Event) *spatial.Object {
		return spatial.NewObject().
			SetNum("page", float64(ev.Page)).
			SetBounds(spatial.BoundingBox{Width: ev.PageWidth, Height: ev.PageHeight})
	})
}

func buildTextRuns(c *receiver.Context) error {
	for _, name := range textShowEvents {
		if err := c.For(name, textRun); err != nil {
			return err
		}
	}
	return nil
}

// textRun builds a run from a text-show event. Runs are one font size
// tall, standing on the baseline. Blank runs are skipped.
func textRun(ev event.Event) *spatial.Object {
	if strings.TrimSpace(ev.Text) == "" {
		return nil
	}
	return spatial.NewObject().
		SetNum("page", float64(ev.Page)).
		SetBounds(spatial.BoundingBox{X: ev.X, Y: ev.Y, Width: ev.Width, Height: ev.FontSize}).
		SetText("content", norm.NFC.String(ev.Text)).
		SetText("font", ev.Font).
		SetNum("font_size", ev.FontSize)
}

// byPage groups objects by their page attribute, keeping order
func byPage(objs []*spatial.Object) (pages []int, groups map[int][]*spatial.Object) {
	groups = make(map[int][]*spatial.Object)
	for _, o := range objs {
		p := int(o.Num("page"))
		if _, ok := groups[p]; !ok {
			pages = append(pages, p)
		}
		groups[p] = append(groups[p], o)
	}
	return pages, groups
}
