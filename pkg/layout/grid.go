package layout

import (
	"sort"

	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// buildRows emits the bands between consecutive horizontal margins of each
// page, top-down
func buildRows(c *receiver.Context) error {
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		margins, err := deps.Objects(HMargins)
		if err != nil {
			return nil, err
		}

		var out []*spatial.Object
		pages, groups := byPage(margins)
		for _, p := range pages {
			ms := groups[p]
			sort.SliceStable(ms, func(i, j int) bool { return ms[i].Num("y") > ms[j].Num("y") })

			for i := 0; i+1 < len(ms); i++ {
				upper, lower := ms[i].Bounds(), ms[i+1].Bounds()
				height := upper.Y - lower.Top()
				if height <= 0 {
					continue
				}
				out = append(out, spatial.NewObject().
					SetNum("page", float64(p)).
					SetBounds(spatial.BoundingBox{X: upper.X, Y: lower.Top(), Width: upper.Width, Height: height}))
			}
		}
		return out, nil
	})
}

// buildColumns splits every row at the vertical margins of its page
func buildColumns(c *receiver.Context) error {
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		rows, err := deps.Objects(Rows)
		if err != nil {
			return nil, err
		}
		margins, err := deps.Objects(VMargins)
		if err != nil {
			return nil, err
		}
		_, marginsByPage := byPage(margins)

		var out []*spatial.Object
		for _, row := range rows {
			p := row.Num("page")
			rb := row.Bounds()

			mask := &axisMask{lo: rb.X, hi: rb.Right()}
			for _, m := range marginsByPage[int(p)] {
				mb := m.Bounds()
				mask.cover(mb.X, mb.Right())
			}
			for _, g := range mask.gaps(0) {
				out = append(out, spatial.NewObject().
					SetNum("page", p).
					SetBounds(spatial.BoundingBox{X: g.lo, Y: rb.Y, Width: g.hi - g.lo, Height: rb.Height}))
			}
		}
		return out, nil
	})
}
