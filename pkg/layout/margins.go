package layout

import (
	"sort"

	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// span is a closed range on one axis
type span struct {
	lo, hi float64
}

// axisMask marks covered ranges of one page axis
type axisMask struct {
	lo, hi  float64
	covered []span
}

func (m *axisMask) cover(lo, hi float64) {
	if hi < lo {
		lo, hi = hi, lo
	}
	m.covered = append(m.covered, span{lo, hi})
}

// gaps returns the uncovered ranges at least min long, in ascending order
func (m *axisMask) gaps(minLen float64) []span {
	covered := make([]span, len(m.covered))
	copy(covered, m.covered)
	sort.Slice(covered, func(i, j int) bool { return covered[i].lo < covered[j].lo })

	var out []span
	keep := func(lo, hi float64) {
		if hi > lo && hi-lo >= minLen {
			out = append(out, span{lo, hi})
		}
	}

	cur := m.lo
	for _, s := range covered {
		if cur >= m.hi {
			break
		}
		if s.hi <= cur {
			continue
		}
		if s.lo > cur {
			end := s.lo
			if end > m.hi {
				end = m.hi
			}
			keep(cur, end)
		}
		if s.hi > cur {
			cur = s.hi
		}
	}
	if cur < m.hi {
		keep(cur, m.hi)
	}
	return out
}

// pageMasks builds one mask per page over the chosen axis and covers it
// with the runs of that page
func pageMasks(deps receiver.Deps, vertical bool) ([]*spatial.Object, map[int]*axisMask, error) {
	pages, err := deps.Objects(Pages)
	if err != nil {
		return nil, nil, err
	}
	runs, err := deps.Objects(TextRuns)
	if err != nil {
		return nil, nil, err
	}

	masks := make(map[int]*axisMask, len(pages))
	for _, p := range pages {
		b := p.Bounds()
		if vertical {
			masks[int(p.Num("page"))] = &axisMask{lo: b.X, hi: b.Right()}
		} else {
			masks[int(p.Num("page"))] = &axisMask{lo: b.Y, hi: b.Top()}
		}
	}
	for _, r := range runs {
		m, ok := masks[int(r.Num("page"))]
		if !ok {
			continue
		}
		b := r.Bounds()
		if vertical {
			m.cover(b.X, b.Right())
		} else {
			m.cover(b.Y, b.Top())
		}
	}
	return pages, masks, nil
}

// buildVMargins finds the x ranges of each page that no text run crosses
func (cfg Config) buildVMargins(c *receiver.Context) error {
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		pages, masks, err := pageMasks(deps, true)
		if err != nil {
			return nil, err
		}

		var out []*spatial.Object
		for _, p := range pages {
			n := p.Num("page")
			pb := p.Bounds()
			for _, g := range masks[int(n)].gaps(cfg.MinMarginWidth) {
				out = append(out, spatial.NewObject().
					SetNum("page", n).
					SetBounds(spatial.BoundingBox{X: g.lo, Y: pb.Y, Width: g.hi - g.lo, Height: pb.Height}))
			}
		}
		return out, nil
	})
}

// buildHMargins finds the y ranges of each page that no text run crosses.
// Margins are emitted top-down.
func (cfg Config) buildHMargins(c *receiver.Context) error {
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		pages, masks, err := pageMasks(deps, false)
		if err != nil {
			return nil, err
		}

		var out []*spatial.Object
		for _, p := range pages {
			n := p.Num("page")
			pb := p.Bounds()
			gaps := masks[int(n)].gaps(cfg.MinMarginHeight)
			for i := len(gaps) - 1; i >= 0; i-- {
				g := gaps[i]
				out = append(out, spatial.NewObject().
					SetNum("page", n).
					SetBounds(spatial.BoundingBox{X: pb.X, Y: g.lo, Width: pb.Width, Height: g.hi - g.lo}))
			}
		}
		return out, nil
	})
}
