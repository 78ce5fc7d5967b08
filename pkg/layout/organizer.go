package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/references"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

// organizer groups text runs into lines and lines into regions
type organizer struct {
	xTolerance float64
	yTolerance float64
	regionGap  float64
}

func (cfg Config) organizer() organizer {
	return organizer{
		xTolerance: cfg.XTolerance,
		yTolerance: cfg.YTolerance,
		regionGap:  cfg.RegionGap,
	}
}

// sortRuns orders runs by page, then top to bottom, then left to right.
// Runs within yTolerance of each other are joined later by groupIntoLines.
func (o organizer) sortRuns(runs []*spatial.Object) []*spatial.Object {
	sorted := make([]*spatial.Object, len(runs))
	copy(sorted, runs)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].Num("page"), sorted[j].Num("page")
		if pi != pj {
			return pi < pj
		}
		yi, yj := sorted[i].Num("y"), sorted[j].Num("y")
		if yi != yj {
			return yi > yj // PDF coordinates: Y increases upward
		}
		return sorted[i].Num("x") < sorted[j].Num("x")
	})
	return sorted
}

// groupIntoLines groups sorted runs sharing a page and baseline
func (o organizer) groupIntoLines(runs []*spatial.Object) [][]*spatial.Object {
	if len(runs) == 0 {
		return nil
	}

	var lines [][]*spatial.Object
	var current []*spatial.Object
	currentPage, currentY := runs[0].Num("page"), runs[0].Num("y")

	for _, run := range runs {
		if run.Num("page") != currentPage || math.Abs(run.Num("y")-currentY) > o.yTolerance {
			if len(current) > 0 {
				lines = append(lines, current)
			}
			current = []*spatial.Object{run}
			currentPage, currentY = run.Num("page"), run.Num("y")
		} else {
			current = append(current, run)
		}
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}
	return lines
}

// splitLine breaks a line wherever the gap between neighbouring runs
// exceeds regionGap font sizes
func (o organizer) splitLine(line []*spatial.Object) [][]*spatial.Object {
	sort.SliceStable(line, func(i, j int) bool { return line[i].Num("x") < line[j].Num("x") })

	var regions [][]*spatial.Object
	start := 0
	for i := 1; i < len(line); i++ {
		prev := line[i-1].Bounds()
		size := math.Max(line[i].Num("font_size"), 1)
		if line[i].Num("x")-prev.Right() > o.regionGap*size {
			regions = append(regions, line[start:i])
			start = i
		}
	}
	return append(regions, line[start:])
}

// regionObject joins the runs of one region, adding a space where runs are
// further apart than xTolerance
func (o organizer) regionObject(runs []*spatial.Object) *spatial.Object {
	var text strings.Builder
	boxes := make([]spatial.BoundingBox, 0, len(runs))
	fontSize := 0.0

	for i, run := range runs {
		content := run.Text("content")
		if i > 0 {
			gap := run.Num("x") - boxes[i-1].Right()
			if gap > o.xTolerance {
				text.WriteString(" ")
			}
		}
		text.WriteString(content)
		boxes = append(boxes, run.Bounds())
		fontSize = math.Max(fontSize, run.Num("font_size"))
	}

	return spatial.NewObject().
		SetNum("page", runs[0].Num("page")).
		SetBounds(union(boxes)).
		SetText("content", strings.Join(strings.Fields(text.String()), " ")).
		SetNum("font_size", fontSize)
}

func (cfg Config) buildRegions(c *receiver.Context) error {
	o := cfg.organizer()
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		runs, err := deps.Objects(TextRuns)
		if err != nil {
			return nil, err
		}

		var out []*spatial.Object
		for _, line := range o.groupIntoLines(o.sortRuns(runs)) {
			for _, region := range o.splitLine(line) {
				out = append(out, o.regionObject(region))
			}
		}
		return out, nil
	})
}

// buildSections joins, per column, the regions whose center falls inside
// it. The content is the region text in reading order.
func buildSections(c *receiver.Context) error {
	return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
		regions, err := deps.Objects(Regions)
		if err != nil {
			return nil, err
		}
		columns, err := deps.Objects(Columns)
		if err != nil {
			return nil, err
		}
		_, regionsByPage := byPage(regions)

		var out []*spatial.Object
		for _, col := range columns {
			p := col.Num("page")
			cb := col.Bounds()

			var parts []string
			var boxes []spatial.BoundingBox
			for _, r := range regionsByPage[int(p)] {
				rb := r.Bounds()
				if !cb.Contains(rb.CenterX(), rb.CenterY()) {
					continue
				}
				parts = append(parts, r.Text("content"))
				boxes = append(boxes, rb)
			}
			if len(parts) == 0 {
				continue
			}

			content := strings.Join(parts, " ")
			out = append(out, spatial.NewObject().
				SetNum("page", p).
				SetBounds(union(boxes)).
				SetText("content", content).
				SetNum("letter_ratio", references.LetterRatio(content)))
		}
		return out, nil
	})
}

func union(boxes []spatial.BoundingBox) spatial.BoundingBox {
	if len(boxes) == 0 {
		return spatial.BoundingBox{}
	}
	minX, minY := boxes[0].X, boxes[0].Y
	maxX, maxY := boxes[0].Right(), boxes[0].Top()
	for _, b := range boxes[1:] {
		minX = math.Min(minX, b.X)
		minY = math.Min(minY, b.Y)
		maxX = math.Max(maxX, b.Right())
		maxY = math.Max(maxY, b.Top())
	}
	return spatial.BoundingBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
