// Package layout declares the standard spatial types: pages, text runs,
// margins, rows, columns, regions and sections.
//
// Coordinates are PDF user space with the origin at the bottom-left of the
// page. Every object carries page, x, y, width and height.
package layout

import (
	"github.com/pyhub-apps/pdfextract-golang/pkg/registry"
)

// Spatial type names
const (
	Pages    = "pages"
	TextRuns = "text_runs"
	VMargins = "v_margins"
	HMargins = "h_margins"
	Rows     = "rows"
	Columns  = "columns"
	Regions  = "regions"
	Sections = "sections"
)

// Config holds the layout thresholds
type Config struct {
	// MinMarginWidth is the narrowest uncovered x range kept as a vertical margin
	MinMarginWidth float64
	// MinMarginHeight is the shortest uncovered y range kept as a horizontal margin
	MinMarginHeight float64
	// XTolerance is the horizontal gap above which runs are joined with a space
	XTolerance float64
	// YTolerance is the baseline difference within which runs share a line
	YTolerance float64
	// RegionGap is the horizontal gap, in multiples of the font size, that
	// splits a line into separate regions
	RegionGap float64
}

// DefaultConfig returns default layout thresholds
func DefaultConfig() Config {
	return Config{
		MinMarginWidth:  10,
		MinMarginHeight: 4,
		XTolerance:      3.0,
		YTolerance:      3.0,
		RegionGap:       1.5,
	}
}

// Register declares every standard type on reg in dependency order
func Register(reg *registry.Registry, cfg Config) error {
	decls := []struct {
		name    string
		deps    []string
		builder registry.Builder
	}{
		{Pages, nil, buildPages},
		{TextRuns, nil, buildTextRuns},
		{VMargins, []string{Pages, TextRuns}, cfg.buildVMargins},
		{HMargins, []string{Pages, TextRuns}, cfg.buildHMargins},
		{Rows, []string{HMargins}, buildRows},
		{Columns, []string{VMargins, Rows}, buildColumns},
		{Regions, []string{TextRuns}, cfg.buildRegions},
		{Sections, []string{Regions, Columns}, buildSections},
	}
	for _, d := range decls {
		if err := reg.Register(d.name, d.deps, d.builder); err != nil {
			return err
		}
	}
	return nil
}
