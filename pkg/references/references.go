package references

import (
	"github.com/pyhub-apps/pdfextract-golang/pkg/receiver"
	"github.com/pyhub-apps/pdfextract-golang/pkg/registry"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

const (
	// Type is the spatial type name of citation entries
	Type = "references"
	// Sections is the type whose content is segmented
	Sections = "sections"
)

// Register declares the references type on reg. Each eligible section's
// content is split into entries carrying content and order.
func Register(reg *registry.Registry, cfg Config) error {
	return reg.Register(Type, []string{Sections}, func(c *receiver.Context) error {
		return c.After(func(deps receiver.Deps) ([]*spatial.Object, error) {
			sections, err := deps.Objects(Sections)
			if err != nil {
				return nil, err
			}

			var refs []*spatial.Object
			for _, section := range sections {
				content := section.Text("content")
				ratio := LetterRatio(content)
				if v, ok := section.Get("letter_ratio"); ok && v.IsNumber() {
					ratio = v.Float()
				}
				if !cfg.Eligible(ratio) {
					continue
				}
				for _, e := range cfg.Split(content) {
					refs = append(refs, e.Object())
				}
			}
			return refs, nil
		})
	})
}

// Object converts an entry to a spatial object
func (e Entry) Object() *spatial.Object {
	return spatial.NewObject().
		SetText("content", e.Content).
		SetNum("order", float64(e.Order))
}
