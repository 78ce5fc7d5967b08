package render

import (
	"encoding/xml"
	"fmt"
	"io"
)

// XMLRenderer writes a <pdf> document with one container element per type
// and one child element per object
type XMLRenderer struct {
	all bool
}

// Render writes res as XML
func (r *XMLRenderer) Render(w io.Writer, res Result) error {
	types, err := selected(res, r.all)
	if err != nil {
		return err
	}

	if err := checkNames(types); err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "pdf"}}
	if err := enc.EncodeToken(root); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}

	for _, t := range types {
		container := xml.StartElement{Name: xml.Name{Local: TagName(t.name)}}
		if err := enc.EncodeToken(container); err != nil {
			return fmt.Errorf("failed to encode xml: %w", err)
		}

		item := ItemName(t.name)
		for _, o := range t.objects {
			el := xml.StartElement{Name: xml.Name{Local: item}}
			for _, key := range o.Keys() {
				if key == contentKey {
					continue
				}
				el.Attr = append(el.Attr, xml.Attr{
					Name:  xml.Name{Local: TagName(key)},
					Value: o.Text(key),
				})
			}

			if err := enc.EncodeToken(el); err != nil {
				return fmt.Errorf("failed to encode xml: %w", err)
			}
			if o.Has(contentKey) {
				if err := enc.EncodeToken(xml.CharData(o.Text(contentKey))); err != nil {
					return fmt.Errorf("failed to encode xml: %w", err)
				}
			}
			if err := enc.EncodeToken(el.End()); err != nil {
				return fmt.Errorf("failed to encode xml: %w", err)
			}
		}

		if err := enc.EncodeToken(container.End()); err != nil {
			return fmt.Errorf("failed to encode xml: %w", err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("failed to encode xml: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
