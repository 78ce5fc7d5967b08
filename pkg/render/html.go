package render

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLRenderer writes a standalone HTML page: one <section> per type and
// one <div> per object, with attributes as data-* attributes
type HTMLRenderer struct {
	all bool
}

// Render writes res as HTML
func (r *HTMLRenderer) Render(w io.Writer, res Result) error {
	types, err := selected(res, r.all)
	if err != nil {
		return err
	}

	if err := checkNames(types); err != nil {
		return err
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html)
	doc.AppendChild(root)

	head := element(atom.Head)
	root.AppendChild(head)
	head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: "utf-8"}))
	title := element(atom.Title)
	title.AppendChild(text("pdfextract"))
	head.AppendChild(title)

	body := element(atom.Body)
	root.AppendChild(body)

	for _, t := range types {
		section := element(atom.Section, html.Attribute{Key: "class", Val: TagName(t.name)})
		heading := element(atom.H2)
		heading.AppendChild(text(t.name))
		section.AppendChild(heading)

		item := ItemName(t.name)
		for _, o := range t.objects {
			attrs := []html.Attribute{{Key: "class", Val: item}}
			for _, key := range o.Keys() {
				if key == contentKey {
					continue
				}
				attrs = append(attrs, html.Attribute{Key: "data-" + TagName(key), Val: o.Text(key)})
			}
			div := element(atom.Div, attrs...)
			if o.Has(contentKey) {
				div.AppendChild(text(o.Text(contentKey)))
			}
			section.AppendChild(div)
		}
		body.AppendChild(section)
	}

	if err := html.Render(w, doc); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: a,
		Data:     a.String(),
		Attr:     attrs,
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
