package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

type fakeResult struct {
	order    []string
	explicit map[string]bool
	objects  map[string][]*spatial.Object
}

func (f *fakeResult) Types() []string           { return f.order }
func (f *fakeResult) Explicit(name string) bool { return f.explicit[name] }

func (f *fakeResult) Objects(name string) ([]*spatial.Object, error) {
	objs, ok := f.objects[name]
	if !ok {
		return nil, fmt.Errorf("no objects for %s", name)
	}
	return objs, nil
}

func sampleResult() *fakeResult {
	return &fakeResult{
		order:    []string{"pages", "text_runs"},
		explicit: map[string]bool{"text_runs": true},
		objects: map[string][]*spatial.Object{
			"pages": {spatial.NewObject().SetNum("page", 1)},
			"text_runs": {
				spatial.NewObject().SetNum("x", 72).SetNum("y", 700).SetNum("font_size", 12).SetText("content", "Hello & <world>"),
				spatial.NewObject().SetNum("x", 72).SetNum("y", 686).SetText("content", "Second"),
			},
		},
	}
}

func render(t *testing.T, format Format, res Result, opts ...Option) string {
	t.Helper()
	r, err := New(format, opts...)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, res))
	return buf.String()
}

func TestTagNames(t *testing.T) {
	tests := []struct {
		typeName  string
		container string
		item      string
	}{
		{"text_runs", "text-runs", "text-run"},
		{"references", "references", "reference"},
		{"v_margins", "v-margins", "v-margin"},
		{"entries", "entries", "entry"},
		{"address", "address", "address"},
		{"data", "data", "data-item"},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			assert.Equal(t, tt.container, TagName(tt.typeName))
			assert.Equal(t, tt.item, ItemName(tt.typeName))
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("pdf")
	assert.ErrorContains(t, err, "unknown output format")

	r, err := New("XML")
	require.NoError(t, err)
	assert.IsType(t, &XMLRenderer{}, r)
}

func TestXMLRenderer(t *testing.T) {
	expected := `<?xml version="1.0" encoding="UTF-8"?>
<pdf>
  <text-runs>
    <text-run x="72" y="700" font-size="12">Hello &amp; &lt;world&gt;</text-run>
    <text-run x="72" y="686">Second</text-run>
  </text-runs>
</pdf>
`
	assert.Equal(t, expected, render(t, FormatXML, sampleResult()))
}

func TestXMLRendererAll(t *testing.T) {
	out := render(t, FormatXML, sampleResult(), WithAll(true))
	assert.Contains(t, out, `<pages>`)
	assert.Contains(t, out, `<page page="1"></page>`)
	assert.Less(t, strings.Index(out, "<pages>"), strings.Index(out, "<text-runs>"))
}

func TestXMLRendererEmpty(t *testing.T) {
	res := &fakeResult{
		order:    []string{"references"},
		explicit: map[string]bool{"references": true},
		objects:  map[string][]*spatial.Object{"references": nil},
	}
	out := render(t, FormatXML, res)
	assert.Contains(t, out, "<references></references>")
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	if n.Type == html.ElementNode && n.Data == tag {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, tag)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestHTMLRenderer(t *testing.T) {
	out := render(t, FormatHTML, sampleResult())
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	sections := findAll(doc, "section")
	require.Len(t, sections, 1)
	assert.Equal(t, "text-runs", attr(sections[0], "class"))

	divs := findAll(sections[0], "div")
	require.Len(t, divs, 2)
	assert.Equal(t, "text-run", attr(divs[0], "class"))
	assert.Equal(t, "72", attr(divs[0], "data-x"))
	assert.Equal(t, "12", attr(divs[0], "data-font-size"))
	require.NotNil(t, divs[0].FirstChild)
	assert.Equal(t, "Hello & <world>", divs[0].FirstChild.Data)
}

func TestTextRenderer(t *testing.T) {
	assert.Equal(t, "Hello & <world>\nSecond\n", render(t, FormatText, sampleResult()))

	res := sampleResult()
	res.order = append(res.order, "sections")
	res.explicit["sections"] = true
	res.objects["sections"] = []*spatial.Object{spatial.NewObject().SetText("content", "Body")}
	assert.Equal(t, "Hello & <world>\nSecond\n\nBody\n", render(t, FormatText, res, WithAll(true)))
}

func TestJSONRenderer(t *testing.T) {
	out := render(t, FormatJSON, sampleResult(), WithAll(true))

	var decoded []TypeOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "pages", decoded[0].Type)
	assert.False(t, decoded[0].Explicit)
	assert.Equal(t, "text_runs", decoded[1].Type)
	assert.True(t, decoded[1].Explicit)
	assert.Equal(t, 72.0, decoded[1].Objects[0]["x"])
	assert.Equal(t, "Hello & <world>", decoded[1].Objects[0]["content"])
}

func TestYAMLRenderer(t *testing.T) {
	out := render(t, FormatYAML, sampleResult())

	var decoded []TypeOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "text_runs", decoded[0].Type)
	require.Len(t, decoded[0].Objects, 2)
	assert.Equal(t, "Second", decoded[0].Objects[1]["content"])
}

func TestRenderObjectsError(t *testing.T) {
	res := &fakeResult{order: []string{"missing"}, explicit: map[string]bool{"missing": true}}
	for _, format := range Formats() {
		r, err := New(format)
		require.NoError(t, err)
		assert.Error(t, r.Render(&bytes.Buffer{}, res), format)
	}
}

func TestMarkupRejectsInvalidNames(t *testing.T) {
	tests := []struct {
		name string
		res  *fakeResult
	}{
		{"type starting with a digit", &fakeResult{
			order:    []string{"2col"},
			explicit: map[string]bool{"2col": true},
			objects:  map[string][]*spatial.Object{"2col": {spatial.NewObject().SetNum("x", 1)}},
		}},
		{"attribute with a space", &fakeResult{
			order:    []string{"regions"},
			explicit: map[string]bool{"regions": true},
			objects:  map[string][]*spatial.Object{"regions": {spatial.NewObject().SetNum("left edge", 1)}},
		}},
		{"attribute with markup", &fakeResult{
			order:    []string{"regions"},
			explicit: map[string]bool{"regions": true},
			objects:  map[string][]*spatial.Object{"regions": {spatial.NewObject().SetText("a\"><b", "x")}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, format := range []Format{FormatXML, FormatHTML} {
				r, err := New(format)
				require.NoError(t, err)
				var buf bytes.Buffer
				err = r.Render(&buf, tt.res)
				assert.ErrorIs(t, err, ErrInvalidName, format)
				assert.Empty(t, buf.String(), format)
			}
		})
	}

	// Text and structured output do not derive names
	assert.Contains(t, render(t, FormatJSON, tests[0].res), "2col")
}

func TestValidName(t *testing.T) {
	for _, ok := range []string{"text-runs", "_x", "font-size", "é", "a.b", "x1"} {
		assert.True(t, validName(ok), ok)
	}
	for _, bad := range []string{"", "2col", "-x", "a b", "a:b", "a\"b", ".x"} {
		assert.False(t, validName(bad), bad)
	}
}
