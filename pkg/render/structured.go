package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// TypeOutput is the structured form of one type
type TypeOutput struct {
	Type     string           `json:"type" yaml:"type"`
	Explicit bool             `json:"explicit" yaml:"explicit"`
	Objects  []map[string]any `json:"objects" yaml:"objects"`
}

// StructuredRenderer writes JSON or YAML
type StructuredRenderer struct {
	format Format
	all    bool
}

// Render writes res as JSON or YAML
func (r *StructuredRenderer) Render(w io.Writer, res Result) error {
	types, err := selected(res, r.all)
	if err != nil {
		return err
	}

	data := make([]TypeOutput, 0, len(types))
	for _, t := range types {
		out := TypeOutput{
			Type:     t.name,
			Explicit: res.Explicit(t.name),
			Objects:  make([]map[string]any, 0, len(t.objects)),
		}
		for _, o := range t.objects {
			out.Objects = append(out.Objects, o.Map())
		}
		data = append(data, out)
	}

	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return fmt.Errorf("unknown output format: %s", r.format)
	}
}
