package pdf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pyhub-apps/pdfextract-golang/pkg/content"
)

// walkPDFCPU reads pages with pdfcpu
func walkPDFCPU(ctx context.Context, path string, logger *slog.Logger, fn pageFunc) error {
	pctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}

	for i := 1; i <= pctx.PageCount; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Get page dictionary and inherited attributes
		pageDict, _, attrs, err := pctx.PageDict(i, false)
		if err != nil {
			return fmt.Errorf("failed to get page dict %d: %w", i, err)
		}
		if pageDict == nil {
			continue
		}

		p := content.Page{Number: i, Width: 612, Height: 792}
		var resources types.Dict
		if attrs != nil {
			resources = attrs.Resources
			if attrs.MediaBox != nil {
				p.Width = attrs.MediaBox.Width()
				p.Height = attrs.MediaBox.Height()
			}
		}
		p.Contents = pdfcpuContents(pctx, pageDict["Contents"], i, logger)

		if own, err := pctx.DereferenceDict(pageDict["Resources"]); err == nil && own != nil {
			resources = own
		}
		p.Fonts = parseFonts(pdfcpuToUnicode(pctx, resources, i, logger), logger)

		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// pdfcpuContents decodes the page content, a stream or an array of streams
func pdfcpuContents(pctx *model.Context, contents types.Object, page int, logger *slog.Logger) [][]byte {
	if contents == nil {
		return nil
	}

	items := []types.Object{contents}
	if arr, err := pctx.DereferenceArray(contents); err == nil && arr != nil {
		items = arr
	}

	var out [][]byte
	for _, item := range items {
		data, err := pdfcpuStream(pctx, item)
		if err != nil {
			logger.Debug("skipping unreadable content stream", "page", page, "error", err)
			continue
		}
		out = append(out, data)
	}
	return out
}

// pdfcpuToUnicode collects the raw ToUnicode maps of the page fonts
func pdfcpuToUnicode(pctx *model.Context, resources types.Dict, page int, logger *slog.Logger) map[string][]byte {
	if resources == nil {
		return nil
	}
	fonts, err := pctx.DereferenceDict(resources["Font"])
	if err != nil || fonts == nil {
		return nil
	}

	maps := make(map[string][]byte)
	for name, obj := range fonts {
		font, err := pctx.DereferenceDict(obj)
		if err != nil || font == nil {
			continue
		}
		tu, ok := font["ToUnicode"]
		if !ok {
			continue
		}
		data, err := pdfcpuStream(pctx, tu)
		if err != nil {
			logger.Debug("skipping unreadable ToUnicode map", "page", page, "font", name, "error", err)
			continue
		}
		maps[name] = data
	}
	return maps
}

// pdfcpuStream dereferences and decodes a stream object
func pdfcpuStream(pctx *model.Context, obj types.Object) ([]byte, error) {
	var ref types.IndirectRef
	switch v := obj.(type) {
	case types.IndirectRef:
		ref = v
	case *types.IndirectRef:
		if v == nil {
			return nil, fmt.Errorf("nil stream reference")
		}
		ref = *v
	default:
		return nil, fmt.Errorf("not a stream reference: %T", obj)
	}

	sd, _, err := pctx.DereferenceStreamDict(ref)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference stream: %w", err)
	}
	if sd == nil {
		return nil, fmt.Errorf("stream %s not found", ref)
	}
	if len(sd.Content) == 0 {
		if err := sd.Decode(); err != nil {
			return nil, fmt.Errorf("failed to decode stream: %w", err)
		}
	}
	return sd.Content, nil
}
