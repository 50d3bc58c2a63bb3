package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/pathtrace/pkg/graph"
	pio "github.com/matzehuels/pathtrace/pkg/io"
	"github.com/matzehuels/pathtrace/pkg/render"
	"github.com/matzehuels/pathtrace/pkg/render/nodelink"
	"github.com/matzehuels/pathtrace/pkg/search"
)

// Render generates output artifacts for res in the requested formats.
// Graphviz runs at most once even when several image formats are requested.
func Render(ctx context.Context, g *graph.Graph, res search.Result, opts Options) (map[string][]byte, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	var svg []byte

	dotSource := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(g, &res, nodelink.Options{Detailed: opts.Detailed})
		}
		return dot
	}
	svgImage := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dotSource())
		return svg, err
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = pio.MarshalResult(res)
		case FormatText:
			var buf bytes.Buffer
			err = pio.WriteReport(&buf, res, "")
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(dotSource())
		case FormatSVG:
			data, err = svgImage()
		case FormatPNG:
			if data, err = svgImage(); err == nil {
				data, err = render.ToPNG(ctx, data, DefaultPNGScale)
			}
		case FormatPDF:
			if data, err = svgImage(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
