package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/familytree/pkg/graph"
	"github.com/matzehuels/familytree/pkg/observability"
	"github.com/matzehuels/familytree/pkg/render"
	"github.com/matzehuels/familytree/pkg/render/nodelink"
)

// Render produces every format in opts.Formats from frame. SVG is rendered
// once and shared by the PNG and PDF conversions.
func Render(ctx context.Context, frame graph.Frame, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	out := make(map[string][]byte, len(opts.Formats))

	var dot string
	var svg []byte
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var data []byte
		var err error
		if format != FormatJSON && dot == "" {
			dot = nodelink.ToDOT(frame, nodelink.Options{Detailed: opts.Detailed})
		}
		if (format == FormatSVG || format == FormatPNG || format == FormatPDF) && svg == nil {
			svg, err = nodelink.RenderSVG(ctx, dot)
		}
		if err == nil {
			switch format {
			case FormatJSON:
				data, err = graph.MarshalFrame(frame)
			case FormatDOT:
				data = []byte(dot)
			case FormatSVG:
				data = svg
			case FormatPNG:
				data, err = render.ToPNG(ctx, svg, opts.Scale)
			case FormatPDF:
				data, err = render.ToPDF(ctx, svg)
			}
		}

		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		out[format] = data
	}
	return out, nil
}
