package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/observability"
	"github.com/matzehuels/wordpath/pkg/render"
	"github.com/matzehuels/wordpath/pkg/render/nodelink"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

// Render draws a finished layout in every requested format.
func Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderAll(ctx, l, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderAll(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	f := render.FrameFromLayout(l)
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(f, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, f, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(opts.Scale))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, f, sink.WithPDFSVGOptions(svgOpts...))
		case FormatDOT:
			data = []byte(nodelink.ToDOT(f, nodelink.Options{Detailed: opts.Detailed, Transparent: opts.Transparent}))
		case FormatJSON:
			data, err = sink.RenderJSON(l)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			if stderrors.Is(err, render.ErrNoConverter) {
				return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "%s output needs rsvg-convert", format)
			}
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.NoGlow {
		svgOpts = append(svgOpts, sink.WithoutGlow())
	}
	if opts.NoCaption {
		svgOpts = append(svgOpts, sink.WithCaption(""))
	}
	if opts.Transparent {
		svgOpts = append(svgOpts, sink.WithBackground(""))
	} else {
		svgOpts = append(svgOpts, sink.WithBackground(render.ColorBackground))
	}
	return svgOpts
}
