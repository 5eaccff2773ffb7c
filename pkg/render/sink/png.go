package sink

import (
	"context"

	"github.com/matzehuels/wordpath/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG renders the frame as PNG via SVG conversion. PNG output gets the
// dark background unless the SVG options set another one.
func RenderPNG(ctx context.Context, f render.Frame, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	svgOpts := append([]SVGOption{WithBackground(render.ColorBackground)}, r.svgOpts...)
	return render.ToPNG(ctx, RenderSVG(f, svgOpts...), r.scale)
}
