package interact

import (
	"math"

	"github.com/matzehuels/wordpath/pkg/graph"
)

// Default zoom bounds.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 4.0
)

// Viewport maps model coordinates to screen coordinates:
//
//	screen = model*Scale + (TX, TY)
//
// The zero value is not usable; start from [NewViewport].
type Viewport struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`

	MinScale float64 `json:"-"`
	MaxScale float64 `json:"-"`
}

// NewViewport returns the identity transform with default zoom bounds.
func NewViewport() Viewport {
	return Viewport{Scale: 1, MinScale: DefaultMinScale, MaxScale: DefaultMaxScale}
}

// ToScreen converts a model point to screen coordinates.
func (v Viewport) ToScreen(x, y float64) (float64, float64) {
	return x*v.Scale + v.TX, y*v.Scale + v.TY
}

// ToModel converts a screen point to model coordinates.
func (v Viewport) ToModel(sx, sy float64) (float64, float64) {
	return (sx - v.TX) / v.Scale, (sy - v.TY) / v.Scale
}

// Pan translates the viewport by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.TX += dx
	v.TY += dy
}

// ZoomAt multiplies the scale by factor, keeping the model point under the
// screen point (sx, sy) fixed. The resulting scale is clamped.
func (v *Viewport) ZoomAt(sx, sy, factor float64) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return
	}
	mx, my := v.ToModel(sx, sy)
	v.Scale = v.clamp(v.Scale * factor)
	v.TX = sx - mx*v.Scale
	v.TY = sy - my*v.Scale
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.Scale, v.TX, v.TY = 1, 0, 0
}

// Fit frames b inside a width x height screen with padding on every side.
// Empty bounds reset the viewport.
func (v *Viewport) Fit(b Bounds, width, height, padding float64) {
	bw, bh := b.MaxX-b.MinX, b.MaxY-b.MinY
	if b.Empty() || width <= 2*padding || height <= 2*padding {
		v.Reset()
		return
	}
	scale := math.Inf(1)
	if bw > 0 {
		scale = (width - 2*padding) / bw
	}
	if bh > 0 {
		scale = min(scale, (height-2*padding)/bh)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}
	v.Scale = v.clamp(scale)
	mx, my := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	v.TX = width/2 - mx*v.Scale
	v.TY = height/2 - my*v.Scale
}

func (v Viewport) clamp(s float64) float64 {
	lo, hi := v.MinScale, v.MaxScale
	if lo <= 0 {
		lo = DefaultMinScale
	}
	if hi <= 0 {
		hi = DefaultMaxScale
	}
	return min(max(s, lo), hi)
}

// Bounds is an axis-aligned box in model space.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether the box holds no points.
func (b Bounds) Empty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

// BoundsOf returns the box covering every node grown by radius.
func BoundsOf(nodes []graph.Node, radius float64) Bounds {
	b := Bounds{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, n := range nodes {
		b.MinX = min(b.MinX, n.X-radius)
		b.MinY = min(b.MinY, n.Y-radius)
		b.MaxX = max(b.MaxX, n.X+radius)
		b.MaxY = max(b.MaxY, n.Y+radius)
	}
	return b
}
