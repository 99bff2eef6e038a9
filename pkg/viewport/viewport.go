// Package viewport maps world coordinates produced by the layout engine onto
// screen coordinates.
//
// The transform is a uniform scale followed by a translation:
//
//	screen = world*Scale + Translate
//
// Every operation that changes Scale clamps it to a [Limits] range, so no
// sequence of zoom steps can leave the configured bounds.
package viewport

import (
	"math"

	"github.com/matzehuels/orgchart/pkg/geom"
)

// Default zoom limits.
const (
	DefaultMinScale = 0.1
	DefaultMaxScale = 4.0

	// ZoomStep is the factor applied by a single zoom-in step.
	ZoomStep = 1.2
)

// Limits bounds the scale factor.
type Limits struct {
	MinScale float64 `json:"min_scale" toml:"min_scale" yaml:"min_scale" validate:"gt=0"`
	MaxScale float64 `json:"max_scale" toml:"max_scale" yaml:"max_scale" validate:"gtfield=MinScale"`
}

// DefaultLimits returns the default zoom range.
func DefaultLimits() Limits {
	return Limits{MinScale: DefaultMinScale, MaxScale: DefaultMaxScale}
}

// Clamp returns s restricted to the range. A degenerate range falls back to
// the defaults.
func (l Limits) Clamp(s float64) float64 {
	if l.MinScale <= 0 || l.MaxScale < l.MinScale {
		l = DefaultLimits()
	}
	if math.IsNaN(s) {
		return 1
	}
	return math.Min(math.Max(s, l.MinScale), l.MaxScale)
}

// Viewport is the world-to-screen transform.
type Viewport struct {
	TranslateX float64 `json:"tx"`
	TranslateY float64 `json:"ty"`
	Scale      float64 `json:"scale"`
}

// Identity returns the untransformed viewport.
func Identity() Viewport { return Viewport{Scale: 1} }

func (v Viewport) scale() float64 {
	if v.Scale <= 0 {
		return 1
	}
	return v.Scale
}

// ToScreen maps a world point to the screen.
func (v Viewport) ToScreen(p geom.Point) geom.Point {
	s := v.scale()
	return geom.Pt(p.X*s+v.TranslateX, p.Y*s+v.TranslateY)
}

// ToWorld maps a screen point back to the world.
func (v Viewport) ToWorld(p geom.Point) geom.Point {
	s := v.scale()
	return geom.Pt((p.X-v.TranslateX)/s, (p.Y-v.TranslateY)/s)
}

// RectToScreen maps a world rect to the screen.
func (v Viewport) RectToScreen(r geom.Rect) geom.Rect {
	o := v.ToScreen(geom.Pt(r.X, r.Y))
	s := v.scale()
	return geom.Rect{X: o.X, Y: o.Y, W: r.W * s, H: r.H * s}
}

// Pan moves the view by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.TranslateX += dx
	v.TranslateY += dy
	return v
}

// ZoomAt multiplies the scale by factor, keeping the world point under the
// screen point p fixed. The resulting scale is clamped.
func (v Viewport) ZoomAt(p geom.Point, factor float64, limits Limits) Viewport {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return v
	}
	return v.zoomTo(p, v.scale()*factor, limits)
}

// ZoomTo sets the scale, keeping the world point under p fixed.
func (v Viewport) ZoomTo(p geom.Point, scale float64, limits Limits) Viewport {
	return v.zoomTo(p, scale, limits)
}

func (v Viewport) zoomTo(p geom.Point, scale float64, limits Limits) Viewport {
	anchor := v.ToWorld(p)
	s := limits.Clamp(scale)
	return Viewport{
		TranslateX: p.X - anchor.X*s,
		TranslateY: p.Y - anchor.Y*s,
		Scale:      s,
	}
}

// WithZoomPercent applies an external zoom percentage (100 = 1:1) about the
// screen centre.
func (v Viewport) WithZoomPercent(pct float64, center geom.Point, limits Limits) Viewport {
	if pct <= 0 {
		return v
	}
	return v.zoomTo(center, pct/100, limits)
}

// ZoomPercent returns the current scale as a percentage.
func (v Viewport) ZoomPercent() float64 { return v.scale() * 100 }

// Fit returns a viewport that shows all of bounds centred inside a screen of
// the given size with padding on every side. Empty bounds or an empty screen
// yield the identity scale centred on the screen.
func Fit(bounds geom.Rect, screenW, screenH, padding float64, limits Limits) Viewport {
	if bounds.W <= 0 || bounds.H <= 0 || screenW <= 0 || screenH <= 0 {
		return Viewport{
			TranslateX: screenW/2 - bounds.Center().X,
			TranslateY: screenH/2 - bounds.Center().Y,
			Scale:      1,
		}
	}
	availW := math.Max(screenW-2*padding, 1)
	availH := math.Max(screenH-2*padding, 1)
	s := limits.Clamp(math.Min(availW/bounds.W, availH/bounds.H))

	c := bounds.Center()
	return Viewport{
		TranslateX: screenW/2 - c.X*s,
		TranslateY: screenH/2 - c.Y*s,
		Scale:      s,
	}
}
