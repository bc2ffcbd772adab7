package editor

import (
	"github.com/example/livesign/internal/annotation"
	"github.com/golang/geo/r2"
)

// LayerKind names one drawn part of an annotation.
type LayerKind int

const (
	LayerShadow LayerKind = iota
	LayerBackground
	LayerGlyphs
	LayerGlow
	LayerOutline
	LayerHandle
)

var layerNames = [...]string{"shadow", "background", "glyphs", "glow", "outline", "handle"}

func (k LayerKind) String() string {
	if k < 0 || int(k) >= len(layerNames) {
		return "unknown"
	}
	return layerNames[k]
}

// Decoration sizes in screen pixels.
const (
	BackgroundPadding = 6
	GlowPadding       = 8
	HandleRadius      = 5
)

var shadowOffsets = []float64{2, 1}

// Layer is one shape to paint. Text layers draw the annotation text with the
// top-left of the box at Rect.Lo().
type Layer struct {
	ID   annotation.ID
	Kind LayerKind
	Rect r2.Rect
	// Depth orders shadows; the outermost shadow has the highest depth.
	Depth int
}

// Layers returns the shapes of an annotation in paint order. Shadows come
// first, then the background and the glyphs. The selection decoration is
// always last.
func (s *Session) Layers(id annotation.ID) []Layer {
	a, ok := s.store.Get(id)
	if !ok || a.Page != s.page {
		return nil
	}
	box := s.bounds(a)
	var out []Layer
	for i, off := range shadowOffsets {
		d := r2.Point{X: off, Y: off}
		out = append(out, Layer{
			ID:    id,
			Kind:  LayerShadow,
			Rect:  r2.RectFromPoints(box.Lo().Add(d), box.Hi().Add(d)),
			Depth: len(shadowOffsets) - i,
		})
	}
	out = append(out,
		Layer{ID: id, Kind: LayerBackground, Rect: box.ExpandedByMargin(BackgroundPadding)},
		Layer{ID: id, Kind: LayerGlyphs, Rect: box},
	)
	if s.state.Phase == Idle || s.state.ID != id {
		return out
	}
	outline := box.ExpandedByMargin(BackgroundPadding)
	outline.Y.Lo += 2
	outline.Y.Hi -= 2
	out = append(out,
		Layer{ID: id, Kind: LayerGlow, Rect: box.ExpandedByMargin(GlowPadding)},
		Layer{ID: id, Kind: LayerOutline, Rect: outline},
	)
	for _, v := range outline.Vertices() {
		out = append(out, Layer{
			ID:   id,
			Kind: LayerHandle,
			Rect: r2.RectFromCenterSize(v, r2.Point{X: 2 * HandleRadius, Y: 2 * HandleRadius}),
		})
	}
	return out
}

// Decoration reports whether the layer belongs to the selection affordance.
func (l Layer) Decoration() bool { return l.Kind >= LayerGlow }

// Frame returns the layers of every annotation on the current page. Plain
// layers follow insertion order and the selection decoration is appended
// after all of them so no other annotation can cover it.
func (s *Session) Frame() []Layer {
	var out, deco []Layer
	for _, e := range s.store.ForPage(s.page) {
		for _, l := range s.Layers(e.ID) {
			if l.Decoration() {
				deco = append(deco, l)
				continue
			}
			out = append(out, l)
		}
	}
	return append(out, deco...)
}
