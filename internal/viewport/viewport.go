// Package viewport maps between document space (page points, top-left
// origin) and screen space (surface pixels after a fixed offset and zoom).
package viewport

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// DefaultMargin is the surface margin reserved around the page for its
// border decoration.
const DefaultMargin = 25

// ErrInvalidZoom is returned when a mapper is configured with a zoom factor
// that is not strictly positive.
var ErrInvalidZoom = errors.New("viewport: zoom must be positive")

// Mapper converts coordinates under a fixed translation and zoom. The same
// Mapper drives page rasterisation and annotation placement so both agree
// on where a document point lands on screen.
type Mapper struct {
	Offset r2.Point
	Zoom   float64
}

// New returns a Mapper with a uniform offset on both axes.
func New(offset, zoom float64) (Mapper, error) {
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		return Mapper{}, fmt.Errorf("%w: %v", ErrInvalidZoom, zoom)
	}
	return Mapper{Offset: r2.Point{X: offset, Y: offset}, Zoom: zoom}, nil
}

// Default returns the mapper used by the editor: 25 unit margin, zoom 1.
func Default() Mapper {
	return Mapper{Offset: r2.Point{X: DefaultMargin, Y: DefaultMargin}, Zoom: 1}
}

// ToScreen maps a document point to screen space.
func (m Mapper) ToScreen(p r2.Point) r2.Point {
	return m.Offset.Add(p.Mul(m.Zoom))
}

// ToDocument maps a screen point to document space. Points left of or
// above the page origin clamp to zero.
func (m Mapper) ToDocument(s r2.Point) r2.Point {
	p := s.Sub(m.Offset).Mul(1 / m.Zoom)
	return r2.Point{X: math.Max(0, p.X), Y: math.Max(0, p.Y)}
}

// RectToScreen maps a document rectangle to screen space.
func (m Mapper) RectToScreen(r r2.Rect) r2.Rect {
	return r2.RectFromPoints(m.ToScreen(r.Lo()), m.ToScreen(r.Hi()))
}

// Scale converts a document length (for example a font size) to pixels.
func (m Mapper) Scale(v float64) float64 { return v * m.Zoom }

// DPI is the rasterisation resolution matching the zoom factor.
func (m Mapper) DPI() float64 { return 72 * m.Zoom }

// PageRect returns the screen rectangle covered by a page of the given size.
func (m Mapper) PageRect(page r2.Point) r2.Rect {
	return m.RectToScreen(r2.RectFromPoints(r2.Point{}, page))
}

// Clamp limits p to [0, page-reserved] on both axes. When the page is
// smaller than the reserved size the upper bound collapses to zero.
func Clamp(p, page, reserved r2.Point) r2.Point {
	return r2.Point{
		X: clamp(p.X, page.X-reserved.X),
		Y: clamp(p.Y, page.Y-reserved.Y),
	}
}

func clamp(v, hi float64) float64 {
	return math.Max(0, math.Min(v, hi))
}

// Snap rounds both coordinates to the nearest multiple of grid. A grid
// that is not positive leaves p unchanged.
func Snap(p r2.Point, grid float64) r2.Point {
	if !(grid > 0) {
		return p
	}
	return r2.Point{X: snap(p.X, grid), Y: snap(p.Y, grid)}
}

func snap(v, grid float64) float64 {
	return math.Round(v/grid) * grid
}

// SnapWithin snaps p to grid and keeps the result inside the clamp bounds
// of Clamp. A coordinate that would round past the upper bound steps down
// to the largest grid multiple inside it.
func SnapWithin(p r2.Point, grid float64, page, reserved r2.Point) r2.Point {
	p = Clamp(p, page, reserved)
	if !(grid > 0) {
		return p
	}
	return r2.Point{
		X: snapWithin(p.X, grid, page.X-reserved.X),
		Y: snapWithin(p.Y, grid, page.Y-reserved.Y),
	}
}

func snapWithin(v, grid, hi float64) float64 {
	s := snap(v, grid)
	if s > hi {
		s = math.Floor(hi/grid) * grid
	}
	return math.Max(0, s)
}
