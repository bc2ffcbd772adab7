package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/render"
	"github.com/example/livesign/internal/theme"
	"github.com/example/livesign/internal/typeface"
	"github.com/golang/geo/r2"
)

// Scene is a copy of everything drawn on the canvas. It is taken on the
// event goroutine so the paint worker never touches the Session.
type Scene struct {
	Page *image.RGBA
	// PageAt is the canvas position of the page's top-left corner.
	PageAt image.Point
	Zoom   float64
	Layers []editor.Layer
	Items  map[annotation.ID]annotation.Annotation
}

// Snapshot captures the current page of s. page is the rendered raster and
// may be nil.
func Snapshot(s *editor.Session, page *image.RGBA) Scene {
	m := s.Settings().Mapper
	sc := Scene{
		Page:   page,
		PageAt: pixel(m.Offset),
		Zoom:   m.Zoom,
		Layers: s.Frame(),
		Items:  make(map[annotation.ID]annotation.Annotation),
	}
	for _, l := range sc.Layers {
		if _, ok := sc.Items[l.ID]; ok {
			continue
		}
		if a, ok := s.Get(l.ID); ok {
			sc.Items[l.ID] = a
		}
	}
	return sc
}

// Size returns the canvas extent needed to show the page with its margin.
func (sc Scene) Size() image.Point {
	if sc.Page == nil {
		return image.Point{}
	}
	return sc.Page.Bounds().Size().Add(sc.PageAt.Mul(2))
}

// Paint draws the page and the annotation layers with the canvas origin at
// origin. pages may be nil to skip the page frame.
func (sc Scene) Paint(dst *image.RGBA, origin image.Point, th *theme.Theme, pages *render.PagePainter) {
	if sc.Page != nil {
		at := origin.Add(sc.PageAt)
		if pages != nil {
			pages.Paint(dst, sc.Page, at)
		} else {
			draw.Draw(dst, sc.Page.Bounds().Sub(sc.Page.Bounds().Min).Add(at), sc.Page, sc.Page.Bounds().Min, draw.Src)
		}
	}
	for _, l := range sc.Layers {
		a, ok := sc.Items[l.ID]
		if !ok {
			continue
		}
		paintLayer(dst, origin, l, a, sc.Zoom, th)
	}
}

func paintLayer(dst *image.RGBA, origin image.Point, l editor.Layer, a annotation.Annotation, zoom float64, th *theme.Theme) {
	r := pixelRect(l.Rect).Add(origin)
	switch l.Kind {
	case editor.LayerShadow:
		col := th.ShadowNear
		if l.Depth > 1 {
			col = th.ShadowFar
		}
		drawAnnotationText(dst, r.Min, a, col, zoom)
	case editor.LayerBackground:
		draw.Draw(dst, r, image.NewUniform(th.AnnotationBg), image.Point{}, draw.Over)
		drawRect(dst, r, th.AnnotationBorder, 1)
	case editor.LayerGlyphs:
		drawAnnotationText(dst, r.Min, a, a.Color.Clamped(), zoom)
	case editor.LayerGlow:
		drawDashedRect(dst, r, 10, 5, 3, th.Primary)
	case editor.LayerOutline:
		drawRect(dst, r, th.Primary, 2)
	case editor.LayerHandle:
		c := r.Min.Add(r.Size().Div(2))
		drawFilledCircle(dst, c.X, c.Y, editor.HandleRadius+1, th.AnnotationBg)
		drawFilledCircle(dst, c.X, c.Y, editor.HandleRadius-1, th.Primary)
	}
}

func drawAnnotationText(dst *image.RGBA, at image.Point, a annotation.Annotation, col color.Color, zoom float64) {
	if err := typeface.Draw(dst, at.X, at.Y, a.Kind, a.Text, col, a.FontSize*zoom); err != nil {
		log.Printf("draw %s: %v", a.Kind, err)
	}
}

func pixel(p r2.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}

func pixelRect(r r2.Rect) image.Rectangle {
	return image.Rectangle{Min: pixel(r.Lo()), Max: pixel(r.Hi())}
}

// RenderPage paints the current page of s with its annotations onto a new
// image sized to the page plus the canvas margin.
func RenderPage(s *editor.Session, page *image.RGBA, th *theme.Theme, grid bool) *image.RGBA {
	sc := Snapshot(s, page)
	out := image.NewRGBA(image.Rectangle{Max: sc.Size()})
	if grid {
		render.Grid(out, out.Bounds(), 25, th.CheckerLight, th.CheckerDark)
	}
	var pages *render.PagePainter
	if grid {
		pages = render.NewPagePainter(pageStyle(th))
	}
	sc.Paint(out, image.Point{}, th, pages)
	return out
}

func pageStyle(th *theme.Theme) render.PageStyle {
	return render.PageStyle{
		Shadow: render.DefaultShadowOptions(),
		Edge:   th.PageShadow,
		Border: th.PageBorder,
	}
}
