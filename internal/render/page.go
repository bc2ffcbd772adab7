package render

import (
	"image"
	"image/color"
	"image/draw"
)

// PageStyle holds the colours of the page frame.
type PageStyle struct {
	Shadow ShadowOptions
	// Edge is the 2px line drawn one pixel outside the page.
	Edge color.RGBA
	// Border is the 1px line drawn three pixels outside the page.
	Border color.RGBA
}

// PagePainter draws a rasterised page with its frame. The blurred shadow
// mask is cached for the last page size.
type PagePainter struct {
	Style PageStyle

	mask     *image.Gray
	maskSize image.Point
	maskOpts ShadowOptions
}

// NewPagePainter returns a PagePainter using style.
func NewPagePainter(style PageStyle) *PagePainter {
	return &PagePainter{Style: style}
}

// Paint draws page onto dst with its top-left corner at at.
func (p *PagePainter) Paint(dst draw.Image, page image.Image, at image.Point) {
	size := page.Bounds().Size()
	rect := image.Rectangle{Min: at, Max: at.Add(size)}

	if opts, ok := p.Style.Shadow.normalized(); ok {
		if p.mask == nil || p.maskSize != size || p.maskOpts != opts {
			p.mask = RectShadow(size, opts.Radius)
			p.maskSize = size
			p.maskOpts = opts
		}
		origin := at.Sub(image.Pt(opts.Radius, opts.Radius)).Add(opts.Offset)
		drawShadowMask(dst, p.mask, origin, opts.Opacity)
	}

	if p.Style.Border.A != 0 {
		Outline(dst, rect.Inset(-3), p.Style.Border, 1)
	}
	if p.Style.Edge.A != 0 {
		Outline(dst, rect.Inset(-1), p.Style.Edge, 2)
	}
	draw.Draw(dst, rect, page, page.Bounds().Min, draw.Src)
}

// Outline strokes the inside edge of r with lines thick pixels wide.
func Outline(dst draw.Image, r image.Rectangle, col color.Color, thick int) {
	if thick <= 0 || r.Empty() {
		return
	}
	src := image.NewUniform(col)
	t := min(thick, r.Dx(), r.Dy())
	for _, side := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t),
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y),
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(dst, side, src, image.Point{}, draw.Over)
	}
}

// Grid fills r with bg and rules it every step pixels with line.
func Grid(dst draw.Image, r image.Rectangle, step int, bg, line color.Color) {
	draw.Draw(dst, r, image.NewUniform(bg), image.Point{}, draw.Src)
	if step <= 0 {
		return
	}
	src := image.NewUniform(line)
	for x := r.Min.X - r.Min.X%step; x < r.Max.X; x += step {
		if x >= r.Min.X {
			draw.Draw(dst, image.Rect(x, r.Min.Y, x+1, r.Max.Y), src, image.Point{}, draw.Src)
		}
	}
	for y := r.Min.Y - r.Min.Y%step; y < r.Max.Y; y += step {
		if y >= r.Min.Y {
			draw.Draw(dst, image.Rect(r.Min.X, y, r.Max.X, y+1), src, image.Point{}, draw.Src)
		}
	}
}
