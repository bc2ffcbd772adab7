// Package render composites rendered PDF pages onto the editor canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures the drop shadow effect applied to a page.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image is the composited image that includes the blurred shadow.
	Image *image.RGBA
	// Offset reports where the page's top-left corner ended up inside the
	// expanded canvas.
	Offset image.Point
}

// DefaultShadowOptions returns a soft shadow sized for letter pages at zoom 1.
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  6,
		Offset:  image.Pt(3, 4),
		Opacity: 0.25,
	}
}

func (o ShadowOptions) normalized() (ShadowOptions, bool) {
	if o.Opacity <= 0 {
		return o, false
	}
	if o.Opacity > 1 {
		o.Opacity = 1
	}
	if o.Radius < 0 {
		o.Radius = 0
	}
	return o, true
}

// ApplyShadow composites img with a blurred drop shadow using opts. The result
// always has a zero origin. The returned Offset indicates where the original
// image's top-left corner ended up inside the expanded canvas.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	opts, ok := opts.normalized()
	if img.Bounds().Empty() || !ok {
		return ShadowResult{Image: img}
	}

	srcBounds := img.Bounds()
	paddedBounds := srcBounds.Inset(-opts.Radius)
	shadowBounds := paddedBounds.Add(opts.Offset)
	compositeBounds := srcBounds.Union(shadowBounds)
	dstRect := compositeBounds.Sub(compositeBounds.Min)

	shift := srcBounds.Min.Sub(compositeBounds.Min)
	shadowOrigin := shadowBounds.Min.Sub(compositeBounds.Min)

	mask := image.NewGray(paddedBounds.Sub(paddedBounds.Min))
	for y := srcBounds.Min.Y; y < srcBounds.Max.Y; y++ {
		for x := srcBounds.Min.X; x < srcBounds.Max.X; x++ {
			a := img.RGBAAt(x, y).A
			if a == 0 {
				continue
			}
			mask.SetGray(x-paddedBounds.Min.X, y-paddedBounds.Min.Y, color.Gray{Y: a})
		}
	}
	blurred := blurGray(mask, opts.Radius)

	dst := image.NewRGBA(dstRect)
	drawShadowMask(dst, blurred, shadowOrigin, opts.Opacity)
	draw.Draw(dst, srcBounds.Sub(compositeBounds.Min), img, srcBounds.Min, draw.Over)

	return ShadowResult{Image: dst, Offset: shift}
}

// RectShadow returns the blurred mask of an opaque rectangle of the given
// size. The rectangle's top-left sits at (radius, radius) inside the mask.
func RectShadow(size image.Point, radius int) *image.Gray {
	if radius < 0 {
		radius = 0
	}
	mask := image.NewGray(image.Rect(0, 0, size.X+2*radius, size.Y+2*radius))
	inner := image.Rect(radius, radius, radius+size.X, radius+size.Y)
	draw.Draw(mask, inner, image.NewUniform(color.Gray{Y: 255}), image.Point{}, draw.Src)
	return blurGray(mask, radius)
}

func drawShadowMask(dst draw.Image, mask *image.Gray, at image.Point, opacity float64) {
	alpha := uint8(opacity*255 + 0.5)
	if alpha == 0 {
		return
	}
	draw.DrawMask(dst, mask.Bounds().Sub(mask.Bounds().Min).Add(at),
		image.NewUniform(color.RGBA{0, 0, 0, alpha}), image.Point{},
		mask, mask.Bounds().Min, draw.Over)
}

func blurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		out := image.NewGray(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	tmp := image.NewGray(bounds)
	dst := image.NewGray(bounds)

	for y := 0; y < h; y++ {
		rowStart := y * src.Stride
		tmpStart := y * tmp.Stride
		prefix := make([]int, w+1)
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[rowStart+x])
		}
		for x := 0; x < w; x++ {
			x0 := max(x-radius, 0)
			x1 := min(x+radius, w-1)
			tmp.Pix[tmpStart+x] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}

	for x := 0; x < w; x++ {
		prefix := make([]int, h+1)
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			y0 := max(y-radius, 0)
			y1 := min(y+radius, h-1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}

	return dst
}
