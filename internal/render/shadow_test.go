package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out := ApplyShadow(img, opts)
	if out.Image == nil {
		t.Fatal("expected output image")
	}
	expected := image.Rect(0, 0, 22, 20)
	if !out.Image.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Image.Bounds(), expected)
	}
	if out.Offset != (image.Point{}) {
		t.Fatalf("offset = %v, want origin", out.Offset)
	}
	shadowPt := subject.Add(opts.Offset)
	if out.Image.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if out.Image != img {
		t.Fatalf("expected the input image back")
	}
}

func TestApplyShadowNegativeOffsetShiftsContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := ApplyShadow(img, ShadowOptions{Radius: 1, Offset: image.Pt(-5, 0), Opacity: 1})
	if out.Offset != image.Pt(6, 1) {
		t.Fatalf("offset = %v", out.Offset)
	}
}

func TestRectShadowBlursEdges(t *testing.T) {
	mask := RectShadow(image.Pt(10, 10), 3)
	if !mask.Bounds().Eq(image.Rect(0, 0, 16, 16)) {
		t.Fatalf("bounds = %v", mask.Bounds())
	}
	centre := mask.GrayAt(8, 8).Y
	edge := mask.GrayAt(3, 8).Y
	outside := mask.GrayAt(1, 8).Y
	if centre != 255 {
		t.Errorf("centre = %d, want 255", centre)
	}
	if !(edge < centre && outside < edge && outside > 0) {
		t.Errorf("no falloff: centre %d edge %d outside %d", centre, edge, outside)
	}
}

func TestPagePainterFrame(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	page := image.NewRGBA(image.Rect(0, 0, 20, 20))
	white := color.RGBA{255, 255, 255, 255}
	for i := range page.Pix {
		page.Pix[i] = 255
	}
	edge := color.RGBA{0xcb, 0xd5, 0xe1, 255}
	border := color.RGBA{0xe2, 0xe8, 0xf0, 255}
	p := NewPagePainter(PageStyle{Edge: edge, Border: border})
	p.Paint(dst, page, image.Pt(20, 20))

	if got := dst.RGBAAt(25, 25); got != white {
		t.Errorf("page pixel = %v", got)
	}
	if got := dst.RGBAAt(19, 25); got != edge {
		t.Errorf("edge pixel = %v", got)
	}
	if got := dst.RGBAAt(17, 25); got != border {
		t.Errorf("border pixel = %v", got)
	}
	if got := dst.RGBAAt(10, 10); got.A != 0 {
		t.Errorf("outside pixel = %v", got)
	}
}

func TestPagePainterCachesMask(t *testing.T) {
	p := NewPagePainter(PageStyle{Shadow: DefaultShadowOptions()})
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	page := image.NewRGBA(image.Rect(0, 0, 10, 10))
	p.Paint(dst, page, image.Pt(5, 5))
	first := p.mask
	p.Paint(dst, page, image.Pt(8, 8))
	if p.mask != first {
		t.Fatalf("mask rebuilt for the same size")
	}
	p.Paint(dst, image.NewRGBA(image.Rect(0, 0, 12, 10)), image.Pt(5, 5))
	if p.mask == first {
		t.Fatalf("mask not rebuilt for a new size")
	}
}

func TestGridRules(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 60, 60))
	bg := color.RGBA{0xf8, 0xfa, 0xfc, 255}
	line := color.RGBA{0xf1, 0xf5, 0xf9, 255}
	Grid(dst, dst.Bounds(), 25, bg, line)
	if got := dst.RGBAAt(25, 3); got != line {
		t.Errorf("vertical rule = %v", got)
	}
	if got := dst.RGBAAt(3, 50); got != line {
		t.Errorf("horizontal rule = %v", got)
	}
	if got := dst.RGBAAt(12, 12); got != bg {
		t.Errorf("background = %v", got)
	}
}
