package pdfdoc

import (
	"fmt"
	"io"
	"math"

	"github.com/digitorus/pdf"
	"github.com/golang/geo/r2"
)

var letterSize = r2.Point{X: 612, Y: 792}

// pageSizes reads the visible size of every page. The reader panics on
// some malformed input, which is reported as ErrFormat.
func pageSizes(src io.ReaderAt, size int64) (sizes []r2.Point, err error) {
	defer func() {
		if r := recover(); r != nil {
			sizes, err = nil, fmt.Errorf("%w: %v", ErrFormat, r)
		}
	}()
	rd, err := pdf.NewReader(src, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	n := rd.NumPage()
	if n < 1 {
		return nil, fmt.Errorf("%w: no pages", ErrFormat)
	}
	sizes = make([]r2.Point, n)
	for i := range sizes {
		p := rd.Page(i + 1)
		if p.V.IsNull() {
			return nil, fmt.Errorf("%w: page %d missing", ErrFormat, i+1)
		}
		sizes[i] = visibleSize(p.V)
	}
	return sizes, nil
}

// inherited looks a page attribute up the page tree.
func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if a := v.Key(key); !a.IsNull() {
			return a
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

func box(v pdf.Value) (r2.Rect, bool) {
	if v.Kind() != pdf.Array || v.Len() < 4 {
		return r2.Rect{}, false
	}
	r := r2.RectFromPoints(
		r2.Point{X: v.Index(0).Float64(), Y: v.Index(1).Float64()},
		r2.Point{X: v.Index(2).Float64(), Y: v.Index(3).Float64()},
	)
	if r.IsEmpty() || r.Size().X == 0 || r.Size().Y == 0 {
		return r2.Rect{}, false
	}
	return r, true
}

func visibleSize(page pdf.Value) r2.Point {
	media, ok := box(inherited(page, "MediaBox"))
	if !ok {
		media = r2.RectFromPoints(r2.Point{}, letterSize)
	}
	if crop, ok := box(inherited(page, "CropBox")); ok {
		if in := media.Intersection(crop); !in.IsEmpty() {
			media = in
		}
	}
	size := media.Size()
	rot := int(inherited(page, "Rotate").Int64()) % 360
	if rot < 0 {
		rot += 360
	}
	if rot == 90 || rot == 270 {
		size.X, size.Y = size.Y, size.X
	}
	return r2.Point{X: math.Round(size.X*100) / 100, Y: math.Round(size.Y*100) / 100}
}
