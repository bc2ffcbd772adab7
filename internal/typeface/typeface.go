// Package typeface provides the font faces used to draw annotations on the
// page preview and to measure their bounding boxes for hit testing.
package typeface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/example/livesign/internal/annotation"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

type faceKey struct {
	kind annotation.Kind
	size float64
}

var (
	fontsOnce sync.Once
	fontsErr  error
	fonts     map[annotation.Kind]*opentype.Font

	faces sync.Map // map[faceKey]font.Face
)

func loadFonts() {
	src := map[annotation.Kind][]byte{
		annotation.KindSignature: goitalic.TTF,
		annotation.KindText:      goregular.TTF,
		annotation.KindDate:      gobold.TTF,
	}
	fonts = make(map[annotation.Kind]*opentype.Font, len(src))
	for k, ttf := range src {
		f, err := opentype.Parse(ttf)
		if err != nil {
			fontsErr = fmt.Errorf("parse %s font: %w", k, err)
			return
		}
		fonts[k] = f
	}
}

// Face returns the face for kind at the given pixel size. Faces are cached
// per kind and size.
func Face(kind annotation.Kind, size float64) (font.Face, error) {
	if size <= 0 {
		size = annotation.DefaultStyles().For(kind).FontSize
	}
	// quarter-pixel buckets keep the cache bounded while zooming
	size = math.Round(size*4) / 4
	key := faceKey{kind, size}
	if face, ok := faces.Load(key); ok {
		return face.(font.Face), nil
	}
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	f, ok := fonts[kind]
	if !ok {
		f = fonts[annotation.KindText]
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	actual, _ := faces.LoadOrStore(key, face)
	return actual.(font.Face), nil
}

// Metrics describes the box occupied by a line of text.
type Metrics struct {
	Width, Height float64
	// Baseline is the distance from the top of the box to the baseline.
	Baseline float64
}

// Measure returns the text box of text drawn in the face of kind at size.
func Measure(kind annotation.Kind, text string, size float64) (Metrics, error) {
	face, err := Face(kind, size)
	if err != nil {
		return Metrics{}, err
	}
	d := &font.Drawer{Face: face}
	m := face.Metrics()
	ascent := m.Ascent.Ceil()
	return Metrics{
		Width:    float64(d.MeasureString(text).Ceil()),
		Height:   float64(ascent + m.Descent.Ceil()),
		Baseline: float64(ascent),
	}, nil
}

// Measurer adapts Measure to a zoom-independent interface by scaling size.
type Measurer struct{}

// TextSize returns width and height of the text box in document units.
func (Measurer) TextSize(kind annotation.Kind, text string, size float64) (float64, float64) {
	m, err := Measure(kind, text, size)
	if err != nil {
		return 0, 0
	}
	return m.Width, m.Height
}

// Draw renders text with the top-left corner of its box at (x, y).
func Draw(dst draw.Image, x, y int, kind annotation.Kind, text string, col color.Color, size float64) error {
	face, err := Face(kind, size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
	return nil
}
