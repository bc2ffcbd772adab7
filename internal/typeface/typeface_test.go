package typeface

import (
	"image"
	"image/color"
	"testing"

	"github.com/example/livesign/internal/annotation"
)

func TestMeasureGrowsWithText(t *testing.T) {
	short, err := Measure(annotation.KindText, "ab", 14)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	long, err := Measure(annotation.KindText, "abcdefgh", 14)
	if err != nil {
		t.Fatalf("Measure: %v", err)
	}
	if long.Width <= short.Width {
		t.Fatalf("width did not grow: %v <= %v", long.Width, short.Width)
	}
	if short.Height <= 0 || short.Baseline <= 0 || short.Baseline > short.Height {
		t.Fatalf("bad vertical metrics %+v", short)
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	small, _ := Measure(annotation.KindSignature, "Jane Doe", 18)
	big, _ := Measure(annotation.KindSignature, "Jane Doe", 36)
	if big.Height <= small.Height || big.Width <= small.Width {
		t.Fatalf("36pt box %+v not larger than 18pt box %+v", big, small)
	}
}

func TestFaceIsCached(t *testing.T) {
	a, err := Face(annotation.KindDate, 14)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	b, _ := Face(annotation.KindDate, 14.01)
	if a != b {
		t.Fatalf("expected cached face for nearby size")
	}
}

func TestDrawMarksPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	if err := Draw(img, 2, 2, annotation.KindText, "Hello", color.Black, 14); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	inked := false
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			inked = true
			break
		}
	}
	if !inked {
		t.Fatalf("no pixels drawn")
	}
}
