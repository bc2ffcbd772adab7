package viewport

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r2"
)

const eps = 1e-9

func near(a, b r2.Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

func TestNewRejectsNonPositiveZoom(t *testing.T) {
	for _, z := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if _, err := New(25, z); !errors.Is(err, ErrInvalidZoom) {
			t.Errorf("zoom %v: expected ErrInvalidZoom, got %v", z, err)
		}
	}
}

func TestToScreen(t *testing.T) {
	m, err := New(25, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := m.ToScreen(r2.Point{X: 10, Y: 20})
	if want := (r2.Point{X: 45, Y: 65}); !near(got, want) {
		t.Fatalf("ToScreen = %v, want %v", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	zooms := []float64{0.25, 0.5, 1, 1.5, 2, 3.7}
	points := []r2.Point{{}, {X: 0.1, Y: 0.2}, {X: 142.3, Y: 88.9}, {X: 612, Y: 792}, {X: 1e5, Y: 3}}
	for _, z := range zooms {
		m, err := New(DefaultMargin, z)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		for _, p := range points {
			if got := m.ToDocument(m.ToScreen(p)); !near(got, p) {
				t.Errorf("zoom %v: round trip of %v gave %v", z, p, got)
			}
		}
	}
}

func TestToDocumentClampsAtOrigin(t *testing.T) {
	m := Default()
	got := m.ToDocument(r2.Point{X: -500, Y: 10})
	if want := (r2.Point{X: 0, Y: 0}); !near(got, want) {
		t.Fatalf("ToDocument = %v, want %v", got, want)
	}
}

func TestClamp(t *testing.T) {
	page := r2.Point{X: 612, Y: 792}
	reserved := r2.Point{X: 100, Y: 50}
	cases := []struct {
		in, want r2.Point
	}{
		{r2.Point{X: -3, Y: -4}, r2.Point{X: 0, Y: 0}},
		{r2.Point{X: 100000, Y: 100000}, r2.Point{X: 512, Y: 742}},
		{r2.Point{X: 40, Y: 60}, r2.Point{X: 40, Y: 60}},
	}
	for _, c := range cases {
		if got := Clamp(c.in, page, reserved); !near(got, c.want) {
			t.Errorf("Clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
	tiny := Clamp(r2.Point{X: 30, Y: 30}, r2.Point{X: 50, Y: 20}, reserved)
	if !near(tiny, r2.Point{}) {
		t.Errorf("expected collapse to origin on undersized page, got %v", tiny)
	}
}

func TestSnap(t *testing.T) {
	got := Snap(r2.Point{X: 142.3, Y: 88.9}, 5)
	if want := (r2.Point{X: 140, Y: 90}); !near(got, want) {
		t.Fatalf("Snap = %v, want %v", got, want)
	}
	p := r2.Point{X: 1.3, Y: 2.7}
	if got := Snap(p, 0); got != p {
		t.Fatalf("grid 0 should not snap, got %v", got)
	}
}

func TestDPIFollowsZoom(t *testing.T) {
	m, _ := New(0, 2)
	if m.DPI() != 144 {
		t.Fatalf("DPI = %v", m.DPI())
	}
}

func TestSnapWithinStaysInBounds(t *testing.T) {
	page := r2.Point{X: 613, Y: 792}
	reserved := r2.Point{X: 100, Y: 50}
	got := SnapWithin(r2.Point{X: 9999, Y: 741}, 5, page, reserved)
	if want := (r2.Point{X: 510, Y: 740}); !near(got, want) {
		t.Fatalf("SnapWithin = %v, want %v", got, want)
	}
	got = SnapWithin(r2.Point{X: 142.3, Y: 88.9}, 5, page, reserved)
	if want := (r2.Point{X: 140, Y: 90}); !near(got, want) {
		t.Fatalf("SnapWithin = %v, want %v", got, want)
	}
	got = SnapWithin(r2.Point{X: -7, Y: 2}, 5, r2.Point{X: 50, Y: 20}, reserved)
	if !near(got, r2.Point{}) {
		t.Fatalf("undersized page: got %v", got)
	}
}
