package pdfdoc

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/golang/geo/r2"
)

var letter = r2.Point{X: 612, Y: 792}

func load(t *testing.T, pages ...testPage) *Document {
	t.Helper()
	doc, err := Load(buildPDF(pages...), "fixture.pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestPageSizes(t *testing.T) {
	doc := load(t,
		testPage{size: letter},
		testPage{inherit: true},
		testPage{size: r2.Point{X: 595.28, Y: 841.89}, rotate: 90},
	)
	if doc.NumPages() != 3 {
		t.Fatalf("NumPages = %d", doc.NumPages())
	}
	want := []r2.Point{letter, letter, {X: 841.89, Y: 595.28}}
	for i, w := range want {
		got, err := doc.PageSize(i)
		if err != nil {
			t.Fatalf("PageSize(%d): %v", i, err)
		}
		if got != w {
			t.Errorf("PageSize(%d) = %v, want %v", i, got, w)
		}
	}
	if _, err := doc.PageSize(3); !errors.Is(err, ErrPageRange) {
		t.Errorf("expected ErrPageRange, got %v", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello"), []byte("%PDF-1.4\ngarbage")} {
		if _, err := Load(data, "bad.pdf"); !errors.Is(err, ErrFormat) {
			t.Errorf("Load(%q): expected ErrFormat, got %v", data, err)
		}
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestRenderMatchesZoom(t *testing.T) {
	doc := load(t, testPage{size: letter})
	for _, zoom := range []float64{1, 2} {
		img, err := doc.Render(0, zoom)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		b := img.Bounds()
		if math.Abs(float64(b.Dx())-612*zoom) > 1 || math.Abs(float64(b.Dy())-792*zoom) > 1 {
			t.Errorf("zoom %v: raster %v, want about %vx%v", zoom, b, 612*zoom, 792*zoom)
		}
	}
	if _, err := doc.Render(0, 0); err == nil {
		t.Errorf("zero zoom accepted")
	}
}

func TestToRGBAConverts(t *testing.T) {
	src := image.NewNRGBA(image.Rect(3, 4, 13, 24))
	src.SetNRGBA(3, 4, color.NRGBA{R: 255, A: 255})
	got := toRGBA(src)
	if got.Bounds() != image.Rect(0, 0, 10, 20) {
		t.Fatalf("bounds = %v", got.Bounds())
	}
	if c := got.RGBAAt(0, 0); c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("origin pixel = %v", c)
	}
	same := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if toRGBA(same) != same {
		t.Errorf("RGBA raster was copied")
	}
}

func TestText(t *testing.T) {
	doc := load(t, testPage{size: letter, text: "Hello"})
	s, err := doc.Text(0)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(s, "Hello") {
		t.Fatalf("Text = %q", s)
	}
}

func TestClosedDocument(t *testing.T) {
	doc, err := Load(buildPDF(testPage{size: letter}), "fixture.pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := doc.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := doc.Render(0, 1); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected os.ErrClosed, got %v", err)
	}
}

func TestStampPosition(t *testing.T) {
	cases := []struct{ in, want r2.Point }{
		{r2.Point{X: -5, Y: -1}, r2.Point{}},
		{r2.Point{X: 700, Y: 900}, r2.Point{X: 610, Y: 790}},
		{r2.Point{X: 140, Y: 90}, r2.Point{X: 140, Y: 90}},
	}
	for _, c := range cases {
		if got := StampPosition(c.in, letter); got != c.want {
			t.Errorf("StampPosition(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestDescription(t *testing.T) {
	a := annotation.Annotation{
		Kind:     annotation.KindSignature,
		X:        140,
		Y:        90,
		FontSize: 18,
		Color:    annotation.ColorOrBlack("#3b82f6"),
	}
	got := description(a, letter)
	for _, part := range []string{"fontname:Times-Italic", "points:18", "fillcolor:#3b82f6", "position:tl", "offset:140.00 -90.00"} {
		if !strings.Contains(got, part) {
			t.Errorf("description %q lacks %q", got, part)
		}
	}
}

func TestSaveWithoutAnnotationsCopies(t *testing.T) {
	src := buildPDF(testPage{size: letter})
	doc, err := Load(src, "fixture.pdf")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer doc.Close()
	var out bytes.Buffer
	if err := doc.Stamp(&out, nil); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if !bytes.Equal(out.Bytes(), src) {
		t.Fatalf("unannotated output differs from the source")
	}
}

func TestStampRejectsUnknownPage(t *testing.T) {
	doc := load(t, testPage{size: letter})
	err := doc.Stamp(&bytes.Buffer{}, []annotation.Annotation{{Text: "x", Page: 4, FontSize: 14}})
	if !errors.Is(err, ErrPageRange) {
		t.Fatalf("expected ErrPageRange, got %v", err)
	}
}

func TestSignDragSaveReopen(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "contract.pdf")
	if err := os.WriteFile(in, buildPDF(testPage{size: letter}), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Open(in)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	s := editor.New()
	if err := s.Load(doc, in); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	id, err := s.Add("Jane Doe", annotation.KindSignature)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	a, _ := s.Get(id)
	press := s.Settings().Mapper.ToScreen(a.Pos()).Add(r2.Point{X: 3, Y: 3})
	if _, ok := s.PointerDown(press); !ok {
		t.Fatalf("press missed the signature")
	}
	s.PointerUp(press.Add(r2.Point{X: 50, Y: 50}))
	moved, _ := s.Get(id)
	if moved.X != 305 || moved.Y != 430 {
		t.Fatalf("committed position (%v, %v), want (305, 430)", moved.X, moved.Y)
	}

	if err := s.Save(""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out := filepath.Join(dir, "contract_signed.pdf")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if bytes.Contains(data, []byte("/Annots")) {
		t.Fatalf("output carries annotation dictionaries")
	}
	reopened, err := Open(out)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	text, err := reopened.Text(0)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Fatalf("stamped text not found in %q", text)
	}

	html, err := reopened.fz.HTML(0, false)
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	left, top, ok := textOrigin(html, "Jane Doe")
	if !ok {
		t.Fatalf("no positioned line holds the signature in %q", html)
	}
	if math.Abs(left-305) > 5 || math.Abs(top-430) > 5 {
		t.Fatalf("reopened signature at (%v, %v), want within 5pt of (305, 430)", left, top)
	}
}

var linePos = regexp.MustCompile(`top:(-?[\d.]+)pt;left:(-?[\d.]+)pt`)

// textOrigin finds the paragraph holding want in mupdf HTML output and
// returns its left and top offsets in points.
func textOrigin(html, want string) (left, top float64, ok bool) {
	for _, para := range strings.Split(html, "<p ") {
		if !strings.Contains(para, want) {
			continue
		}
		m := linePos.FindStringSubmatch(para)
		if m == nil {
			continue
		}
		top, _ = strconv.ParseFloat(m[1], 64)
		left, _ = strconv.ParseFloat(m[2], 64)
		return left, top, true
	}
	return 0, 0, false
}
