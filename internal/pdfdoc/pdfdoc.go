// Package pdfdoc is the PDF backend: it reads page geometry, rasterises
// pages for display, extracts text and writes annotated copies with the
// annotations flattened into the page content.
package pdfdoc

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"sync"

	"github.com/example/livesign/internal/annotation"
	fitz "github.com/gen2brain/go-fitz"
	"github.com/golang/geo/r2"
	"github.com/mattetti/filebuffer"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

var (
	// ErrFormat reports input that is not a readable PDF.
	ErrFormat = errors.New("not a valid PDF")
	// ErrPageRange reports a page index outside the document.
	ErrPageRange = errors.New("page out of range")
)

func init() {
	// pdfcpu would otherwise create a config directory under the user's
	// home on first use.
	api.DisableConfigDir()
}

// Document is an open PDF held in memory. Render and Text serialise on an
// internal lock, so a Document may be shared between goroutines.
type Document struct {
	name  string
	src   *filebuffer.Buffer
	sizes []r2.Point

	mu sync.Mutex
	fz *fitz.Document
}

// Open reads the PDF at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, path)
}

// Load opens a PDF from memory. name is used in error messages.
func Load(data []byte, name string) (*Document, error) {
	src := filebuffer.New(data)
	sizes, err := pageSizes(src, int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	fz, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, ErrFormat, err)
	}
	if n := fz.NumPage(); n != len(sizes) {
		fz.Close()
		return nil, fmt.Errorf("%s: %w: page tree lists %d pages, renderer found %d", name, ErrFormat, len(sizes), n)
	}
	return &Document{name: name, src: src, sizes: sizes, fz: fz}, nil
}

// Name returns the path or name the document was opened with.
func (d *Document) Name() string { return d.name }

// NumPages returns the page count.
func (d *Document) NumPages() int { return len(d.sizes) }

// PageSize returns the visible size of a page in points, with /Rotate
// applied.
func (d *Document) PageSize(page int) (r2.Point, error) {
	if page < 0 || page >= len(d.sizes) {
		return r2.Point{}, fmt.Errorf("%w: %d of %d", ErrPageRange, page+1, len(d.sizes))
	}
	return d.sizes[page], nil
}

// Render rasterises a page at 72*zoom DPI, so one point maps to zoom pixels.
func (d *Document) Render(page int, zoom float64) (*image.RGBA, error) {
	if _, err := d.PageSize(page); err != nil {
		return nil, err
	}
	if !(zoom > 0) {
		return nil, fmt.Errorf("render page %d: invalid zoom %v", page+1, zoom)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fz == nil {
		return nil, os.ErrClosed
	}
	img, err := d.fz.ImageDPI(page, 72*zoom)
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page+1, err)
	}
	return toRGBA(img), nil
}

// toRGBA returns img as an RGBA raster anchored at the origin, converting
// when the renderer hands back another colour model.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// Text extracts the text of a page.
func (d *Document) Text(page int) (string, error) {
	if _, err := d.PageSize(page); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fz == nil {
		return "", os.ErrClosed
	}
	s, err := d.fz.Text(page)
	if err != nil {
		return "", fmt.Errorf("extract text of page %d: %w", page+1, err)
	}
	return s, nil
}

// Save writes a copy of the document with anns stamped onto their pages.
func (d *Document) Save(path string, anns []annotation.Annotation) error {
	out := filebuffer.New([]byte{})
	if err := d.Stamp(out, anns); err != nil {
		return err
	}
	return os.WriteFile(path, out.Buff.Bytes(), 0o644)
}

// Stamp writes the annotated document to w.
func (d *Document) Stamp(w io.Writer, anns []annotation.Annotation) error {
	byPage, err := d.watermarks(anns)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := d.src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if len(byPage) == 0 {
		_, err := io.Copy(w, d.src)
		return err
	}
	if err := api.AddWatermarksSliceMap(d.src, w, byPage, config()); err != nil {
		return fmt.Errorf("stamp %s: %w", d.name, err)
	}
	return nil
}

// Close releases the renderer. The document cannot be rendered afterwards.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fz == nil {
		return nil
	}
	err := d.fz.Close()
	d.fz = nil
	return err
}
