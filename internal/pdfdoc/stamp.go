package pdfdoc

import (
	"fmt"
	"math"

	"github.com/example/livesign/internal/annotation"
	"github.com/golang/geo/r2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// stampMargin keeps stamped text at least this far inside the right and
// bottom page edges.
const stampMargin = 2

func config() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// StampPosition clamps an annotation position to [0, w-2] x [0, h-2].
func StampPosition(p, page r2.Point) r2.Point {
	return r2.Point{
		X: math.Max(0, math.Min(p.X, page.X-stampMargin)),
		Y: math.Max(0, math.Min(p.Y, page.Y-stampMargin)),
	}
}

// description builds the pdfcpu text stamp description. The stamp is
// anchored at the top left of the page and offset so the top-left corner
// of the text box lands on the annotation position.
func description(a annotation.Annotation, page r2.Point) string {
	p := StampPosition(a.Pos(), page)
	size := int(math.Round(a.FontSize))
	if size < 1 {
		size = 1
	}
	return fmt.Sprintf("fontname:%s, points:%d, fillcolor:%s, rotation:0, scalefactor:1 abs, position:tl, offset:%.2f %.2f, opacity:1",
		a.Kind.PDFFont(), size, a.Color.Clamped().Hex(), p.X, -p.Y)
}

func (d *Document) watermarks(anns []annotation.Annotation) (map[int][]*model.Watermark, error) {
	out := make(map[int][]*model.Watermark)
	for _, a := range anns {
		size, err := d.PageSize(a.Page)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", a.ID, err)
		}
		wm, err := api.TextWatermark(a.Text, description(a, size), true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", a.ID, err)
		}
		out[a.Page+1] = append(out[a.Page+1], wm)
	}
	return out, nil
}
