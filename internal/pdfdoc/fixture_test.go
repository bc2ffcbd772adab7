package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/golang/geo/r2"
)

type testPage struct {
	size    r2.Point
	rotate  int
	inherit bool
	text    string
}

// buildPDF writes a small uncompressed PDF with a correct xref table. The
// page tree carries a Letter MediaBox for pages that inherit theirs.
func buildPDF(pages ...testPage) []byte {
	var objs []string
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", 4+2*i)
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", kids, len(pages)))
	objs = append(objs, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, p := range pages {
		page := "<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >>"
		if !p.inherit {
			page += fmt.Sprintf(" /MediaBox [0 0 %g %g]", p.size.X, p.size.Y)
		}
		if p.rotate != 0 {
			page += fmt.Sprintf(" /Rotate %d", p.rotate)
		}
		page += fmt.Sprintf(" /Contents %d 0 R >>", 5+2*i)
		content := ""
		if p.text != "" {
			content = fmt.Sprintf("BT /F1 12 Tf 72 700 Td (%s) Tj ET", p.text)
		}
		objs = append(objs, page, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objs)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}
