// Package annotation holds the records placed on PDF pages and the ordered
// store that owns them for the lifetime of one open document.
package annotation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/golang/geo/r2"
	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// ErrValidation reports annotation text that is empty after trimming.
	ErrValidation = errors.New("annotation text is empty")
	// ErrNotFound reports an id that no longer references a live annotation.
	ErrNotFound = errors.New("annotation not found")
)

// Kind identifies what an annotation represents. It selects the font and
// the default style.
type Kind int

const (
	KindSignature Kind = iota
	KindText
	KindDate
)

var kindNames = []string{"signature", "text", "date"}

// Kinds lists every kind in display order.
func Kinds() []Kind { return []Kind{KindSignature, KindText, KindDate} }

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Title returns the kind name for list rows, e.g. "Signature".
func (k Kind) Title() string {
	return cases.Title(language.English).String(k.String())
}

// ParseKind parses a kind name case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown annotation kind %q", s)
}

// PDFFont names the standard 14 font used when the annotation is written
// into the page content.
func (k Kind) PDFFont() string {
	switch k {
	case KindSignature:
		return "Times-Italic"
	case KindDate:
		return "Helvetica-Bold"
	default:
		return "Helvetica"
	}
}

// ID is a stable handle for an annotation. IDs are never reused within a
// store, so a stale id can only ever miss.
type ID uint64

// Annotation is one placed piece of content on a page.
type Annotation struct {
	ID       ID
	Text     string
	Kind     Kind
	Page     int
	X, Y     float64
	FontSize float64
	Color    colorful.Color
	// DisplayID correlates the record with its drawn representation. It is
	// empty while the annotation is not on screen.
	DisplayID string
}

// Pos returns the document-space anchor (top-left of the text box).
func (a Annotation) Pos() r2.Point { return r2.Point{X: a.X, Y: a.Y} }

// Label is the list row text for the annotation, e.g. "Signature: Jane Doe".
func (a Annotation) Label() string {
	return a.Kind.Title() + ": " + Truncate(a.Text, 25)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// Style is the font size and colour applied to new annotations of a kind.
type Style struct {
	FontSize float64
	Color    colorful.Color
}

// Styles holds one preset per kind.
type Styles map[Kind]Style

var (
	primary     = colorful.Color{R: 0x3b / 255.0, G: 0x82 / 255.0, B: 0xf6 / 255.0}
	textPrimary = colorful.Color{R: 0x1e / 255.0, G: 0x29 / 255.0, B: 0x3b / 255.0}
)

// DefaultStyles returns the built-in presets.
func DefaultStyles() Styles {
	return Styles{
		KindSignature: {FontSize: 18, Color: primary},
		KindText:      {FontSize: 14, Color: textPrimary},
		KindDate:      {FontSize: 14, Color: textPrimary},
	}
}

// For returns the style for k, falling back to the built-in preset.
func (s Styles) For(k Kind) Style {
	if st, ok := s[k]; ok && st.FontSize > 0 {
		return st
	}
	return DefaultStyles()[k]
}

// ParseColor parses #rgb or #rrggbb (the leading # is optional).
func ParseColor(s string) (colorful.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return colorful.Color{}, fmt.Errorf("invalid color %q", s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

// ColorOrBlack parses s and falls back to black when it is not a colour.
func ColorOrBlack(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
