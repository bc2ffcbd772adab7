package annotation

import (
	"fmt"
	"strings"

	"github.com/example/livesign/internal/viewport"
	"github.com/golang/geo/r2"
)

var (
	// DefaultPlacementMargin is subtracted from the page size before
	// centring a new annotation so its text box stays on the page.
	DefaultPlacementMargin = r2.Point{X: 100, Y: 30}
	// DefaultReserved is the extent kept free at the right and bottom edges
	// when clamping positions.
	DefaultReserved = r2.Point{X: 100, Y: 50}
)

// Entry pairs an id with a copy of its annotation.
type Entry struct {
	ID ID
	Annotation
}

// Store is the ordered annotation sequence of one document. Order is
// insertion order and nothing reorders it.
type Store struct {
	items  []*Annotation
	nextID ID

	Styles          Styles
	PlacementMargin r2.Point
	Reserved        r2.Point
}

// NewStore returns an empty store using the given presets.
func NewStore(styles Styles) *Store {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Store{
		nextID:          1,
		Styles:          styles,
		PlacementMargin: DefaultPlacementMargin,
		Reserved:        DefaultReserved,
	}
}

// Add creates an annotation centred on a page of the given size and
// appends it.
func (s *Store) Add(text string, kind Kind, page int, pageSize r2.Point) (ID, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrValidation
	}
	if page < 0 {
		return 0, fmt.Errorf("negative page index %d", page)
	}
	style := s.Styles.For(kind)
	pos := r2.Point{
		X: (pageSize.X - s.PlacementMargin.X) / 2,
		Y: (pageSize.Y - s.PlacementMargin.Y) / 2,
	}
	pos = viewport.Clamp(pos, pageSize, s.Reserved)
	id := s.nextID
	s.nextID++
	s.items = append(s.items, &Annotation{
		ID:       id,
		Text:     text,
		Kind:     kind,
		Page:     page,
		X:        pos.X,
		Y:        pos.Y,
		FontSize: style.FontSize,
		Color:    style.Color,
	})
	return id, nil
}

func (s *Store) index(id ID) int {
	for i, a := range s.items {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) lookup(id ID) (*Annotation, error) {
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return s.items[i], nil
}

// Get returns a copy of the annotation with the given id.
func (s *Store) Get(id ID) (Annotation, bool) {
	a, err := s.lookup(id)
	if err != nil {
		return Annotation{}, false
	}
	return *a, true
}

// Edit replaces the text of an annotation. Position, style and page are
// left untouched.
func (s *Store) Edit(id ID, text string) error {
	a, err := s.lookup(id)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrValidation
	}
	a.Text = text
	return nil
}

// Move sets the document position of an annotation as given. Callers clamp.
func (s *Store) Move(id ID, p r2.Point) error {
	a, err := s.lookup(id)
	if err != nil {
		return err
	}
	a.X, a.Y = p.X, p.Y
	return nil
}

// SetStyle changes the font size and colour of one annotation.
func (s *Store) SetStyle(id ID, st Style) error {
	a, err := s.lookup(id)
	if err != nil {
		return err
	}
	if st.FontSize > 0 {
		a.FontSize = st.FontSize
	}
	a.Color = st.Color
	return nil
}

// SetDisplay records the drawn representation of an annotation. An empty
// tag marks it undrawn.
func (s *Store) SetDisplay(id ID, tag string) error {
	a, err := s.lookup(id)
	if err != nil {
		return err
	}
	a.DisplayID = tag
	return nil
}

// Delete removes an annotation and returns the removed record.
func (s *Store) Delete(id ID) (Annotation, error) {
	i := s.index(id)
	if i < 0 {
		return Annotation{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	removed := *s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return removed, nil
}

// ForPage returns the annotations of one page in insertion order.
func (s *Store) ForPage(page int) []Entry {
	var out []Entry
	for _, a := range s.items {
		if a.Page == page {
			out = append(out, Entry{ID: a.ID, Annotation: *a})
		}
	}
	return out
}

// IDAtRow maps a row of the page-filtered list to an annotation id. Row n
// is the n-th annotation of that page, not the n-th overall. The mapping
// is recomputed on every call.
func (s *Store) IDAtRow(page, row int) (ID, error) {
	if row >= 0 {
		n := 0
		for _, a := range s.items {
			if a.Page != page {
				continue
			}
			if n == row {
				return a.ID, nil
			}
			n++
		}
	}
	return 0, fmt.Errorf("%w: row %d on page %d", ErrNotFound, row, page)
}

// All returns copies of every annotation in insertion order.
func (s *Store) All() []Annotation {
	out := make([]Annotation, len(s.items))
	for i, a := range s.items {
		out[i] = *a
	}
	return out
}

// Len reports the number of live annotations.
func (s *Store) Len() int { return len(s.items) }

// Clear drops every annotation. IDs keep increasing afterwards.
func (s *Store) Clear() { s.items = nil }
