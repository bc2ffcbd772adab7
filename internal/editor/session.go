// Package editor implements the editing session for one open document: the
// current page, the annotation store and the selection and drag state.
package editor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/viewport"
	"github.com/golang/geo/r2"
)

var (
	// ErrNoDocument is returned by operations that need an open document.
	ErrNoDocument = errors.New("no document open")
	// ErrNoAnnotations is returned when saving a document without annotations.
	ErrNoAnnotations = errors.New("no annotations to save")
	// ErrPageRange reports a page index outside the open document.
	ErrPageRange = errors.New("page out of range")
)

// IsWarning reports whether err is one of the guarded no-op cases that the
// user should see as a warning rather than a failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoDocument) || errors.Is(err, ErrNoAnnotations)
}

// DateLayout formats the text of date annotations.
const DateLayout = "January 02, 2006"

// Document is the PDF collaborator as seen by the session.
type Document interface {
	NumPages() int
	// PageSize returns the page dimensions in document units.
	PageSize(page int) (r2.Point, error)
	// Save writes a copy of the document with anns flattened into the pages.
	Save(path string, anns []annotation.Annotation) error
	Close() error
}

// Measurer returns the extent of a text box drawn at size pixels.
type Measurer interface {
	TextSize(kind annotation.Kind, text string, size float64) (w, h float64)
}

// Settings holds the geometry of the session.
type Settings struct {
	Mapper       viewport.Mapper
	Grid         float64
	HitPadding   float64
	DragInterval time.Duration
	Reserved     r2.Point
	Styles       annotation.Styles
}

// DefaultSettings returns margin 25, zoom 1, a 5 unit grid, 5px hit
// padding and a 16ms drag throttle.
func DefaultSettings() Settings {
	return Settings{
		Mapper:       viewport.Default(),
		Grid:         5,
		HitPadding:   5,
		DragInterval: 16 * time.Millisecond,
		Reserved:     annotation.DefaultReserved,
		Styles:       annotation.DefaultStyles(),
	}
}

// Option modifies a Session during creation.
type Option func(*Session)

// WithSettings replaces the default settings.
func WithSettings(st Settings) Option { return func(s *Session) { s.settings = st } }

// WithMeasurer sets the text measurer used for bounding boxes.
func WithMeasurer(m Measurer) Option { return func(s *Session) { s.measure = m } }

// WithClock sets the time source used by the drag throttle and date
// annotations.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// Session owns one open document and everything placed on it.
type Session struct {
	settings Settings
	measure  Measurer
	now      func() time.Time

	doc      Document
	path     string
	page     int
	pageSize r2.Point
	store    *annotation.Store

	state    State
	lastMove time.Time
}

// New creates a Session with no document.
func New(opts ...Option) *Session {
	s := &Session{
		settings: DefaultSettings(),
		measure:  fixedMeasurer{},
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.store = annotation.NewStore(s.settings.Styles)
	s.store.Reserved = s.settings.Reserved
	return s
}

// Settings returns the session geometry.
func (s *Session) Settings() Settings { return s.settings }

// Load makes doc the open document. The previous document is closed and
// every annotation, selection and drag is discarded.
func (s *Session) Load(doc Document, path string) error {
	if doc == nil {
		return ErrNoDocument
	}
	if doc.NumPages() < 1 {
		return fmt.Errorf("%s: %w: document has no pages", path, ErrPageRange)
	}
	size, err := doc.PageSize(0)
	if err != nil {
		return err
	}
	if err := s.Close(); err != nil {
		return err
	}
	s.doc = doc
	s.path = path
	s.page = 0
	s.pageSize = size
	return nil
}

// Close closes the open document and resets the session.
func (s *Session) Close() error {
	s.store.Clear()
	s.state = State{}
	s.lastMove = time.Time{}
	if s.doc == nil {
		return nil
	}
	doc := s.doc
	s.doc = nil
	s.path = ""
	s.page = 0
	s.pageSize = r2.Point{}
	return doc.Close()
}

// HasDocument reports whether a document is open.
func (s *Session) HasDocument() bool { return s.doc != nil }

// Path returns the path the open document was loaded from.
func (s *Session) Path() string { return s.path }

// Page returns the current page index.
func (s *Session) Page() int { return s.page }

// PageSize returns the size of the current page in document units.
func (s *Session) PageSize() r2.Point { return s.pageSize }

// NumPages returns the page count of the open document, or 0.
func (s *Session) NumPages() int {
	if s.doc == nil {
		return 0
	}
	return s.doc.NumPages()
}

// SetPage changes the current page. Any selection or drag is dropped.
func (s *Session) SetPage(page int) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if page < 0 || page >= s.doc.NumPages() {
		return fmt.Errorf("%w: %d of %d", ErrPageRange, page+1, s.doc.NumPages())
	}
	size, err := s.doc.PageSize(page)
	if err != nil {
		return err
	}
	s.page = page
	s.pageSize = size
	s.state = State{}
	s.syncDisplay()
	return nil
}

// Add places a new annotation on the current page.
func (s *Session) Add(text string, kind annotation.Kind) (annotation.ID, error) {
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	id, err := s.store.Add(text, kind, s.page, s.pageSize)
	if err != nil {
		return 0, err
	}
	s.syncDisplay()
	return id, nil
}

// AddDate places today's date on the current page.
func (s *Session) AddDate() (annotation.ID, error) {
	return s.Add(s.now().Format(DateLayout), annotation.KindDate)
}

// Edit replaces the text of an annotation.
func (s *Session) Edit(id annotation.ID, text string) error {
	return s.store.Edit(id, text)
}

// Delete removes an annotation, dropping it from the selection.
func (s *Session) Delete(id annotation.ID) (annotation.Annotation, error) {
	a, err := s.store.Delete(id)
	if err != nil {
		return a, err
	}
	if s.state.Phase != Idle && s.state.ID == id {
		s.state = State{}
	}
	return a, nil
}

// Get returns the annotation with the given id.
func (s *Session) Get(id annotation.ID) (annotation.Annotation, bool) {
	return s.store.Get(id)
}

// Annotations returns every annotation in insertion order.
func (s *Session) Annotations() []annotation.Annotation { return s.store.All() }

// Row is one line of the annotation list of the current page.
type Row struct {
	ID       annotation.ID
	Label    string
	Selected bool
}

// Rows lists the annotations of the current page.
func (s *Session) Rows() []Row {
	entries := s.store.ForPage(s.page)
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			ID:       e.ID,
			Label:    e.Label(),
			Selected: s.state.Phase != Idle && s.state.ID == e.ID,
		}
	}
	return rows
}

// IDAtRow maps a row of Rows to an annotation id.
func (s *Session) IDAtRow(row int) (annotation.ID, error) {
	return s.store.IDAtRow(s.page, row)
}

// Save writes the annotated document to path. Saving without a document or
// without annotations is a guarded no-op reported through IsWarning.
func (s *Session) Save(path string) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if s.store.Len() == 0 {
		return ErrNoAnnotations
	}
	if path == "" {
		path = OutputPath(s.path)
	}
	return s.doc.Save(path, s.store.All())
}

// OutputPath returns the default save path for src, "<base>_signed.pdf"
// next to the source.
func OutputPath(src string) string {
	ext := filepath.Ext(src)
	base := strings.TrimSuffix(src, ext)
	if base == "" {
		base = "document"
	}
	return base + "_signed.pdf"
}

// DisplayTag is the display id given to a drawn annotation.
func DisplayTag(id annotation.ID) string { return fmt.Sprintf("sig_%d", id) }

func (s *Session) syncDisplay() {
	for _, a := range s.store.All() {
		tag := ""
		if a.Page == s.page {
			tag = DisplayTag(a.ID)
		}
		if a.DisplayID != tag {
			_ = s.store.SetDisplay(a.ID, tag)
		}
	}
}

// fixedMeasurer approximates text boxes when no font backend is wired.
type fixedMeasurer struct{}

func (fixedMeasurer) TextSize(_ annotation.Kind, text string, size float64) (float64, float64) {
	return 0.6 * size * float64(len([]rune(text))), 1.2 * size
}
