package editor

import (
	"fmt"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/viewport"
	"github.com/golang/geo/r2"
)

// Phase is the selection state of a session.
type Phase int

const (
	Idle Phase = iota
	Selected
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Selected:
		return "selected"
	case Dragging:
		return "dragging"
	default:
		return "idle"
	}
}

// State is the current selection. ID is meaningful when Phase is not Idle
// and Grab only while Dragging.
type State struct {
	Phase Phase
	ID    annotation.ID
	// Grab is the screen vector from the annotation anchor to the pointer
	// at press time.
	Grab r2.Point
}

// State returns the current selection state.
func (s *Session) State() State { return s.state }

// Selection returns the selected or dragged annotation id.
func (s *Session) Selection() (annotation.ID, bool) {
	if s.state.Phase == Idle {
		return 0, false
	}
	return s.state.ID, true
}

// Select selects an annotation of the current page, as from the list.
func (s *Session) Select(id annotation.ID) error {
	a, ok := s.store.Get(id)
	if !ok || a.Page != s.page {
		return annotation.ErrNotFound
	}
	s.state = State{Phase: Selected, ID: id}
	return nil
}

// ClearSelection returns to Idle.
func (s *Session) ClearSelection() { s.state = State{} }

// Bounds returns the unpadded screen box of an annotation's text.
func (s *Session) Bounds(id annotation.ID) (r2.Rect, bool) {
	a, ok := s.store.Get(id)
	if !ok {
		return r2.EmptyRect(), false
	}
	return s.bounds(a), true
}

func (s *Session) bounds(a annotation.Annotation) r2.Rect {
	m := s.settings.Mapper
	lo := m.ToScreen(a.Pos())
	w, h := s.measure.TextSize(a.Kind, a.Text, m.Scale(a.FontSize))
	return r2.RectFromPoints(lo, lo.Add(r2.Point{X: w, Y: h}))
}

// HitTest returns the first annotation of page, in insertion order, whose
// padded screen box contains the point.
func (s *Session) HitTest(screen r2.Point, page int) (annotation.ID, bool) {
	for _, e := range s.store.ForPage(page) {
		box := s.bounds(e.Annotation).ExpandedByMargin(s.settings.HitPadding)
		if box.ContainsPoint(screen) {
			return e.ID, true
		}
	}
	return 0, false
}

// Hover returns the annotation under the pointer on the current page.
func (s *Session) Hover(screen r2.Point) (annotation.Annotation, bool) {
	id, ok := s.HitTest(screen, s.page)
	if !ok {
		return annotation.Annotation{}, false
	}
	return s.store.Get(id)
}

// PointerDown starts a drag when the press lands on an annotation of the
// current page and clears the selection otherwise.
func (s *Session) PointerDown(screen r2.Point) (annotation.ID, bool) {
	id, ok := s.HitTest(screen, s.page)
	if !ok {
		s.state = State{}
		return 0, false
	}
	a, _ := s.store.Get(id)
	anchor := s.settings.Mapper.ToScreen(a.Pos())
	s.state = State{Phase: Dragging, ID: id, Grab: screen.Sub(anchor)}
	s.lastMove = s.now()
	return id, true
}

// PointerMove moves the dragged annotation. Updates closer together than
// the drag interval are dropped. It reports whether the position changed.
func (s *Session) PointerMove(screen r2.Point) bool {
	if s.state.Phase != Dragging {
		return false
	}
	now := s.now()
	if now.Sub(s.lastMove) < s.settings.DragInterval {
		return false
	}
	s.lastMove = now
	return s.dragTo(screen)
}

// PointerUp ends a drag at the final pointer position, snaps the result to
// the grid and leaves the annotation selected.
func (s *Session) PointerUp(screen r2.Point) (annotation.ID, bool) {
	if s.state.Phase != Dragging {
		return 0, false
	}
	id := s.state.ID
	s.dragTo(screen)
	if a, ok := s.store.Get(id); ok {
		p := viewport.SnapWithin(a.Pos(), s.settings.Grid, s.pageSize, s.settings.Reserved)
		_ = s.store.Move(id, p)
	}
	s.state = State{Phase: Selected, ID: id}
	return id, true
}

func (s *Session) dragTo(screen r2.Point) bool {
	a, ok := s.store.Get(s.state.ID)
	if !ok {
		s.state = State{}
		return false
	}
	p := s.settings.Mapper.ToDocument(screen.Sub(s.state.Grab))
	p = viewport.Clamp(p, s.pageSize, s.settings.Reserved)
	if p == a.Pos() {
		return false
	}
	_ = s.store.Move(a.ID, p)
	return true
}

// DoubleClick reports the id to edit when the pointer is over the selected
// annotation. It does not change state.
func (s *Session) DoubleClick(screen r2.Point) (annotation.ID, bool) {
	if s.state.Phase != Selected {
		return 0, false
	}
	id, ok := s.HitTest(screen, s.page)
	if !ok || id != s.state.ID {
		return 0, false
	}
	return id, true
}

// Place moves an annotation to a document position on its page, clamped
// and snapped the same way a finished drag is. The selection is unchanged.
func (s *Session) Place(id annotation.ID, p r2.Point) error {
	a, ok := s.store.Get(id)
	if !ok {
		return fmt.Errorf("%w: id %d", annotation.ErrNotFound, id)
	}
	page := s.pageSize
	if a.Page != s.page {
		size, err := s.doc.PageSize(a.Page)
		if err != nil {
			return err
		}
		page = size
	}
	p = viewport.Clamp(p, page, s.settings.Reserved)
	return s.store.Move(id, viewport.SnapWithin(p, s.settings.Grid, page, s.settings.Reserved))
}
