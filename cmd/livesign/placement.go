package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/golang/geo/r2"
)

// placement is one annotation given on the command line as
// KIND:TEXT[@X,Y[,PAGE]]. X and Y are in points from the top-left corner
// and PAGE is one-based.
type placement struct {
	kind annotation.Kind
	text string
	at   *r2.Point
	page int
}

func parsePlacement(s string) (placement, error) {
	var p placement
	kindName, rest, ok := strings.Cut(s, ":")
	if !ok {
		// A bare kind may still carry a position, as in date@10,20.
		if i := strings.Index(s, "@"); i >= 0 {
			kindName, rest = s[:i], s[i:]
		} else {
			kindName, rest = s, ""
		}
	}
	kind, err := annotation.ParseKind(strings.TrimSpace(kindName))
	if err != nil {
		return p, err
	}
	p.kind = kind
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		at, page, ok, err := parsePosition(rest[i+1:])
		if err != nil {
			return p, fmt.Errorf("placement %q: %w", s, err)
		}
		if ok {
			p.at, p.page = &at, page
			rest = rest[:i]
		}
	}
	p.text = strings.TrimSpace(rest)
	if p.text == "" && kind != annotation.KindDate {
		return p, fmt.Errorf("placement %q: %w", s, annotation.ErrValidation)
	}
	return p, nil
}

// parsePosition reads X,Y[,PAGE]. ok is false when s is not a position at
// all, in which case the @ belongs to the text.
func parsePosition(s string) (at r2.Point, page int, ok bool, err error) {
	fields := strings.Split(s, ",")
	if len(fields) < 2 || len(fields) > 3 {
		return at, 0, false, nil
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if errX != nil || errY != nil {
		return at, 0, false, nil
	}
	if len(fields) == 3 {
		n, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil || n < 1 {
			return at, 0, false, fmt.Errorf("invalid page %q", fields[2])
		}
		page = n - 1
	}
	return r2.Point{X: x, Y: y}, page, true, nil
}

// apply adds the placement to s and returns the new id. A date with no
// text uses today's date.
func (p placement) apply(s *editor.Session) (annotation.ID, error) {
	if p.page != s.Page() {
		if err := s.SetPage(p.page); err != nil {
			return 0, err
		}
	}
	var (
		id  annotation.ID
		err error
	)
	if p.kind == annotation.KindDate && p.text == "" {
		id, err = s.AddDate()
	} else {
		id, err = s.Add(p.text, p.kind)
	}
	if err != nil {
		return 0, err
	}
	if p.at != nil {
		if err := s.Place(id, *p.at); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// placementList collects repeated -a flags.
type placementList []placement

func (l *placementList) String() string {
	parts := make([]string, len(*l))
	for i, p := range *l {
		parts[i] = fmt.Sprintf("%s:%s", p.kind, p.text)
	}
	return strings.Join(parts, ";")
}

func (l *placementList) Set(value string) error {
	p, err := parsePlacement(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

// applyAll adds every placement to s in order.
func (l placementList) applyAll(s *editor.Session) error {
	for _, p := range l {
		if _, err := p.apply(s); err != nil {
			return fmt.Errorf("%s %q: %w", p.kind, p.text, err)
		}
	}
	return nil
}
