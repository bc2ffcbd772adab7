package annotation

import (
	"errors"
	"testing"

	"github.com/golang/geo/r2"
)

var letter = r2.Point{X: 612, Y: 792}

func TestAddCentresAndStyles(t *testing.T) {
	s := NewStore(nil)
	id, err := s.Add("  Jane Doe  ", KindSignature, 0, letter)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	a, ok := s.Get(id)
	if !ok {
		t.Fatalf("Get(%d) missing", id)
	}
	if a.Text != "Jane Doe" {
		t.Errorf("text not trimmed: %q", a.Text)
	}
	if a.X != 256 || a.Y != 381 {
		t.Errorf("placement = (%v, %v), want (256, 381)", a.X, a.Y)
	}
	if a.FontSize != 18 || a.Color.Hex() != "#3b82f6" {
		t.Errorf("signature style = %v %s", a.FontSize, a.Color.Hex())
	}
}

func TestAddRejectsBlank(t *testing.T) {
	s := NewStore(nil)
	if _, err := s.Add("   ", KindText, 0, letter); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("store grew on rejected add")
	}
}

func TestAddClampsOnSmallPage(t *testing.T) {
	s := NewStore(nil)
	id, err := s.Add("x", KindText, 0, r2.Point{X: 80, Y: 40})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	a, _ := s.Get(id)
	if a.X != 0 || a.Y != 0 {
		t.Fatalf("expected origin on undersized page, got (%v, %v)", a.X, a.Y)
	}
}

func TestIDsAreNeverReused(t *testing.T) {
	s := NewStore(nil)
	a, _ := s.Add("a", KindText, 0, letter)
	if _, err := s.Delete(a); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	s.Clear()
	b, _ := s.Add("b", KindText, 0, letter)
	if b <= a {
		t.Fatalf("id %d reused or went backwards after %d", b, a)
	}
	if _, ok := s.Get(a); ok {
		t.Fatalf("stale id still resolves")
	}
}

func TestEdit(t *testing.T) {
	s := NewStore(nil)
	id, _ := s.Add("old", KindText, 1, letter)
	before, _ := s.Get(id)
	if err := s.Edit(id, " new "); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	after, _ := s.Get(id)
	if after.Text != "new" {
		t.Errorf("text = %q", after.Text)
	}
	if after.X != before.X || after.Y != before.Y || after.Page != before.Page || after.FontSize != before.FontSize {
		t.Errorf("edit changed more than text: %+v -> %+v", before, after)
	}
	if err := s.Edit(id, ""); !errors.Is(err, ErrValidation) {
		t.Errorf("blank edit: expected ErrValidation, got %v", err)
	}
	if err := s.Edit(id+100, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("stale edit: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteReturnsRecord(t *testing.T) {
	s := NewStore(nil)
	s.Add("a", KindText, 0, letter)
	id, _ := s.Add("b", KindDate, 0, letter)
	s.Add("c", KindText, 0, letter)
	removed, err := s.Delete(id)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if removed.Text != "b" || removed.Kind != KindDate {
		t.Errorf("removed = %+v", removed)
	}
	all := s.All()
	if len(all) != 2 || all[0].Text != "a" || all[1].Text != "c" {
		t.Fatalf("order after delete = %+v", all)
	}
	if _, err := s.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestIDAtRowUsesPageView(t *testing.T) {
	s := NewStore(nil)
	p0a, _ := s.Add("p0a", KindText, 0, letter)
	p1a, _ := s.Add("p1a", KindText, 1, letter)
	p0b, _ := s.Add("p0b", KindText, 0, letter)
	p1b, _ := s.Add("p1b", KindText, 1, letter)

	if id, err := s.IDAtRow(1, 1); err != nil || id != p1b {
		t.Errorf("IDAtRow(1, 1) = %d, %v; want %d", id, err, p1b)
	}
	if id, err := s.IDAtRow(0, 1); err != nil || id != p0b {
		t.Errorf("IDAtRow(0, 1) = %d, %v; want %d", id, err, p0b)
	}
	if _, err := s.IDAtRow(1, 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("row past end: expected ErrNotFound, got %v", err)
	}
	if _, err := s.IDAtRow(0, -1); !errors.Is(err, ErrNotFound) {
		t.Errorf("negative row: expected ErrNotFound, got %v", err)
	}

	s.Delete(p1a)
	if id, _ := s.IDAtRow(1, 0); id != p1b {
		t.Errorf("mapping not recomputed after delete: got %d", id)
	}
	rows := s.ForPage(0)
	if len(rows) != 2 || rows[0].ID != p0a || rows[1].ID != p0b {
		t.Errorf("ForPage(0) = %+v", rows)
	}
}

func TestMoveAndDisplay(t *testing.T) {
	s := NewStore(nil)
	id, _ := s.Add("a", KindText, 0, letter)
	if err := s.Move(id, r2.Point{X: 10, Y: 20}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if err := s.SetDisplay(id, "sig_1"); err != nil {
		t.Fatalf("SetDisplay: %v", err)
	}
	a, _ := s.Get(id)
	if a.Pos() != (r2.Point{X: 10, Y: 20}) || a.DisplayID != "sig_1" {
		t.Fatalf("got %+v", a)
	}
	if err := s.Move(id+1, r2.Point{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLabelTruncates(t *testing.T) {
	a := Annotation{Kind: KindSignature, Text: "Abcdefghijklmnopqrstuvwxyz0123"}
	if got, want := a.Label(), "Signature: Abcdefghijklmnopqrstuvwxy"; got != want {
		t.Fatalf("Label = %q, want %q", got, want)
	}
	d := Annotation{Kind: KindDate, Text: "März 01, 2024"}
	if got := d.Label(); got != "Date: März 01, 2024" {
		t.Fatalf("Label = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	cases := map[string]string{
		"#3b82f6": "#3b82f6",
		"1e293b":  "#1e293b",
		"#fff":    "#ffffff",
		"#abc":    "#aabbcc",
	}
	for in, want := range cases {
		c, err := ParseColor(in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", in, err)
			continue
		}
		if c.Hex() != want {
			t.Errorf("ParseColor(%q) = %s, want %s", in, c.Hex(), want)
		}
	}
	for _, bad := range []string{"", "#12", "#12345", "#1234567", "zzzzzz"} {
		if _, err := ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) accepted", bad)
		}
		if ColorOrBlack(bad).Hex() != "#000000" {
			t.Errorf("ColorOrBlack(%q) not black", bad)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(" " + k.Title() + " ")
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.Title(), got, err)
		}
	}
	if _, err := ParseKind("stamp"); err == nil {
		t.Errorf("unknown kind accepted")
	}
}
