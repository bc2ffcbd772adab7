package appstate

import (
	"errors"
	"image"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/notify"
	"github.com/example/livesign/internal/platform"
	"github.com/golang/geo/r2"
	"golang.org/x/mobile/event/key"
)

type fakeDoc struct {
	pages   []r2.Point
	saved   []annotation.Annotation
	path    string
	renders int
}

func (d *fakeDoc) NumPages() int { return len(d.pages) }

func (d *fakeDoc) PageSize(i int) (r2.Point, error) {
	if i < 0 || i >= len(d.pages) {
		return r2.Point{}, editor.ErrPageRange
	}
	return d.pages[i], nil
}

func (d *fakeDoc) Save(path string, anns []annotation.Annotation) error {
	d.path = path
	d.saved = anns
	return nil
}

func (d *fakeDoc) Close() error { return nil }

func (d *fakeDoc) Render(page int, zoom float64) (*image.RGBA, error) {
	d.renders++
	sz := d.pages[page].Mul(zoom)
	return image.NewRGBA(image.Rect(0, 0, int(sz.X), int(sz.Y))), nil
}

type fakeClip struct {
	text string
	err  error
}

func (c *fakeClip) ReadText() (string, error) { return c.text, c.err }

func (c *fakeClip) WriteText(s string) error {
	c.text = s
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T) (*controller, *fakeDoc, *fakeClip, *testClock) {
	t.Helper()
	clk := &testClock{t: time.Date(2024, 3, 7, 9, 0, 0, 0, time.UTC)}
	s := editor.New(editor.WithClock(clk.now))
	doc := &fakeDoc{pages: []r2.Point{{X: 612, Y: 792}, {X: 300, Y: 400}}}
	if err := s.Load(doc, "/tmp/contract.pdf"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	c := newController(s)
	clip := &fakeClip{}
	c.doc = doc
	c.clip = clip
	c.now = clk.now
	return c, doc, clip, clk
}

func typeText(p *prompt, s string) {
	for _, r := range s {
		p.key(r, key.CodeUnknown, 0)
	}
}

func TestPromptAddSelectsNewAnnotation(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.trigger("signature")
	if !c.prompt.active {
		t.Fatalf("prompt not opened")
	}
	typeText(&c.prompt, "Jane Doe")
	if _, err := c.prompt.key(0, key.CodeReturnEnter, 0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	id, ok := c.session.Selection()
	if !ok {
		t.Fatalf("new annotation not selected")
	}
	a, _ := c.session.Get(id)
	if a.Text != "Jane Doe" || a.Kind != annotation.KindSignature {
		t.Fatalf("got %+v", a)
	}
	if c.msg.level != levelInfo {
		t.Errorf("message level = %v", c.msg.level)
	}
}

func TestPromptAddBlankIsWarning(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.trigger("text")
	typeText(&c.prompt, "   ")
	_, err := c.prompt.key(0, key.CodeReturnEnter, 0)
	if !errors.Is(err, annotation.ErrValidation) {
		t.Fatalf("err = %v", err)
	}
	if c.msg.level != levelWarning {
		t.Errorf("message level = %v", c.msg.level)
	}
	if len(c.session.Annotations()) != 0 {
		t.Errorf("blank text was added")
	}
}

func TestAddWithoutDocument(t *testing.T) {
	c := newController(editor.New())
	c.trigger("text")
	if c.prompt.active {
		t.Fatalf("prompt opened without a document")
	}
	if c.msg.level != levelWarning {
		t.Errorf("message level = %v", c.msg.level)
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.trigger("date")
	if len(c.session.Annotations()) != 1 {
		t.Fatalf("date not added")
	}
	c.trigger("delete")
	if len(c.session.Annotations()) != 1 {
		t.Fatalf("deleted without confirmation")
	}
	c.trigger("delete")
	if len(c.session.Annotations()) != 0 {
		t.Fatalf("second press did not delete")
	}
}

func TestDeleteConfirmationDisarmed(t *testing.T) {
	c, _, _, _ := newTestController(t)
	c.trigger("date")
	c.trigger("delete")
	c.trigger("copy")
	c.trigger("delete")
	if len(c.session.Annotations()) != 1 {
		t.Fatalf("another action should disarm the pending delete")
	}
}

func TestCopyAndPaste(t *testing.T) {
	c, _, clip, _ := newTestController(t)
	var sent []string
	n := notify.New(notify.LoadPreferences())
	n.Enable(notify.EventCopy, true)
	n.SetSender(func(title, body string, opts platform.Options) error {
		sent = append(sent, body)
		return nil
	})
	c.notifier = n

	c.trigger("date")
	c.trigger("copy")
	if clip.text != "March 07, 2024" {
		t.Fatalf("clipboard = %q", clip.text)
	}
	if len(sent) != 1 {
		t.Errorf("notifications = %v", sent)
	}

	clip.text = "\n  first line \nsecond"
	c.trigger("paste")
	id, _ := c.session.Selection()
	a, _ := c.session.Get(id)
	if a.Text != "first line" || a.Kind != annotation.KindText {
		t.Fatalf("pasted %+v", a)
	}

	clip.text = "  \n"
	c.trigger("paste")
	if c.msg.level != levelWarning {
		t.Errorf("empty clipboard level = %v", c.msg.level)
	}
	if len(c.session.Annotations()) != 2 {
		t.Errorf("annotations = %d", len(c.session.Annotations()))
	}
}

func TestSavePath(t *testing.T) {
	c, doc, _, _ := newTestController(t)
	c.trigger("save")
	if c.msg.level != levelWarning {
		t.Fatalf("saving nothing should warn, got %v", c.msg.level)
	}
	if doc.path != "" {
		t.Fatalf("document saved without annotations")
	}

	c.trigger("date")
	c.saveDir = "/out"
	c.trigger("save")
	if want := filepath.Join("/out", "contract_signed.pdf"); doc.path != want {
		t.Errorf("saved to %q, want %q", doc.path, want)
	}
	c.output = "/elsewhere/x.pdf"
	c.trigger("save")
	if doc.path != "/elsewhere/x.pdf" {
		t.Errorf("output flag ignored: %q", doc.path)
	}
}

func TestTurnPage(t *testing.T) {
	c, doc, _, _ := newTestController(t)
	c.trigger("date")
	c.trigger("nextpage")
	if c.session.Page() != 1 {
		t.Fatalf("page = %d", c.session.Page())
	}
	if _, ok := c.session.Selection(); ok {
		t.Errorf("selection survived the page change")
	}
	c.trigger("nextpage")
	if c.session.Page() != 1 || c.msg.level != levelWarning {
		t.Errorf("turning past the end: page %d level %v", c.session.Page(), c.msg.level)
	}
	if img := c.raster(); img.Bounds().Dx() != 300 {
		t.Errorf("raster width = %d", img.Bounds().Dx())
	}
	c.raster()
	if doc.renders != 1 {
		t.Errorf("renders = %d, want cached", doc.renders)
	}
}

func TestKeyAction(t *testing.T) {
	c := newController(editor.New())
	cases := []struct {
		r    rune
		code key.Code
		mods key.Modifiers
		want string
	}{
		{'s', key.CodeS, 0, "signature"},
		{'S', key.CodeS, key.ModShift, "signature"},
		{'s', key.CodeS, key.ModControl, "save"},
		{19, key.CodeS, key.ModControl, "save"},
		{'v', key.CodeV, key.ModControl, "paste"},
		{-1, key.CodeDeleteForward, 0, "delete"},
		{-1, key.CodePageDown, 0, "nextpage"},
		{-1, key.CodeEscape, 0, "deselect"},
		{'\r', key.CodeReturnEnter, 0, "edit"},
	}
	for _, tc := range cases {
		got, ok := c.keyAction(tc.r, tc.code, tc.mods)
		if !ok || got != tc.want {
			t.Errorf("keyAction(%q, %v, %v) = %q, %v; want %q", tc.r, tc.code, tc.mods, got, ok, tc.want)
		}
	}
	if got, ok := c.keyAction('x', key.CodeX, 0); ok {
		t.Errorf("unbound key mapped to %q", got)
	}
}

func center(t *testing.T, s *editor.Session, id annotation.ID) image.Point {
	t.Helper()
	r, ok := s.Bounds(id)
	if !ok {
		t.Fatalf("no bounds for %d", id)
	}
	c := r.Center()
	return image.Pt(int(c.X), int(c.Y))
}

func TestPointerDragAndDoubleClick(t *testing.T) {
	c, _, _, clk := newTestController(t)
	c.trigger("date")
	id, _ := c.session.Selection()
	before, _ := c.session.Get(id)
	p := center(t, c.session, id)

	c.pointerDown(p)
	if c.session.State().Phase != editor.Dragging {
		t.Fatalf("phase = %v", c.session.State().Phase)
	}
	clk.advance(time.Second)
	if !c.pointerMove(p.Add(image.Pt(40, 20))) {
		t.Errorf("move did not repaint")
	}
	c.pointerUp(p.Add(image.Pt(40, 20)))
	after, _ := c.session.Get(id)
	if after.X == before.X && after.Y == before.Y {
		t.Fatalf("annotation did not move")
	}

	q := center(t, c.session, id)
	clk.advance(time.Second)
	c.pointerDown(q)
	c.pointerUp(q)
	clk.advance(100 * time.Millisecond)
	c.pointerDown(q)
	if !c.prompt.active {
		t.Fatalf("double click did not open the editor")
	}
	if c.prompt.value() != before.Text {
		t.Errorf("prompt text = %q", c.prompt.value())
	}
}

func TestHoverStatus(t *testing.T) {
	c, _, _, _ := newTestController(t)
	if got := c.status(); got != "contract.pdf | page 1/2 | 0 on page" {
		t.Errorf("status = %q", got)
	}
	c.trigger("date")
	id, _ := c.session.Selection()
	p := center(t, c.session, id)
	if !c.pointerMove(p) {
		t.Fatalf("hover did not repaint")
	}
	if c.pointerMove(p) {
		t.Errorf("unchanged hover repainted")
	}
	a, _ := c.session.Get(id)
	if c.status() != a.Label() {
		t.Errorf("status = %q, want %q", c.status(), a.Label())
	}
	c.pointerMove(image.Pt(1, 1))
	if c.status() == a.Label() {
		t.Errorf("hover label kept after leaving")
	}
}

func TestRowPress(t *testing.T) {
	c, _, _, clk := newTestController(t)
	c.trigger("date")
	c.session.ClearSelection()

	c.rowPress(0, image.Pt(900, 80))
	if _, ok := c.session.Selection(); !ok {
		t.Fatalf("row press did not select")
	}
	if c.prompt.active {
		t.Fatalf("single press opened the editor")
	}
	clk.advance(150 * time.Millisecond)
	c.rowPress(0, image.Pt(901, 80))
	if !c.prompt.active {
		t.Fatalf("double press did not open the editor")
	}
	c.prompt.key(0, key.CodeEscape, 0)

	c.rowPress(5, image.Pt(900, 200))
	if c.msg.level == levelError {
		t.Errorf("empty row reported an error")
	}
}

func TestMessageExpires(t *testing.T) {
	c, _, _, clk := newTestController(t)
	c.show(levelInfo, "hello")
	if !c.messageVisible() {
		t.Fatalf("message hidden")
	}
	clk.advance(3 * time.Second)
	if c.messageVisible() {
		t.Fatalf("message still visible")
	}
}
