package appstate

import (
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"
	"unicode"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/clipboard"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/notify"
	"github.com/golang/geo/r2"
	"golang.org/x/mobile/event/key"
)

// Document is an open PDF as used by the window.
type Document interface {
	editor.Document
	Render(page int, zoom float64) (*image.RGBA, error)
}

// Opener opens the document at path.
type Opener func(path string) (Document, error)

// Clipboard reads and writes clipboard text.
type Clipboard interface {
	ReadText() (string, error)
	WriteText(string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadText() (string, error) { return clipboard.ReadText() }
func (systemClipboard) WriteText(s string) error  { return clipboard.WriteText(s) }

type level int

const (
	levelInfo level = iota
	levelWarning
	levelError
)

type message struct {
	text  string
	level level
	until time.Time
}

// pageCache keeps the raster of the page on screen.
type pageCache struct {
	doc  Document
	page int
	zoom float64
	img  *image.RGBA
}

func (c *pageCache) get(doc Document, page int, zoom float64) (*image.RGBA, error) {
	if c.img != nil && c.doc == doc && c.page == page && c.zoom == zoom {
		return c.img, nil
	}
	img, err := doc.Render(page, zoom)
	if err != nil {
		return nil, err
	}
	*c = pageCache{doc: doc, page: page, zoom: zoom, img: img}
	return img, nil
}

// controller holds the window state that survives between events. All
// methods run on the event goroutine.
type controller struct {
	session  *editor.Session
	doc      Document
	opener   Opener
	output   string
	saveDir  string
	notifier *notify.Notifier
	clip     Clipboard
	now      func() time.Time

	actions        map[string]func()
	keyboardAction map[KeyShortcut]string

	prompt        prompt
	clicks        *clickTracker
	rowClicks     *clickTracker
	msg           message
	hover         string
	hoverRow      int
	confirmDelete bool
	pages         pageCache
}

func newController(s *editor.Session) *controller {
	c := &controller{
		session:        s,
		clip:           systemClipboard{},
		now:            time.Now,
		actions:        map[string]func(){},
		keyboardAction: map[KeyShortcut]string{},
		clicks:         newClickTracker(),
		rowClicks:      newClickTracker(),
		hoverRow:       -1,
	}
	c.registerActions()
	return c
}

func (c *controller) register(name string, keys KeyboardShortcuts, fn func()) {
	c.actions[name] = fn
	if keys != nil {
		for _, sc := range keys.KeyboardShortcuts() {
			c.keyboardAction[sc] = name
		}
	}
}

func (c *controller) registerActions() {
	c.register("signature", shortcutList{{Rune: 's'}}, func() { c.promptAdd(annotation.KindSignature) })
	c.register("text", shortcutList{{Rune: 't'}}, func() { c.promptAdd(annotation.KindText) })
	c.register("date", shortcutList{{Rune: 'd'}}, c.addDate)
	c.register("edit", shortcutList{{Rune: 'e'}, {Code: key.CodeReturnEnter}}, c.promptEdit)
	c.register("delete", shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, c.deleteSelected)
	c.register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, c.copySelected)
	c.register("paste", shortcutList{{Rune: 'v', Modifiers: key.ModControl}}, c.paste)
	c.register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, c.save)
	c.register("open", shortcutList{{Rune: 'o', Modifiers: key.ModControl}}, c.promptOpen)
	c.register("prevpage", shortcutList{{Code: key.CodePageUp}}, func() { c.turnPage(-1) })
	c.register("nextpage", shortcutList{{Code: key.CodePageDown}}, func() { c.turnPage(1) })
	c.register("deselect", shortcutList{{Code: key.CodeEscape}}, c.session.ClearSelection)
}

// trigger runs a named action. Any action other than delete disarms the
// pending delete confirmation.
func (c *controller) trigger(name string) {
	fn, ok := c.actions[name]
	if !ok {
		return
	}
	if name != "delete" {
		c.confirmDelete = false
	}
	fn()
}

// keyAction maps a key press to an action name.
func (c *controller) keyAction(r rune, code key.Code, mods key.Modifiers) (string, bool) {
	if r >= 1 && r <= 26 && mods&key.ModControl != 0 {
		// some drivers report Ctrl+letter as the ASCII control code
		r = 'a' + r - 1
	}
	ks := KeyShortcut{Code: code, Modifiers: mods}
	if r >= 0x20 && r != 0x7f {
		// printable keys are bound by rune alone, regardless of shift
		ks = KeyShortcut{Rune: unicode.ToLower(r), Modifiers: mods &^ key.ModShift}
	}
	name, ok := c.keyboardAction[ks]
	return name, ok
}

func (c *controller) show(l level, text string) {
	d := 2 * time.Second
	if l == levelError {
		d = 4 * time.Second
	}
	c.msg = message{text: text, level: l, until: c.now().Add(d)}
}

// report shows the outcome of an action. Guarded no-ops and validation
// failures are warnings; everything else is an error.
func (c *controller) report(action string, err error, ok string) {
	switch {
	case err == nil:
		if ok != "" {
			log.Print(ok)
			c.show(levelInfo, ok)
		}
	case editor.IsWarning(err), errors.Is(err, annotation.ErrValidation), errors.Is(err, editor.ErrPageRange), errors.Is(err, clipboard.ErrEmpty):
		log.Printf("%s: %v", action, err)
		c.show(levelWarning, err.Error())
	default:
		log.Printf("%s: %v", action, err)
		c.show(levelError, fmt.Sprintf("%s failed: %v", action, err))
	}
}

func (c *controller) messageVisible() bool {
	return c.msg.text != "" && c.now().Before(c.msg.until)
}

// open replaces the current document.
func (c *controller) open(path string) error {
	if c.opener == nil {
		return errors.New("opening files is not available")
	}
	doc, err := c.opener(path)
	if err != nil {
		return err
	}
	if err := c.session.Load(doc, path); err != nil {
		if cerr := doc.Close(); cerr != nil {
			log.Printf("open: closing rejected document: %v", cerr)
		}
		return err
	}
	c.doc = doc
	c.pages = pageCache{}
	c.hover = ""
	c.notifier.Open(path, doc.NumPages())
	return nil
}

func (c *controller) promptOpen() {
	initial := c.session.Path()
	c.prompt.open("Open PDF", initial, func(path string) error {
		err := c.open(path)
		c.report("open", err, fmt.Sprintf("opened %s", filepath.Base(path)))
		return err
	})
}

func (c *controller) promptAdd(kind annotation.Kind) {
	if !c.session.HasDocument() {
		c.report("add", editor.ErrNoDocument, "")
		return
	}
	c.prompt.open(kind.Title()+" text", "", func(text string) error {
		id, err := c.session.Add(text, kind)
		if err == nil {
			err = c.session.Select(id)
		}
		c.report("add", err, fmt.Sprintf("added %s", kind))
		return err
	})
}

func (c *controller) addDate() {
	id, err := c.session.AddDate()
	if err == nil {
		err = c.session.Select(id)
	}
	c.report("date", err, "added date")
}

func (c *controller) promptEdit() {
	id, ok := c.session.Selection()
	if !ok {
		c.show(levelWarning, "select an annotation to edit")
		return
	}
	c.promptEditID(id)
}

func (c *controller) promptEditID(id annotation.ID) {
	a, ok := c.session.Get(id)
	if !ok {
		return
	}
	c.prompt.open("Edit "+a.Kind.String(), a.Text, func(text string) error {
		err := c.session.Edit(id, text)
		c.report("edit", err, "")
		return err
	})
}

func (c *controller) deleteSelected() {
	id, ok := c.session.Selection()
	if !ok {
		c.confirmDelete = false
		c.show(levelWarning, "select an annotation to delete")
		return
	}
	if !c.confirmDelete {
		c.confirmDelete = true
		c.show(levelWarning, "press Delete again to remove")
		return
	}
	c.confirmDelete = false
	a, err := c.session.Delete(id)
	c.report("delete", err, fmt.Sprintf("removed %q", annotation.Truncate(a.Text, 25)))
}

func (c *controller) copySelected() {
	id, ok := c.session.Selection()
	if !ok {
		c.show(levelWarning, "select an annotation to copy")
		return
	}
	a, _ := c.session.Get(id)
	if err := c.clip.WriteText(a.Text); err != nil {
		c.report("copy", err, "")
		return
	}
	c.notifier.Copy(a.Text)
	c.report("copy", nil, "text copied to clipboard")
}

func (c *controller) paste() {
	if !c.session.HasDocument() {
		c.report("paste", editor.ErrNoDocument, "")
		return
	}
	raw, err := c.clip.ReadText()
	if err != nil {
		c.report("paste", err, "")
		return
	}
	text := clipboard.Line(raw)
	if text == "" {
		c.report("paste", clipboard.ErrEmpty, "")
		return
	}
	id, err := c.session.Add(text, annotation.KindText)
	if err == nil {
		err = c.session.Select(id)
	}
	c.report("paste", err, "pasted text")
}

// savePath is the output flag, or the default name in the save directory.
func (c *controller) savePath() string {
	if c.output != "" {
		return c.output
	}
	path := editor.OutputPath(c.session.Path())
	if c.saveDir != "" {
		path = filepath.Join(c.saveDir, filepath.Base(path))
	}
	return path
}

func (c *controller) save() {
	path := c.savePath()
	err := c.session.Save(path)
	if err == nil {
		c.notifier.Save(path)
	}
	c.report("save", err, fmt.Sprintf("saved %s", path))
}

func (c *controller) turnPage(delta int) {
	if !c.session.HasDocument() {
		c.report("page", editor.ErrNoDocument, "")
		return
	}
	err := c.session.SetPage(c.session.Page() + delta)
	c.hover = ""
	c.report("page", err, "")
}

func toSession(p image.Point) r2.Point {
	return r2.Point{X: float64(p.X), Y: float64(p.Y)}
}

// pointerDown handles a left press at canvas position p.
func (c *controller) pointerDown(p image.Point) {
	c.confirmDelete = false
	sp := toSession(p)
	if c.clicks.press(p.X, p.Y, c.now()) {
		if id, ok := c.session.DoubleClick(sp); ok {
			c.promptEditID(id)
			return
		}
	}
	c.session.PointerDown(sp)
}

// pointerMove reports whether the canvas needs repainting.
func (c *controller) pointerMove(p image.Point) bool {
	sp := toSession(p)
	if c.session.State().Phase == editor.Dragging {
		return c.session.PointerMove(sp)
	}
	hover := ""
	if a, ok := c.session.Hover(sp); ok {
		hover = a.Label()
	}
	if hover == c.hover {
		return false
	}
	c.hover = hover
	return true
}

func (c *controller) pointerUp(p image.Point) bool {
	_, ok := c.session.PointerUp(toSession(p))
	return ok
}

// rowPress selects the annotation in the given list row; a double click
// opens it for editing.
func (c *controller) rowPress(row int, p image.Point) {
	c.confirmDelete = false
	id, err := c.session.IDAtRow(row)
	if err != nil {
		return
	}
	if err := c.session.Select(id); err != nil {
		c.report("select", err, "")
		return
	}
	if c.rowClicks.press(p.X, p.Y, c.now()) {
		c.promptEditID(id)
	}
}

// raster returns the current page image, or nil without a document.
func (c *controller) raster() *image.RGBA {
	if c.doc == nil || !c.session.HasDocument() {
		return nil
	}
	img, err := c.pages.get(c.doc, c.session.Page(), c.session.Settings().Mapper.Zoom)
	if err != nil {
		c.report("render", err, "")
		return nil
	}
	return img
}

// status is the text of the bottom bar.
func (c *controller) status() string {
	if c.hover != "" {
		return c.hover
	}
	if !c.session.HasDocument() {
		return "no document - Ctrl+O to open"
	}
	n := len(c.session.Rows())
	return fmt.Sprintf("%s | page %d/%d | %d on page", filepath.Base(c.session.Path()), c.session.Page()+1, c.session.NumPages(), n)
}
