package appstate

import (
	"context"
	"image"
	"log"
	"sync"

	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/notify"
	"github.com/example/livesign/internal/render"
	"github.com/example/livesign/internal/theme"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// AppState holds application configuration for the UI.
type AppState struct {
	Session  *editor.Session
	Doc      Document
	Opener   Opener
	Output   string
	SaveDir  string
	Theme    *theme.Theme
	Notifier *notify.Notifier

	clip      Clipboard
	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithSession sets the editing session shown in the window.
func WithSession(s *editor.Session) Option { return func(a *AppState) { a.Session = s } }

// WithDocument sets the document already loaded into the session.
func WithDocument(doc Document) Option { return func(a *AppState) { a.Doc = doc } }

// WithOpener enables opening other documents from the window.
func WithOpener(fn Opener) Option { return func(a *AppState) { a.Opener = fn } }

// WithOutput sets the output file path used when saving.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithSaveDir sets the directory for default output names.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithTheme sets the UI colours.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithClipboard replaces the system clipboard.
func WithClipboard(c Clipboard) Option { return func(a *AppState) { a.clip = c } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{}
	for _, o := range opts {
		o(a)
	}
	if a.Session == nil {
		a.Session = editor.New()
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

func (a *AppState) controller() *controller {
	c := newController(a.Session)
	c.doc = a.Doc
	c.opener = a.Opener
	c.output = a.Output
	c.saveDir = a.SaveDir
	c.notifier = a.Notifier
	if a.clip != nil {
		c.clip = a.clip
	}
	return c
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

// windowSize fits the first page, its margin and the side panel.
func windowSize(sc Scene) (int, int) {
	canvas := sc.Size()
	width := max(canvas.X, 560) + panelWidth
	height := max(canvas.Y, 420) + toolbarHeight + bottomHeight
	return width, height
}

func (a *AppState) Main(s screen.Screen) {
	c := a.controller()
	th := a.Theme

	width, height := windowSize(Snapshot(a.Session, c.raster()))
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "livesign"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()

	defer a.notifyClose()

	pages := render.NewPagePainter(pageStyle(th))
	var buttons []*CacheButton
	for _, b := range []struct{ label, action string }{
		{"Sign", "signature"},
		{"Text", "text"},
		{"Date", "date"},
		{"Edit", "edit"},
		{"Delete", "delete"},
		{"Prev", "prevpage"},
		{"Next", "nextpage"},
		{"Save", "save"},
		{"Open", "open"},
	} {
		action := b.action
		buttons = append(buttons, &CacheButton{Button: &ActionButton{
			label:      b.label,
			action:     action,
			theme:      th,
			onActivate: func() { c.trigger(action) },
		}})
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	stopPainting := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	hoverButton, hoverShortcut := -1, -1
	repaint := func() { w.Send(paint.Event{}) }
	trigger := func(action string) {
		c.trigger(action)
		repaint()
	}

	enabled := func(i int) bool {
		if buttons[i].Button.(*ActionButton).action == "open" {
			return c.opener != nil
		}
		return a.Session.HasDocument()
	}

	snapshot := func() paintState {
		l := newLayout(width, height)
		on := make([]bool, len(buttons))
		for i := range buttons {
			on[i] = enabled(i)
		}
		title := "no document"
		if a.Session.HasDocument() {
			title = a.Session.Path()
		}
		return paintState{
			width:         width,
			height:        height,
			theme:         th,
			scene:         Snapshot(a.Session, c.raster()),
			pages:         pages,
			buttons:       buttons,
			enabled:       on,
			hoverButton:   hoverButton,
			shortcuts:     l.shortcuts(trigger),
			hoverShortcut: hoverShortcut,
			title:         title,
			rows:          a.Session.Rows(),
			hoverRow:      c.hoverRow,
			status:        c.status(),
			promptActive:  c.prompt.active,
			promptLabel:   c.prompt.label,
			promptText:    c.prompt.value(),
			message:       c.msg,
			now:           c.now(),
		}
	}

	for {
		e := w.NextEvent()
		switch e := e.(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPainting()
				return
			}
		case size.Event:
			width = e.WidthPx
			height = e.HeightPx
			repaint()
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := snapshot()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if c.prompt.active {
				continue
			}
			if c.messageVisible() && e.Direction == mouse.DirPress && c.msg.level != levelInfo {
				c.msg = message{}
				repaint()
				continue
			}
			l := newLayout(width, height)
			p := image.Pt(int(e.X), int(e.Y))
			press := e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress
			dragging := a.Session.State().Phase == editor.Dragging

			switch {
			case dragging || p.In(l.canvas):
				cp := p.Sub(l.canvas.Min)
				switch {
				case press:
					c.pointerDown(cp)
					repaint()
				case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
					c.pointerUp(cp)
					repaint()
				case e.Direction == mouse.DirNone:
					if c.pointerMove(cp) {
						repaint()
					}
				}
				if hoverButton != -1 || hoverShortcut != -1 || c.hoverRow != -1 {
					hoverButton, hoverShortcut, c.hoverRow = -1, -1, -1
					repaint()
				}
			case p.In(l.toolbar):
				idx := -1
				for i := range buttons {
					if p.In(l.buttonRect(i)) {
						idx = i
						break
					}
				}
				if press && idx >= 0 && enabled(idx) {
					buttons[idx].Activate()
				}
				if idx != hoverButton || press {
					hoverButton = idx
					repaint()
				}
			case p.In(l.panel):
				row := l.rowAt(p)
				if row >= len(a.Session.Rows()) {
					row = -1
				}
				if press && row >= 0 {
					c.rowPress(row, p)
				}
				if row != c.hoverRow || press {
					c.hoverRow = row
					repaint()
				}
			case p.In(l.bottom):
				idx := -1
				for i, sc := range l.shortcuts(trigger) {
					if p.In(sc.rect) {
						idx = i
						if press {
							sc.Activate()
						}
						break
					}
				}
				if idx != hoverShortcut {
					hoverShortcut = idx
					repaint()
				}
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if c.prompt.active {
				c.prompt.key(e.Rune, e.Code, e.Modifiers)
				repaint()
				continue
			}
			if e.Rune == 'q' || e.Rune == 'Q' || (e.Code == key.CodeQ && e.Modifiers&key.ModControl != 0) {
				stopPainting()
				return
			}
			if action, ok := c.keyAction(e.Rune, e.Code, e.Modifiers); ok {
				trigger(action)
			}
		}
	}
}
