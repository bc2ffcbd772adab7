package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/render"
	"github.com/example/livesign/internal/theme"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
)

// layout splits the window into its four areas.
type layout struct {
	toolbar, canvas, panel, bottom image.Rectangle
}

func newLayout(width, height int) layout {
	return layout{
		toolbar: image.Rect(0, 0, width, toolbarHeight),
		canvas:  image.Rect(0, toolbarHeight, width-panelWidth, height-bottomHeight),
		panel:   image.Rect(width-panelWidth, toolbarHeight, width, height-bottomHeight),
		bottom:  image.Rect(0, height-bottomHeight, width, height),
	}
}

// buttonRect returns the toolbar slot of button i.
func (l layout) buttonRect(i int) image.Rectangle {
	x := l.toolbar.Min.X + 80 + i*(buttonWidth+4)
	return image.Rect(x, l.toolbar.Min.Y+4, x+buttonWidth, l.toolbar.Max.Y-4)
}

// rowAt returns the list row under p, or -1.
func (l layout) rowAt(p image.Point) int {
	if !p.In(l.panel) {
		return -1
	}
	y := p.Y - l.panel.Min.Y - panelHeader
	if y < 0 {
		return -1
	}
	return y / rowHeight
}

func (l layout) rowRect(i int) image.Rectangle {
	y := l.panel.Min.Y + panelHeader + i*rowHeight
	return image.Rect(l.panel.Min.X, y, l.panel.Max.X, y+rowHeight)
}

var hintLabels = []struct{ label, action string }{
	{"S:sign", "signature"},
	{"T:text", "text"},
	{"D:date", "date"},
	{"E:edit", "edit"},
	{"Del:delete", "delete"},
	{"^S:save", "save"},
	{"PgDn:next", "nextpage"},
}

// shortcuts lays the hint bar out from the right edge of the bottom bar.
func (l layout) shortcuts(trigger func(string)) []Shortcut {
	meas := &font.Drawer{Face: uiFace}
	out := make([]Shortcut, len(hintLabels))
	x := l.bottom.Max.X - 4
	for i := len(hintLabels) - 1; i >= 0; i-- {
		h := hintLabels[i]
		w := meas.MeasureString(h.label).Ceil()
		action := h.action
		out[i] = Shortcut{
			label:  h.label,
			action: func() { trigger(action) },
			rect:   image.Rect(x-w-4, l.bottom.Min.Y+3, x, l.bottom.Max.Y-3),
		}
		x -= w + 12
	}
	return out
}

type paintState struct {
	width, height int
	theme         *theme.Theme
	scene         Scene
	pages         *render.PagePainter
	buttons       []*CacheButton
	enabled       []bool
	hoverButton   int
	shortcuts     []Shortcut
	hoverShortcut int
	title         string
	rows          []editor.Row
	hoverRow      int
	status        string
	promptActive  bool
	promptLabel   string
	promptText    string
	message       message
	now           time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	paintWindow(ctx, b.RGBA(), st)
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// paintWindow draws a whole frame. It returns early when ctx is cancelled.
func paintWindow(ctx context.Context, dst *image.RGBA, st paintState) {
	th := st.theme
	l := newLayout(st.width, st.height)

	render.Grid(dst, l.canvas, 25, th.CheckerLight, th.CheckerDark)
	if ctx.Err() != nil {
		return
	}
	canvas := dst.SubImage(l.canvas).(*image.RGBA)
	st.scene.Paint(canvas, l.canvas.Min, th, st.pages)
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, l, st)
	drawPanel(dst, l, st)
	drawBottom(dst, l, st)
	if ctx.Err() != nil {
		return
	}

	if st.promptActive {
		drawPrompt(dst, l.canvas, th, st.promptLabel, st.promptText)
	}
	if st.message.text != "" && st.now.Before(st.message.until) {
		drawMessage(dst, l.canvas, th, st.message)
	}
}

func drawToolbar(dst *image.RGBA, l layout, st paintState) {
	th := st.theme
	draw.Draw(dst, l.toolbar, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	drawLine(dst, l.toolbar.Min.X, l.toolbar.Max.Y-1, l.toolbar.Max.X, l.toolbar.Max.Y-1, th.ButtonBorder, 1)
	drawLabel(dst, 8, l.toolbar.Min.Y+20, "livesign", th.Primary)
	for i, cb := range st.buttons {
		cb.SetRect(l.buttonRect(i))
		state := StateDefault
		if i < len(st.enabled) && !st.enabled[i] {
			state = StateDisabled
		} else if i == st.hoverButton {
			state = StateHover
		}
		cb.Draw(dst, state)
	}
	last := l.buttonRect(len(st.buttons))
	if room := l.toolbar.Max.X - last.Min.X - 8; room > 0 {
		drawLabel(dst, last.Min.X, l.toolbar.Min.Y+20, fitLabel(st.title, room), th.Muted)
	}
}

func drawPanel(dst *image.RGBA, l layout, st paintState) {
	th := st.theme
	draw.Draw(dst, l.panel, &image.Uniform{th.PanelBackground}, image.Point{}, draw.Src)
	drawLine(dst, l.panel.Min.X, l.panel.Min.Y, l.panel.Min.X, l.panel.Max.Y, th.ButtonBorder, 1)
	drawLabel(dst, l.panel.Min.X+8, l.panel.Min.Y+18, "Annotations", th.Foreground)
	if len(st.rows) == 0 {
		drawLabel(dst, l.panel.Min.X+8, l.panel.Min.Y+panelHeader+15, "none on this page", th.Muted)
		return
	}
	for i, row := range st.rows {
		r := l.rowRect(i)
		if r.Min.Y >= l.panel.Max.Y {
			break
		}
		switch {
		case row.Selected:
			draw.Draw(dst, r, &image.Uniform{th.RowSelected}, image.Point{}, draw.Src)
		case i == st.hoverRow:
			draw.Draw(dst, r, &image.Uniform{th.RowHover}, image.Point{}, draw.Src)
		}
		drawLabel(dst, r.Min.X+8, r.Min.Y+15, fitLabel(row.Label, r.Dx()-16), th.RowText)
	}
}

func drawBottom(dst *image.RGBA, l layout, st paintState) {
	th := st.theme
	draw.Draw(dst, l.bottom, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)
	drawLine(dst, l.bottom.Min.X, l.bottom.Min.Y, l.bottom.Max.X, l.bottom.Min.Y, th.ButtonBorder, 1)
	right := l.bottom.Max.X
	for i := range st.shortcuts {
		sc := &st.shortcuts[i]
		if sc.rect.Min.X < l.bottom.Min.X+160 {
			continue
		}
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		sc.draw(dst, th, state)
		right = min(right, sc.rect.Min.X)
	}
	drawLabel(dst, l.bottom.Min.X+8, l.bottom.Min.Y+16, fitLabel(st.status, right-l.bottom.Min.X-16), th.Foreground)
}

func drawPrompt(dst *image.RGBA, area image.Rectangle, th *theme.Theme, label, text string) {
	const w, h = 360, 76
	c := area.Min.Add(area.Size().Div(2))
	box := image.Rect(c.X-w/2, c.Y-h/2, c.X+w/2, c.Y+h/2)
	draw.Draw(dst, box, &image.Uniform{th.PanelBackground}, image.Point{}, draw.Src)
	drawRect(dst, box, th.Primary, 2)
	drawLabel(dst, box.Min.X+12, box.Min.Y+20, label, th.Foreground)
	field := image.Rect(box.Min.X+12, box.Min.Y+28, box.Max.X-12, box.Min.Y+50)
	draw.Draw(dst, field, &image.Uniform{th.AnnotationBg}, image.Point{}, draw.Src)
	drawRect(dst, field, th.ButtonBorder, 1)
	drawLabel(dst, field.Min.X+4, field.Min.Y+15, tailLabel(text+"|", field.Dx()-8), th.Foreground)
	drawLabel(dst, box.Min.X+12, box.Max.Y-10, "Enter to accept, Esc to cancel", th.Muted)
}

// tailLabel keeps the end of s visible in width pixels.
func tailLabel(s string, width int) string {
	d := &font.Drawer{Face: uiFace}
	r := []rune(s)
	for len(r) > 0 && d.MeasureString(string(r)).Ceil() > width {
		r = r[1:]
	}
	return string(r)
}

func drawMessage(dst *image.RGBA, area image.Rectangle, th *theme.Theme, m message) {
	var accent color.RGBA
	switch m.level {
	case levelWarning:
		accent = th.Warning
	case levelError:
		accent = th.Danger
	default:
		accent = th.Success
	}
	d := &font.Drawer{Face: uiFace}
	text := fitLabel(m.text, area.Dx()-40)
	wmsg := d.MeasureString(text).Ceil()
	px := area.Min.X + (area.Dx()-wmsg)/2
	py := area.Max.Y - 24
	rect := image.Rect(px-10, py-16, px+wmsg+10, py+8)
	draw.Draw(dst, rect, &image.Uniform{th.PanelBackground}, image.Point{}, draw.Over)
	drawRect(dst, rect, accent, 2)
	drawLabel(dst, px, py, text, th.Foreground)
}
