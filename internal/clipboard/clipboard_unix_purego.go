//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *textOwner
)

var errNoText = errors.New("clipboard owner offered no text")

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		owner, initErr = newTextOwner()
	})
	return initErr
}

// WriteText claims CLIPBOARD and answers text requests until another client
// takes the selection.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return owner.claim(text)
}

// ReadText returns the clipboard contents as UTF-8, falling back to STRING.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	if text, ok := owner.local(); ok {
		return text, nil
	}
	var data []byte
	var err error
	for _, target := range []xproto.Atom{owner.atoms[atomUTF8], xproto.AtomString} {
		if data, err = owner.fetch(target); err == nil {
			break
		}
	}
	if err != nil {
		return "", err
	}
	for len(data) > 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return "", ErrEmpty
	}
	return string(data), nil
}

const (
	atomClipboard = iota
	atomTargets
	atomUTF8
	atomTextPlain
	atomProperty
	atomCount
)

var atomNames = [atomCount]string{
	atomClipboard: "CLIPBOARD",
	atomTargets:   "TARGETS",
	atomUTF8:      "UTF8_STRING",
	atomTextPlain: "text/plain;charset=utf-8",
	atomProperty:  "LIVESIGN_CLIPBOARD",
}

// textOwner holds the text we last copied and serves it from a hidden
// window while we own CLIPBOARD.
type textOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  [atomCount]xproto.Atom

	mu    sync.Mutex
	text  string
	owned bool
}

func newTextOwner() (*textOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	o := &textOwner{conn: conn}
	for i, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			conn.Close()
			return nil, err
		}
		o.atoms[i] = reply.Atom
	}
	o.window, err = hiddenWindow(conn, xproto.EventMaskPropertyChange|xproto.EventMaskStructureNotify)
	if err != nil {
		conn.Close()
		return nil, err
	}
	go o.serve()
	return o, nil
}

func hiddenWindow(conn *xgb.Conn, mask uint32) (xproto.Window, error) {
	screen := xproto.Setup(conn).DefaultScreen(conn)
	w, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(conn, 0, w, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{mask}).Check()
	return w, err
}

func (o *textOwner) claim(text string) error {
	o.mu.Lock()
	o.text, o.owned = text, true
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms[atomClipboard], xproto.TimeCurrentTime).Check()
}

// local returns our own text while we still own the selection, sparing a
// round trip through the X server.
func (o *textOwner) local() (string, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.text, o.owned && o.text != ""
}

func (o *textOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.text, o.owned = "", false
			o.mu.Unlock()
		}
	}
}

// answer replies to a SelectionRequest with our target list or the text,
// refusing anything else with a None property.
func (o *textOwner) answer(e xproto.SelectionRequestEvent) {
	text, _ := o.local()
	prop := e.Property
	if prop == xproto.AtomNone {
		prop = e.Target
	}
	switch {
	case e.Target == o.atoms[atomTargets]:
		targets := []xproto.Atom{o.atoms[atomTargets]}
		if text != "" {
			targets = append(targets, o.atoms[atomUTF8], xproto.AtomString, o.atoms[atomTextPlain])
		}
		buf := make([]byte, 4*len(targets))
		for i, a := range targets {
			xgb.Put32(buf[4*i:], uint32(a))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	case text != "" && o.isText(e.Target):
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, prop, o.atoms[atomUTF8], 8, uint32(len(text)), []byte(text))
	default:
		prop = xproto.AtomNone
	}
	reply := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  prop,
	}
	xproto.SendEvent(o.conn, false, e.Requestor, 0, string(reply.Bytes()))
}

func (o *textOwner) isText(target xproto.Atom) bool {
	return target == o.atoms[atomUTF8] || target == o.atoms[atomTextPlain] || target == xproto.AtomString
}

// fetch asks the current owner to convert CLIPBOARD to target. It uses its
// own connection so the serving loop never sees the reply.
func (o *textOwner) fetch(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	w, err := hiddenWindow(conn, xproto.EventMaskPropertyChange)
	if err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, w)

	prop := o.atoms[atomProperty]
	if err := xproto.ConvertSelectionChecked(conn, w, o.atoms[atomClipboard], target, prop, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		n, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if n.Property == xproto.AtomNone {
			return nil, errNoText
		}
		reply, perr := xproto.GetProperty(conn, true, w, prop, xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
		if perr != nil {
			return nil, perr
		}
		return reply.Value, nil
	}
}
