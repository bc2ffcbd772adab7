package appstate

import (
	"time"

	"golang.org/x/mobile/event/key"
)

// prompt is the modal single line editor used to enter annotation text and
// file paths. While it is active pointer events do not reach the Session.
type prompt struct {
	active bool
	label  string
	text   []rune
	submit func(string) error
}

func (p *prompt) open(label, initial string, submit func(string) error) {
	p.active = true
	p.label = label
	p.text = []rune(initial)
	p.submit = submit
}

func (p *prompt) close() {
	p.active = false
	p.text = nil
	p.submit = nil
}

// value returns the text entered so far.
func (p *prompt) value() string { return string(p.text) }

// key feeds one key press to the prompt. done reports that the prompt
// closed; err is the result of the submit callback on Enter.
func (p *prompt) key(r rune, code key.Code, mods key.Modifiers) (done bool, err error) {
	switch code {
	case key.CodeReturnEnter, key.CodeKeypadEnter:
		submit, text := p.submit, p.value()
		p.close()
		if submit != nil {
			err = submit(text)
		}
		return true, err
	case key.CodeEscape:
		p.close()
		return true, nil
	case key.CodeDeleteBackspace:
		if n := len(p.text); n > 0 {
			if mods&key.ModControl != 0 {
				p.text = p.text[:0]
			} else {
				p.text = p.text[:n-1]
			}
		}
		return false, nil
	}
	if r >= 0x20 && mods&(key.ModControl|key.ModMeta) == 0 {
		p.text = append(p.text, r)
	}
	return false, nil
}

// clickTracker turns pairs of nearby presses into double clicks.
type clickTracker struct {
	interval time.Duration
	slop     int
	last     time.Time
	at       [2]int
	armed    bool
}

func newClickTracker() *clickTracker {
	return &clickTracker{interval: 400 * time.Millisecond, slop: 4}
}

// press records a press at (x, y) and reports whether it completes a
// double click. A third press starts a new pair.
func (c *clickTracker) press(x, y int, now time.Time) bool {
	dx, dy := x-c.at[0], y-c.at[1]
	double := c.armed && now.Sub(c.last) <= c.interval &&
		dx >= -c.slop && dx <= c.slop && dy >= -c.slop && dy <= c.slop
	c.armed = !double
	c.last = now
	c.at = [2]int{x, y}
	return double
}
