// Package clipboard reads and writes plain text on the system clipboard.
package clipboard

import (
	"errors"
	"os"
	"strings"
)

var (
	// ErrEmpty is returned when the clipboard holds no text.
	ErrEmpty     = errors.New("clipboard does not contain text data")
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// Line reduces clipboard text to the single line used for an annotation:
// the first non-blank line with surrounding space and NUL bytes removed.
func Line(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}
