//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard text operations are not supported on this platform")

// WriteText reports that the platform has no clipboard backend.
func WriteText(string) error { return errUnsupported }

// ReadText reports that the platform has no clipboard backend.
func ReadText() (string, error) { return "", errUnsupported }
