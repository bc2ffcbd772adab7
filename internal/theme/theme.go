package theme

import (
	"fmt"
	"image/color"
	"io"
	"reflect"
)

// Theme defines the color palette for the application UI.
type Theme struct {
	Name string

	// General
	Background color.RGBA // Window background around the page
	Foreground color.RGBA // Main text color
	Muted      color.RGBA // Secondary text, hints

	// Header, side panel & status bar
	ToolbarBackground color.RGBA
	PanelBackground   color.RGBA
	RowSelected       color.RGBA
	RowHover          color.RGBA
	RowText           color.RGBA

	// Buttons
	ButtonBackground      color.RGBA
	ButtonBackgroundHover color.RGBA
	ButtonBackgroundPress color.RGBA
	ButtonText            color.RGBA
	ButtonBorder          color.RGBA

	// Canvas
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	PageShadow   color.RGBA
	PageBorder   color.RGBA

	// Annotations
	Primary          color.RGBA // Selection outline, glow and handles
	AnnotationBg     color.RGBA
	AnnotationBorder color.RGBA
	ShadowNear       color.RGBA
	ShadowFar        color.RGBA

	// Messages
	Success color.RGBA
	Warning color.RGBA
	Danger  color.RGBA
}

// Default returns the hardcoded default light theme (fallback).
func Default() *Theme {
	return &Theme{
		Name:                  "Default",
		Background:            color.RGBA{248, 250, 252, 255},
		Foreground:            color.RGBA{30, 41, 59, 255},
		Muted:                 color.RGBA{100, 116, 139, 255},
		ToolbarBackground:     color.RGBA{255, 255, 255, 255},
		PanelBackground:       color.RGBA{255, 255, 255, 255},
		RowSelected:           color.RGBA{219, 234, 254, 255},
		RowHover:              color.RGBA{241, 245, 249, 255},
		RowText:               color.RGBA{30, 41, 59, 255},
		ButtonBackground:      color.RGBA{241, 245, 249, 255},
		ButtonBackgroundHover: color.RGBA{226, 232, 240, 255},
		ButtonBackgroundPress: color.RGBA{203, 213, 225, 255},
		ButtonText:            color.RGBA{30, 41, 59, 255},
		ButtonBorder:          color.RGBA{203, 213, 225, 255},
		CheckerLight:          color.RGBA{248, 250, 252, 255},
		CheckerDark:           color.RGBA{241, 245, 249, 255},
		PageShadow:            color.RGBA{203, 213, 225, 255},
		PageBorder:            color.RGBA{226, 232, 240, 255},
		Primary:               color.RGBA{59, 130, 246, 255},
		AnnotationBg:          color.RGBA{255, 255, 255, 255},
		AnnotationBorder:      color.RGBA{226, 232, 240, 255},
		ShadowNear:            color.RGBA{203, 213, 225, 255},
		ShadowFar:             color.RGBA{226, 232, 240, 255},
		Success:               color.RGBA{16, 185, 129, 255},
		Warning:               color.RGBA{245, 158, 11, 255},
		Danger:                color.RGBA{239, 68, 68, 255},
	}
}

// Write prints t in the "Key: #RRGGBB" form read by Parse.
func (t *Theme) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Name: %s\n", t.Name); err != nil {
		return err
	}
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		col, ok := val.Field(i).Interface().(color.RGBA)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", typ.Field(i).Name, Hex(col)); err != nil {
			return err
		}
	}
	return nil
}

// Hex formats c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
