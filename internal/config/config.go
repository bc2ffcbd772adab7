package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/theme"
	"github.com/example/livesign/internal/viewport"
)

// Notify holds notification settings.
type Notify struct {
	Open bool
	Save bool
	Copy bool
}

// Editor holds the editing geometry.
type Editor struct {
	Zoom         float64
	Offset       float64
	Grid         float64
	HitPadding   float64
	DragInterval time.Duration
}

// Config holds the application configuration.
type Config struct {
	Theme   string
	SaveDir string
	Editor  Editor
	Notify  Notify
	Styles  annotation.Styles
	Themes  map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	d := editor.DefaultSettings()
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Editor: Editor{
			Zoom:         d.Mapper.Zoom,
			Offset:       d.Mapper.Offset.X,
			Grid:         d.Grid,
			HitPadding:   d.HitPadding,
			DragInterval: d.DragInterval,
		},
		Styles: annotation.DefaultStyles(),
		Themes: make(map[string]*theme.Theme),
	}
}

// Settings converts the editor section into session settings.
func (c *Config) Settings() (editor.Settings, error) {
	st := editor.DefaultSettings()
	m, err := viewport.New(c.Editor.Offset, c.Editor.Zoom)
	if err != nil {
		return st, err
	}
	st.Mapper = m
	st.Grid = c.Editor.Grid
	st.HitPadding = c.Editor.HitPadding
	st.DragInterval = c.Editor.DragInterval
	st.Styles = c.Styles
	return st, nil
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	fmt.Fprintf(&sb, "zoom = %g\n", c.Editor.Zoom)
	fmt.Fprintf(&sb, "offset = %g\n", c.Editor.Offset)
	fmt.Fprintf(&sb, "grid = %g\n", c.Editor.Grid)
	fmt.Fprintf(&sb, "hit_padding = %g\n", c.Editor.HitPadding)
	fmt.Fprintf(&sb, "drag_interval_ms = %d\n", c.Editor.DragInterval.Milliseconds())
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "open = %v\n", c.Notify.Open)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	for _, k := range annotation.Kinds() {
		st := c.Styles.For(k)
		fmt.Fprintf(&sb, "[style.%s]\n", k)
		fmt.Fprintf(&sb, "size = %g\n", st.FontSize)
		fmt.Fprintf(&sb, "color = %s\n", st.Color.Hex())
		sb.WriteString("\n")
	}

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Write(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}
