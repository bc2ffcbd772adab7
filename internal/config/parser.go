package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			currentTheme = nil
			if name, ok := strings.CutPrefix(currentSection, "theme."); ok {
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		key, value, ok := splitKV(line)
		if !ok {
			continue
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case strings.HasPrefix(currentSection, "style."):
			err = setStyleField(cfg.Styles, strings.TrimPrefix(currentSection, "style."), key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		}
		if err != nil {
			section := currentSection
			if section == "" {
				section = "root"
			}
			return nil, fmt.Errorf("line %d [%s]: %w", lineNo, section, err)
		}
	}

	return cfg, scanner.Err()
}

// splitKV accepts "key = value" and "key: value". Quotes around the value
// are removed.
func splitKV(line string) (string, string, bool) {
	sep := strings.IndexAny(line, "=:")
	if sep < 0 {
		return "", "", false
	}
	key := strings.TrimSpace(line[:sep])
	value := strings.TrimSpace(line[sep+1:])
	if len(value) >= 2 && strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") {
		value = value[1 : len(value)-1]
	}
	return key, value, true
}

func setRootField(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "zoom":
		return parsePositive(key, value, &cfg.Editor.Zoom)
	case "offset":
		return parseNonNegative(key, value, &cfg.Editor.Offset)
	case "grid":
		return parseNonNegative(key, value, &cfg.Editor.Grid)
	case "hit_padding":
		return parseNonNegative(key, value, &cfg.Editor.HitPadding)
	case "drag_interval_ms":
		ms, err := strconv.Atoi(value)
		if err != nil || ms < 0 {
			return fmt.Errorf("invalid duration for key %s: %q", key, value)
		}
		cfg.Editor.DragInterval = time.Duration(ms) * time.Millisecond
	}
	return nil
}

func parsePositive(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || !(v > 0) {
		return fmt.Errorf("invalid positive number for key %s: %q", key, value)
	}
	*dst = v
	return nil
}

func parseNonNegative(key, value string, dst *float64) error {
	v, err := strconv.ParseFloat(value, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("invalid number for key %s: %q", key, value)
	}
	*dst = v
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch strings.ToLower(key) {
	case "open":
		n.Open = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setStyleField(styles annotation.Styles, kindName, key, value string) error {
	kind, err := annotation.ParseKind(kindName)
	if err != nil {
		return err
	}
	st := styles.For(kind)
	switch strings.ToLower(key) {
	case "size":
		if err := parsePositive(key, value, &st.FontSize); err != nil {
			return err
		}
	case "color":
		c, err := annotation.ParseColor(value)
		if err != nil {
			return err
		}
		st.Color = c
	}
	styles[kind] = st
	return nil
}
