package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/theme"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var currentSection string
	var currentTheme *theme.Theme

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			raw := strings.TrimSpace(line[1 : len(line)-1])
			currentSection = strings.ToLower(raw)
			currentTheme = nil

			if strings.HasPrefix(currentSection, "theme.") {
				name := raw[len("theme."):]
				// Start with defaults so missing keys are fine
				currentTheme = theme.Default()
				currentTheme.Name = name
				cfg.Themes[name] = currentTheme
			}
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch {
		case currentTheme != nil:
			err = currentTheme.Set(key, value)
		case currentSection == "":
			err = setRootField(cfg, key, value)
		case currentSection == "brush":
			err = setBrushField(&cfg.Brush, key, value)
		case currentSection == "overlay":
			err = setOverlayField(&cfg.Overlay, key, value)
		case currentSection == "detection":
			err = setDetectionField(&cfg.Detection, key, value)
		case currentSection == "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		}
		if err != nil {
			if currentSection == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", currentSection, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "theme":
		cfg.Theme = value
	case "save_dir":
		cfg.SaveDir = value
	case "log_mode":
		cfg.LogMode = value
	}
	return nil
}

func setBrushField(b *Brush, key, value string) error {
	switch key {
	case "size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for key %s: %w", key, err)
		}
		b.Size = brush.ClampSize(n)
	case "shape":
		s, err := brush.ParseShape(value)
		if err != nil {
			return err
		}
		b.Shape = s
	case "mode":
		m, err := brush.ParseMode(value)
		if err != nil {
			return err
		}
		b.Mode = m
	}
	return nil
}

func setOverlayField(o *Overlay, key, value string) error {
	if key == "default_color" {
		if _, err := annotation.ParseColor(value); err != nil {
			return fmt.Errorf("invalid color for key %s: %w", key, err)
		}
		o.DefaultColor = value
		return nil
	}
	var dst *uint8
	switch key {
	case "display_opacity":
		dst = &o.DisplayOpacity
	case "display_selected_opacity":
		dst = &o.DisplaySelectedOpacity
	case "edit_opacity":
		dst = &o.EditOpacity
	case "edit_selected_opacity":
		dst = &o.EditSelectedOpacity
	default:
		return nil
	}
	n, err := strconv.ParseUint(value, 10, 8)
	if err != nil {
		return fmt.Errorf("invalid opacity for key %s: %w", key, err)
	}
	*dst = uint8(n)
	return nil
}

func setDetectionField(d *Detection, key, value string) error {
	var dst *float64
	switch key {
	case "min_size":
		dst = &d.MinSize
	case "move_step":
		dst = &d.MoveStep
	case "line_width":
		dst = &d.LineWidth
	default:
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f <= 0 {
		return fmt.Errorf("invalid positive number for key %s: %q", key, value)
	}
	*dst = f
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for key %s: %w", key, err)
	}
	switch key {
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	case "export":
		n.Export = b
	}
	return nil
}
