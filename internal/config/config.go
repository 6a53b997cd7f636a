package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/composite"
	"github.com/example/labelkit/internal/theme"
)

// Brush holds the initial brush of the mask editor.
type Brush struct {
	Size  int
	Shape brush.Shape
	Mode  brush.Mode
}

// Overlay holds the compositor opacities and the fallback label colour.
type Overlay struct {
	DisplayOpacity         uint8
	DisplaySelectedOpacity uint8
	EditOpacity            uint8
	EditSelectedOpacity    uint8
	DefaultColor           string
}

// Detection holds box editor settings.
type Detection struct {
	MinSize   float64 // Smallest box extent in image pixels
	MoveStep  float64 // Arrow key step in display pixels
	LineWidth float64
}

// Notify holds notification settings.
type Notify struct {
	Save   bool
	Copy   bool
	Export bool
}

// Config holds the application configuration.
type Config struct {
	Theme     string
	SaveDir   string
	LogMode   string
	Brush     Brush
	Overlay   Overlay
	Detection Detection
	Notify    Notify
	Themes    map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	ov := composite.DefaultOptions()
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Brush: Brush{
			Size:  brush.DefaultSize,
			Shape: brush.Circle,
			Mode:  brush.Pen,
		},
		Overlay: Overlay{
			DisplayOpacity:         ov.Display.Default,
			DisplaySelectedOpacity: ov.Display.Selected,
			EditOpacity:            ov.Editing.Default,
			EditSelectedOpacity:    ov.Editing.Selected,
			DefaultColor:           ov.DefaultColor,
		},
		Detection: Detection{
			MinSize:   annotation.MinBoxSize,
			MoveStep:  5,
			LineWidth: 1,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// CompositeOptions converts the overlay section for the compositor.
func (c *Config) CompositeOptions() composite.Options {
	return composite.Options{
		Display:      composite.Opacity{Default: c.Overlay.DisplayOpacity, Selected: c.Overlay.DisplaySelectedOpacity},
		Editing:      composite.Opacity{Default: c.Overlay.EditOpacity, Selected: c.Overlay.EditSelectedOpacity},
		DefaultColor: c.Overlay.DefaultColor,
	}
}

// ThemeLoader returns a theme loader that also knows the inline themes.
func (c *Config) ThemeLoader() *theme.Loader {
	l := theme.NewLoader()
	l.Inline = c.Themes
	return l
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
	if c.LogMode != "" {
		fmt.Fprintf(&sb, "log_mode = %s\n", c.LogMode)
	}
	sb.WriteString("\n")

	sb.WriteString("[brush]\n")
	fmt.Fprintf(&sb, "size = %d\n", c.Brush.Size)
	fmt.Fprintf(&sb, "shape = %s\n", c.Brush.Shape)
	fmt.Fprintf(&sb, "mode = %s\n", c.Brush.Mode)
	sb.WriteString("\n")

	sb.WriteString("[overlay]\n")
	fmt.Fprintf(&sb, "display_opacity = %d\n", c.Overlay.DisplayOpacity)
	fmt.Fprintf(&sb, "display_selected_opacity = %d\n", c.Overlay.DisplaySelectedOpacity)
	fmt.Fprintf(&sb, "edit_opacity = %d\n", c.Overlay.EditOpacity)
	fmt.Fprintf(&sb, "edit_selected_opacity = %d\n", c.Overlay.EditSelectedOpacity)
	fmt.Fprintf(&sb, "default_color = %s\n", c.Overlay.DefaultColor)
	sb.WriteString("\n")

	sb.WriteString("[detection]\n")
	fmt.Fprintf(&sb, "min_size = %g\n", c.Detection.MinSize)
	fmt.Fprintf(&sb, "move_step = %g\n", c.Detection.MoveStep)
	fmt.Fprintf(&sb, "line_width = %g\n", c.Detection.LineWidth)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		_ = c.Themes[name].Format(&sb)
		sb.WriteString("\n")
	}

	return sb.String()
}
