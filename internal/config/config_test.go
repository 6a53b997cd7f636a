package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/labelkit/internal/brush"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/labels
log_mode = release

[brush]
size = 80
shape = square
mode = eraser

[overlay]
edit_opacity = 50
default_color = "#00FF00"

[detection]
move_step = 2.5

[notify]
save = true
copy = false
export = true

[theme.My_Custom_Theme]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" || cfg.SaveDir != "/tmp/labels" || cfg.LogMode != "release" {
		t.Errorf("root section: %+v", cfg)
	}
	if cfg.Brush.Size != brush.MaxSize || cfg.Brush.Shape != brush.Square || cfg.Brush.Mode != brush.Erase {
		t.Errorf("brush section: %+v", cfg.Brush)
	}
	if cfg.Overlay.EditOpacity != 50 || cfg.Overlay.DisplayOpacity != 127 || cfg.Overlay.DefaultColor != "#00FF00" {
		t.Errorf("overlay section: %+v", cfg.Overlay)
	}
	if cfg.Detection.MoveStep != 2.5 || cfg.Detection.MinSize != 5 {
		t.Errorf("detection section: %+v", cfg.Detection)
	}
	if !cfg.Notify.Save || cfg.Notify.Copy || !cfg.Notify.Export {
		t.Errorf("notify section: %+v", cfg.Notify)
	}

	th, ok := cfg.Themes["My_Custom_Theme"]
	if !ok {
		t.Fatal("Expected theme 'My_Custom_Theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}

	opts := cfg.CompositeOptions()
	if opts.Editing.Default != 50 || opts.Display.Selected != 180 {
		t.Errorf("composite options: %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{
		"[brush]\nsize = big\n",
		"[overlay]\nedit_opacity = 300\n",
		"[overlay]\ndefault_color = nope\n",
		"[detection]\nmin_size = -1\n",
		"[notify]\nsave = maybe\n",
		"[theme.x]\nHandle = #12\n",
	} {
		if _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = /home/user/labels

[brush]
size = 7
shape = square

[notify]
save = true
copy = false

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Theme != cfg2.Theme || cfg.SaveDir != cfg2.SaveDir {
		t.Errorf("root mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Brush != cfg2.Brush || cfg.Overlay != cfg2.Overlay || cfg.Detection != cfg2.Detection {
		t.Errorf("section mismatch:\n%+v\n%+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LABELKIT_THEME", "contrast")
	t.Setenv("LABELKIT_BRUSH_SIZE", "3")
	t.Setenv("LABELKIT_BRUSH_SHAPE", "square")

	dir := t.TempDir()
	path := filepath.Join(dir, "labelkit.rc")
	if err := os.WriteFile(path, []byte("theme = dark\nsave_dir = /srv\n[brush]\nsize = 20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewLoader("1.0.0", path).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "contrast" || cfg.SaveDir != "/srv" {
		t.Errorf("env should win over the file: %+v", cfg)
	}
	if cfg.Brush.Size != 3 || cfg.Brush.Shape != brush.Square {
		t.Errorf("brush overrides: %+v", cfg.Brush)
	}

	t.Setenv("LABELKIT_BRUSH_MODE", "crayon")
	if _, err := NewLoader("1.0.0", path).Load(); err == nil {
		t.Errorf("expected error for a bad brush mode")
	}
	l := NewLoader("1.0.0", path)
	l.SkipEnv = true
	if cfg, err := l.Load(); err != nil || cfg.Theme != "dark" {
		t.Errorf("SkipEnv: %v %+v", err, cfg)
	}
}

func TestGetConfigPathOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	l := NewLoader("1.0.0", filepath.Join(t.TempDir(), "missing.rc"))
	if got := l.GetConfigPath(); got != "" {
		t.Errorf("expected no config path, got %q", got)
	}
	if p, err := l.SavePath(); err != nil || p != l.OverridePath {
		t.Errorf("SavePath: %q %v", p, err)
	}
}
