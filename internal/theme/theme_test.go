package theme

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKeepsDefaults(t *testing.T) {
	th, err := Parse(strings.NewReader("Name: custom\nbackground: #111111\nCursor: red\nUnknownKey: #000000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if th.Name != "custom" {
		t.Errorf("name %q", th.Name)
	}
	if th.Background != (color.RGBA{0x11, 0x11, 0x11, 255}) {
		t.Errorf("background %v", th.Background)
	}
	if th.Cursor != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("cursor %v", th.Cursor)
	}
	if th.CheckerDark != Default().CheckerDark {
		t.Errorf("missing keys should keep defaults")
	}
	if _, err := Parse(strings.NewReader("Handle: #12\n")); err == nil {
		t.Errorf("expected error for a bad colour")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	th := Default()
	th.Name = "round"
	th.LabelBackground = color.RGBA{1, 2, 3, 4}
	var buf bytes.Buffer
	if err := th.Format(&buf); err != nil {
		t.Fatal(err)
	}
	back, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if *back != *th {
		t.Errorf("round trip mismatch:\n%+v\n%+v", back, th)
	}
}

func TestEmbeddedThemesLoad(t *testing.T) {
	names := Names()
	if len(names) < 2 {
		t.Fatalf("expected embedded themes, got %v", names)
	}
	l := &Loader{}
	for _, n := range names {
		th, err := l.Load(n)
		if err != nil {
			t.Fatalf("Load(%q): %v", n, err)
		}
		if th.Name != n {
			t.Errorf("theme %q declares name %q", n, th.Name)
		}
	}
	if _, err := l.Load("no-such-theme"); err == nil {
		t.Errorf("expected not found error")
	}
}

func TestLoaderSources(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: mine\nHandle: #010203\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{ConfigDir: dir, Inline: map[string]*Theme{"inline": {Name: "inline"}}}

	th, err := l.Load("mine")
	if err != nil || th.Handle != (color.RGBA{1, 2, 3, 255}) {
		t.Fatalf("config dir theme: %v %+v", err, th)
	}
	th, err = l.Load(filepath.Join(dir, "mine.theme"))
	if err != nil || th.Name != "mine" {
		t.Fatalf("path theme: %v %+v", err, th)
	}
	th, err = l.Load("inline")
	if err != nil || th.Name != "inline" {
		t.Fatalf("inline theme: %v %+v", err, th)
	}
	th, err = l.Load("")
	if err != nil || th.Name != "Default" {
		t.Fatalf("empty name should return the default: %v", err)
	}
}
