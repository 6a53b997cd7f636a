package viewer

import (
	"fmt"
	"image"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/classify"
	"github.com/example/labelkit/internal/detect"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
	"github.com/example/labelkit/internal/render"
	"github.com/example/labelkit/internal/segment"
)

// Target is the editor a viewer drives.
type Target interface {
	Handle(event.Event)
	Value() host.Value
	Size() (w, h int)
	Labels() []string
	// Scene returns a snapshot that stays valid after further events.
	Scene() render.Scene
	Status() string
	// Cursor reports the brush outline to draw under the pointer, if any.
	Cursor() (size int, shape brush.Shape, ok bool)
}

// SegmentTarget adapts a mask editor.
type SegmentTarget struct{ *segment.Editor }

// DetectTarget adapts a box editor.
type DetectTarget struct{ *detect.Editor }

// ClassifyTarget adapts a class picker. The image is shown untouched with
// the chosen classes as a caption.
type ClassifyTarget struct{ *classify.Editor }

var (
	_ Target = SegmentTarget{}
	_ Target = DetectTarget{}
	_ Target = ClassifyTarget{}
)

func (t SegmentTarget) Value() host.Value  { return t.Editor.Value() }
func (t DetectTarget) Value() host.Value   { return t.Editor.Value() }
func (t ClassifyTarget) Value() host.Value { return t.Editor.Value() }

func (t SegmentTarget) Scene() render.Scene {
	s := render.Scene{
		Overlay:  cloneNRGBA(t.Overlay()),
		Colors:   t.Colors(),
		Scale:    t.Scale(),
		Selected: t.Selected(),
	}
	if t.Prompting() {
		p := t.Prompts()
		s.Boxes = p.Boxes()
		s.Selected = p.Selected()
		s.Handles = true
		if c, ok := p.Candidate(); ok {
			s.Candidate = &c
		}
	}
	return s
}

func (t SegmentTarget) Status() string {
	size, shape, mode := t.Brush()
	return fmt.Sprintf("%s  %s %s %d  label: %s  masks: %d", t.Mode(), mode, shape, size, t.Label(), t.Len())
}

func (t SegmentTarget) Cursor() (int, brush.Shape, bool) {
	size, shape, _ := t.Brush()
	return size, shape, t.Mode().Editing() && !t.Prompting() && !t.ReadOnly()
}

func (t DetectTarget) Scene() render.Scene {
	s := render.Scene{
		Boxes:    t.Boxes(),
		Selected: t.Selected(),
		Scale:    t.Scale(),
		Labels:   true,
		Handles:  t.Mode() == detect.ModeTransform && !t.ReadOnly(),
	}
	if c, ok := t.Candidate(); ok {
		s.Candidate = &c
	}
	return s
}

func (t DetectTarget) Status() string {
	mode := "transform"
	if t.Mode() == detect.ModeDelete {
		mode = "delete"
	}
	return fmt.Sprintf("%s  label: %s  boxes: %d", mode, t.Label(), t.Len())
}

func (t DetectTarget) Cursor() (int, brush.Shape, bool) { return 0, brush.Circle, false }

func (t ClassifyTarget) Scene() render.Scene {
	return render.Scene{Scale: t.Scale(), Caption: t.Summary()}
}

func (t ClassifyTarget) Status() string {
	mode := "single"
	if t.Multi() {
		mode = "multi"
	}
	summary := t.Summary()
	if summary == "" {
		summary = "none"
	}
	return fmt.Sprintf("%s  class: %s", mode, summary)
}

func (t ClassifyTarget) Cursor() (int, brush.Shape, bool) { return 0, brush.Circle, false }

// withColors fills the scene colour map for box only targets.
func withColors(s render.Scene, colors annotation.ColorMap) render.Scene {
	if s.Colors == nil {
		s.Colors = colors
	}
	return s
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
