package viewer

import (
	"image"
	"strings"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/classify"
	"github.com/example/labelkit/internal/detect"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
	"github.com/example/labelkit/internal/segment"
)

func TestFitScale(t *testing.T) {
	cases := []struct {
		imgW, imgH, availW, availH int
		want                       float64
	}{
		{100, 50, 200, 200, 1},
		{400, 200, 200, 200, 0.5},
		{200, 400, 200, 200, 0.5},
		{0, 0, 200, 200, 1},
		{10000, 10000, 10, 10, minScale},
	}
	for _, c := range cases {
		if got := fitScale(c.imgW, c.imgH, c.availW, c.availH); got != c.want {
			t.Errorf("fitScale(%d,%d,%d,%d) = %v, want %v", c.imgW, c.imgH, c.availW, c.availH, got, c.want)
		}
	}
}

func TestLayoutLocal(t *testing.T) {
	l := newLayout(100, 100, 148, 100+headerHeight+statusHeight, 48)
	if l.scale != 1 || l.canvas != image.Rect(48, headerHeight, 148, headerHeight+100) {
		t.Fatalf("unexpected layout %+v", l)
	}
	x, y, in := l.local(58, float32(headerHeight+10))
	if !in || x != 10 || y != 10 {
		t.Errorf("local = %v,%v,%v", x, y, in)
	}
	if _, _, in := l.local(10, 10); in {
		t.Errorf("header should be outside the canvas")
	}
	if !l.inToolbar(5, float32(headerHeight+1)) || l.inToolbar(60, 40) {
		t.Errorf("toolbar hit test is wrong")
	}
}

func press(r rune) key.Event { return key.Event{Rune: r, Direction: key.DirPress} }

func TestTranslateKey(t *testing.T) {
	c := &controls{size: 10, labels: []string{"cat", "dog"}}

	evs, act := c.translateKey(press('e'))
	if len(evs) != 1 || evs[0] != (event.Toggle{}) || act != actionNone {
		t.Fatalf("e: %v %v", evs, act)
	}
	evs, _ = c.translateKey(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress})
	if len(evs) != 1 || evs[0] != (event.Toggle{}) {
		t.Fatalf("enter: %v", evs)
	}

	c.translateKey(press(']'))
	c.translateKey(press('['))
	evs, _ = c.translateKey(press('['))
	if evs[0] != (event.SetBrush{Size: 9, Shape: brush.Circle, Mode: brush.Pen}) {
		t.Errorf("size keys: %v", evs)
	}
	c.translateKey(press('x'))
	evs, _ = c.translateKey(press('S'))
	if evs[0] != (event.SetBrush{Size: 9, Shape: brush.Square, Mode: brush.Erase}) {
		t.Errorf("shape/mode keys: %v", evs)
	}

	evs, _ = c.translateKey(press('2'))
	if len(evs) != 1 || evs[0] != (event.SetLabel{Label: "dog"}) {
		t.Errorf("label key: %v", evs)
	}
	if evs, _ = c.translateKey(press('3')); len(evs) != 0 {
		t.Errorf("label key without a label: %v", evs)
	}

	evs, _ = c.translateKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
	if evs[0] != (event.Key{Code: event.KeyEscape, Dir: event.DirPress}) {
		t.Errorf("escape press: %v", evs)
	}
	evs, _ = c.translateKey(key.Event{Code: key.CodeLeftArrow, Direction: key.DirRelease})
	if evs[0] != (event.Key{Code: event.KeyLeft, Dir: event.DirRelease}) {
		t.Errorf("arrow release: %v", evs)
	}
	if evs, act = c.translateKey(key.Event{Code: key.CodeLeftArrow, Direction: key.DirNone}); evs != nil || act != actionNone {
		t.Errorf("repeats should be dropped")
	}

	if _, act = c.translateKey(key.Event{Rune: 's', Code: key.CodeS, Modifiers: key.ModControl, Direction: key.DirPress}); act != actionSave {
		t.Errorf("ctrl+s: %v", act)
	}
	if _, act = c.translateKey(key.Event{Code: key.CodeC, Modifiers: key.ModControl | key.ModShift, Direction: key.DirPress}); act != actionCopyPreview {
		t.Errorf("ctrl+shift+c: %v", act)
	}
	if _, act = c.translateKey(press('q')); act != actionQuit {
		t.Errorf("q: %v", act)
	}

	evs, _ = c.translateKey(press('d'))
	if evs[0] != (event.SetBoxMode{Delete: true}) {
		t.Errorf("d: %v", evs)
	}
	evs, _ = c.translateKey(press('d'))
	if evs[0] != (event.SetBoxMode{Delete: false}) {
		t.Errorf("second d: %v", evs)
	}
}

func newTestViewer(target Target, winW, winH int, opts ...Option) *Viewer {
	v := New(target, opts...)
	tw := toolbarWidth(v.title, v.buttons)
	layoutButtons(v.buttons, tw)
	w, h := target.Size()
	v.resize(w, h, tw+winW, winH, tw)
	return v
}

func TestViewerDrivesMaskEditor(t *testing.T) {
	rec := &host.Recorder{}
	ed := segment.New(20, 20, rec, segment.WithLabels([]string{"cat"}), segment.WithBrush(1, brush.Circle, brush.Pen))
	v := newTestViewer(SegmentTarget{ed}, 20, 20+headerHeight+statusHeight, WithBrush(1, brush.Circle, brush.Pen))
	if v.Session() == "" {
		t.Fatalf("expected a session id")
	}

	if !v.handleKey(press('e')) || ed.Mode() != segment.ModeNew {
		t.Fatalf("e should start a new mask, mode %v", ed.Mode())
	}
	x, y := float32(v.lay.canvas.Min.X+5), float32(v.lay.canvas.Min.Y+6)
	v.handleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	v.handleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirRelease})
	m, ok := ed.Mask(ed.Selected())
	if !ok || !m.Grid.At(5, 6) || m.Grid.Count() != 1 {
		t.Fatalf("expected a single painted cell at (5,6)")
	}
	if rec.Len() != 1 {
		t.Fatalf("stroke end should emit once, got %d", rec.Len())
	}

	st := v.snapshot()
	if st.scene.Overlay == nil || st.scene.Overlay == ed.Overlay() {
		t.Errorf("snapshot should carry a copy of the overlay")
	}
	if !st.showCursor || st.cursorSize != 1 {
		t.Errorf("cursor should show while editing: %+v", st)
	}
	if !strings.Contains(st.status, "label: cat") {
		t.Errorf("status %q", st.status)
	}

	v.handleKey(key.Event{Code: key.CodeReturnEnter, Direction: key.DirPress})
	if ed.Mode() != segment.ModeDisplay || rec.Len() != 2 {
		t.Fatalf("enter should save: mode %v, emits %d", ed.Mode(), rec.Len())
	}
}

func TestPointerLeavingCanvasEndsStroke(t *testing.T) {
	rec := &host.Recorder{}
	ed := segment.New(20, 20, rec, segment.WithLabels([]string{"cat"}), segment.WithBrush(1, brush.Circle, brush.Pen))
	v := newTestViewer(SegmentTarget{ed}, 20, 300)
	v.handleKey(press('e'))
	x, y := float32(v.lay.canvas.Min.X+2), float32(v.lay.canvas.Min.Y+2)
	v.handleMouse(mouse.Event{X: x, Y: y, Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	v.handleMouse(mouse.Event{X: x + 1, Y: y, Direction: mouse.DirNone})
	v.handleMouse(mouse.Event{X: 1, Y: float32(headerHeight + 1), Direction: mouse.DirNone})
	if ed.Drawing() {
		t.Fatalf("leaving the canvas should end the stroke")
	}
	if rec.Len() != 1 {
		t.Fatalf("expected one emission, got %d", rec.Len())
	}
	if v.inside {
		t.Errorf("viewer should track that the pointer left")
	}
}

func TestToolbarButtons(t *testing.T) {
	rec := &host.Recorder{}
	box := &annotation.Rectangle{ID: "b1", Label: "cat", X: 10, Y: 10, Width: 20, Height: 20}
	ed := detect.New(100, 100, rec, detect.WithBoxes([]*annotation.Rectangle{box}), detect.WithLabels([]string{"cat", "dog"}))
	v := newTestViewer(DetectTarget{ed}, 100, 300)

	if len(v.buttons) != 3 || v.buttons[0].Label != "D:Delete" || v.buttons[2].Label != "2:dog" {
		t.Fatalf("unexpected buttons %v", v.buttons)
	}
	c := v.buttons[0].Rect().Min.Add(image.Pt(2, 2))
	v.handleMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if ed.Mode() != detect.ModeDelete {
		t.Fatalf("delete button should switch the box mode")
	}
	fr := frames(v.buttons, v.hover)
	if fr[0].state != StatePressed {
		t.Errorf("active mode button should be drawn pressed")
	}

	c = v.buttons[2].Rect().Min.Add(image.Pt(2, 2))
	v.handleMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	if ed.Label() != "dog" {
		t.Errorf("label button: current label %q", ed.Label())
	}

	st := v.snapshot()
	if len(st.scene.Boxes) != 1 || st.scene.Handles || st.showCursor {
		t.Errorf("delete mode scene %+v", st.scene)
	}
	if !strings.Contains(st.status, "delete") {
		t.Errorf("status %q", st.status)
	}
}

func TestClassifyToolbar(t *testing.T) {
	rec := &host.Recorder{}
	ed := classify.New(100, 100, rec, classify.WithLabels([]string{"cat", "dog"}), classify.WithMultiSelect(true))
	v := newTestViewer(ClassifyTarget{ed}, 100, 300)

	if len(v.buttons) != 2 || v.buttons[1].Label != "2:dog" {
		t.Fatalf("unexpected buttons %v", v.buttons)
	}
	for _, i := range []int{1, 0} {
		c := v.buttons[i].Rect().Min.Add(image.Pt(2, 2))
		v.handleMouse(mouse.Event{X: float32(c.X), Y: float32(c.Y), Button: mouse.ButtonLeft, Direction: mouse.DirPress})
	}
	if !ed.Has("cat") || !ed.Has("dog") || rec.Len() != 2 {
		t.Fatalf("label buttons should toggle classes, have %v", ed.Selected())
	}
	fr := frames(v.buttons, v.hover)
	if fr[0].state != StatePressed || fr[1].state != StatePressed {
		t.Errorf("chosen classes should be drawn pressed")
	}

	evs, _ := v.ctl.translateKey(press('1'))
	for _, ev := range evs {
		ed.Handle(ev)
	}
	if ed.Has("cat") {
		t.Errorf("key 1 should toggle cat off")
	}
	st := v.snapshot()
	if st.scene.Caption != "dog" || st.showCursor || !strings.Contains(st.status, "multi") {
		t.Errorf("scene %+v status %q", st.scene, st.status)
	}
}

func TestCloneNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	dst := cloneNRGBA(src)
	dst.Pix[0] = 9
	if src.Pix[0] != 0 || dst.Bounds() != src.Bounds() {
		t.Errorf("clone shares pixels with its source")
	}
	if cloneNRGBA(nil) != nil {
		t.Errorf("nil clone")
	}
}
