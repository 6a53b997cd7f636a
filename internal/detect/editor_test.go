package detect

import (
	"testing"

	"go.jetify.com/typeid/v2"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

func drag(e *Editor, x0, y0, x1, y1 float64) {
	e.Handle(event.Pointer{Dir: event.DirPress, X: x0, Y: y0})
	e.Handle(event.Pointer{Dir: event.DirMove, X: (x0 + x1) / 2, Y: (y0 + y1) / 2})
	e.Handle(event.Pointer{Dir: event.DirMove, X: x1, Y: y1})
	e.Handle(event.Pointer{Dir: event.DirRelease, X: x1, Y: y1})
}

func lastBoxes(t *testing.T, rec *host.Recorder) []host.BoxRecord {
	t.Helper()
	v, ok := rec.Last().(host.DetectionValue)
	if !ok {
		t.Fatalf("expected a detection value, got %#v", rec.Last())
	}
	return v.BBox
}

func TestDragBackwardsNormalizes(t *testing.T) {
	rec := &host.Recorder{}
	e := New(200, 200, rec, WithLabels([]string{"cat"}))
	drag(e, 100, 100, 50, 50)

	boxes := lastBoxes(t, rec)
	if len(boxes) != 1 {
		t.Fatalf("expected one box, got %d", len(boxes))
	}
	if boxes[0].BBox != [4]float64{50, 50, 50, 50} {
		t.Errorf("unexpected box %v", boxes[0].BBox)
	}
	if boxes[0].Label != "cat" || boxes[0].LabelID != 0 {
		t.Errorf("new box should take the current label: %+v", boxes[0])
	}
	if id, err := typeid.Parse(boxes[0].ID); err != nil || id.Prefix() != annotation.PrefixBox {
		t.Errorf("new box id %q: %v", boxes[0].ID, err)
	}
	if e.Selected() != boxes[0].ID {
		t.Errorf("new box should be selected")
	}
}

func TestDragThreshold(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec)
	drag(e, 10, 10, 14, 40)
	if rec.Len() != 0 || e.Len() != 0 {
		t.Fatalf("box narrower than the minimum should be discarded")
	}
	drag(e, 10, 10, 15, 15)
	if e.Len() != 1 {
		t.Fatalf("box at the minimum should be kept")
	}
}

func TestDragThresholdUsesImagePixels(t *testing.T) {
	e := New(100, 100, nil, WithScale(4))
	drag(e, 40, 40, 56, 56)
	if e.Len() != 0 {
		t.Fatalf("16 display pixels at scale 4 is only 4 image pixels")
	}
	drag(e, 40, 40, 60, 60)
	if e.Len() != 1 {
		t.Fatalf("20 display pixels at scale 4 should commit")
	}
	if b := e.Boxes()[0]; b.X != 10 || b.Width != 5 {
		t.Errorf("unexpected box %+v", b)
	}
}

func TestLeaveCancelsDraw(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec)
	e.Handle(event.Pointer{Dir: event.DirPress, X: 10, Y: 10})
	e.Handle(event.Pointer{Dir: event.DirMove, X: 60, Y: 60})
	if _, ok := e.Candidate(); !ok {
		t.Fatalf("expected a candidate while dragging")
	}
	e.Handle(event.Pointer{Dir: event.DirLeave, X: 60, Y: 60})
	e.Handle(event.Pointer{Dir: event.DirRelease, X: 60, Y: 60})
	if e.Len() != 0 || rec.Len() != 0 {
		t.Fatalf("leaving the canvas should cancel the draw")
	}
}

func TestArrowKeysMoveSelected(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}), WithScale(2))
	e.Handle(event.Select{ID: "a"})

	e.Handle(event.Key{Code: event.KeyRight, Dir: event.DirPress})
	if b := e.Boxes()[0]; b.X != 12.5 {
		t.Fatalf("expected x=12.5, got %v", b.X)
	}
	e.Handle(event.Key{Code: event.KeyRight, Dir: event.DirPress})
	if b := e.Boxes()[0]; b.X != 12.5 {
		t.Fatalf("held key should not repeat, got x=%v", b.X)
	}
	e.Handle(event.Key{Code: event.KeyRight, Dir: event.DirRelease})
	e.Handle(event.Key{Code: event.KeyUp, Dir: event.DirPress})
	if b := e.Boxes()[0]; b.Y != 7.5 {
		t.Fatalf("expected y=7.5, got %v", b.Y)
	}
	if rec.Len() != 2 {
		t.Errorf("expected 2 emissions, got %d", rec.Len())
	}
}

func TestArrowKeysStayInsideImage(t *testing.T) {
	e := New(50, 50, nil, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 1, Y: 40, Width: 10, Height: 10}}))
	e.Handle(event.Select{ID: "a"})
	e.Handle(event.Key{Code: event.KeyLeft, Dir: event.DirPress})
	e.Handle(event.Key{Code: event.KeyLeft, Dir: event.DirRelease})
	e.Handle(event.Key{Code: event.KeyDown, Dir: event.DirPress})
	b := e.Boxes()[0]
	if b.X != 0 || b.Y != 40 || b.Width != 10 || b.Height != 10 {
		t.Fatalf("box escaped the image: %+v", b)
	}
}

func TestDeleteAndEscape(t *testing.T) {
	rec := &host.Recorder{}
	boxes := []*annotation.Rectangle{
		{ID: "a", X: 10, Y: 10, Width: 20, Height: 20},
		{ID: "b", X: 50, Y: 50, Width: 20, Height: 20},
	}
	e := New(100, 100, rec, WithBoxes(boxes))
	e.Handle(event.Pointer{Dir: event.DirPress, X: 15, Y: 15})
	e.Handle(event.Pointer{Dir: event.DirRelease, X: 15, Y: 15})
	if e.Selected() != "a" {
		t.Fatalf("click should select box a, got %q", e.Selected())
	}
	if rec.Len() != 0 {
		t.Fatalf("a click without movement should not emit")
	}
	e.Handle(event.Key{Code: event.KeyEscape, Dir: event.DirPress})
	if e.Selected() != "" {
		t.Fatalf("escape should clear the selection")
	}
	e.Handle(event.Select{ID: "b"})
	e.Handle(event.Key{Code: event.KeyDelete, Dir: event.DirPress})
	got := lastBoxes(t, rec)
	if len(got) != 1 || got[0].ID != "a" || e.Selected() != "" {
		t.Fatalf("unexpected state after delete: %+v selected=%q", got, e.Selected())
	}
	e.Handle(event.Delete{ID: "missing"})
	if rec.Len() != 1 {
		t.Fatalf("deleting an unknown id should be a no-op")
	}
}

func TestResizeKeepsMinimumPerAxis(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}))
	e.Handle(event.Select{ID: "a"})
	e.Handle(event.Pointer{Dir: event.DirPress, X: 30, Y: 30})
	e.Handle(event.Pointer{Dir: event.DirMove, X: 12, Y: 40})
	e.Handle(event.Pointer{Dir: event.DirRelease, X: 12, Y: 40})

	b := e.Boxes()[0]
	if b.X != 10 || b.Width != 20 || b.Y != 10 || b.Height != 30 {
		t.Fatalf("unexpected resize result %+v", b)
	}
	if rec.Len() != 1 {
		t.Errorf("resize should emit once on release, got %d", rec.Len())
	}
}

func TestMinSizeAppliesToResizeAndLoad(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithMinSize(10), WithBoxes([]*annotation.Rectangle{
		{ID: "a", X: 10, Y: 10, Width: 20, Height: 20},
		{ID: "b", X: 60, Y: 60, Width: 6, Height: 30},
	}))
	if b := e.Boxes()[1]; b.Width != 10 || b.Height != 30 {
		t.Fatalf("loaded box should be raised to the minimum: %+v", b)
	}

	e.Handle(event.Select{ID: "a"})
	e.Handle(event.Pointer{Dir: event.DirPress, X: 30, Y: 30})
	e.Handle(event.Pointer{Dir: event.DirMove, X: 17, Y: 45})
	e.Handle(event.Pointer{Dir: event.DirRelease, X: 17, Y: 45})
	if b := e.Boxes()[0]; b.Width != 20 || b.Height != 35 {
		t.Fatalf("width below the minimum should keep its extent: %+v", b)
	}

	drag(e, 70, 5, 79, 40)
	if e.Len() != 2 {
		t.Fatalf("box narrower than min_size should be discarded, have %d", e.Len())
	}
}

func TestValueIsCurrentWithLastKey(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec)
	drag(e, 10, 10, 40, 40)
	key := rec.Last().ChangeKey()
	e.Handle(event.LoadBoxes{Boxes: []*annotation.Rectangle{
		{ID: "x", X: 1, Y: 1, Width: 10, Height: 10},
		{ID: "y", X: 50, Y: 50, Width: 10, Height: 10},
	}})
	v := e.Value()
	if len(v.BBox) != 2 || v.BBox[0].ID != "x" {
		t.Fatalf("value should reflect the current boxes, got %+v", v.BBox)
	}
	if v.Key != key || rec.Len() != 1 {
		t.Errorf("value should carry the last emitted key %q, got %q", key, v.Key)
	}
}

func TestMoveClampsToImage(t *testing.T) {
	e := New(100, 100, nil, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}))
	drag(e, 15, 15, 200, 15)
	b := e.Boxes()[0]
	if b.X != 80 || b.Y != 10 || b.Width != 20 {
		t.Fatalf("unexpected move result %+v", b)
	}
}

func TestDeleteMode(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}))
	e.Handle(event.SetBoxMode{Delete: true})
	e.Handle(event.Pointer{Dir: event.DirPress, X: 50, Y: 50})
	if e.Len() != 1 {
		t.Fatalf("press outside a box should not delete")
	}
	e.Handle(event.Pointer{Dir: event.DirPress, X: 20, Y: 20})
	if e.Len() != 0 {
		t.Fatalf("press on a box in delete mode should delete it")
	}
	if got := lastBoxes(t, rec); got == nil || len(got) != 0 {
		t.Fatalf("expected an empty, non-nil box list, got %#v", got)
	}
}

func TestReadOnly(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithReadOnly(true), WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}))
	drag(e, 50, 50, 90, 90)
	drag(e, 15, 15, 60, 60)
	e.Handle(event.Key{Code: event.KeyDelete, Dir: event.DirPress})
	e.Handle(event.SetLabel{Label: "dog"})
	if rec.Len() != 0 {
		t.Fatalf("read only editor emitted %d values", rec.Len())
	}
	if b := e.Boxes()[0]; e.Len() != 1 || b.X != 10 || b.Label != "" {
		t.Fatalf("read only editor mutated boxes: %+v", b)
	}
}

func TestRelabelAndUpdateItem(t *testing.T) {
	rec := &host.Recorder{}
	e := New(100, 100, rec, WithLabels([]string{"cat", "dog"}), WithBoxes([]*annotation.Rectangle{{ID: "a", Label: "cat", X: 10, Y: 10, Width: 20, Height: 20}}))
	e.Handle(event.Select{ID: "a"})
	e.Handle(event.SetLabel{Label: "dog"})
	got := lastBoxes(t, rec)
	if got[0].Label != "dog" || got[0].LabelID != 1 {
		t.Fatalf("relabel not emitted: %+v", got[0])
	}
	e.Handle(event.UpdateItem{ID: "a", NewID: "renamed", Meta: []string{"note"}})
	got = lastBoxes(t, rec)
	if got[0].ID != "renamed" || len(got[0].Meta) != 1 || e.Selected() != "renamed" {
		t.Fatalf("item update not applied: %+v", got[0])
	}
}

func TestLoadBoxesKeepsSelection(t *testing.T) {
	e := New(100, 100, nil, WithBoxes([]*annotation.Rectangle{{ID: "a", X: 10, Y: 10, Width: 20, Height: 20}}))
	e.Handle(event.Select{ID: "a"})
	e.Handle(event.LoadBoxes{Boxes: []*annotation.Rectangle{{ID: "a", X: 0, Y: 0, Width: 10, Height: 10}}})
	if e.Selected() != "a" {
		t.Fatalf("selection should survive a reload that keeps the id")
	}
	e.Handle(event.LoadBoxes{Boxes: nil})
	if e.Selected() != "" {
		t.Fatalf("selection should clear when the id disappears")
	}
}
