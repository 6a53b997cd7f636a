package classify

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

func last(t *testing.T, rec *host.Recorder) host.ClassificationValue {
	t.Helper()
	v, ok := rec.Last().(host.ClassificationValue)
	if !ok {
		t.Fatalf("expected a classification value, got %#v", rec.Last())
	}
	return v
}

func TestSingleSelect(t *testing.T) {
	rec := &host.Recorder{}
	e := New(10, 10, rec, WithLabels([]string{"cat", "dog"}), WithSelected([]string{"cat"}))
	if !e.Has("cat") || rec.Len() != 0 {
		t.Fatalf("initial choice should be loaded without emitting")
	}

	e.Handle(event.SetLabel{Label: "cat"})
	if rec.Len() != 0 {
		t.Fatalf("choosing the current class should not emit")
	}
	e.Handle(event.SetLabel{Label: "dog"})
	v := last(t, rec)
	if !slices.Equal(v.Label, []string{"dog"}) || v.Multi || len(v.Key) != 8 {
		t.Fatalf("unexpected value %+v", v)
	}
	if e.Has("cat") || e.Value().Key != v.Key {
		t.Errorf("single select should replace the choice and remember the key")
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["label"] != "dog" {
		t.Errorf("single select label should encode as a string: %s", data)
	}
}

func TestMultiSelectToggles(t *testing.T) {
	rec := &host.Recorder{}
	e := New(10, 10, rec, WithLabels([]string{"a", "b", "c"}), WithMultiSelect(true), WithSelected([]string{"b", "b", "zzz"}))
	if got := e.Selected(); !slices.Equal(got, []string{"b"}) {
		t.Fatalf("initial choice should drop repeats and unknown classes, got %v", got)
	}

	e.Handle(event.SetLabel{Label: "a"})
	e.Handle(event.SetLabel{Label: "c"})
	e.Handle(event.SetLabel{Label: "b"})
	if rec.Len() != 3 {
		t.Fatalf("every toggle should emit, got %d", rec.Len())
	}
	if v := last(t, rec); !slices.Equal(v.Label, []string{"a", "c"}) || !v.Multi {
		t.Fatalf("unexpected value %+v", v)
	}

	e.Handle(event.SetLabel{Label: "a"})
	e.Handle(event.SetLabel{Label: "c"})
	data, err := json.Marshal(last(t, rec))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"label":[]`) {
		t.Errorf("empty multi choice should encode as a list: %s", data)
	}
}

func TestUnknownClassIgnored(t *testing.T) {
	rec := &host.Recorder{}
	e := New(10, 10, rec, WithLabels([]string{"a"}))
	e.Handle(event.SetLabel{Label: "b"})
	e.Handle(event.SetLabel{Label: ""})
	if rec.Len() != 0 || len(e.Selected()) != 0 {
		t.Fatalf("unknown classes must not be chosen")
	}

	free := New(10, 10, rec)
	free.Handle(event.SetLabel{Label: "anything"})
	if !free.Has("anything") || rec.Len() != 1 {
		t.Fatalf("without a label list any class is accepted")
	}
}

func TestMetaAndReadOnly(t *testing.T) {
	rec := &host.Recorder{}
	e := New(10, 10, rec, WithLabels([]string{"a"}), WithMeta([]string{"old"}))
	e.Handle(event.UpdateItem{Meta: []string{"new", "note"}})
	if v := last(t, rec); !slices.Equal(v.Meta, []string{"new", "note"}) {
		t.Fatalf("meta not replaced: %+v", v)
	}
	e.Handle(event.UpdateItem{ID: "x"})
	if rec.Len() != 1 {
		t.Fatalf("update without meta should be a no-op")
	}

	ro := New(10, 10, rec, WithLabels([]string{"a"}), WithReadOnly(true))
	ro.Handle(event.SetLabel{Label: "a"})
	ro.Handle(event.UpdateItem{Meta: []string{"x"}})
	if rec.Len() != 1 || ro.Has("a") {
		t.Fatalf("read only picker changed")
	}
}

func TestLoadLabelsDoesNotEmit(t *testing.T) {
	rec := &host.Recorder{}
	e := New(10, 10, rec, WithLabels([]string{"a", "b"}))
	e.Handle(event.LoadLabels{Labels: []string{"b", "a"}, Meta: []string{"m"}})
	if rec.Len() != 0 {
		t.Fatalf("reload should not emit")
	}
	if got := e.Selected(); !slices.Equal(got, []string{"b"}) {
		t.Errorf("single select reload should keep one class, got %v", got)
	}
	if got := e.Value().Meta; !slices.Equal(got, []string{"m"}) {
		t.Errorf("meta %v", got)
	}
	e.Handle(event.Toggle{})
	e.Handle(event.Pointer{Dir: event.DirPress, X: 1, Y: 1})
	if rec.Len() != 0 {
		t.Errorf("image editing events should be ignored")
	}
}
