package viewer

import (
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/event"
)

// action is a viewer level command triggered from the keyboard or toolbar.
type action int

const (
	actionNone action = iota
	actionSave
	actionCopy
	actionCopyPreview
	actionReload
	actionQuit
)

// controls is the viewer side copy of the settings the keyboard changes.
type controls struct {
	size      int
	shape     brush.Shape
	mode      brush.Mode
	labels    []string
	boxDelete bool
}

func (c *controls) brushEvent() event.SetBrush {
	return event.SetBrush{Size: c.size, Shape: c.shape, Mode: c.mode}
}

func (c *controls) setSize(n int) event.Event {
	c.size = brush.ClampSize(n)
	return c.brushEvent()
}

func (c *controls) setShape(s brush.Shape) event.Event {
	c.shape = s
	return c.brushEvent()
}

func (c *controls) setMode(m brush.Mode) event.Event {
	c.mode = m
	return c.brushEvent()
}

func (c *controls) toggleBoxMode() event.Event {
	c.boxDelete = !c.boxDelete
	return event.SetBoxMode{Delete: c.boxDelete}
}

func editorKey(code key.Code) event.KeyCode {
	switch code {
	case key.CodeEscape:
		return event.KeyEscape
	case key.CodeDeleteForward:
		return event.KeyDelete
	case key.CodeDeleteBackspace:
		return event.KeyBackspace
	case key.CodeLeftArrow:
		return event.KeyLeft
	case key.CodeRightArrow:
		return event.KeyRight
	case key.CodeUpArrow:
		return event.KeyUp
	case key.CodeDownArrow:
		return event.KeyDown
	}
	return event.KeyUnknown
}

// translateKey maps a window key event to editor events and a viewer action.
// Auto repeats are dropped; the editors act once per physical press.
func (c *controls) translateKey(e key.Event) ([]event.Event, action) {
	var dir event.Direction
	switch e.Direction {
	case key.DirPress:
		dir = event.DirPress
	case key.DirRelease:
		dir = event.DirRelease
	default:
		return nil, actionNone
	}
	if code := editorKey(e.Code); code != event.KeyUnknown {
		return []event.Event{event.Key{Code: code, Dir: dir}}, actionNone
	}
	if dir != event.DirPress {
		return nil, actionNone
	}
	r := unicode.ToLower(e.Rune)
	if e.Modifiers&key.ModControl != 0 {
		switch {
		case r == 's' || e.Code == key.CodeS:
			return nil, actionSave
		case r == 'c' || e.Code == key.CodeC:
			if e.Modifiers&key.ModShift != 0 {
				return nil, actionCopyPreview
			}
			return nil, actionCopy
		}
		return nil, actionNone
	}
	if e.Code == key.CodeReturnEnter || e.Code == key.CodeKeypadEnter {
		return []event.Event{event.Toggle{}}, actionNone
	}
	switch r {
	case 'e':
		return []event.Event{event.Toggle{}}, actionNone
	case 'p':
		return []event.Event{c.setMode(brush.Pen)}, actionNone
	case 'x':
		return []event.Event{c.setMode(brush.Erase)}, actionNone
	case 'c':
		return []event.Event{c.setShape(brush.Circle)}, actionNone
	case 's':
		return []event.Event{c.setShape(brush.Square)}, actionNone
	case '[':
		return []event.Event{c.setSize(c.size - 1)}, actionNone
	case ']':
		return []event.Event{c.setSize(c.size + 1)}, actionNone
	case 'd':
		return []event.Event{c.toggleBoxMode()}, actionNone
	case 'r':
		return nil, actionReload
	case 'q':
		return nil, actionQuit
	}
	if r >= '1' && r <= '9' {
		if idx := int(r - '1'); idx < len(c.labels) {
			return []event.Event{event.SetLabel{Label: c.labels[idx]}}, actionNone
		}
	}
	return nil, actionNone
}
