// Package event defines the input messages consumed by the mask and box
// editors. Surfaces such as the desktop viewer or a replay script translate
// their native input into these values.
package event

import (
	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
)

// Event is implemented by every message in this package.
type Event interface{ event() }

// Direction of a pointer or key event.
type Direction int

const (
	DirNone Direction = iota
	DirPress
	DirRelease
	DirMove
	DirLeave
)

func (d Direction) String() string {
	switch d {
	case DirPress:
		return "press"
	case DirRelease:
		return "release"
	case DirMove:
		return "move"
	case DirLeave:
		return "leave"
	}
	return "none"
}

// Pointer is a pointer sample in display coordinates.
type Pointer struct {
	Dir  Direction
	X, Y float64
}

// KeyCode identifies the keys the editors react to.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyEscape
	KeyDelete
	KeyBackspace
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
)

// Key is a key press or release. Only DirPress and DirRelease are used.
type Key struct {
	Code KeyCode
	Dir  Direction
}

// Toggle is the add/edit/save control of the mask editor.
type Toggle struct{}

// SetLabel changes the current label and relabels the selected item.
type SetLabel struct{ Label string }

// SetBrush replaces the brush settings.
type SetBrush struct {
	Size  int
	Shape brush.Shape
	Mode  brush.Mode
}

// Select selects an item by id. An empty id clears the selection.
type Select struct{ ID string }

// Delete removes an item by id, or the selected item when ID is empty.
type Delete struct{ ID string }

// UpdateItem renames an item and replaces its meta strings.
type UpdateItem struct {
	ID    string
	NewID string
	Meta  []string
}

// SetScale sets the display pixels per image pixel.
type SetScale struct{ Scale float64 }

// SetBoxMode switches the box editor between transforming and deleting.
type SetBoxMode struct{ Delete bool }

// LoadMasks replaces the mask collection after a host re-render.
type LoadMasks struct{ Masks []*annotation.Mask }

// LoadBoxes replaces the box collection after a host re-render.
type LoadBoxes struct{ Boxes []*annotation.Rectangle }

// LoadLabels replaces the chosen classes and meta strings after a host
// re-render.
type LoadLabels struct {
	Labels []string
	Meta   []string
}

func (Pointer) event()    {}
func (Key) event()        {}
func (Toggle) event()     {}
func (SetLabel) event()   {}
func (SetBrush) event()   {}
func (Select) event()     {}
func (Delete) event()     {}
func (UpdateItem) event() {}
func (SetScale) event()   {}
func (SetBoxMode) event() {}
func (LoadMasks) event()  {}
func (LoadBoxes) event()  {}
func (LoadLabels) event() {}
