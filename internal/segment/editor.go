// Package segment implements the mask editor: a display/edit/new state
// machine that paints brush strokes into occupancy grids and reports every
// committed change through a host.Emitter.
package segment

import (
	"image"
	"math"
	"slices"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/composite"
	"github.com/example/labelkit/internal/detect"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

// Mode is the editor state. It doubles as the compositor opacity mode.
type Mode = composite.Mode

const (
	ModeDisplay = composite.ModeDisplay
	ModeEdit    = composite.ModeEdit
	ModeNew     = composite.ModeNew
)

// Editor owns a mask collection. It is not safe for concurrent use; every
// event runs to completion inside Handle, including the emission it causes.
type Editor struct {
	width, height int
	masks         []*annotation.Mask
	labels        []string
	colors        annotation.ColorMap
	label         string
	selected      string
	mode          Mode
	scale         float64
	readOnly      bool
	autoSeg       bool
	format        host.BoxFormat

	brushSize  int
	brushShape brush.Shape
	brushMode  brush.Mode

	emitter host.Emitter
	keys    *host.KeySource
	lastKey string
	logger  *zap.Logger

	keyDown map[event.KeyCode]bool

	drawing bool
	painted int

	prompts    *detect.Editor
	promptOpts []detect.Option

	compOpts []composite.Option
	comp     *composite.Compositor
	dirty    bool
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithMasks sets the initial collection. The editor takes ownership.
func WithMasks(masks []*annotation.Mask) Option { return func(e *Editor) { e.masks = masks } }

// WithLabels sets the label list. The first label becomes the current label.
func WithLabels(labels []string) Option { return func(e *Editor) { e.labels = labels } }

func WithLabel(label string) Option { return func(e *Editor) { e.label = label } }

// WithColors sets the label colour map used by the overlay.
func WithColors(c annotation.ColorMap) Option { return func(e *Editor) { e.colors = c } }

func WithReadOnly(ro bool) Option { return func(e *Editor) { e.readOnly = ro } }

// WithAutoSeg makes "new" collect prompt boxes instead of creating a mask.
func WithAutoSeg(on bool) Option { return func(e *Editor) { e.autoSeg = on } }

// WithFormat sets the bbox layout of emitted prompt boxes.
func WithFormat(f host.BoxFormat) Option { return func(e *Editor) { e.format = f } }

func WithScale(s float64) Option { return func(e *Editor) { e.scale = s } }

// WithBrush sets the initial brush.
func WithBrush(size int, shape brush.Shape, mode brush.Mode) Option {
	return func(e *Editor) {
		e.brushSize = size
		e.brushShape = shape
		e.brushMode = mode
	}
}

// WithKeySource shares a change key source with another editor.
func WithKeySource(k *host.KeySource) Option { return func(e *Editor) { e.keys = k } }

func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.logger = l } }

// WithCompositor passes options to the overlay compositor.
func WithCompositor(opts ...composite.Option) Option {
	return func(e *Editor) { e.compOpts = append(e.compOpts, opts...) }
}

// WithBoxOptions passes options to the prompt box editor, such as its move
// step and minimum box size. They apply after the options the mask editor
// derives from its own settings.
func WithBoxOptions(opts ...detect.Option) Option {
	return func(e *Editor) { e.promptOpts = append(e.promptOpts, opts...) }
}

// New returns a mask editor for an image of the given size.
func New(width, height int, emitter host.Emitter, opts ...Option) *Editor {
	e := &Editor{
		width:     max(width, 0),
		height:    max(height, 0),
		scale:     1,
		format:    host.FormatXYWH,
		brushSize: brush.DefaultSize,
		emitter:   emitter,
		keyDown:   map[event.KeyCode]bool{},
		dirty:     true,
	}
	for _, o := range opts {
		o(e)
	}
	if e.emitter == nil {
		e.emitter = host.Discard
	}
	if e.keys == nil {
		e.keys = host.NewKeySource()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.scale <= 0 {
		e.scale = 1
	}
	if e.label == "" && len(e.labels) > 0 {
		e.label = e.labels[0]
	}
	e.brushSize = brush.ClampSize(e.brushSize)
	e.masks = e.load(e.masks)
	promptOpts := append([]detect.Option{
		detect.WithLabels(e.labels),
		detect.WithLabel(e.label),
		detect.WithFormat(e.format),
		detect.WithScale(e.scale),
		detect.WithReadOnly(e.readOnly),
		detect.WithLogger(e.logger.Named("prompts")),
	}, e.promptOpts...)
	e.prompts = detect.New(e.width, e.height, nil, promptOpts...)
	e.comp = composite.New(e.width, e.height, e.compOpts...)
	return e
}

// load drops nil masks and fits every grid to the image.
func (e *Editor) load(in []*annotation.Mask) []*annotation.Mask {
	out := make([]*annotation.Mask, 0, len(in))
	for _, m := range in {
		if m == nil {
			continue
		}
		if m.Grid == nil || m.Grid.Width() != e.width || m.Grid.Height() != e.height {
			var rows [][]bool
			if m.Grid != nil {
				rows = m.Grid.Rows()
			}
			m.Grid = annotation.GridFromRows(rows, e.width, e.height)
		}
		out = append(out, m)
	}
	return out
}

// Masks returns copies of the masks in iteration order.
func (e *Editor) Masks() []*annotation.Mask {
	out := make([]*annotation.Mask, len(e.masks))
	for i, m := range e.masks {
		out[i] = m.Clone()
	}
	return out
}

// Mask returns a copy of the mask with id.
func (e *Editor) Mask(id string) (*annotation.Mask, bool) {
	if i := e.index(id); i >= 0 {
		return e.masks[i].Clone(), true
	}
	return nil, false
}

func (e *Editor) Len() int         { return len(e.masks) }
func (e *Editor) Selected() string { return e.selected }
func (e *Editor) Label() string    { return e.label }
func (e *Editor) Labels() []string { return e.labels }
func (e *Editor) Mode() Mode       { return e.mode }
func (e *Editor) Scale() float64   { return e.scale }
func (e *Editor) ReadOnly() bool   { return e.readOnly }
func (e *Editor) AutoSeg() bool    { return e.autoSeg }
func (e *Editor) LastKey() string  { return e.lastKey }
func (e *Editor) Drawing() bool    { return e.drawing }
func (e *Editor) Size() (w, h int) { return e.width, e.height }

// Colors returns the label colour map used by the overlay.
func (e *Editor) Colors() annotation.ColorMap { return e.colors }

// Brush returns the current brush settings.
func (e *Editor) Brush() (size int, shape brush.Shape, mode brush.Mode) {
	return e.brushSize, e.brushShape, e.brushMode
}

// Prompting reports whether pointer input currently draws prompt boxes.
func (e *Editor) Prompting() bool { return e.mode == ModeNew && e.autoSeg }

// Prompts exposes the prompt box editor used in auto segmentation mode.
func (e *Editor) Prompts() *detect.Editor { return e.prompts }

// Overlay returns the composited mask overlay, repainting it only when the
// collection, selection or mode changed since the last call.
func (e *Editor) Overlay() *image.NRGBA {
	if e.dirty {
		e.comp.Composite(e.masks, e.colors, e.selected, e.mode)
		e.dirty = false
	}
	return e.comp.Image()
}

// Value returns the collection in its emitted form without emitting.
func (e *Editor) Value() host.SegmentationValue {
	return host.SegmentationValue{
		New:  e.prompts.Records(),
		Mask: host.MaskRecords(e.masks, e.labels),
		Key:  e.lastKey,
	}
}

// emit sends the collection and any prompt boxes to the host. Prompt boxes
// are handed over once and then cleared.
func (e *Editor) emit() {
	v := host.SegmentationValue{
		New:  e.prompts.Records(),
		Mask: host.MaskRecords(e.masks, e.labels),
		Key:  e.keys.Next(),
	}
	e.prompts.Clear()
	e.lastKey = v.Key
	if err := e.emitter.Emit(v); err != nil {
		e.logger.Warn("emit segmentation value", zap.Error(err))
	}
}

func (e *Editor) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(e.masks, func(m *annotation.Mask) bool { return m.ID == id })
}

func (e *Editor) selectedMask() *annotation.Mask {
	if i := e.index(e.selected); i >= 0 {
		return e.masks[i]
	}
	return nil
}

// maskAt returns the first mask in iteration order owning the cell.
func (e *Editor) maskAt(x, y int) *annotation.Mask {
	for _, m := range e.masks {
		if m.Owns(x, y) {
			return m
		}
	}
	return nil
}

func (e *Editor) setSelected(id string) {
	if id == e.selected {
		return
	}
	e.selected = id
	e.dirty = true
	clear(e.keyDown)
	if m := e.selectedMask(); m != nil {
		e.label = m.Label
	}
}

func (e *Editor) setMode(m Mode) {
	if m == e.mode {
		return
	}
	e.logger.Debug("mode change", zap.Stringer("from", e.mode), zap.Stringer("to", m))
	e.mode = m
	e.drawing = false
	e.dirty = true
	clear(e.keyDown)
}

// Handle applies one event.
func (e *Editor) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.Pointer:
		if e.Prompting() {
			e.prompts.Handle(ev)
			return
		}
		e.handlePointer(ev)
	case event.Key:
		if e.Prompting() {
			e.prompts.Handle(ev)
			return
		}
		e.handleKey(ev)
	case event.Toggle:
		e.toggle()
	case event.SetLabel:
		e.setLabel(ev.Label)
	case event.SetBrush:
		e.brushSize = brush.ClampSize(ev.Size)
		e.brushShape = ev.Shape
		e.brushMode = ev.Mode
	case event.Select:
		if e.readOnly || e.mode != ModeDisplay {
			return
		}
		if ev.ID == "" || e.index(ev.ID) >= 0 {
			e.setSelected(ev.ID)
		}
	case event.Delete:
		if e.mode != ModeDisplay {
			return
		}
		id := ev.ID
		if id == "" {
			id = e.selected
		}
		e.remove(id)
	case event.UpdateItem:
		e.updateItem(ev)
	case event.SetScale:
		if ev.Scale > 0 {
			e.scale = ev.Scale
			e.prompts.Handle(ev)
		}
	case event.SetBoxMode, event.LoadBoxes:
		e.prompts.Handle(ev)
	case event.LoadMasks:
		e.masks = e.load(ev.Masks)
		e.drawing = false
		e.dirty = true
		if m := e.selectedMask(); m != nil {
			e.label = m.Label
		} else {
			e.setSelected("")
		}
	}
}

func (e *Editor) toggle() {
	if e.readOnly {
		return
	}
	if e.mode != ModeDisplay {
		if m := e.selectedMask(); m != nil {
			n := ResolveOverlap(e.masks, m.ID)
			e.logger.Debug("mask saved", zap.String("id", m.ID), zap.Int("cells", m.Grid.Count()), zap.Int("cleared", n))
		}
		e.setMode(ModeDisplay)
		e.setSelected("")
		e.emit()
		return
	}
	if e.selectedMask() != nil {
		e.setMode(ModeEdit)
		return
	}
	e.setMode(ModeNew)
	if e.autoSeg {
		e.setSelected("")
		e.prompts.Handle(event.SetLabel{Label: e.label})
		return
	}
	m := annotation.NewMask(annotation.NewMaskID(), e.label, e.width, e.height)
	e.masks = append(e.masks, m)
	e.setSelected(m.ID)
	e.logger.Debug("mask created", zap.String("id", m.ID), zap.String("label", m.Label))
}

func (e *Editor) setLabel(label string) {
	e.label = label
	if e.Prompting() {
		e.prompts.Handle(event.SetLabel{Label: label})
		return
	}
	m := e.selectedMask()
	if m == nil || e.readOnly || m.Label == label {
		return
	}
	m.Label = label
	e.dirty = true
	e.emit()
}

func (e *Editor) remove(id string) {
	if e.readOnly {
		return
	}
	i := e.index(id)
	if i < 0 {
		return
	}
	e.masks = slices.Delete(e.masks, i, i+1)
	if id == e.selected {
		e.setSelected("")
	}
	e.dirty = true
	e.logger.Debug("mask deleted", zap.String("id", id))
	e.emit()
}

func (e *Editor) updateItem(ev event.UpdateItem) {
	if e.readOnly {
		return
	}
	i := e.index(ev.ID)
	if i < 0 {
		return
	}
	m := e.masks[i]
	if ev.NewID != "" && ev.NewID != m.ID {
		if e.index(ev.NewID) >= 0 {
			return
		}
		if e.selected == m.ID {
			e.selected = ev.NewID
		}
		m.ID = ev.NewID
	}
	if ev.Meta != nil {
		m.Meta = slices.Clone(ev.Meta)
	}
	e.emit()
}

func (e *Editor) cell(x, y float64) (int, int) {
	return int(math.Floor(x / e.scale)), int(math.Floor(y / e.scale))
}

func (e *Editor) handlePointer(ev event.Pointer) {
	if e.readOnly {
		return
	}
	cx, cy := e.cell(ev.X, ev.Y)
	if e.mode == ModeDisplay {
		if ev.Dir != event.DirPress {
			return
		}
		if m := e.maskAt(cx, cy); m != nil {
			e.setSelected(m.ID)
		} else {
			e.setSelected("")
		}
		return
	}
	switch ev.Dir {
	case event.DirPress:
		e.drawing = true
		e.painted = 0
		e.paint(cx, cy)
	case event.DirMove:
		if e.drawing {
			e.paint(cx, cy)
		}
	case event.DirRelease, event.DirLeave:
		if !e.drawing {
			return
		}
		e.drawing = false
		if e.painted > 0 {
			e.emit()
		}
	}
}

func (e *Editor) paint(cx, cy int) {
	m := e.selectedMask()
	if m == nil {
		return
	}
	if n := brush.Paint(m.Grid, cy, cx, e.brushSize, e.brushShape, e.brushMode.Value()); n > 0 {
		e.painted += n
		e.dirty = true
	}
}

func (e *Editor) handleKey(ev event.Key) {
	if ev.Dir == event.DirRelease {
		delete(e.keyDown, ev.Code)
		return
	}
	if ev.Dir != event.DirPress || e.keyDown[ev.Code] {
		return
	}
	e.keyDown[ev.Code] = true
	if e.readOnly || e.mode != ModeDisplay || e.selectedMask() == nil {
		return
	}
	switch ev.Code {
	case event.KeyEscape:
		e.setSelected("")
	case event.KeyDelete, event.KeyBackspace:
		e.remove(e.selected)
	}
}
