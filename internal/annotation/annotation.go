// Package annotation holds the value types shared by the mask and box
// editors: occupancy grids, masks, rectangles and label colours.
package annotation

import (
	"fmt"
	"maps"
	"slices"
)

// Mask is one labelled segmentation region. Its grid always has the image's
// dimensions.
type Mask struct {
	ID             string
	Label          string
	Grid           *Grid
	Meta           []string
	AdditionalData map[string]any
}

// NewMask returns an empty mask sized to the image.
func NewMask(id, label string, width, height int) *Mask {
	return &Mask{ID: id, Label: label, Grid: NewGrid(width, height)}
}

func (m *Mask) Clone() *Mask {
	out := &Mask{
		ID:             m.ID,
		Label:          m.Label,
		Meta:           slices.Clone(m.Meta),
		AdditionalData: maps.Clone(m.AdditionalData),
	}
	if m.Grid != nil {
		out.Grid = m.Grid.Clone()
	}
	return out
}

// Owns reports whether the mask occupies the given image pixel.
func (m *Mask) Owns(x, y int) bool {
	return m.Grid != nil && m.Grid.At(x, y)
}

// LabelID returns the index of label in labels or -1 when it is not listed.
func LabelID(labels []string, label string) int {
	return slices.Index(labels, label)
}

// FallbackID names an item the host supplied without an id.
func FallbackID(kind string, index int) string {
	return fmt.Sprintf("%s-%d", kind, index)
}
