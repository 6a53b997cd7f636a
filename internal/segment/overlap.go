package segment

import "github.com/example/labelkit/internal/annotation"

// ResolveOverlap makes the mask with id the sole owner of every cell it
// occupies by clearing those cells in all other masks. It returns the number
// of cells cleared. Unknown ids are a no-op.
func ResolveOverlap(masks []*annotation.Mask, id string) int {
	var owner *annotation.Mask
	for _, m := range masks {
		if m != nil && m.ID == id {
			owner = m
			break
		}
	}
	if owner == nil || owner.Grid == nil {
		return 0
	}
	n := 0
	for _, m := range masks {
		if m == nil || m == owner || m.Grid == nil {
			continue
		}
		n += m.Grid.Subtract(owner.Grid)
	}
	return n
}
