package annotation

import "go.jetify.com/typeid/v2"

const (
	PrefixMask = "mask"
	PrefixBox  = "bbox"
)

// NewID returns a fresh type-prefixed identifier such as mask_01h455vb4pex5vsknk084sn02q.
func NewID(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewMaskID() string { return NewID(PrefixMask) }
func NewBoxID() string  { return NewID(PrefixBox) }
