// Package host defines what the embedding host passes in and receives back:
// render parameters, the emitted value payloads and the Emitter port.
package host

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/example/labelkit/internal/annotation"
)

// LabelType selects which editor the parameters drive.
type LabelType string

const (
	LabelSegmentation   LabelType = "segmentation"
	LabelDetection      LabelType = "detection"
	LabelClassification LabelType = "classification"

	// labelAnnotation is the host's older name for classification.
	labelAnnotation LabelType = "annotation"
)

// Canonical maps alternative spellings onto the label type they stand for.
func (t LabelType) Canonical() LabelType {
	if t == labelAnnotation {
		return LabelClassification
	}
	return t
}

// MaskInfo is one mask as supplied by the host.
type MaskInfo struct {
	Data           [][]bool       `json:"data"`
	Label          string         `json:"label"`
	ID             string         `json:"id,omitempty"`
	Meta           []string       `json:"meta,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
}

// BoxInfo is one bounding box as supplied by the host, [x, y, w, h] in pixels.
type BoxInfo struct {
	BBox           [4]float64     `json:"bbox"`
	Label          string         `json:"label"`
	ID             string         `json:"id,omitempty"`
	Meta           []string       `json:"meta,omitempty"`
	AdditionalData map[string]any `json:"additional_data,omitempty"`
}

// Params are the render parameters, re-applied on every host re-render.
type Params struct {
	ImageURL    string              `json:"image_url"`
	ImageSize   [2]int              `json:"image_size"`
	LabelType   LabelType           `json:"label_type,omitempty"`
	LabelList   []string            `json:"label_list"`
	ColorMap    annotation.ColorMap `json:"color_map,omitempty"`
	MasksInfo   []MaskInfo          `json:"masks_info,omitempty"`
	BBoxInfo    []BoxInfo           `json:"bbox_info,omitempty"`
	ReadOnly    bool                `json:"read_only,omitempty"`
	AutoSegMode bool                `json:"auto_seg_mode,omitempty"`
	StrokeSize  int                 `json:"stroke_size,omitempty"`
	PenShape    string              `json:"pen_shape,omitempty"`
	EditMode    string              `json:"edit_mode,omitempty"`
	LineWidth   float64             `json:"line_width,omitempty"`
	BBoxFormat  BoxFormat           `json:"bbox_format,omitempty"`

	// Classification parameters.
	MultiSelect           bool     `json:"multi_select,omitempty"`
	DefaultLabelIdx       *int     `json:"default_label_idx,omitempty"`
	DefaultMultiLabelList []string `json:"default_multi_label_list,omitempty"`
	MetaInfo              []string `json:"meta_info,omitempty"`

	// Layout flags carried through for the host UI. The core ignores them.
	ClassSelectType     string `json:"class_select_type,omitempty"`
	ClassSelectPosition string `json:"class_select_position,omitempty"`
	ItemEditor          bool   `json:"item_editor,omitempty"`
	ItemEditorPosition  string `json:"item_editor_position,omitempty"`
	ItemSelector        bool   `json:"item_selector,omitempty"`
	ItemSelectorPos     string `json:"item_selector_position,omitempty"`
	EditMeta            bool   `json:"edit_meta,omitempty"`
	EditDescription     bool   `json:"edit_description,omitempty"`
	UILeftSize          string `json:"ui_left_size,omitempty"`
	UIBottomSize        string `json:"ui_bottom_size,omitempty"`
	UIRightSize         string `json:"ui_right_size,omitempty"`
	JustifyContent      string `json:"justify_content,omitempty"`
}

// DecodeParams reads one JSON parameter object.
func DecodeParams(r io.Reader) (*Params, error) {
	var p Params
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	p.LabelType = p.LabelType.Canonical()
	if p.LabelType == "" {
		p.LabelType = LabelSegmentation
		if len(p.MasksInfo) == 0 && len(p.BBoxInfo) > 0 {
			p.LabelType = LabelDetection
		}
	}
	if p.BBoxFormat == "" {
		p.BBoxFormat = FormatXYWH
	}
	if p.ImageSize[0] < 0 || p.ImageSize[1] < 0 {
		return nil, fmt.Errorf("decode params: negative image_size %v", p.ImageSize)
	}
	return &p, nil
}

// LoadParams decodes the parameter file at path.
func LoadParams(path string) (*Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open params %s: %w", path, err)
	}
	defer f.Close()
	return DecodeParams(f)
}

// Width and Height return the image dimensions.
func (p *Params) Width() int  { return p.ImageSize[0] }
func (p *Params) Height() int { return p.ImageSize[1] }

// Colors returns the colour map with generated colours for unlisted labels.
func (p *Params) Colors() annotation.ColorMap {
	return p.ColorMap.WithDefaults(p.LabelList)
}

// Masks converts masks_info into masks sized to the image.
func (p *Params) Masks() []*annotation.Mask {
	out := make([]*annotation.Mask, 0, len(p.MasksInfo))
	for i, mi := range p.MasksInfo {
		id := mi.ID
		if id == "" {
			id = annotation.FallbackID("mask", i)
		}
		out = append(out, &annotation.Mask{
			ID:             id,
			Label:          mi.Label,
			Grid:           annotation.GridFromRows(mi.Data, p.Width(), p.Height()),
			Meta:           mi.Meta,
			AdditionalData: mi.AdditionalData,
		})
	}
	return out
}

// Boxes converts bbox_info into normalized rectangles. Boxes are read in
// the configured bbox_format.
func (p *Params) Boxes() []*annotation.Rectangle {
	out := make([]*annotation.Rectangle, 0, len(p.BBoxInfo))
	w, h := float64(p.Width()), float64(p.Height())
	for i, bi := range p.BBoxInfo {
		id := bi.ID
		if id == "" {
			id = annotation.FallbackID("bbox", i)
		}
		xywh := FromFormat(bi.BBox, p.BBoxFormat, w, h)
		r := &annotation.Rectangle{
			ID:             id,
			Label:          bi.Label,
			X:              xywh[0],
			Y:              xywh[1],
			Width:          xywh[2],
			Height:         xywh[3],
			Meta:           bi.Meta,
			AdditionalData: bi.AdditionalData,
		}
		r.Normalize(w, h)
		out = append(out, r)
	}
	return out
}

// Selection returns the initially chosen classes. In multi select mode it is
// default_multi_label_list. Otherwise it is the label at default_label_idx,
// the first label when the index is absent, or nothing when the index is out
// of range.
func (p *Params) Selection() []string {
	if p.MultiSelect {
		return slices.Clone(p.DefaultMultiLabelList)
	}
	idx := 0
	if p.DefaultLabelIdx != nil {
		idx = *p.DefaultLabelIdx
	}
	if idx < 0 || idx >= len(p.LabelList) {
		return nil
	}
	return []string{p.LabelList[idx]}
}

// ResolveImageURL joins image_url onto the host base URL. Absolute URLs and
// an empty base are returned unchanged.
func (p *Params) ResolveImageURL(base string) string {
	if base == "" {
		return p.ImageURL
	}
	if u, err := url.Parse(p.ImageURL); err == nil && u.IsAbs() {
		return p.ImageURL
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.ImageURL, "/")
}
