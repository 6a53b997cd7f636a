package host

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/example/labelkit/internal/annotation"
)

const sampleParams = `{
  "image_url": "media/cat.png",
  "image_size": [4, 3],
  "label_list": ["cat", "dog"],
  "color_map": {"cat": "#FF0000"},
  "masks_info": [
    {"data": [[true, false], [false, true, true, true, true]], "label": "cat", "id": "m1"},
    {"data": [], "label": "bird"}
  ],
  "bbox_info": [
    {"bbox": [-1, 0, 2, 2], "label": "dog"}
  ],
  "read_only": true,
  "stroke_size": 7
}`

func TestDecodeParams(t *testing.T) {
	p, err := DecodeParams(strings.NewReader(sampleParams))
	if err != nil {
		t.Fatalf("DecodeParams: %v", err)
	}
	if p.Width() != 4 || p.Height() != 3 {
		t.Fatalf("image size %dx%d", p.Width(), p.Height())
	}
	if p.LabelType != LabelSegmentation || p.BBoxFormat != FormatXYWH {
		t.Errorf("defaults not applied: %q %q", p.LabelType, p.BBoxFormat)
	}
	if !p.ReadOnly || p.StrokeSize != 7 {
		t.Errorf("flags not decoded: %+v", p)
	}

	masks := p.Masks()
	if len(masks) != 2 {
		t.Fatalf("expected 2 masks, got %d", len(masks))
	}
	if masks[0].ID != "m1" || masks[1].ID != "mask-1" {
		t.Errorf("unexpected ids %q %q", masks[0].ID, masks[1].ID)
	}
	if masks[0].Grid.Count() != 4 || masks[0].Grid.Width() != 4 {
		t.Errorf("mask grid not fitted to the image: %v", masks[0].Grid.Rows())
	}

	boxes := p.Boxes()
	if len(boxes) != 1 || boxes[0].ID != "bbox-0" {
		t.Fatalf("unexpected boxes %+v", boxes)
	}
	if b := boxes[0]; b.X != 0 || b.Width != 4 || b.Height != 3 {
		t.Errorf("host box not normalized: %+v", b)
	}

	colors := p.Colors()
	if colors["cat"] != "#FF0000" || colors["dog"] == "" {
		t.Errorf("colour defaults: %v", colors)
	}
}

func TestDecodeParamsDetectionDefault(t *testing.T) {
	p, err := DecodeParams(strings.NewReader(`{"image_size":[10,10],"bbox_info":[{"bbox":[1,1,6,6],"label":"a"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.LabelType != LabelDetection {
		t.Errorf("expected detection, got %q", p.LabelType)
	}
	if _, err := DecodeParams(strings.NewReader(`{"image_size":[-1,3]}`)); err == nil {
		t.Errorf("negative size should fail")
	}
}

func TestResolveImageURL(t *testing.T) {
	p := &Params{ImageURL: "media/cat.png"}
	if got := p.ResolveImageURL("http://localhost:8501/"); got != "http://localhost:8501/media/cat.png" {
		t.Errorf("got %s", got)
	}
	if got := p.ResolveImageURL(""); got != "media/cat.png" {
		t.Errorf("got %s", got)
	}
	p.ImageURL = "https://example.com/x.png"
	if got := p.ResolveImageURL("http://localhost"); got != p.ImageURL {
		t.Errorf("absolute url rewritten to %s", got)
	}
}

func TestRecordsPropagateMissingLabel(t *testing.T) {
	m := annotation.NewMask("m", "bird", 2, 2)
	recs := MaskRecords([]*annotation.Mask{m}, []string{"cat"})
	if recs[0].LabelID != -1 {
		t.Errorf("expected -1, got %d", recs[0].LabelID)
	}
	if recs[0].Meta == nil || recs[0].AdditionalData == nil {
		t.Errorf("meta and additional data should encode as empty values")
	}
	boxes := BoxRecords([]*annotation.Rectangle{{ID: "b", Label: "cat", X: 1, Y: 2, Width: 5, Height: 6}}, []string{"cat"}, FormatXYXY, 10, 10)
	if boxes[0].LabelID != 0 || boxes[0].BBox != [4]float64{1, 2, 6, 8} {
		t.Errorf("unexpected box record %+v", boxes[0])
	}
}

func TestEmptyCollectionsEncodeAsArrays(t *testing.T) {
	v := SegmentationValue{New: BoxRecords(nil, nil, FormatXYWH, 0, 0), Mask: MaskRecords(nil, nil), Key: "00000001"}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"new":[],"mask":[],"key":"00000001"}` {
		t.Errorf("unexpected encoding %s", data)
	}
}

func TestClassificationParams(t *testing.T) {
	p, err := DecodeParams(strings.NewReader(`{"label_type":"annotation","label_list":["cat","dog"],"default_label_idx":1,"meta_info":["m"]}`))
	if err != nil {
		t.Fatal(err)
	}
	if p.LabelType != LabelClassification {
		t.Errorf("annotation should map to classification, got %q", p.LabelType)
	}
	if got := p.Selection(); len(got) != 1 || got[0] != "dog" {
		t.Errorf("selection %v", got)
	}
	p.DefaultLabelIdx = nil
	if got := p.Selection(); len(got) != 1 || got[0] != "cat" {
		t.Errorf("missing index should pick the first label, got %v", got)
	}
	idx := 5
	p.DefaultLabelIdx = &idx
	if got := p.Selection(); len(got) != 0 {
		t.Errorf("out of range index should select nothing, got %v", got)
	}
	p.MultiSelect = true
	p.DefaultMultiLabelList = []string{"dog", "cat"}
	if got := p.Selection(); len(got) != 2 || got[0] != "dog" {
		t.Errorf("multi selection %v", got)
	}
}

func TestClassificationValueEncoding(t *testing.T) {
	cases := []struct {
		v    ClassificationValue
		want string
	}{
		{ClassificationValue{Label: []string{"cat"}, Key: "00000001"}, `{"label":"cat","meta":[],"key":"00000001"}`},
		{ClassificationValue{Key: "00000002"}, `{"label":"","meta":[],"key":"00000002"}`},
		{ClassificationValue{Multi: true, Meta: []string{"x"}, Key: "00000003"}, `{"label":[],"meta":["x"],"key":"00000003"}`},
		{ClassificationValue{Label: []string{"a", "b"}, Multi: true, Key: "00000004"}, `{"label":["a","b"],"meta":[],"key":"00000004"}`},
	}
	for _, c := range cases {
		data, err := json.Marshal(c.v)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != c.want {
			t.Errorf("got %s, want %s", data, c.want)
		}
	}
}

func TestKeySourceChangesEveryCall(t *testing.T) {
	fixed := time.UnixMilli(1_712_345_678_901)
	ks := NewKeySourceWithClock(func() time.Time { return fixed })
	a := ks.Next()
	b := ks.Next()
	if a == b {
		t.Fatalf("key repeated: %s", a)
	}
	if a != "45678901" || len(b) != 8 {
		t.Errorf("unexpected keys %s %s", a, b)
	}
	ks = NewKeySourceWithClock(func() time.Time { return time.UnixMilli(5) })
	if got := ks.Next(); got != "00000005" {
		t.Errorf("key not zero padded: %s", got)
	}
}

func TestBoxFormatRoundTrip(t *testing.T) {
	box := [4]float64{10, 20, 30, 40}
	for _, f := range Formats {
		got := FromFormat(ToFormat(box, f, 200, 100), f, 200, 100)
		for i := range got {
			if math.Abs(got[i]-box[i]) > 1e-9 {
				t.Errorf("%s: got %v want %v", f, got, box)
				break
			}
		}
	}
	if got := ToFormat(box, FormatRelCXYWH, 200, 100); got != [4]float64{0.125, 0.4, 0.15, 0.4} {
		t.Errorf("REL_CXYWH: %v", got)
	}
	if _, err := ParseBoxFormat("rel_xyxy"); err != nil {
		t.Errorf("ParseBoxFormat: %v", err)
	}
	if _, err := ParseBoxFormat("polygon"); err == nil {
		t.Errorf("expected error")
	}
}

func TestEmitters(t *testing.T) {
	var buf bytes.Buffer
	rec := &Recorder{}
	failing := EmitterFunc(func(Value) error { return errors.New("closed") })
	multi := MultiEmitter{NewJSONEmitter(&buf), rec, failing}
	err := multi.Emit(DetectionValue{BBox: []BoxRecord{}, Key: "1"})
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected joined error, got %v", err)
	}
	if rec.Len() != 1 || rec.Last().ChangeKey() != "1" {
		t.Errorf("recorder missed the value")
	}
	if strings.TrimSpace(buf.String()) != `{"bbox":[],"key":"1"}` {
		t.Errorf("unexpected json line %q", buf.String())
	}
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(1, 1, color.NRGBA{10, 20, 30, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}
	img, err := DecodeImage(&buf)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Bounds().Dx() != 3 || img.RGBAAt(1, 1) != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("unexpected decode result %v", img.RGBAAt(1, 1))
	}
}
