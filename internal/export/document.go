package export

import (
	"bytes"
	"encoding/json"
)

// Lottie layer and shape codes used by the exporter.
const (
	LottieVersion = "5.7.4"

	LayerTypeShape = 4

	ShapeGroup     = "gr"
	ShapeEllipse   = "el"
	ShapeRectangle = "rc"
	ShapeFill      = "fl"
	ShapeTransform = "tr"
)

// Document is a Lottie animation. Field order follows the Lottie schema and
// is the order the fields are written in.
type Document struct {
	Version   string        `json:"v"`
	FrameRate float64       `json:"fr"`
	InPoint   int           `json:"ip"`
	OutPoint  int           `json:"op"`
	Width     int           `json:"w"`
	Height    int           `json:"h"`
	Name      string        `json:"nm"`
	ThreeD    int           `json:"ddd"`
	Assets    []interface{} `json:"assets"`
	Layers    []Layer       `json:"layers"`
}

type Layer struct {
	ThreeD     int       `json:"ddd"`
	Index      int       `json:"ind"`
	Type       int       `json:"ty"`
	Name       string    `json:"nm"`
	Stretch    int       `json:"sr"`
	Transform  Transform `json:"ks"`
	AutoOrient int       `json:"ao"`
	Shapes     []Shape   `json:"shapes"`
	InPoint    int       `json:"ip"`
	OutPoint   int       `json:"op"`
	StartTime  int       `json:"st"`
}

type Transform struct {
	Opacity  Property `json:"o"`
	Rotation Property `json:"r"`
	Position Property `json:"p"`
	Anchor   Property `json:"a"`
	Scale    Property `json:"s"`
}

// Property is either static (Animated 0, Value holds the value) or animated
// (Animated 1, Value holds a []Keyframe).
type Property struct {
	Animated int         `json:"a"`
	Value    interface{} `json:"k"`
}

// Keyframe with Hold set to 1 keeps Start until the next keyframe instead of
// interpolating towards it.
type Keyframe struct {
	Time  int       `json:"t"`
	Start []float64 `json:"s"`
	Hold  int       `json:"h"`
}

type Shape struct {
	Type  string      `json:"ty"`
	Name  string      `json:"nm"`
	Items []ShapeItem `json:"it"`
}

// ShapeItem covers the ellipse, rectangle, fill and transform items. Lottie
// reuses "s" for size and scale, and "r" for roundness and rotation.
type ShapeItem struct {
	Type      string    `json:"ty"`
	Name      string    `json:"nm,omitempty"`
	Direction int       `json:"d,omitempty"`
	Size      *Property `json:"s,omitempty"`
	Position  *Property `json:"p,omitempty"`
	Anchor    *Property `json:"a,omitempty"`
	Rotation  *Property `json:"r,omitempty"`
	Color     *Property `json:"c,omitempty"`
	Opacity   *Property `json:"o,omitempty"`
}

func static(v interface{}) Property {
	return Property{Animated: 0, Value: v}
}

func staticRef(v interface{}) *Property {
	p := static(v)
	return &p
}

// Keyframes returns the keyframe list of an animated property, or nil.
func (p Property) Keyframes() []Keyframe {
	if p.Animated == 0 {
		return nil
	}
	kfs, _ := p.Value.([]Keyframe)
	return kfs
}

// Fill returns the fill item of the layer's first shape group, or nil.
func (l Layer) Fill() *ShapeItem {
	if len(l.Shapes) == 0 {
		return nil
	}
	for i := range l.Shapes[0].Items {
		if l.Shapes[0].Items[i].Type == ShapeFill {
			return &l.Shapes[0].Items[i]
		}
	}
	return nil
}

// Marshal writes the document as two-space indented JSON.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
