package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	MinFrameRate = 1.0
	MaxFrameRate = 60.0

	DefaultName = "FlipDot Animation"
)

// ErrEmptyInput is returned when there are no frames to export.
var ErrEmptyInput = errors.New("export: no frames to export")

// DimensionError reports frames whose shape does not match the grid
// dimensions. Frame is -1 when the dimensions themselves are invalid.
type DimensionError struct {
	Frame int
	Err   error
}

func (e *DimensionError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("export: invalid dimensions: %v", e.Err)
	}
	return fmt.Sprintf("export: frame %d: %v", e.Frame, e.Err)
}

func (e *DimensionError) Unwrap() error {
	return e.Err
}

// Layout places dots on the canvas, in pixels.
type Layout struct {
	DotSize int
	Gap     int
	Padding int
}

func DefaultLayout() Layout {
	return Layout{DotSize: 40, Gap: 8, Padding: 40}
}

// Canvas returns the canvas size for a grid.
func (l Layout) Canvas(dims flipdot.Dimensions) (width, height int) {
	width = dims.Columns*l.DotSize + (dims.Columns-1)*l.Gap + 2*l.Padding
	height = dims.Rows*l.DotSize + (dims.Rows-1)*l.Gap + 2*l.Padding
	return width, height
}

// DotCenter returns the center of the dot at (row, col).
func (l Layout) DotCenter(row, col int) (x, y float64) {
	pitch := float64(l.DotSize + l.Gap)
	half := float64(l.DotSize) / 2
	x = float64(l.Padding) + float64(col)*pitch + half
	y = float64(l.Padding) + float64(row)*pitch + half
	return x, y
}

type Options struct {
	Name              string
	IncludeBackground bool
	Layout            Layout
}

func DefaultOptions() Options {
	return Options{
		Name:              DefaultName,
		IncludeBackground: true,
		Layout:            DefaultLayout(),
	}
}

// FrameRate derives the document frame rate from the frame duration so that
// one logical frame is one tick, clamped to [MinFrameRate, MaxFrameRate].
func FrameRate(frameDurationMs int) float64 {
	if frameDurationMs <= 0 {
		return MaxFrameRate
	}
	fr := 1000.0 / float64(frameDurationMs)
	return math.Max(MinFrameRate, math.Min(MaxFrameRate, fr))
}

// TicksPerFrame is 1 unless the frame rate was clamped, in which case it keeps
// the frame on screen for its real duration.
func TicksPerFrame(frameRate float64, frameDurationMs int) int {
	ticks := int(math.Round(frameRate * float64(frameDurationMs) / 1000.0))
	if ticks < 1 {
		return 1
	}
	return ticks
}

// Encode serializes frames into a Lottie JSON document using DefaultOptions.
func Encode(frames []flipdot.Frame, dims flipdot.Dimensions, colors flipdot.Colors, frameDurationMs int) (string, error) {
	return EncodeWithOptions(frames, dims, colors, frameDurationMs, DefaultOptions())
}

func EncodeWithOptions(frames []flipdot.Frame, dims flipdot.Dimensions, colors flipdot.Colors, frameDurationMs int, opts Options) (string, error) {
	doc, err := Build(frames, dims, colors, frameDurationMs, opts)
	if err != nil {
		return "", err
	}
	data, err := doc.Marshal()
	if err != nil {
		return "", fmt.Errorf("export: marshal document: %w", err)
	}
	return string(data), nil
}

// Build assembles the Lottie document: one shape layer per dot in row-major
// order, then the optional background layer at the bottom of the stack.
func Build(frames []flipdot.Frame, dims flipdot.Dimensions, colors flipdot.Colors, frameDurationMs int, opts Options) (*Document, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyInput
	}
	if dims.Rows <= 0 || dims.Columns <= 0 {
		return nil, &DimensionError{Frame: -1, Err: fmt.Errorf("rows and columns must be positive, got %dx%d", dims.Rows, dims.Columns)}
	}
	for i, f := range frames {
		if err := flipdot.CheckDots(f.Dots, dims); err != nil {
			return nil, &DimensionError{Frame: i, Err: err}
		}
	}

	layout := opts.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout()
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	frameRate := FrameRate(frameDurationMs)
	ticks := TicksPerFrame(frameRate, frameDurationMs)
	outPoint := len(frames) * ticks
	width, height := layout.Canvas(dims)

	active := ParseHexColor(colors.ActiveDot)
	inactive := ParseHexColor(colors.InactiveDot)

	layers := make([]Layer, 0, dims.Cells()+1)
	for row := 0; row < dims.Rows; row++ {
		for col := 0; col < dims.Columns; col++ {
			x, y := layout.DotCenter(row, col)
			fill := dotFill(frames, row, col, ticks, outPoint, active, inactive)
			layers = append(layers, Layer{
				Index:     row*dims.Columns + col + 1,
				Type:      LayerTypeShape,
				Name:      fmt.Sprintf("Dot_%d_%d", row, col),
				Stretch:   1,
				Transform: layerTransform(x, y),
				Shapes: []Shape{{
					Type: ShapeGroup,
					Name: "Dot",
					Items: []ShapeItem{
						{
							Type:      ShapeEllipse,
							Name:      "Ellipse Path",
							Direction: 1,
							Size:      staticRef([]float64{float64(layout.DotSize), float64(layout.DotSize)}),
							Position:  staticRef([]float64{0, 0}),
						},
						{Type: ShapeFill, Name: "Fill", Color: &fill, Opacity: staticRef(100)},
						groupTransform(),
					},
				}},
				OutPoint: outPoint,
			})
		}
	}

	if opts.IncludeBackground {
		layers = append(layers, Layer{
			Index:     dims.Cells() + 1,
			Type:      LayerTypeShape,
			Name:      "Background",
			Stretch:   1,
			Transform: layerTransform(float64(width)/2, float64(height)/2),
			Shapes: []Shape{{
				Type: ShapeGroup,
				Name: "Background",
				Items: []ShapeItem{
					{
						Type:      ShapeRectangle,
						Name:      "Rectangle Path",
						Direction: 1,
						Size:      staticRef([]float64{float64(width), float64(height)}),
						Position:  staticRef([]float64{0, 0}),
						Rotation:  staticRef(0),
					},
					{Type: ShapeFill, Name: "Fill", Color: staticRef(lottieColor(ParseHexColor(colors.Background))), Opacity: staticRef(100)},
					groupTransform(),
				},
			}},
			OutPoint: outPoint,
		})
	}

	return &Document{
		Version:   LottieVersion,
		FrameRate: frameRate,
		InPoint:   0,
		OutPoint:  outPoint,
		Width:     width,
		Height:    height,
		Name:      name,
		Assets:    []interface{}{},
		Layers:    layers,
	}, nil
}

// dotFill is static for a single frame. Otherwise every frame gets a hold
// keyframe and a last keyframe at outPoint repeats frame 0 so the loop seam
// shows the color the animation restarts with.
func dotFill(frames []flipdot.Frame, row, col, ticks, outPoint int, active, inactive colorful.Color) Property {
	pick := func(f flipdot.Frame) []float64 {
		if f.Dots[row][col] {
			return lottieColor(active)
		}
		return lottieColor(inactive)
	}

	if len(frames) == 1 {
		return static(pick(frames[0]))
	}

	kfs := make([]Keyframe, 0, len(frames)+1)
	for i, f := range frames {
		kfs = append(kfs, Keyframe{Time: i * ticks, Start: pick(f), Hold: 1})
	}
	kfs = append(kfs, Keyframe{Time: outPoint, Start: pick(frames[0]), Hold: 1})
	return Property{Animated: 1, Value: kfs}
}

func layerTransform(x, y float64) Transform {
	return Transform{
		Opacity:  static(100),
		Rotation: static(0),
		Position: static([]float64{x, y, 0}),
		Anchor:   static([]float64{0, 0, 0}),
		Scale:    static([]float64{100, 100, 100}),
	}
}

func groupTransform() ShapeItem {
	return ShapeItem{
		Type:     ShapeTransform,
		Name:     "Transform",
		Position: staticRef([]float64{0, 0}),
		Anchor:   staticRef([]float64{0, 0}),
		Size:     staticRef([]float64{100, 100}),
		Rotation: staticRef(0),
		Opacity:  staticRef(100),
	}
}

// EncodeSettings encodes frames with a project's settings under the given name.
func EncodeSettings(name string, frames []flipdot.Frame, s flipdot.Settings) (string, error) {
	opts := DefaultOptions()
	if name != "" {
		opts.Name = name
	}
	opts.IncludeBackground = s.IncludeBackground
	return EncodeWithOptions(frames, s.Dimensions, s.Colors, s.FrameDurationMs, opts)
}
