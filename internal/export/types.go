package export

import "github.com/flipdot/flipdot-studio/internal/flipdot"

const FormatLottie = "lottie"

// EncodeRequest is the body of a stateless encode call.
type EncodeRequest struct {
	Name              string             `json:"name,omitempty"`
	Frames            [][][]bool         `json:"frames"`
	Dimensions        flipdot.Dimensions `json:"dimensions"`
	Colors            flipdot.Colors     `json:"colors"`
	FrameDurationMs   int                `json:"frame_duration_ms"`
	IncludeBackground *bool              `json:"include_background,omitempty"`
}

// ToFrames wraps the raw grids as frames.
func (r EncodeRequest) ToFrames() []flipdot.Frame {
	frames := make([]flipdot.Frame, len(r.Frames))
	for i, dots := range r.Frames {
		frames[i] = flipdot.Frame{Dots: dots}
	}
	return frames
}

// ApplyDefaults infers missing dimensions from the first frame and fills in
// unset colors and frame duration with the editor defaults.
func (r *EncodeRequest) ApplyDefaults() {
	if r.Dimensions.Rows == 0 && r.Dimensions.Columns == 0 && len(r.Frames) > 0 && len(r.Frames[0]) > 0 {
		r.Dimensions = flipdot.Dimensions{Rows: len(r.Frames[0]), Columns: len(r.Frames[0][0])}
	}
	defaults := flipdot.DefaultColors()
	if r.Colors.Background == "" {
		r.Colors.Background = defaults.Background
	}
	if r.Colors.ActiveDot == "" {
		r.Colors.ActiveDot = defaults.ActiveDot
	}
	if r.Colors.InactiveDot == "" {
		r.Colors.InactiveDot = defaults.InactiveDot
	}
	if r.FrameDurationMs == 0 {
		r.FrameDurationMs = flipdot.DefaultFrameDurationMs
	}
}

// Options returns encoder options; the background is included unless the
// request turns it off.
func (r EncodeRequest) Options() Options {
	opts := DefaultOptions()
	if r.Name != "" {
		opts.Name = r.Name
	}
	if r.IncludeBackground != nil {
		opts.IncludeBackground = *r.IncludeBackground
	}
	return opts
}

type ProjectExportRequest struct {
	OutputDir string `json:"output_dir"`
}

type ExportResponse struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	ExportID   string `json:"export_id,omitempty"`
	OutputPath string `json:"output_path"`
	Filename   string `json:"filename"`
	FrameCount int    `json:"frame_count"`
	LayerCount int    `json:"layer_count"`
	Bytes      int    `json:"bytes"`
}
