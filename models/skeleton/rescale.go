package skeleton

// Scale maps heatmap pixel coordinates to original image coordinates.
type Scale struct {
	H float32
	W float32
}

// NewScale computes the factors between the original image and the heatmap.
//
// Arguments:
//   - original: The original (pre-resize) image size.
//   - heatmapHeight: The heatmap plane height.
//   - heatmapWidth: The heatmap plane width.
//
// Returns:
//   - Scale: originalHeight/heatmapHeight and originalWidth/heatmapWidth.
func NewScale(original Size, heatmapHeight, heatmapWidth int) Scale {
	return Scale{
		H: float32(original.Height) / float32(heatmapHeight),
		W: float32(original.Width) / float32(heatmapWidth),
	}
}

// Identity reports whether both factors are exactly one.
func (s Scale) Identity() bool {
	return s.H == 1 && s.W == 1
}

// Apply converts a peak position to an original image keypoint.
func (s Scale) Apply(p Peak) Keypoint {
	if s.Identity() {
		return Keypoint{X: float32(p.Col), Y: float32(p.Row)}
	}
	return Keypoint{X: float32(p.Col) * s.W, Y: float32(p.Row) * s.H}
}
