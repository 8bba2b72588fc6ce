package skeleton

// Keypoint is a decoded joint location in original image pixels.
type Keypoint struct {
	X float32 `json:"x" yaml:"x"`
	Y float32 `json:"y" yaml:"y"`
}

// Absent marks a joint whose peak fell below the threshold.
var Absent = Keypoint{X: -1, Y: -1}

// IsAbsent reports whether k is the absent sentinel.
func (k Keypoint) IsAbsent() bool {
	return k == Absent
}

// Size is the width and height of the image a skeleton is expressed in.
type Size struct {
	Width  int `json:"width"  yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Known reports whether both dimensions are positive.
func (s Size) Known() bool {
	return s.Width > 0 && s.Height > 0
}
