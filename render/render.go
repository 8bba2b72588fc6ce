// Package render - Skeleton drawing on OpenCV mats.
package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nvr-ai/go-pose/models/skeleton"
	"gocv.io/x/gocv"
)

// Style controls how a skeleton is drawn.
type Style struct {
	// BoneColors cycles over bones in topology order.
	BoneColors []color.RGBA
	// JointColor fills detected keypoints.
	JointColor color.RGBA
	// Thickness is the bone line width in pixels.
	Thickness int
	// Radius is the keypoint circle radius in pixels.
	Radius int
	// Confidence prints each detected joint's score next to it.
	Confidence bool
}

// DefaultStyle returns the palette used by the webcam demo.
func DefaultStyle() Style {
	return Style{
		BoneColors: []color.RGBA{
			{255, 128, 0, 255},
			{255, 153, 51, 255},
			{255, 178, 102, 255},
			{230, 230, 0, 255},
			{255, 51, 255, 255},
			{153, 204, 255, 255},
			{51, 153, 255, 255},
			{0, 255, 0, 255},
		},
		JointColor: color.RGBA{255, 0, 0, 255},
		Thickness:  2,
		Radius:     3,
	}
}

// Segment is one bone in pixel coordinates.
type Segment struct {
	From  image.Point
	To    image.Point
	Color color.RGBA
}

// Segments converts the skeleton's connected bones to pixel segments.
func Segments(sk *skeleton.Skeleton, style Style) []Segment {
	lines := sk.Lines()
	out := make([]Segment, len(lines))
	for i, l := range lines {
		out[i] = Segment{From: point(l[0]), To: point(l[1]), Color: style.color(i)}
	}
	return out
}

// Joints returns the pixel positions of detected keypoints, indexed like
// Skeleton.Keypoints with absent joints omitted.
func Joints(sk *skeleton.Skeleton) map[int]image.Point {
	out := make(map[int]image.Point, len(sk.Keypoints))
	for i, kp := range sk.Keypoints {
		if sk.Detected(i) {
			out[i] = point(kp)
		}
	}
	return out
}

// Draw renders bones then keypoints onto img.
//
// Arguments:
//   - img: The frame the skeleton was decoded from.
//   - sk: The decoded skeleton.
//   - style: Colors and sizes.
func Draw(img *gocv.Mat, sk *skeleton.Skeleton, style Style) {
	if sk == nil {
		return
	}
	for _, s := range Segments(sk, style) {
		gocv.Line(img, s.From, s.To, s.Color, style.Thickness)
	}
	for i, p := range Joints(sk) {
		gocv.Circle(img, p, style.Radius, style.JointColor, -1)
		if style.Confidence {
			label := fmt.Sprintf("%.2f", sk.Confidences[i])
			gocv.PutText(img, label, p.Add(image.Pt(style.Radius+1, -style.Radius)),
				gocv.FontHersheyPlain, 0.8, style.JointColor, 1)
		}
	}
}

func (s Style) color(i int) color.RGBA {
	if len(s.BoneColors) == 0 {
		return s.JointColor
	}
	return s.BoneColors[i%len(s.BoneColors)]
}

func point(kp skeleton.Keypoint) image.Point {
	return image.Pt(int(kp.X+0.5), int(kp.Y+0.5))
}
