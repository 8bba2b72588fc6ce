package images

import (
	"image"

	"github.com/nfnt/resize"
)

// Resize scales img to exactly width x height, ignoring aspect ratio.
//
// Arguments:
//   - img: The image to resize.
//   - width: The target width.
//   - height: The target height.
//
// Returns:
//   - image.Image: The resized image, or img itself when it already matches.
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return resize.Resize(uint(width), uint(height), img, resize.Bilinear)
}
