package skeleton

import (
	"image"

	"github.com/nvr-ai/go-pose/images"
	"github.com/pkg/errors"
)

// Preprocessor converts images into the network's normalized CHW input.
type Preprocessor struct {
	width         int
	height        int
	normalization Normalization
}

// NewPreprocessor creates a preprocessor for the network input size in opts.
//
// Arguments:
//   - opts: The options holding input size and normalization.
//
// Returns:
//   - *Preprocessor: The preprocessor.
//   - error: ErrInvalidConfig if the options fail validation.
func NewPreprocessor(opts Options) (*Preprocessor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Preprocessor{
		width:         opts.InputWidth,
		height:        opts.InputHeight,
		normalization: opts.Normalization,
	}, nil
}

// InputLen returns the number of floats PreProcess writes.
func (p *Preprocessor) InputLen() int {
	return 3 * p.width * p.height
}

// PreProcess records the original image size, resizes the image to the
// network input and writes normalized RGB planes into dst.
//
// The returned size must be passed to Decoder.Decode for the same frame.
//
// Arguments:
//   - img: The original image.
//   - dst: The input tensor data, at least InputLen() floats.
//
// Returns:
//   - Size: The original image size.
//   - error: An error if the image is empty or dst is too small.
func (p *Preprocessor) PreProcess(img image.Image, dst []float32) (Size, error) {
	if img == nil {
		return Size{}, errors.New("image is nil")
	}
	bounds := img.Bounds()
	original := Size{Width: bounds.Dx(), Height: bounds.Dy()}
	if !original.Known() {
		return Size{}, errors.Wrapf(ErrUnknownDimensions, "image is %dx%d", original.Width, original.Height)
	}

	plane := p.width * p.height
	if len(dst) < 3*plane {
		return Size{}, errors.Errorf("destination tensor holds %d floats, needs %d", len(dst), 3*plane)
	}
	red := dst[0:plane]
	green := dst[plane : 2*plane]
	blue := dst[2*plane : 3*plane]

	resized := images.Resize(img, p.width, p.height)
	origin := resized.Bounds().Min

	i := 0
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			r, g, b, _ := resized.At(origin.X+x, origin.Y+y).RGBA()
			red[i], green[i], blue[i] = p.normalization.Apply(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			i++
		}
	}

	return original, nil
}
