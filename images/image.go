// Package images - Image definition and decoding for inference inputs.
package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
)

// Image represents an encoded image with a format, data, width, and height.
type Image struct {
	// The format of the image.
	Format ImageFormat `json:"format" yaml:"format"`
	// The data of the image.
	Data []byte `json:"data" yaml:"data"`
	// The width of the image.
	Width int `json:"width" yaml:"width"`
	// The height of the image.
	Height int `json:"height" yaml:"height"`
}

// ImageFormat represents supported image formats
type ImageFormat string

// ImageFormat constants
const (
	// FormatJPEG is the JPEG image format.
	FormatJPEG ImageFormat = "jpeg"
	// FormatWebP is the WebP image format.
	FormatWebP ImageFormat = "webp"
	// FormatPNG is the PNG image format.
	FormatPNG ImageFormat = "png"
)

// DetectFormat sniffs the container format from the leading bytes.
//
// Arguments:
//   - data: The encoded image.
//
// Returns:
//   - ImageFormat: The detected format.
//   - error: An error if the format is not supported.
func DetectFormat(data []byte) (ImageFormat, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return FormatJPEG, nil
	case len(data) >= 8 && bytes.Equal(data[:8], []byte("\x89PNG\r\n\x1a\n")):
		return FormatPNG, nil
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FormatWebP, nil
	default:
		return "", errors.New("unsupported image format")
	}
}

// Decode decodes an encoded image into an image.Image. When Format is empty it
// is detected from the data, and Width and Height are filled in.
//
// Arguments:
//   - img: The encoded image.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if the image cannot be decoded.
func Decode(img *Image) (image.Image, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, errors.New("image data is empty")
	}
	if img.Format == "" {
		format, err := DetectFormat(img.Data)
		if err != nil {
			return nil, err
		}
		img.Format = format
	}

	var (
		decoded image.Image
		err     error
	)
	r := bytes.NewReader(img.Data)
	switch img.Format {
	case FormatJPEG:
		decoded, err = jpeg.Decode(r)
	case FormatPNG:
		decoded, err = png.Decode(r)
	case FormatWebP:
		decoded, err = webp.Decode(r)
	default:
		return nil, errors.Errorf("unsupported image format: %s", img.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s image", img.Format)
	}

	img.Width = decoded.Bounds().Dx()
	img.Height = decoded.Bounds().Dy()
	return decoded, nil
}
