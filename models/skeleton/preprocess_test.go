package skeleton

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.InputWidth = 4
	opts.InputHeight = 2
	return opts
}

// TestPreProcessRecordsOriginalSize returns the pre-resize size for decoding.
func TestPreProcessRecordsOriginalSize(t *testing.T) {
	p, err := NewPreprocessor(smallOptions())
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	dst := make([]float32, p.InputLen())

	size, err := p.PreProcess(img, dst)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 40, Height: 30}, size)

	// A black frame normalizes to the bias of each channel.
	n := DefaultNormalization()
	for i := 0; i < 8; i++ {
		assert.Equal(t, n.Bias[0], dst[i])
		assert.Equal(t, n.Bias[1], dst[8+i])
		assert.Equal(t, n.Bias[2], dst[16+i])
	}
}

// TestPreProcessPlanarLayout writes each channel into its own CHW plane.
func TestPreProcessPlanarLayout(t *testing.T) {
	p, err := NewPreprocessor(smallOptions())
	require.NoError(t, err)

	// Same size as the network input, so no resampling happens.
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(1, 0, color.RGBA{R: 255, A: 255})
	img.Set(3, 1, color.RGBA{B: 255, A: 255})

	dst := make([]float32, p.InputLen())
	_, err = p.PreProcess(img, dst)
	require.NoError(t, err)

	n := DefaultNormalization()
	assert.InDelta(t, 255*n.Scale[0]+n.Bias[0], dst[1], 1e-5)
	assert.Equal(t, n.Bias[0], dst[0])
	assert.InDelta(t, 255*n.Scale[2]+n.Bias[2], dst[16+7], 1e-5)
	assert.Equal(t, n.Bias[1], dst[8+7])
}

// TestPreProcessOffsetBounds handles images whose bounds do not start at the origin.
func TestPreProcessOffsetBounds(t *testing.T) {
	p, err := NewPreprocessor(smallOptions())
	require.NoError(t, err)

	img := image.NewRGBA(image.Rect(10, 20, 14, 22))
	img.Set(10, 20, color.RGBA{G: 255, A: 255})

	dst := make([]float32, p.InputLen())
	size, err := p.PreProcess(img, dst)
	require.NoError(t, err)
	assert.Equal(t, Size{Width: 4, Height: 2}, size)

	n := DefaultNormalization()
	assert.InDelta(t, 255*n.Scale[1]+n.Bias[1], dst[8], 1e-5)
}

func TestPreProcessErrors(t *testing.T) {
	p, err := NewPreprocessor(smallOptions())
	require.NoError(t, err)

	_, err = p.PreProcess(image.NewRGBA(image.Rect(0, 0, 4, 2)), make([]float32, 5))
	assert.Error(t, err)

	_, err = p.PreProcess(nil, make([]float32, p.InputLen()))
	assert.Error(t, err)

	_, err = p.PreProcess(image.NewRGBA(image.Rect(0, 0, 0, 0)), make([]float32, p.InputLen()))
	assert.True(t, errors.Is(err, ErrUnknownDimensions))
}

func TestNewPreprocessorInvalid(t *testing.T) {
	opts := smallOptions()
	opts.InputWidth = 0
	_, err := NewPreprocessor(opts)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
