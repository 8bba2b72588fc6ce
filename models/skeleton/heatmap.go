package skeleton

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// HeatmapOutput is the name of the model output holding per-joint score planes.
const HeatmapOutput = "heatmap"

// Heatmap is a read-only (channels, height, width) view over per-pixel joint
// scores. Each channel is one joint and is stored row-major.
type Heatmap struct {
	dense    *tensor.Dense
	data     []float32
	channels int
	height   int
	width    int
}

// NewHeatmap wraps a flat CHW buffer without copying it.
//
// Arguments:
//   - data: The scores, len(data) must equal channels*height*width.
//   - channels: The number of joints.
//   - height: The heatmap height in pixels.
//   - width: The heatmap width in pixels.
//
// Returns:
//   - *Heatmap: The heatmap view.
//   - error: ErrInvalidOutput if the dimensions do not describe data.
func NewHeatmap(data []float32, channels, height, width int) (*Heatmap, error) {
	if err := checkDims(len(data), channels, height, width); err != nil {
		return nil, err
	}
	dense := tensor.New(
		tensor.WithShape(channels, height, width),
		tensor.WithBacking(data),
	)
	return &Heatmap{
		dense:    dense,
		data:     data,
		channels: channels,
		height:   height,
		width:    width,
	}, nil
}

// HeatmapFromDense builds a heatmap from an inference output tensor. Both
// (C, H, W) and batched (1, C, H, W) layouts are accepted.
//
// Arguments:
//   - dense: The output tensor.
//
// Returns:
//   - *Heatmap: The heatmap view sharing the tensor's backing slice.
//   - error: ErrInvalidOutput if the tensor is not float32 or has another layout.
func HeatmapFromDense(dense *tensor.Dense) (*Heatmap, error) {
	if dense == nil {
		return nil, errors.WithStack(ErrMissingHeatmap)
	}
	if dense.Dtype() != tensor.Float32 {
		return nil, errors.Wrapf(ErrInvalidOutput, "dtype %v, want float32", dense.Dtype())
	}

	shape := dense.Shape()
	var c, h, w int
	switch shape.Dims() {
	case 3:
		c, h, w = shape[0], shape[1], shape[2]
	case 4:
		if shape[0] != 1 {
			return nil, errors.Wrapf(ErrInvalidOutput, "batch size %d, want 1", shape[0])
		}
		c, h, w = shape[1], shape[2], shape[3]
	default:
		return nil, errors.Wrapf(ErrInvalidOutput, "shape %v, want (C, H, W)", shape)
	}

	data, ok := dense.Data().([]float32)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidOutput, "backing %T, want []float32", dense.Data())
	}
	if err := checkDims(len(data), c, h, w); err != nil {
		return nil, err
	}

	return &Heatmap{dense: dense, data: data, channels: c, height: h, width: w}, nil
}

func checkDims(n, c, h, w int) error {
	if c <= 0 || h <= 0 || w <= 0 {
		return errors.Wrapf(ErrInvalidOutput, "dimensions %dx%dx%d must be positive", c, h, w)
	}
	if n != c*h*w {
		return errors.Wrapf(ErrInvalidOutput, "%d values do not fill %dx%dx%d", n, c, h, w)
	}
	return nil
}

// Channels returns the number of joint channels.
func (m *Heatmap) Channels() int { return m.channels }

// Height returns the plane height.
func (m *Heatmap) Height() int { return m.height }

// Width returns the plane width.
func (m *Heatmap) Width() int { return m.width }

// Dense returns the underlying tensor.
func (m *Heatmap) Dense() *tensor.Dense { return m.dense }

// Plane returns the row-major score plane of channel c. The slice aliases the
// heatmap and must not be modified.
func (m *Heatmap) Plane(c int) []float32 {
	n := m.height * m.width
	return m.data[c*n : (c+1)*n : (c+1)*n]
}

// At returns the score at channel c, row y, column x.
func (m *Heatmap) At(c, y, x int) float32 {
	return m.data[(c*m.height+y)*m.width+x]
}
