// Package model - Pose model descriptors.
package model

import (
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/pkg/errors"
)

// Name is the unique identifier of a keypoint layout.
type Name string

const (
	// NameCOCO17 is the 17-joint COCO keypoint layout.
	NameCOCO17 Name = "coco17"
	// NameMPII16 is the 16-joint MPII keypoint layout.
	NameMPII16 Name = "mpii16"
)

// Config locates a pose model and names its tensors.
type Config struct {
	// Name selects the keypoint layout the model was trained on.
	Name Name `json:"name" yaml:"name"`
	// Path is the ONNX file on disk.
	Path string `json:"path" yaml:"path"`
	// Input is the name of the image input tensor.
	Input string `json:"input" yaml:"input"`
	// Output is the name of the heatmap output tensor.
	Output string `json:"output" yaml:"output"`
	// InputWidth is used when the model declares a dynamic width.
	InputWidth int `json:"input_width" yaml:"input_width"`
	// InputHeight is used when the model declares a dynamic height.
	InputHeight int `json:"input_height" yaml:"input_height"`
}

// DefaultConfig returns a COCO model at 192x256 with an "input" tensor and a
// "heatmap" output.
func DefaultConfig() Config {
	return Config{
		Name:        NameCOCO17,
		Path:        "models/pose.onnx",
		Input:       "input",
		Output:      skeleton.HeatmapOutput,
		InputWidth:  192,
		InputHeight: 256,
	}
}

// Validate checks that the model can be located and its tensors named.
//
// Returns:
//   - error: skeleton.ErrInvalidConfig wrapped with the offending field.
func (c Config) Validate() error {
	switch {
	case c.Path == "":
		return errors.Wrap(skeleton.ErrInvalidConfig, "model path is empty")
	case c.Input == "":
		return errors.Wrap(skeleton.ErrInvalidConfig, "model input name is empty")
	case c.Output == "":
		return errors.Wrap(skeleton.ErrInvalidConfig, "model output name is empty")
	case c.InputWidth <= 0 || c.InputHeight <= 0:
		return errors.Wrapf(skeleton.ErrInvalidConfig, "model input size %dx%d must be positive",
			c.InputWidth, c.InputHeight)
	}
	return nil
}
