package skeleton

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Options configures a Decoder and its Preprocessor. Options are fixed for the
// lifetime of the decoder.
type Options struct {
	// MinThreshold is the lowest peak score counted as a detection.
	MinThreshold float32 `json:"min_threshold" yaml:"min_threshold"`
	// Topology lists the bones to emit when both joints are detected.
	Topology Topology `json:"topology" yaml:"topology"`
	// Joints is the number of heatmap channels the model produces. Zero
	// skips the channel count check at decode time.
	Joints int `json:"joints" yaml:"joints"`
	// Normalization is applied to input pixels before inference.
	Normalization Normalization `json:"normalization" yaml:"normalization"`
	// InputWidth is the network input width.
	InputWidth int `json:"input_width" yaml:"input_width"`
	// InputHeight is the network input height.
	InputHeight int `json:"input_height" yaml:"input_height"`
}

// DefaultOptions returns options for a 17-joint COCO model at 192x256.
func DefaultOptions() Options {
	return Options{
		MinThreshold:  0.3,
		Topology:      COCO17(),
		Joints:        len(COCO17Joints),
		Normalization: DefaultNormalization(),
		InputWidth:    192,
		InputHeight:   256,
	}
}

// Validate checks the options for internal consistency.
//
// Returns:
//   - error: ErrInvalidConfig wrapped with the offending field.
func (o Options) Validate() error {
	if math32.IsNaN(o.MinThreshold) || math32.IsInf(o.MinThreshold, 0) {
		return errors.Wrapf(ErrInvalidConfig, "min threshold %v is not finite", o.MinThreshold)
	}
	if o.InputWidth <= 0 || o.InputHeight <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "input size %dx%d must be positive",
			o.InputWidth, o.InputHeight)
	}
	if o.Joints < 0 {
		return errors.Wrapf(ErrInvalidConfig, "joints %d must not be negative", o.Joints)
	}
	if o.Joints > 0 {
		if err := o.Topology.Validate(o.Joints); err != nil {
			return err
		}
	} else if err := o.Topology.Validate(o.Topology.MaxJoint() + 1); err != nil {
		return err
	}
	return o.Normalization.Validate()
}
