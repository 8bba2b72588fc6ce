package skeleton

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Normalization is the per-channel affine transform applied to 0..255 input
// pixels: out = pixel*Scale[c] + Bias[c]. Slots are R, G, B and an unused
// fourth channel that must stay zero.
type Normalization struct {
	Scale [4]float32 `json:"scale" yaml:"scale"`
	Bias  [4]float32 `json:"bias"  yaml:"bias"`
}

// DefaultNormalization is the ImageNet mean/std transform the skeleton
// network was trained with, expressed as scale and bias on 0..255 RGB.
func DefaultNormalization() Normalization {
	return Normalization{
		Scale: [4]float32{0.01712475, 0.017507, 0.01742919, 0.0},
		Bias:  [4]float32{-2.11790393, -2.03571429, -1.80444444, 0.0},
	}
}

// Validate rejects non-finite constants and a non-zero fourth slot.
func (n Normalization) Validate() error {
	for i := 0; i < 4; i++ {
		if math32.IsNaN(n.Scale[i]) || math32.IsInf(n.Scale[i], 0) ||
			math32.IsNaN(n.Bias[i]) || math32.IsInf(n.Bias[i], 0) {
			return errors.Wrapf(ErrInvalidConfig, "normalization slot %d is not finite", i)
		}
	}
	if n.Scale[3] != 0 || n.Bias[3] != 0 {
		return errors.Wrap(ErrInvalidConfig, "normalization fourth slot must be zero")
	}
	if n.Scale[0] == 0 && n.Scale[1] == 0 && n.Scale[2] == 0 {
		return errors.Wrap(ErrInvalidConfig, "normalization scale is all zero")
	}
	return nil
}

// Apply normalizes one 8-bit RGB pixel.
func (n Normalization) Apply(r, g, b uint8) (float32, float32, float32) {
	return float32(r)*n.Scale[0] + n.Bias[0],
		float32(g)*n.Scale[1] + n.Bias[1],
		float32(b)*n.Scale[2] + n.Bias[2]
}
