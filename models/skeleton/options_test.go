package skeleton

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestDefaultOptionsValid(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"zero input width", func(o *Options) { o.InputWidth = 0 }},
		{"negative input height", func(o *Options) { o.InputHeight = -1 }},
		{"negative joints", func(o *Options) { o.Joints = -2 }},
		{"bone outside joints", func(o *Options) { o.Topology = Topology{{0, 17}} }},
		{"negative bone with no joint count", func(o *Options) {
			o.Joints = 0
			o.Topology = Topology{{-1, 2}}
		}},
		{"fourth normalization slot", func(o *Options) { o.Normalization.Bias[3] = 1 }},
		{"nan scale", func(o *Options) { o.Normalization.Scale[1] = math32.NaN() }},
		{"infinite bias", func(o *Options) { o.Normalization.Bias[0] = math32.Inf(1) }},
		{"zero scale", func(o *Options) { o.Normalization.Scale = [4]float32{} }},
		{"nan threshold", func(o *Options) { o.MinThreshold = math32.NaN() }},
		{"infinite threshold", func(o *Options) { o.MinThreshold = math32.Inf(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			assert.True(t, errors.Is(opts.Validate(), ErrInvalidConfig))
		})
	}
}

func TestNormalizationApply(t *testing.T) {
	n := DefaultNormalization()

	r, g, b := n.Apply(0, 0, 0)
	assert.Equal(t, n.Bias[0], r)
	assert.Equal(t, n.Bias[1], g)
	assert.Equal(t, n.Bias[2], b)

	// 255 maps to (1 - mean) / std of the ImageNet statistics.
	r, g, b = n.Apply(255, 255, 255)
	assert.InDelta(t, (1-0.485)/0.229, r, 1e-3)
	assert.InDelta(t, (1-0.456)/0.224, g, 1e-3)
	assert.InDelta(t, (1-0.406)/0.225, b, 1e-3)
}
