package models

import (
	"errors"
	"testing"

	"github.com/nvr-ai/go-pose/models/model"
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreset(t *testing.T) {
	tests := []struct {
		name   model.Name
		joints int
		bones  int
	}{
		{model.NameCOCO17, 17, 16},
		{model.NameMPII16, 16, 15},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			p, err := NewPreset(tt.name)
			require.NoError(t, err)
			assert.Len(t, p.Joints, tt.joints)
			assert.Len(t, p.Topology, tt.bones)
			assert.NoError(t, p.Topology.Validate(len(p.Joints)))
		})
	}
}

func TestNewPresetUnknown(t *testing.T) {
	_, err := NewPreset("halpe26")
	require.Error(t, err)
	assert.True(t, errors.Is(err, skeleton.ErrInvalidConfig))
}

func TestPresetApply(t *testing.T) {
	p, err := NewPreset(model.NameMPII16)
	require.NoError(t, err)

	opts := skeleton.DefaultOptions()
	opts.Topology = nil
	opts = p.Apply(opts)
	assert.Equal(t, 16, opts.Joints)
	assert.Equal(t, skeleton.MPII16(), opts.Topology)
	assert.NoError(t, opts.Validate())

	custom := skeleton.Topology{{A: 0, B: 1}}
	opts.Topology = custom
	opts = p.Apply(opts)
	assert.Equal(t, custom, opts.Topology)
}

func TestPresetsAreCopies(t *testing.T) {
	a, err := NewPreset(model.NameCOCO17)
	require.NoError(t, err)
	a.Joints[0] = "changed"
	a.Topology[0] = skeleton.Bone{A: 9, B: 9}

	b, err := NewPreset(model.NameCOCO17)
	require.NoError(t, err)
	assert.Equal(t, "nose", b.Joints[0])
	assert.Equal(t, skeleton.COCO17()[0], b.Topology[0])
}

func TestNames(t *testing.T) {
	assert.Equal(t, []model.Name{model.NameCOCO17, model.NameMPII16}, Names())
}
