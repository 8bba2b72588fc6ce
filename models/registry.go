// Package models - registry of keypoint layouts.
package models

import (
	"sort"

	"github.com/nvr-ai/go-pose/models/model"
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/pkg/errors"
)

// Preset is a named keypoint layout: joint names in channel order plus the
// bones drawn between them.
type Preset struct {
	Name     model.Name
	Joints   []string
	Topology skeleton.Topology
}

var presets = map[model.Name]func() Preset{
	model.NameCOCO17: func() Preset {
		return Preset{
			Name:     model.NameCOCO17,
			Joints:   append([]string(nil), skeleton.COCO17Joints...),
			Topology: skeleton.COCO17(),
		}
	},
	model.NameMPII16: func() Preset {
		return Preset{
			Name:     model.NameMPII16,
			Joints:   append([]string(nil), skeleton.MPII16Joints...),
			Topology: skeleton.MPII16(),
		}
	},
}

// NewPreset looks up a keypoint layout by name.
//
// Arguments:
//   - name: The layout name, e.g. "coco17".
//
// Returns:
//   - Preset: A fresh copy of the layout.
//   - error: skeleton.ErrInvalidConfig if the name is not registered.
func NewPreset(name model.Name) (Preset, error) {
	build, ok := presets[name]
	if !ok {
		return Preset{}, errors.Wrapf(skeleton.ErrInvalidConfig, "unsupported keypoint layout: %q", name)
	}
	return build(), nil
}

// Names returns the registered layout names in sorted order.
func Names() []model.Name {
	names := make([]model.Name, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Apply sets the joint count and, unless one is already configured, the
// topology of opts from the preset.
//
// Arguments:
//   - opts: Decoder options to complete.
//
// Returns:
//   - skeleton.Options: The completed options.
func (p Preset) Apply(opts skeleton.Options) skeleton.Options {
	opts.Joints = len(p.Joints)
	if len(opts.Topology) == 0 {
		opts.Topology = append(skeleton.Topology(nil), p.Topology...)
	}
	return opts
}
