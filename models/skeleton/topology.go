package skeleton

import (
	"fmt"

	"github.com/pkg/errors"
)

// Bone connects two joints by channel index.
type Bone struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

// String renders the bone as "a-b".
func (b Bone) String() string {
	return fmt.Sprintf("%d-%d", b.A, b.B)
}

// Topology is the fixed, ordered set of bones a model's joints form.
type Topology []Bone

// Validate checks that every bone references a channel below channels.
//
// Arguments:
//   - channels: The number of heatmap channels.
//
// Returns:
//   - error: ErrInvalidConfig naming the first out-of-range bone.
func (t Topology) Validate(channels int) error {
	for i, b := range t {
		if b.A < 0 || b.B < 0 || b.A >= channels || b.B >= channels {
			return errors.Wrapf(ErrInvalidConfig, "bone %d (%s) outside %d joints", i, b, channels)
		}
	}
	return nil
}

// MaxJoint returns the highest joint index referenced, or -1 when empty.
func (t Topology) MaxJoint() int {
	m := -1
	for _, b := range t {
		m = max(m, b.A, b.B)
	}
	return m
}

// Connect returns the bones whose endpoints are both detected, in topology
// order. Bones referencing joints beyond detected are dropped.
//
// Arguments:
//   - detected: Detection status per channel.
//
// Returns:
//   - []Bone: The connected bones, never nil.
func (t Topology) Connect(detected []bool) []Bone {
	bones := make([]Bone, 0, len(t))
	for _, b := range t {
		if b.A >= len(detected) || b.B >= len(detected) || b.A < 0 || b.B < 0 {
			continue
		}
		if detected[b.A] && detected[b.B] {
			bones = append(bones, b)
		}
	}
	return bones
}
