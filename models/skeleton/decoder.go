package skeleton

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Outputs are the named tensors a model run produced.
type Outputs map[string]*tensor.Dense

// Decoder turns heatmaps into skeletons. It holds only immutable
// configuration and is safe for concurrent use.
type Decoder struct {
	threshold float32
	topology  Topology
	joints    int
}

// NewDecoder creates a decoder from validated options. The topology is copied.
//
// Arguments:
//   - opts: The decoder options.
//
// Returns:
//   - *Decoder: The decoder.
//   - error: ErrInvalidConfig if the options fail validation.
func NewDecoder(opts Options) (*Decoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Decoder{
		threshold: opts.MinThreshold,
		topology:  append(Topology(nil), opts.Topology...),
		joints:    opts.Joints,
	}, nil
}

// Threshold returns the minimum detection score.
func (d *Decoder) Threshold() float32 { return d.threshold }

// Topology returns a copy of the bone layout.
func (d *Decoder) Topology() Topology { return append(Topology(nil), d.topology...) }

// Decode extracts the "heatmap" output and decodes it.
//
// Arguments:
//   - outputs: The model outputs by name.
//   - original: The original image size recorded during preprocessing.
//
// Returns:
//   - *Skeleton: The decoded skeleton.
//   - error: ErrUnknownDimensions, ErrMissingHeatmap or ErrInvalidOutput.
func (d *Decoder) Decode(outputs Outputs, original Size) (*Skeleton, error) {
	if !original.Known() {
		return nil, errors.Wrapf(ErrUnknownDimensions, "got %dx%d", original.Width, original.Height)
	}
	dense, ok := outputs[HeatmapOutput]
	if !ok || dense == nil {
		return nil, errors.WithStack(ErrMissingHeatmap)
	}
	heatmap, err := HeatmapFromDense(dense)
	if err != nil {
		return nil, err
	}
	return d.DecodeHeatmap(heatmap, original)
}

// DecodeHeatmap decodes one heatmap into a skeleton.
//
// Every channel yields a keypoint and a confidence. A channel whose peak is
// below the threshold yields Absent and contributes no bones.
//
// Arguments:
//   - heatmap: The (C, H, W) scores.
//   - original: The original image size.
//
// Returns:
//   - *Skeleton: The decoded skeleton.
//   - error: ErrUnknownDimensions, ErrMissingHeatmap, or ErrInvalidOutput when
//     the channel count disagrees with the configured joints or topology.
func (d *Decoder) DecodeHeatmap(heatmap *Heatmap, original Size) (*Skeleton, error) {
	if !original.Known() {
		return nil, errors.Wrapf(ErrUnknownDimensions, "got %dx%d", original.Width, original.Height)
	}
	if heatmap == nil {
		return nil, errors.WithStack(ErrMissingHeatmap)
	}

	channels := heatmap.Channels()
	if d.joints > 0 && channels != d.joints {
		return nil, errors.Wrapf(ErrInvalidOutput, "%d channels, want %d", channels, d.joints)
	}
	if err := d.topology.Validate(channels); err != nil {
		return nil, errors.Wrapf(ErrInvalidOutput, "topology does not fit %d channels: %v", channels, err)
	}

	scale := NewScale(original, heatmap.Height(), heatmap.Width())
	out := &Skeleton{
		Keypoints:   make([]Keypoint, channels),
		Confidences: make([]float32, channels),
		ImageWidth:  original.Width,
		ImageHeight: original.Height,
	}
	detected := make([]bool, channels)

	for c := 0; c < channels; c++ {
		peak := FindPeak(heatmap.Plane(c), heatmap.Width())
		out.Confidences[c] = peak.Score
		if peak.Row < 0 || !(peak.Score >= d.threshold) {
			out.Keypoints[c] = Absent
			continue
		}
		out.Keypoints[c] = scale.Apply(peak)
		detected[c] = true
	}
	out.Bones = d.topology.Connect(detected)

	return out, nil
}
