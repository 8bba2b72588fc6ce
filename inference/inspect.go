package inference

import (
	"github.com/nvr-ai/go-pose/models/model"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ModelInfo is the resolved tensor layout of a pose model.
type ModelInfo struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	InputWidth  int    `json:"input_width"`
	InputHeight int    `json:"input_height"`
	// Joints is the declared heatmap channel count, zero when dynamic.
	Joints int `json:"joints"`
	// Dynamic reports whether the input size came from configuration.
	Dynamic bool `json:"dynamic"`
}

type tensorSignature struct {
	name string
	dims []int64
}

// InspectModel reads the model's declared inputs and outputs. Dynamic input
// dimensions fall back to the configured width and height.
//
// Arguments:
//   - config: The model configuration.
//
// Returns:
//   - ModelInfo: The resolved layout.
//   - error: An error if the model cannot be read or lacks the named tensors.
func InspectModel(config model.Config) (ModelInfo, error) {
	inputs, outputs, err := ort.GetInputOutputInfo(config.Path)
	if err != nil {
		return ModelInfo{}, errors.Wrapf(err, "reading model info from %s", config.Path)
	}
	return resolveModelInfo(config, signatures(inputs), signatures(outputs))
}

func signatures(infos []ort.InputOutputInfo) []tensorSignature {
	out := make([]tensorSignature, len(infos))
	for i, info := range infos {
		out[i] = tensorSignature{name: info.Name, dims: info.Dimensions}
	}
	return out
}

func findSignature(list []tensorSignature, name, kind string) (tensorSignature, error) {
	for _, s := range list {
		if s.name == name {
			return s, nil
		}
	}
	if len(list) == 1 {
		return list[0], nil
	}
	return tensorSignature{}, errors.Errorf("model has no %s named %q", kind, name)
}

func resolveModelInfo(config model.Config, inputs, outputs []tensorSignature) (ModelInfo, error) {
	in, err := findSignature(inputs, config.Input, "input")
	if err != nil {
		return ModelInfo{}, err
	}
	if len(in.dims) != 4 {
		return ModelInfo{}, errors.Errorf("input %q has rank %d, want NCHW", in.name, len(in.dims))
	}
	if in.dims[1] > 0 && in.dims[1] != 3 {
		return ModelInfo{}, errors.Errorf("input %q has %d channels, want 3", in.name, in.dims[1])
	}

	out, err := findSignature(outputs, config.Output, "output")
	if err != nil {
		return ModelInfo{}, err
	}

	info := ModelInfo{
		Input:       in.name,
		Output:      out.name,
		InputHeight: int(in.dims[2]),
		InputWidth:  int(in.dims[3]),
	}
	if info.InputHeight <= 0 {
		info.InputHeight = config.InputHeight
		info.Dynamic = true
	}
	if info.InputWidth <= 0 {
		info.InputWidth = config.InputWidth
		info.Dynamic = true
	}

	switch len(out.dims) {
	case 3:
		info.Joints = int(out.dims[0])
	case 4:
		info.Joints = int(out.dims[1])
	default:
		return ModelInfo{}, errors.Errorf("output %q has rank %d, want CHW or NCHW", out.name, len(out.dims))
	}
	if info.Joints < 0 {
		info.Joints = 0
	}

	return info, nil
}
