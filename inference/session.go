// Package inference - Pose inference engine on ONNX Runtime.
package inference

import (
	"os"
	"sync"

	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gorgonia.org/tensor"
)

var envMu sync.Mutex

// InitializeEnvironment loads the ONNX Runtime shared library once per process.
//
// Arguments:
//   - libPath: Path to the onnxruntime shared library.
//
// Returns:
//   - error: An error if the library is missing or fails to initialize.
func InitializeEnvironment(libPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
	}
	ort.SetSharedLibraryPath(libPath)
	return errors.Wrap(ort.InitializeEnvironment(), "initializing onnxruntime environment")
}

// SessionConfig describes the tensors of a pose model session.
type SessionConfig struct {
	ModelPath   string
	Input       string
	Output      string
	InputWidth  int
	InputHeight int
}

// Session runs a pose model with one preallocated [1, 3, H, W] input tensor.
// The heatmap output is allocated by ONNX Runtime on every run so models with
// dynamic output sizes are supported.
type Session struct {
	session *ort.DynamicAdvancedSession
	input   *ort.Tensor[float32]
}

// NewSession creates a session for the model described by config.
//
// Arguments:
//   - config: The model path, tensor names and input size.
//   - options: Session options carrying the execution provider. The caller
//     keeps ownership.
//
// Returns:
//   - *Session: The session.
//   - error: An error if the tensor or session cannot be created.
func NewSession(config SessionConfig, options *ort.SessionOptions) (*Session, error) {
	shape := ort.NewShape(1, 3, int64(config.InputHeight), int64(config.InputWidth))
	input, err := ort.NewEmptyTensor[float32](shape)
	if err != nil {
		return nil, errors.Wrap(err, "creating input tensor")
	}

	session, err := ort.NewDynamicAdvancedSession(
		config.ModelPath,
		[]string{config.Input},
		[]string{config.Output},
		options,
	)
	if err != nil {
		input.Destroy()
		return nil, errors.Wrapf(err, "creating session for %s", config.ModelPath)
	}

	return &Session{session: session, input: input}, nil
}

// Input returns the input tensor's backing data.
func (s *Session) Input() []float32 {
	return s.input.GetData()
}

// Run executes the model and returns its output under skeleton.HeatmapOutput.
//
// Returns:
//   - skeleton.Outputs: The heatmap, copied out of ONNX Runtime memory.
//   - error: skeleton.ErrInvalidOutput if the output is not a float32 tensor.
func (s *Session) Run() (skeleton.Outputs, error) {
	outputs := []ort.Value{nil}
	if err := s.session.Run([]ort.Value{s.input}, outputs); err != nil {
		return nil, errors.Wrap(err, "running session")
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.Wrapf(skeleton.ErrInvalidOutput, "output is %T, want float32 tensor", outputs[0])
	}

	shape := out.GetShape()
	dims := make([]int, len(shape))
	for i, d := range shape {
		dims[i] = int(d)
	}
	data := append([]float32(nil), out.GetData()...)

	return skeleton.Outputs{
		skeleton.HeatmapOutput: tensor.New(tensor.WithShape(dims...), tensor.WithBacking(data)),
	}, nil
}

// Close releases the session and its input tensor.
func (s *Session) Close() error {
	var err error
	if s.session != nil {
		err = s.session.Destroy()
		s.session = nil
	}
	if s.input != nil {
		if derr := s.input.Destroy(); err == nil {
			err = derr
		}
		s.input = nil
	}
	return err
}
