// Package providers - Execution providers for ONNX Runtime sessions.
package providers

import (
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// ProviderBackend represents different ONNX Runtime execution providers
type ProviderBackend string

// ExecutionProvider represents the contract that all execution providers must implement.
type ExecutionProvider interface {
	// Backend returns the backend the provider enables.
	Backend() ProviderBackend
	// Configure appends the provider to the session options.
	Configure(options *ort.SessionOptions) error
}

// Config selects and configures an execution provider.
type Config struct {
	// Backend specifies the backend to use.
	Backend ProviderBackend `json:"backend" yaml:"backend"`
	// IntraOpThreads parallelizes execution inside graph nodes. Zero uses the runtime default.
	IntraOpThreads int `json:"intraOpThreads" yaml:"intraOpThreads"`
	// InterOpThreads parallelizes execution across independent graph nodes. Zero uses the runtime default.
	InterOpThreads int `json:"interOpThreads" yaml:"interOpThreads"`
	// CoreML holds options used when Backend is coreml.
	CoreML CoreMLOptions `json:"coreml" yaml:"coreml"`
	// CUDA holds options used when Backend is cuda.
	CUDA CUDAOptions `json:"cuda" yaml:"cuda"`
	// OpenVINO holds options used when Backend is openvino.
	OpenVINO OpenVINOOptions `json:"openvino" yaml:"openvino"`
}

// DefaultConfig returns a CPU configuration with runtime-chosen thread counts.
func DefaultConfig() Config {
	return Config{
		Backend:  CPUProviderBackend,
		OpenVINO: DefaultOpenVINOOptions(),
	}
}

// Validate checks the backend is known and thread counts are not negative.
func (c Config) Validate() error {
	if c.IntraOpThreads < 0 || c.InterOpThreads < 0 {
		return errors.Errorf("thread counts must not be negative, got intra=%d inter=%d",
			c.IntraOpThreads, c.InterOpThreads)
	}
	_, err := NewProvider(c)
	return err
}

// NewProvider creates a new provider based on the required backend.
//
// Arguments:
//   - config: The provider configuration.
//
// Returns:
//   - ExecutionProvider: The new provider.
//   - error: An error if the backend is not supported.
func NewProvider(config Config) (ExecutionProvider, error) {
	switch config.Backend {
	case CPUProviderBackend, "":
		return NewCPUProvider(), nil
	case CoreMLProviderBackend:
		return NewCoreMLProvider(config.CoreML), nil
	case CUDAProviderBackend:
		return NewCUDAProvider(config.CUDA), nil
	case OpenVINOProviderBackend:
		return NewOpenVINOProvider(config.OpenVINO), nil
	default:
		return nil, errors.Errorf("unsupported provider backend: %q", config.Backend)
	}
}

// NewSessionOptions builds session options with threading, graph optimization
// and the provider applied. The caller must Destroy the returned options.
//
// Arguments:
//   - config: The provider configuration.
//   - provider: The execution provider to append.
//
// Returns:
//   - *ort.SessionOptions: The session options.
//   - error: An error if any option could not be set.
func NewSessionOptions(config Config, provider ExecutionProvider) (*ort.SessionOptions, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "error creating ORT session options")
	}

	// Zero keeps the runtime's default thread pools.
	if err := options.SetIntraOpNumThreads(config.IntraOpThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting intra-op threads")
	}
	if err := options.SetInterOpNumThreads(config.InterOpThreads); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting inter-op threads")
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		options.Destroy()
		return nil, errors.Wrap(err, "error setting graph optimization level")
	}

	if err := provider.Configure(options); err != nil {
		options.Destroy()
		return nil, errors.Wrapf(err, "error enabling %s", provider.Backend())
	}

	return options, nil
}
