package inference

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-pose/inference/providers"
	"github.com/nvr-ai/go-pose/metrics"
	"github.com/nvr-ai/go-pose/models/model"
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrEngineClosed is returned by Predict after Close.
var ErrEngineClosed = errors.New("engine is closed")

// Runner executes the network on the data written into Input.
type Runner interface {
	Input() []float32
	Run() (skeleton.Outputs, error)
	Close() error
}

// Engine turns images into skeletons.
type Engine interface {
	Predict(ctx context.Context, img image.Image) (*Prediction, error)
	Close() error
}

// Prediction is the result of one Engine.Predict call.
type Prediction struct {
	ID                 uuid.UUID          `json:"id"`
	Skeleton           *skeleton.Skeleton `json:"skeleton"`
	PreprocessDuration time.Duration      `json:"preprocess_duration"`
	InferenceDuration  time.Duration      `json:"inference_duration"`
	DecodeDuration     time.Duration      `json:"decode_duration"`
}

// Total is the summed duration of all stages.
func (p *Prediction) Total() time.Duration {
	return p.PreprocessDuration + p.InferenceDuration + p.DecodeDuration
}

// EngineBuilder assembles an Engine with a fluent API.
type EngineBuilder struct {
	provider providers.Config
	model    model.Config
	options  skeleton.Options
	logger   logrus.FieldLogger
	recorder metrics.Recorder
	runner   Runner
	err      error
}

// NewEngineBuilder creates a builder with default provider, model and
// decoder options.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func NewEngineBuilder() *EngineBuilder {
	return &EngineBuilder{
		provider: providers.DefaultConfig(),
		model:    model.DefaultConfig(),
		options:  skeleton.DefaultOptions(),
		logger:   logrus.StandardLogger(),
		recorder: metrics.Nop{},
	}
}

// WithProvider sets the execution provider configuration.
//
// Arguments:
//   - config: The provider configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithProvider(config providers.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := config.Validate(); err != nil {
		b.err = err
		return b
	}
	b.provider = config
	return b
}

// WithModel sets the model location and tensor names.
//
// Arguments:
//   - config: The model configuration.
//
// Returns:
//   - *EngineBuilder: The engine builder.
func (b *EngineBuilder) WithModel(config model.Config) *EngineBuilder {
	if b.HasError() {
		return b
	}
	if err := config.Validate(); err != nil {
		b.err = err
		return b
	}
	b.model = config
	return b
}

// WithOptions sets the decoder and preprocessing options. The input size is
// replaced by the model's declared size when a session is created.
func (b *EngineBuilder) WithOptions(opts skeleton.Options) *EngineBuilder {
	if b.HasError() {
		return b
	}
	b.options = opts
	return b
}

// WithLogger sets the logger.
func (b *EngineBuilder) WithLogger(logger logrus.FieldLogger) *EngineBuilder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithMetrics sets the metrics recorder.
func (b *EngineBuilder) WithMetrics(recorder metrics.Recorder) *EngineBuilder {
	if recorder != nil {
		b.recorder = recorder
	}
	return b
}

// WithRunner supplies a runner instead of an ONNX Runtime session. The
// options' input size must match the runner's input length.
func (b *EngineBuilder) WithRunner(runner Runner) *EngineBuilder {
	b.runner = runner
	return b
}

// HasError checks if the engine builder has errors.
//
// Returns:
//   - bool: True if there are errors, false otherwise.
func (b *EngineBuilder) HasError() bool {
	return b.err != nil
}

// MustBuild builds the engine and panics if there is an error.
//
// Returns:
//   - Engine: The engine.
func (b *EngineBuilder) MustBuild() Engine {
	e, err := b.Build()
	if err != nil {
		panic(err)
	}
	return e
}

// Build builds the engine. Without a runner it initializes ONNX Runtime,
// inspects the model and opens a session on the configured provider.
//
// Returns:
//   - Engine: The engine.
//   - error: The error if any.
func (b *EngineBuilder) Build() (Engine, error) {
	if b.HasError() {
		return nil, b.err
	}

	opts := b.options
	runner := b.runner
	if runner == nil {
		session, resolved, err := b.openSession(opts)
		if err != nil {
			return nil, err
		}
		runner, opts = session, resolved
	}

	preprocessor, err := skeleton.NewPreprocessor(opts)
	if err != nil {
		_ = runner.Close()
		return nil, err
	}
	decoder, err := skeleton.NewDecoder(opts)
	if err != nil {
		_ = runner.Close()
		return nil, err
	}
	if got, want := len(runner.Input()), preprocessor.InputLen(); got != want {
		_ = runner.Close()
		return nil, errors.Wrapf(skeleton.ErrInvalidConfig, "runner input holds %d floats, preprocessing writes %d", got, want)
	}

	return &engine{
		runner:       runner,
		preprocessor: preprocessor,
		decoder:      decoder,
		logger:       b.logger,
		recorder:     b.recorder,
	}, nil
}

func (b *EngineBuilder) openSession(opts skeleton.Options) (*Session, skeleton.Options, error) {
	if err := InitializeEnvironment(providers.GetSharedLibPath()); err != nil {
		return nil, opts, err
	}

	info, err := InspectModel(b.model)
	if err != nil {
		return nil, opts, err
	}
	if info.Joints > 0 && opts.Joints > 0 && info.Joints != opts.Joints {
		return nil, opts, errors.Wrapf(skeleton.ErrInvalidConfig,
			"model %s declares %d joints, configured %d", b.model.Path, info.Joints, opts.Joints)
	}
	opts.InputWidth, opts.InputHeight = info.InputWidth, info.InputHeight
	b.logger.WithFields(logrus.Fields{
		"model":   b.model.Path,
		"input":   info.Input,
		"output":  info.Output,
		"width":   info.InputWidth,
		"height":  info.InputHeight,
		"joints":  info.Joints,
		"dynamic": info.Dynamic,
	}).Info("inspected model")

	provider, err := providers.NewProvider(b.provider)
	if err != nil {
		return nil, opts, err
	}
	sessionOptions, err := providers.NewSessionOptions(b.provider, provider)
	if err != nil {
		return nil, opts, err
	}
	defer sessionOptions.Destroy()

	session, err := NewSession(SessionConfig{
		ModelPath:   b.model.Path,
		Input:       info.Input,
		Output:      info.Output,
		InputWidth:  info.InputWidth,
		InputHeight: info.InputHeight,
	}, sessionOptions)
	if err != nil {
		return nil, opts, err
	}
	b.logger.WithField("provider", provider.Backend()).Info("created session")

	return session, opts, nil
}

// engine implements the Engine interface. Predictions are serialized because
// the runner owns a single input buffer.
type engine struct {
	mu           sync.Mutex
	closed       bool
	runner       Runner
	preprocessor *skeleton.Preprocessor
	decoder      *skeleton.Decoder
	logger       logrus.FieldLogger
	recorder     metrics.Recorder
}

// Predict preprocesses img, runs the network and decodes the heatmap.
//
// Arguments:
//   - ctx: Checked before each stage.
//   - img: The image to predict.
//
// Returns:
//   - *Prediction: The skeleton and stage timings.
//   - error: The error if any.
func (e *engine) Predict(ctx context.Context, img image.Image) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrEngineClosed
	}

	p := &Prediction{ID: uuid.New()}

	start := time.Now()
	size, err := e.preprocessor.PreProcess(img, e.runner.Input())
	p.PreprocessDuration = time.Since(start)
	if err != nil {
		e.recorder.ObserveError(metrics.StagePreprocess)
		return nil, errors.Wrap(err, "preprocess")
	}
	e.recorder.ObserveStage(metrics.StagePreprocess, p.PreprocessDuration)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	outputs, err := e.runner.Run()
	p.InferenceDuration = time.Since(start)
	if err != nil {
		e.recorder.ObserveError(metrics.StageInference)
		return nil, errors.Wrap(err, "inference")
	}
	e.recorder.ObserveStage(metrics.StageInference, p.InferenceDuration)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	p.Skeleton, err = e.decoder.Decode(outputs, size)
	p.DecodeDuration = time.Since(start)
	if err != nil {
		e.recorder.ObserveError(metrics.StageDecode)
		return nil, errors.Wrap(err, "decode")
	}
	e.recorder.ObserveStage(metrics.StageDecode, p.DecodeDuration)
	e.recorder.ObserveSkeleton(p.Skeleton.DetectedCount(), len(p.Skeleton.Keypoints), len(p.Skeleton.Bones))

	e.logger.WithFields(logrus.Fields{
		"id":       p.ID,
		"detected": p.Skeleton.DetectedCount(),
		"joints":   len(p.Skeleton.Keypoints),
		"bones":    len(p.Skeleton.Bones),
		"duration": p.Total(),
	}).Debug("prediction complete")

	return p, nil
}

// Close releases the runner. Further predictions fail with ErrEngineClosed.
func (e *engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.runner.Close()
}
