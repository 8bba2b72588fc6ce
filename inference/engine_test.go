package inference

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nvr-ai/go-pose/metrics"
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

type fakeRunner struct {
	input  []float32
	output skeleton.Outputs
	err    error
	runs   int
	closed bool
}

func newFakeRunner(opts skeleton.Options, output skeleton.Outputs) *fakeRunner {
	return &fakeRunner{
		input:  make([]float32, 3*opts.InputWidth*opts.InputHeight),
		output: output,
	}
}

func (f *fakeRunner) Input() []float32 { return f.input }

func (f *fakeRunner) Run() (skeleton.Outputs, error) {
	f.runs++
	return f.output, f.err
}

func (f *fakeRunner) Close() error {
	f.closed = true
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	stages   []metrics.Stage
	errors   []metrics.Stage
	detected []int
}

func (r *fakeRecorder) ObserveStage(stage metrics.Stage, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *fakeRecorder) ObserveSkeleton(detected, _, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detected = append(r.detected, detected)
}

func (r *fakeRecorder) ObserveError(stage metrics.Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, stage)
}

func testOptions() skeleton.Options {
	opts := skeleton.DefaultOptions()
	opts.MinThreshold = 0.5
	opts.Joints = 2
	opts.Topology = skeleton.Topology{{A: 0, B: 1}}
	opts.InputWidth = 4
	opts.InputHeight = 4
	return opts
}

// twoJointHeatmap has channel 0 peaking at (row 1, col 0) and channel 1 at
// (row 0, col 1) on a 2x2 grid.
func twoJointHeatmap() skeleton.Outputs {
	data := []float32{
		0.1, 0.2,
		0.9, 0.3,

		0.1, 0.8,
		0.2, 0.3,
	}
	return skeleton.Outputs{
		skeleton.HeatmapOutput: tensor.New(tensor.WithShape(1, 2, 2, 2), tensor.WithBacking(data)),
	}
}

func whiteImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestEnginePredict(t *testing.T) {
	opts := testOptions()
	runner := newFakeRunner(opts, twoJointHeatmap())
	recorder := &fakeRecorder{}
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e, err := NewEngineBuilder().
		WithOptions(opts).
		WithRunner(runner).
		WithLogger(logger).
		WithMetrics(recorder).
		Build()
	require.NoError(t, err)
	defer e.Close()

	p, err := e.Predict(context.Background(), whiteImage(8, 8))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, []skeleton.Keypoint{{X: 0, Y: 4}, {X: 4, Y: 0}}, p.Skeleton.Keypoints)
	assert.Equal(t, []float32{0.9, 0.8}, p.Skeleton.Confidences)
	assert.Equal(t, []skeleton.Bone{{A: 0, B: 1}}, p.Skeleton.Bones)
	assert.Equal(t, 8, p.Skeleton.ImageWidth)
	assert.Equal(t, 8, p.Skeleton.ImageHeight)
	assert.Equal(t, p.PreprocessDuration+p.InferenceDuration+p.DecodeDuration, p.Total())

	// White pixels normalize to 255*scale+bias in every channel plane.
	norm := opts.Normalization
	plane := opts.InputWidth * opts.InputHeight
	for c := 0; c < 3; c++ {
		assert.InDelta(t, 255*norm.Scale[c]+norm.Bias[c], runner.input[c*plane], 0.02)
	}

	assert.Equal(t, []metrics.Stage{metrics.StagePreprocess, metrics.StageInference, metrics.StageDecode}, recorder.stages)
	assert.Equal(t, []int{2}, recorder.detected)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "prediction complete", hook.LastEntry().Message)
	assert.Equal(t, 2, hook.LastEntry().Data["detected"])
}

func TestEnginePredictUniqueIDs(t *testing.T) {
	opts := testOptions()
	e := NewEngineBuilder().WithOptions(opts).WithRunner(newFakeRunner(opts, twoJointHeatmap())).MustBuild()
	defer e.Close()

	a, err := e.Predict(context.Background(), whiteImage(4, 4))
	require.NoError(t, err)
	b, err := e.Predict(context.Background(), whiteImage(4, 4))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestEnginePredictErrors(t *testing.T) {
	tests := []struct {
		name    string
		output  skeleton.Outputs
		runErr  error
		img     image.Image
		wantErr error
		stage   metrics.Stage
	}{
		{
			name:    "empty image",
			output:  twoJointHeatmap(),
			img:     image.NewRGBA(image.Rect(0, 0, 0, 0)),
			wantErr: skeleton.ErrUnknownDimensions,
			stage:   metrics.StagePreprocess,
		},
		{
			name:   "runner failure",
			runErr: errors.New("boom"),
			img:    whiteImage(4, 4),
			stage:  metrics.StageInference,
		},
		{
			name:    "missing heatmap",
			output:  skeleton.Outputs{},
			img:     whiteImage(4, 4),
			wantErr: skeleton.ErrMissingHeatmap,
			stage:   metrics.StageDecode,
		},
		{
			name: "wrong channel count",
			output: skeleton.Outputs{
				skeleton.HeatmapOutput: tensor.New(tensor.WithShape(3, 1, 1), tensor.WithBacking([]float32{1, 1, 1})),
			},
			img:     whiteImage(4, 4),
			wantErr: skeleton.ErrInvalidOutput,
			stage:   metrics.StageDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			runner := newFakeRunner(opts, tt.output)
			runner.err = tt.runErr
			recorder := &fakeRecorder{}

			e := NewEngineBuilder().WithOptions(opts).WithRunner(runner).WithMetrics(recorder).MustBuild()
			defer e.Close()

			p, err := e.Predict(context.Background(), tt.img)
			require.Error(t, err)
			assert.Nil(t, p)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
			if tt.runErr != nil {
				assert.True(t, errors.Is(err, tt.runErr), "got %v", err)
			}
			assert.Equal(t, []metrics.Stage{tt.stage}, recorder.errors)
			assert.Empty(t, recorder.detected)
		})
	}
}

func TestEnginePredictCancelled(t *testing.T) {
	opts := testOptions()
	runner := newFakeRunner(opts, twoJointHeatmap())
	e := NewEngineBuilder().WithOptions(opts).WithRunner(runner).MustBuild()
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Predict(ctx, whiteImage(4, 4))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, runner.runs)
}

// cancellingRunner cancels the prediction context while the network runs.
type cancellingRunner struct {
	*fakeRunner
	cancel context.CancelFunc
}

func (r *cancellingRunner) Run() (skeleton.Outputs, error) {
	r.cancel()
	return r.fakeRunner.Run()
}

func TestEnginePredictCancelledDuringInference(t *testing.T) {
	opts := testOptions()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runner := &cancellingRunner{fakeRunner: newFakeRunner(opts, twoJointHeatmap()), cancel: cancel}
	recorder := &fakeRecorder{}

	e := NewEngineBuilder().WithOptions(opts).WithRunner(runner).WithMetrics(recorder).MustBuild()
	defer e.Close()

	p, err := e.Predict(ctx, whiteImage(4, 4))
	assert.Nil(t, p)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runner.runs)
	assert.NotContains(t, recorder.stages, metrics.StageDecode)
	assert.Empty(t, recorder.detected)
}

func TestEngineClose(t *testing.T) {
	opts := testOptions()
	runner := newFakeRunner(opts, twoJointHeatmap())
	e := NewEngineBuilder().WithOptions(opts).WithRunner(runner).MustBuild()

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.True(t, runner.closed)

	_, err := e.Predict(context.Background(), whiteImage(4, 4))
	assert.ErrorIs(t, err, ErrEngineClosed)
}

func TestEngineConcurrentPredict(t *testing.T) {
	opts := testOptions()
	e := NewEngineBuilder().WithOptions(opts).WithRunner(newFakeRunner(opts, twoJointHeatmap())).MustBuild()
	defer e.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Predict(context.Background(), whiteImage(6, 6))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestEngineBuildErrors(t *testing.T) {
	t.Run("runner size mismatch", func(t *testing.T) {
		opts := testOptions()
		runner := &fakeRunner{input: make([]float32, 5)}
		_, err := NewEngineBuilder().WithOptions(opts).WithRunner(runner).Build()
		assert.ErrorIs(t, err, skeleton.ErrInvalidConfig)
		assert.True(t, runner.closed)
	})

	t.Run("invalid options", func(t *testing.T) {
		opts := testOptions()
		opts.Topology = skeleton.Topology{{A: 0, B: 7}}
		runner := newFakeRunner(opts, nil)
		_, err := NewEngineBuilder().WithOptions(opts).WithRunner(runner).Build()
		assert.ErrorIs(t, err, skeleton.ErrInvalidConfig)
	})

	t.Run("must build panics", func(t *testing.T) {
		opts := testOptions()
		opts.InputWidth = 0
		assert.Panics(t, func() {
			NewEngineBuilder().WithOptions(opts).WithRunner(&fakeRunner{}).MustBuild()
		})
	})
}
