package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/images"
	"github.com/nvr-ai/go-pose/inference"
	"github.com/nvr-ai/go-pose/logging"
	"github.com/nvr-ai/go-pose/metrics"
	"github.com/nvr-ai/go-pose/render"
	"github.com/nvr-ai/go-pose/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Supported file extensions
var supportedVideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// InputType represents the type of input being processed
type InputType int

const (
	InputImage InputType = iota
	InputDirectory
	InputVideo
)

// InputConfig holds the input configuration
type InputConfig struct {
	Type InputType
	Path string
}

// Result is one line of JSON output.
type Result struct {
	Source string `json:"source"`
	Frame  int    `json:"frame"`
	*inference.Prediction
}

type runner struct {
	engine inference.Engine
	logger logrus.FieldLogger
	out    *json.Encoder
	outDir string
	style  render.Style
}

func main() {
	var (
		configPath string
		modelPath  string
		threshold  float64
		imagePath  string
		dirPath    string
		videoPath  string
		outDir     string
		confidence bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML configuration")
	flag.StringVar(&modelPath, "model", "", "Path to pose ONNX model, overrides the config")
	flag.Float64Var(&threshold, "threshold", -1, "Minimum joint score, overrides the config when >= 0")
	flag.StringVar(&imagePath, "image", "", "Path to an image file (.jpg, .jpeg, .png, .webp)")
	flag.StringVar(&dirPath, "dir", "", "Directory of image frames")
	flag.StringVar(&videoPath, "video", "", "Path to a video file (.mp4, .avi, .mov, .mkv)")
	flag.StringVar(&outDir, "out", "", "Directory for annotated frames, empty to skip drawing")
	flag.BoolVar(&confidence, "show-confidence", false, "Print joint scores on annotated frames")
	flag.Parse()

	if err := run(configPath, modelPath, threshold, imagePath, dirPath, videoPath, outDir, confidence); err != nil {
		fmt.Fprintf(os.Stderr, "pose: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, modelPath string, threshold float64, imagePath, dirPath, videoPath, outDir string, confidence bool) error {
	input, err := validateInputFlags(imagePath, dirPath, videoPath)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(configPath, modelPath, threshold)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		m := metrics.New(cfg.Metrics.Namespace)
		recorder = m
		if cfg.Metrics.Addr != "" {
			go func() {
				if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
					logger.WithError(err).Error("metrics server stopped")
				}
			}()
		}
	}

	opts, err := cfg.SkeletonOptions()
	if err != nil {
		return err
	}
	engine, err := inference.NewEngineBuilder().
		WithProvider(cfg.Provider).
		WithModel(cfg.Model).
		WithOptions(opts).
		WithLogger(logger).
		WithMetrics(recorder).
		Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return errors.Wrapf(err, "creating output directory %s", outDir)
		}
	}

	style := render.DefaultStyle()
	style.Confidence = confidence
	r := &runner{
		engine: engine,
		logger: logger,
		out:    json.NewEncoder(os.Stdout),
		outDir: outDir,
		style:  style,
	}

	switch input.Type {
	case InputImage:
		data, err := os.ReadFile(input.Path)
		if err != nil {
			return errors.Wrapf(err, "reading %s", input.Path)
		}
		return r.processFile(ctx, util.ImageFile{Path: input.Path, Data: data, Frame: util.FrameNumber(input.Path)})
	case InputDirectory:
		files, err := util.LoadDirectoryImageFiles(input.Path)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"dir": input.Path, "files": len(files)}).Info("processing directory")
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.processFile(ctx, f); err != nil {
				logger.WithError(err).WithField("path", f.Path).Warn("skipping frame")
			}
		}
		return nil
	default:
		return r.processVideo(ctx, input.Path)
	}
}

func loadConfig(path, modelPath string, threshold float64) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	if modelPath != "" {
		cfg.Model.Path = modelPath
	}
	if threshold >= 0 {
		cfg.Skeleton.MinThreshold = float32(threshold)
	}
	return cfg, cfg.Validate()
}

func validateInputFlags(imagePath, dirPath, videoPath string) (InputConfig, error) {
	var inputs []InputConfig
	if imagePath != "" {
		if !util.IsImageFile(imagePath) {
			return InputConfig{}, errors.Errorf("unsupported image file: %s", imagePath)
		}
		inputs = append(inputs, InputConfig{Type: InputImage, Path: imagePath})
	}
	if dirPath != "" {
		inputs = append(inputs, InputConfig{Type: InputDirectory, Path: dirPath})
	}
	if videoPath != "" {
		if !isVideoFile(videoPath) {
			return InputConfig{}, errors.Errorf("unsupported video file: %s", videoPath)
		}
		inputs = append(inputs, InputConfig{Type: InputVideo, Path: videoPath})
	}

	switch len(inputs) {
	case 0:
		return InputConfig{}, errors.New("one of -image, -dir or -video is required")
	case 1:
		return inputs[0], nil
	default:
		return InputConfig{}, errors.New("-image, -dir and -video are mutually exclusive")
	}
}

func isVideoFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, v := range supportedVideoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

func (r *runner) processFile(ctx context.Context, f util.ImageFile) error {
	img, err := images.Decode(&images.Image{Data: f.Data})
	if err != nil {
		return errors.Wrapf(err, "decoding %s", f.Path)
	}
	p, err := r.emit(ctx, f.Path, f.Frame, img)
	if err != nil {
		return err
	}
	if r.outDir == "" {
		return nil
	}

	mat, err := gocv.IMDecode(f.Data, gocv.IMReadColor)
	if err != nil {
		return errors.Wrapf(err, "decoding %s for drawing", f.Path)
	}
	defer mat.Close()
	return r.annotate(&mat, p, filepath.Base(f.Path))
}

func (r *runner) processVideo(ctx context.Context, path string) error {
	capture, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return errors.Wrapf(err, "opening video %s", path)
	}
	defer capture.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if ok := capture.Read(&frame); !ok || frame.Empty() {
			r.logger.WithField("frames", n).Info("video finished")
			return nil
		}

		img, err := frame.ToImage()
		if err != nil {
			return errors.Wrapf(err, "converting frame %d", n)
		}
		p, err := r.emit(ctx, path, n, img)
		if err != nil {
			r.logger.WithError(err).WithField("frame", n).Warn("skipping frame")
			continue
		}
		if r.outDir != "" {
			if err := r.annotate(&frame, p, fmt.Sprintf("frame-%06d.jpg", n)); err != nil {
				return err
			}
		}
	}
}

func (r *runner) emit(ctx context.Context, source string, frame int, img image.Image) (*inference.Prediction, error) {
	p, err := r.engine.Predict(ctx, img)
	if err != nil {
		return nil, errors.Wrapf(err, "predicting %s", source)
	}
	if err := writeResult(r.out, Result{Source: source, Frame: frame, Prediction: p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *runner) annotate(mat *gocv.Mat, p *inference.Prediction, name string) error {
	render.Draw(mat, p.Skeleton, r.style)
	path := filepath.Join(r.outDir, name)
	if ok := gocv.IMWrite(path, *mat); !ok {
		return errors.Errorf("writing %s", path)
	}
	return nil
}

func writeResult(w *json.Encoder, res Result) error {
	return errors.Wrap(w.Encode(res), "writing result")
}
