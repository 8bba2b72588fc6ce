package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"time"

	"github.com/nvr-ai/go-pose/config"
	"github.com/nvr-ai/go-pose/inference"
	"github.com/nvr-ai/go-pose/logging"
	"github.com/nvr-ai/go-pose/metrics"
	"github.com/nvr-ai/go-pose/render"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

func main() {
	var (
		deviceID   int
		configPath string
		modelPath  string
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device")
	flag.StringVar(&configPath, "config", "", "Path to YAML configuration")
	flag.StringVar(&modelPath, "model", "", "Path to pose ONNX model, overrides the config")
	flag.Parse()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if modelPath != "" {
		cfg.Model.Path = modelPath
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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
		logger.WithError(err).Fatal("invalid skeleton configuration")
	}
	engine, err := inference.NewEngineBuilder().
		WithProvider(cfg.Provider).
		WithModel(cfg.Model).
		WithOptions(opts).
		WithLogger(logger).
		WithMetrics(recorder).
		Build()
	if err != nil {
		logger.WithError(err).Fatal("building engine")
	}
	defer engine.Close()

	// open webcam
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		logger.WithError(err).Fatalf("opening capture device %d", deviceID)
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Pose")
	defer window.Close()

	// prepare image matrix
	img := gocv.NewMat()
	defer img.Close()

	style := render.DefaultStyle()
	green := color.RGBA{0, 255, 0, 0}

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	logger.WithField("device", deviceID).Info("start reading camera")
	for {
		if ok := webcam.Read(&img); !ok {
			logger.WithField("device", deviceID).Error("cannot read device")
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()

		// Calculate FPS every second
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		frame, err := img.ToImage()
		if err != nil {
			logger.WithError(err).Warn("converting frame")
			continue
		}
		p, err := engine.Predict(ctx, frame)
		if err != nil {
			logger.WithError(err).Warn("prediction failed")
			continue
		}
		logger.WithFields(logrus.Fields{
			"detected": p.Skeleton.DetectedCount(),
			"fps":      fmt.Sprintf("%.2f", fps),
		}).Debug("frame")

		render.Draw(&img, p.Skeleton, style)
		gocv.PutText(&img, fmt.Sprintf("FPS: %.1f  joints: %d", fps, p.Skeleton.DetectedCount()),
			image.Pt(10, 20), gocv.FontHersheyPlain, 1.2, green, 2)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(img)
		if window.WaitKey(1) == 27 {
			return
		}
	}
}
