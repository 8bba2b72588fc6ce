// Package config - YAML configuration for the pose pipeline.
//
// A configuration file only needs the fields it changes; everything else
// keeps the value from Default.
//
//	model:
//	  name: coco17
//	  path: models/pose.onnx
//	provider:
//	  backend: coreml
//	skeleton:
//	  min_threshold: 0.25
//	log:
//	  level: debug
package config

import (
	"os"

	"github.com/nvr-ai/go-pose/inference/providers"
	"github.com/nvr-ai/go-pose/logging"
	"github.com/nvr-ai/go-pose/metrics"
	"github.com/nvr-ai/go-pose/models"
	"github.com/nvr-ai/go-pose/models/model"
	"github.com/nvr-ai/go-pose/models/skeleton"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SkeletonConfig holds decoder settings.
type SkeletonConfig struct {
	// MinThreshold is the lowest peak score counted as a detection.
	MinThreshold float32 `json:"min_threshold" yaml:"min_threshold"`
	// Bones overrides the layout's topology when set.
	Bones skeleton.Topology `json:"bones,omitempty" yaml:"bones,omitempty"`
	// Normalization is the input transform.
	Normalization skeleton.Normalization `json:"normalization" yaml:"normalization"`
}

// Config is the complete pipeline configuration.
type Config struct {
	Model    model.Config     `json:"model" yaml:"model"`
	Provider providers.Config `json:"provider" yaml:"provider"`
	Skeleton SkeletonConfig   `json:"skeleton" yaml:"skeleton"`
	Log      logging.Config   `json:"log" yaml:"log"`
	Metrics  metrics.Config   `json:"metrics" yaml:"metrics"`
}

// Default returns the configuration for a COCO model on the CPU provider.
func Default() Config {
	opts := skeleton.DefaultOptions()
	return Config{
		Model:    model.DefaultConfig(),
		Provider: providers.DefaultConfig(),
		Skeleton: SkeletonConfig{
			MinThreshold:  opts.MinThreshold,
			Normalization: opts.Normalization,
		},
		Log:     logging.DefaultConfig(),
		Metrics: metrics.DefaultConfig(),
	}
}

// Load reads and validates a YAML configuration file.
//
// Arguments:
//   - path: The file to read.
//
// Returns:
//   - Config: Defaults overlaid with the file's values.
//   - error: An error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %s", path)
	}
	config, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}

// Parse decodes YAML onto Default and validates the result.
func Parse(data []byte) (Config, error) {
	config := Default()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrapf(skeleton.ErrInvalidConfig, "parsing yaml: %v", err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// Validate checks every section.
//
// Returns:
//   - error: skeleton.ErrInvalidConfig wrapped with the failing section.
func (c Config) Validate() error {
	if err := c.Model.Validate(); err != nil {
		return err
	}
	if err := c.Provider.Validate(); err != nil {
		return errors.Wrapf(skeleton.ErrInvalidConfig, "provider: %v", err)
	}
	if err := c.Log.Validate(); err != nil {
		return errors.Wrapf(skeleton.ErrInvalidConfig, "log: %v", err)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return errors.Wrap(skeleton.ErrInvalidConfig, "metrics namespace is empty")
	}
	_, err := c.SkeletonOptions()
	return err
}

// SkeletonOptions resolves the decoder options from the model's keypoint
// layout and the skeleton section.
//
// Returns:
//   - skeleton.Options: Validated options.
//   - error: skeleton.ErrInvalidConfig if the layout is unknown or the
//     options are inconsistent.
func (c Config) SkeletonOptions() (skeleton.Options, error) {
	preset, err := models.NewPreset(c.Model.Name)
	if err != nil {
		return skeleton.Options{}, err
	}

	opts := preset.Apply(skeleton.Options{
		MinThreshold:  c.Skeleton.MinThreshold,
		Topology:      append(skeleton.Topology(nil), c.Skeleton.Bones...),
		Normalization: c.Skeleton.Normalization,
		InputWidth:    c.Model.InputWidth,
		InputHeight:   c.Model.InputHeight,
	})
	if err := opts.Validate(); err != nil {
		return skeleton.Options{}, err
	}
	return opts, nil
}

// JointNames returns the joint names of the configured layout.
func (c Config) JointNames() []string {
	preset, err := models.NewPreset(c.Model.Name)
	if err != nil {
		return nil
	}
	return preset.Joints
}
