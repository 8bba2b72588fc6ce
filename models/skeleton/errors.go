// Package skeleton - Heatmap decoding for single-person pose estimation models.
package skeleton

import "github.com/pkg/errors"

var (
	// ErrInvalidConfig is returned when decoder options are inconsistent.
	ErrInvalidConfig = errors.New("invalid skeleton configuration")
	// ErrMissingHeatmap is returned when the model outputs carry no heatmap.
	ErrMissingHeatmap = errors.New("heatmap output is missing")
	// ErrInvalidOutput is returned when the heatmap output has the wrong dtype or rank.
	ErrInvalidOutput = errors.New("heatmap output is invalid")
	// ErrUnknownDimensions is returned when decoding without the original image size.
	ErrUnknownDimensions = errors.New("original image dimensions are unknown")
)
