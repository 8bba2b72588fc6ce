// Package logging - Logger construction from configuration.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Format selects the log line encoding.
type Format string

const (
	// FormatText writes human readable lines with full timestamps.
	FormatText Format = "text"
	// FormatJSON writes one JSON object per line.
	FormatJSON Format = "json"
)

// Config controls the logger.
type Config struct {
	// Level is a logrus level name such as "info" or "debug".
	Level string `json:"level" yaml:"level"`
	// Format is "text" or "json".
	Format Format `json:"format" yaml:"format"`
}

// DefaultConfig returns info level text logging.
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText}
}

// Validate checks the level and format names.
func (c Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Level); err != nil {
		return errors.Wrapf(err, "log level %q", c.Level)
	}
	switch Format(strings.ToLower(string(c.Format))) {
	case FormatText, FormatJSON, "":
		return nil
	default:
		return errors.Errorf("unsupported log format %q", c.Format)
	}
}

// New builds a logger writing to stderr.
//
// Arguments:
//   - config: The level and format.
//
// Returns:
//   - *logrus.Logger: The logger.
//   - error: An error if the level or format is unknown.
func New(config Config) (*logrus.Logger, error) {
	return NewWithWriter(config, os.Stderr)
}

// NewWithWriter builds a logger writing to w.
func NewWithWriter(config Config, w io.Writer) (*logrus.Logger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	level, _ := logrus.ParseLevel(config.Level)

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(level)
	if Format(strings.ToLower(string(config.Format))) == FormatJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
