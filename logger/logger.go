// Package logger - logrus setup from configuration.
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/config"
)

// New builds a logger writing to stderr and, when cfg.File is set, to that
// file as well.
//
// Arguments:
//   - cfg: Level, format and optional file.
//
// Returns:
//   - *logrus.Logger: The logger.
//   - io.Closer: Closes the log file; a no-op without one.
//   - error: On an unknown level or an unwritable file.
func New(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, errors.Wrap(err, "parsing log level")
	}
	log.SetLevel(lvl)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var closer io.Closer = nopCloser{}
	log.SetOutput(os.Stderr)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "opening log file %q", cfg.File)
		}
		log.SetOutput(io.MultiWriter(os.Stderr, f))
		closer = f
	}

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
