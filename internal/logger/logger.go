package logger

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	logLevelFlag = "log-level"
	logFileFlag  = "log-file"
	logDevFlag   = "log-dev"
)

// NewFlags creates the logging flags.
func NewFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    logLevelFlag,
			Value:   "info",
			Usage:   "log level: debug, info, warn, error",
			EnvVars: []string{"LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    logFileFlag,
			Usage:   "write logs to this file instead of stderr",
			EnvVars: []string{"LOG_FILE"},
		},
		&cli.BoolFlag{
			Name:    logDevFlag,
			Usage:   "human readable console logs",
			EnvVars: []string{"LOG_DEV"},
		},
	}
}

// Options is the resolved logging configuration.
type Options struct {
	Level       string
	File        string
	Development bool
}

// OptionsFromContext reads the logging flags; fallbackFile is used when no file was set.
func OptionsFromContext(c *cli.Context, fallbackFile string) Options {
	file := c.String(logFileFlag)
	if file == "" {
		file = fallbackFile
	}
	return Options{
		Level:       c.String(logLevelFlag),
		File:        file,
		Development: c.Bool(logDevFlag),
	}
}

// NewLogger builds a zap logger and returns it with a flusher to defer.
func NewLogger(opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	}

	l, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}
	flusher := func() {
		_ = l.Sync()
	}
	return l, flusher, nil
}
