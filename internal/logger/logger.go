// Package logger provides a wrapper around logrus for structured logging.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the base logger
type Options struct {
	Level  string
	Format string // json, text or empty to pick by ENVIRONMENT
	File   FileOptions
}

// FileOptions configures the optional rotating file sink
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLogger creates a new configured logger instance. Output goes to stderr so that
// rendered reports on stdout stay machine readable.
func NewLogger(opts Options) *logrus.Logger {
	logger := logrus.New()

	var out io.Writer = os.Stderr
	if opts.File.Path != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    defaultInt(opts.File.MaxSizeMB, 50),
			MaxBackups: defaultInt(opts.File.MaxBackups, 5),
			MaxAge:     defaultInt(opts.File.MaxAgeDays, 14),
			Compress:   opts.File.Compress,
		})
	}
	logger.SetOutput(out)

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', defaulting to info", opts.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.SetFormatter(formatter(opts.Format, opts.File.Path != ""))
	return logger
}

func formatter(format string, toFile bool) logrus.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return &logrus.JSONFormatter{}
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true, DisableColors: toFile}
	}
	if os.Getenv("ENVIRONMENT") == "production" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   !toFile,
	}
}

// Discard returns a logger that drops everything, for tests and library defaults
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
