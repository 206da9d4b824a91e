// Package obslog builds the structured logger every daemon binary uses:
// JSON-formatted, level-configurable, and optionally writing to a
// rotating file instead of stderr.
package obslog

import (
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures New.
type Options struct {
	Level string // "debug", "info", "warn", "error"

	// RotateFile, if non-empty, routes output through a size/age-rotated
	// file instead of stderr.
	RotateFile    string
	MaxSizeMB     int
	MaxAgeDays    int
	MaxBackups    int
	CompressOld   bool
}

// New builds a logger per Options. The CLI surface's "-d" (debug,
// foreground, log to stderr) maps to an empty RotateFile with
// Level "debug".
func New(opts Options) *logrus.Logger {
	logger := logrus.New()

	switch opts.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if opts.RotateFile == "" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   opts.RotateFile,
			MaxSize:    orDefault(opts.MaxSizeMB, 50),
			MaxAge:     orDefault(opts.MaxAgeDays, 14),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			Compress:   opts.CompressOld,
		})
	}

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return logger
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
