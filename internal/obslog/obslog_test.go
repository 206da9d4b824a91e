package obslog

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewDefaultsToInfoAndStderr(t *testing.T) {
	logger := New(Options{})
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("expected info level by default, got %v", logger.GetLevel())
	}
	if logger.Out != os.Stderr {
		t.Errorf("expected stderr output with no RotateFile set")
	}
}

func TestNewHonorsDebugLevel(t *testing.T) {
	logger := New(Options{Level: "debug"})
	if logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", logger.GetLevel())
	}
}

func TestNewRotatingFileDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	logger := New(Options{RotateFile: dir + "/helmsmand.log"})
	logger.Info("hello")
}
