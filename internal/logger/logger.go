package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New creates a configured logrus logger. Development gets human readable
// text, everything else JSON.
func New(development bool, level string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	if development {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if lvl < logrus.DebugLevel {
			lvl = logrus.DebugLevel
		}
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	log.SetLevel(lvl)
	return log
}

// Discard returns a logger that writes nowhere. Used by tests and tools.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
