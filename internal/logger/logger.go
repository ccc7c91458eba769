// Package logger builds the logrus logger shared by the pipeline. The level
// comes from configuration; an unrecognized level falls back to info rather
// than failing the run.
package logger

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// New returns a logger at the named level. Recognized levels are debug,
// info, warning/warn, error and fatal.
func New(level string) *logrus.Logger {
	log := logrus.New()
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	case "fatal":
		log.SetLevel(logrus.FatalLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}
