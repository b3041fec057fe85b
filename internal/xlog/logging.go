// Package xlog wraps logrus with the level-name parsing and formatter
// selection conventions the CLI driver needs. Nothing in the core
// analysis packages imports xlog; a logger is only ever handed in
// explicitly at the driver boundary, never reached for via a
// package-level default.
package xlog

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level names the supported log levels, parsed case-insensitively.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a flag/config string to a logrus level, defaulting to
// info on an empty string and erroring on anything unrecognized.
func ParseLevel(level string) (logrus.Level, error) {
	switch Level(strings.ToLower(level)) {
	case LevelDebug:
		return logrus.DebugLevel, nil
	case "", LevelInfo:
		return logrus.InfoLevel, nil
	case LevelWarn:
		return logrus.WarnLevel, nil
	case LevelError:
		return logrus.ErrorLevel, nil
	default:
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

// New builds a logger at the given level and format ("text" or "json";
// anything else falls back to json). The CLI always asks for "text".
func New(level, format string) (*logrus.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetLevel(lvl)
	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	return l, nil
}

// LogBodyScanWarnings reports one warning-level entry per recoverable
// per-function decode anomaly. The core itself never logs; it only
// records these as BodyScanWarning entries on the call graph.
func LogBodyScanWarnings(log *logrus.Logger, functionIndex uint32, offset int, message string) {
	log.WithFields(logrus.Fields{
		"function_index": functionIndex,
		"offset":         offset,
	}).Warn(message)
}
