//
// Copyright (c) 2026 BCN3D Technologies
//

package main

import (
	"io"

	"github.com/rs/zerolog"
)

type Verbosity int

const (
	VerbosityWarning = Verbosity(iota)
	VerbosityNotice
	VerbosityInfo
	VerbosityDebug
)

var verbosityLevel = map[Verbosity]zerolog.Level{
	VerbosityWarning: zerolog.WarnLevel,
	VerbosityNotice:  zerolog.InfoLevel,
	VerbosityInfo:    zerolog.InfoLevel,
	VerbosityDebug:   zerolog.DebugLevel,
}

// Level maps a -v count to a log level
func (verbosity Verbosity) Level() zerolog.Level {
	if verbosity > VerbosityDebug {
		return zerolog.TraceLevel
	}

	level, ok := verbosityLevel[verbosity]
	if !ok {
		level = zerolog.WarnLevel
	}

	return level
}

var logger = zerolog.Nop()

// NewLogger creates a console logger for the given -v count
func NewLogger(output io.Writer, verbosity Verbosity) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: output, NoColor: true, PartsExclude: []string{zerolog.TimestampFieldName}}

	return zerolog.New(console).Level(verbosity.Level())
}

// TraceVerbosef logs a formatted message when running at least at the
// given verbosity
func TraceVerbosef(verbosity Verbosity, format string, args ...interface{}) {
	if Verbosity(param.verbose) < verbosity {
		return
	}

	logger.WithLevel(verbosity.Level()).Msgf(format, args...)
}
