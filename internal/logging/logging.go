// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the console logger shared by all commands.
package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// Options controls console output.
type Options struct {
	NoColor bool
	Verbose bool
}

// New returns a logger that prints "<level> <message> key=value" lines to w
// without timestamps.
func New(w io.Writer, opts Options) zerolog.Logger {
	cw := zerolog.ConsoleWriter{
		Out:          w,
		NoColor:      opts.NoColor,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(cw).Level(level)
}
