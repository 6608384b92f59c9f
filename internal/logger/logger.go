// Package logger configures the process wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance
	Log zerolog.Logger
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	// The terminal belongs to the TUI, so nothing is written until Setup
	// picks a destination.
	Log = zerolog.New(io.Discard).With().Timestamp().Logger()
}

// Output returns the writer for a log destination: "" discards,
// "stderr" and "stdout" are the standard streams, anything else is a
// rotated file.
func Output(dest string) io.Writer {
	switch dest {
	case "":
		return io.Discard
	case "stderr":
		return zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}
	case "stdout":
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "2006-01-02 15:04:05"}
	}
	return &lumberjack.Logger{
		Filename:   dest,
		MaxSize:    10,
		MaxAge:     14,
		MaxBackups: 3,
	}
}

// Setup points the global logger at dest and sets its level.
func Setup(levelStr, dest string) {
	Log = zerolog.New(Output(dest)).With().Timestamp().Logger()
	SetLevel(levelStr)
}

// SetLevel sets the log level
func SetLevel(levelStr string) {
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil || levelStr == "" {
		if levelStr != "" {
			Log.Warn().Str("level", levelStr).Msg("invalid log level, defaulting to info")
		}
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	Log = Log.Level(level)
}
