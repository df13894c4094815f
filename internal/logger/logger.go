package logger

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

var log *slog.Logger

func init() {
	log = newLogger(os.Stdout, os.Getenv("DEBUG") != "")
}

// Options configures the process-wide logger.
type Options struct {
	// Debug enables debug level records.
	Debug bool
	// File, if set, receives a copy of every record and is rotated by size.
	File string
	// MaxSizeMB is the size at which File is rotated (default 10).
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept (default 3).
	MaxBackups int
}

// Setup replaces the default logger. The returned func closes the log file, if any.
func Setup(opts Options) func() error {
	debug := opts.Debug || os.Getenv("DEBUG") != ""
	if opts.File == "" {
		log = newLogger(os.Stdout, debug)
		return func() error { return nil }
	}

	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 10
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 3
	}
	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}
	log = newLogger(io.MultiWriter(os.Stdout, file), debug)
	return file.Close
}

// SetOutput sends records to w, mainly for tests.
func SetOutput(w io.Writer, debug bool) {
	log = newLogger(w, debug)
}

func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Info logs at info level.
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Debug logs at debug level.
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}
