// Package logging builds the zap loggers used across gemtrans and a small
// in-memory sink the GUI log viewer reads from.
package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a console logger writing to stderr. Verbose enables debug
// level and the development encoder.
func New(verbose bool) *zap.Logger {
	return zap.New(consoleCore(verbose, zapcore.Lock(os.Stderr)))
}

// NewBuffered returns a logger that writes to stderr and also to sink
func NewBuffered(verbose bool, sink *Sink) *zap.Logger {
	return zap.New(zapcore.NewTee(
		consoleCore(verbose, zapcore.Lock(os.Stderr)),
		consoleCore(verbose, zapcore.AddSync(sink)),
	))
}

func consoleCore(verbose bool, out zapcore.WriteSyncer) zapcore.Core {
	level := zapcore.InfoLevel
	cfg := zap.NewProductionEncoderConfig()
	if verbose {
		level = zapcore.DebugLevel
		cfg = zap.NewDevelopmentEncoderConfig()
	}
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	return zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), out, level)
}

// Sink keeps the most recent log lines in memory and notifies a listener on
// each new line
type Sink struct {
	mu       sync.Mutex
	lines    []string
	maxLines int
	onLine   func(line string)
}

// NewSink creates a sink that retains at most maxLines lines
func NewSink(maxLines int) *Sink {
	if maxLines <= 0 {
		maxLines = 1000
	}
	return &Sink{maxLines: maxLines}
}

// Write implements io.Writer. Each call may carry several lines.
func (s *Sink) Write(p []byte) (int, error) {
	var added []string
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			added = append(added, line)
		}
	}

	s.mu.Lock()
	s.lines = append(s.lines, added...)
	if len(s.lines) > s.maxLines {
		s.lines = append([]string(nil), s.lines[len(s.lines)-s.maxLines:]...)
	}
	listener := s.onLine
	s.mu.Unlock()

	if listener != nil {
		for _, line := range added {
			listener(line)
		}
	}
	return len(p), nil
}

// Lines returns the retained lines, oldest first
func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

// Clear drops all retained lines
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = s.lines[:0]
}

// Attach returns the retained lines, oldest first, and registers fn for
// every line written afterwards. Both happen under one lock, so no line is
// missed or delivered twice.
func (s *Sink) Attach(fn func(line string)) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLine = fn
	return append([]string(nil), s.lines...)
}

// OnLine registers fn to be called for every line written after the call
func (s *Sink) OnLine(fn func(line string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onLine = fn
}
