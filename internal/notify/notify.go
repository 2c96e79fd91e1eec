package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Sink receives the user-visible outcome of every flow
type Sink interface {
	Success(message string)
	Failure(message string)
}

// Terminal prints outcomes as single lines to w
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTerminal creates a sink writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Success(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "✓ %s\n", message)
}

func (t *Terminal) Failure(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "✗ %s\n", message)
}

// Log forwards outcomes to a structured logger
type Log struct {
	Logger *slog.Logger
}

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l Log) Success(message string) {
	l.logger().Info(message, "outcome", "success")
}

func (l Log) Failure(message string) {
	l.logger().Error(message, "outcome", "failure")
}

// Multi fans every outcome out to several sinks
type Multi []Sink

func (m Multi) Success(message string) {
	for _, s := range m {
		s.Success(message)
	}
}

func (m Multi) Failure(message string) {
	for _, s := range m {
		s.Failure(message)
	}
}

// Discard drops every outcome
var Discard Sink = discard{}

type discard struct{}

func (discard) Success(string) {}
func (discard) Failure(string) {}
