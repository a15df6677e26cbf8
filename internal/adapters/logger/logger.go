// Package logger implements a logging adapter using log/slog.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/pkgdeck/internal/core/domain"
	"go.trai.ch/pkgdeck/internal/core/ports"
)

// messager is implemented by zerr.Error.
type messager interface {
	Message() string
}

// metadataer is implemented by zerr.Error.
type metadataer interface {
	Metadata() map[string]any
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	level    slog.Level
	jsonMode bool
	output   io.Writer
}

// New creates a new Logger writing pretty output to stderr.
func New() ports.Logger {
	l := &Logger{output: os.Stderr, level: slog.LevelInfo}
	l.rebuild()
	return l
}

func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: l.level}
	if l.jsonMode {
		l.logger = slog.New(slog.NewJSONHandler(l.output, opts))
		return
	}
	l.logger = slog.New(NewConsoleHandler(l.output, opts))
}

// SetOutput updates the output destination. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.rebuild()
}

// SetVerbose enables debug records.
func (l *Logger) SetVerbose(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.level = slog.LevelInfo
	if enable {
		l.level = slog.LevelDebug
	}
	l.rebuild()
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs an error with its cause chain and metadata.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	kind := domain.KindOf(err)
	if l.jsonMode {
		l.logger.Error("operation failed", "error", err.Error(), "kind", kind.String(), "meta", collectMetadata(err))
		return
	}

	messages := causeChain(err)
	lines := []string{"Error: " + messages[0]}
	if kind != domain.KindUnknown {
		lines[0] += " [" + kind.String() + "]"
	}
	for i, msg := range messages[1:] {
		if i == 0 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    "+"→ "+msg)
	}
	if meta := collectMetadata(err); len(meta) > 0 {
		keys := slices.Sorted(maps.Keys(meta))
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, meta[k]))
		}
		lines = append(lines, "", "  "+strings.Join(parts, " "))
	}

	l.logger.Error(strings.Join(lines, "\n"))
}

// causeChain walks zerr messages until a plain error ends the chain.
// Empty messages from metadata-only wraps are skipped.
func causeChain(err error) []string {
	var messages []string
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			if _, isKind := current.(*domain.Error); !isKind {
				messages = append(messages, current.Error())
				break
			}
			current = errors.Unwrap(current)
			continue
		}
		if msg := m.Message(); msg != "" {
			messages = append(messages, msg)
		}
		current = errors.Unwrap(current)
	}
	if len(messages) == 0 {
		messages = append(messages, err.Error())
	}
	return messages
}

func collectMetadata(err error) map[string]any {
	meta := map[string]any{}
	for current := err; current != nil; current = errors.Unwrap(current) {
		md, ok := current.(metadataer)
		if !ok {
			continue
		}
		for k, v := range md.Metadata() {
			if _, seen := meta[k]; !seen {
				meta[k] = v
			}
		}
	}
	return meta
}
