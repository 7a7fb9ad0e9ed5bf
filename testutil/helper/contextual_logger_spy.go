package helper

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/lending-analytics-go/lending"
)

// ContextualLoggerSpy implements lending.ContextualLogger and records every message with its context.
type ContextualLoggerSpy struct {
	entries []SpyLogEntry
	mu      sync.Mutex
}

// SpyLogEntry represents one recorded log call.
type SpyLogEntry struct {
	Level   string
	Message string
	Args    []any
	Ctx     context.Context
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.record(ctx, "error", msg, args)
}

// GetEntries returns a copy of all recorded entries.
func (s *ContextualLoggerSpy) GetEntries() []SpyLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]SpyLogEntry(nil), s.entries...)
}

// HasEntry checks if a message was logged at the given level ("debug", "info", "warn", "error").
func (s *ContextualLoggerSpy) HasEntry(level, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}

	return false
}

func (s *ContextualLoggerSpy) record(ctx context.Context, level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, SpyLogEntry{Level: level, Message: msg, Args: append([]any(nil), args...), Ctx: ctx})
}

// Ensure ContextualLoggerSpy implements lending.ContextualLogger.
var _ lending.ContextualLogger = (*ContextualLoggerSpy)(nil)
