package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/actionmesh/logging"
)

// AuditLog is the ordered, human-readable narrative of a single request. Lines
// are only ever appended; they are never reordered or filtered. Every line is
// mirrored to the structured logger at debug level.
//
// A nil *AuditLog is valid and discards everything, so components can record
// unconditionally.
type AuditLog struct {
	mu      sync.Mutex
	entries []string
	logger  logging.Logger
}

// NewAuditLog creates an empty audit log mirroring to logger (nil => no mirror).
func NewAuditLog(logger logging.Logger) *AuditLog {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &AuditLog{logger: logger}
}

// Add appends a formatted line.
func (l *AuditLog) Add(format string, args ...any) {
	if l == nil {
		return
	}
	line := format
	if len(args) > 0 {
		line = fmt.Sprintf(format, args...)
	}
	l.mu.Lock()
	l.entries = append(l.entries, line)
	l.mu.Unlock()
	l.logger.Debug("audit", "line", line)
}

// Entries returns a copy of all lines in insertion order.
func (l *AuditLog) Entries() []string {
	if l == nil {
		return []string{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded lines.
func (l *AuditLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

type auditLogKey struct{}

// WithAuditLog attaches an audit log to ctx so collaborators deeper in the call
// chain (the model gateway's retry loop) can record into it.
func WithAuditLog(ctx context.Context, l *AuditLog) context.Context {
	return context.WithValue(ctx, auditLogKey{}, l)
}

// AuditLogFromContext returns the audit log attached to ctx or nil.
func AuditLogFromContext(ctx context.Context) *AuditLog {
	l, _ := ctx.Value(auditLogKey{}).(*AuditLog)
	return l
}
