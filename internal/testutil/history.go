package testutil

import (
	"strconv"
	"time"

	"github.com/hupe1980/actionmesh/core"
)

// HistoryBuilder helps construct conversation histories with fluent chaining.
// Example:
//
//	h := NewHistoryBuilder().User("hi").Assistant("hello").Build()
type HistoryBuilder struct {
	msgs []core.ConversationMessage
	now  time.Time
}

// NewHistoryBuilder creates an empty builder. Timestamps start at a fixed
// instant and advance one second per message.
func NewHistoryBuilder() *HistoryBuilder {
	return &HistoryBuilder{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// User appends a user message (chainable).
func (b *HistoryBuilder) User(content string) *HistoryBuilder {
	return b.add(core.RoleUser, content)
}

// Assistant appends an assistant message (chainable).
func (b *HistoryBuilder) Assistant(content string) *HistoryBuilder {
	return b.add(core.RoleAssistant, content)
}

// Turns appends n alternating user/assistant pairs numbered from 1 (chainable).
func (b *HistoryBuilder) Turns(n int) *HistoryBuilder {
	for i := 1; i <= n; i++ {
		b.User("question " + strconv.Itoa(i)).Assistant("answer " + strconv.Itoa(i))
	}
	return b
}

// Build returns the accumulated history.
func (b *HistoryBuilder) Build() []core.ConversationMessage {
	out := make([]core.ConversationMessage, len(b.msgs))
	copy(out, b.msgs)
	return out
}

func (b *HistoryBuilder) add(role core.Role, content string) *HistoryBuilder {
	b.msgs = append(b.msgs, core.ConversationMessage{Role: role, Content: content, Timestamp: b.now})
	b.now = b.now.Add(time.Second)
	return b
}
