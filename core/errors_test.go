package core

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestToolExecutionError_LongPayloadStaysValidUTF8(t *testing.T) {
	err := &ToolExecutionError{
		Tool: "content_items.update",
		Step: 2,
		Result: &ExecutionResult{
			IsError: true,
			Payload: map[string]any{"content": "x" + strings.Repeat("é", 400)},
		},
	}

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Contains(t, msg, `step 2: tool "content_items.update" returned an error result`)
}

func TestToolExecutionError_WrapsCallFailure(t *testing.T) {
	boom := errors.New("boom")
	err := &ToolExecutionError{Tool: "a", Step: 1, Err: boom}

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, `step 1: tool "a" failed: boom`, err.Error())
}
