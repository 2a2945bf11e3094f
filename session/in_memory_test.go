package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/hupe1980/actionmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(role core.Role, content string) core.ConversationMessage {
	return core.ConversationMessage{Role: role, Content: content}
}

func TestInMemoryStore_AppendAndHistory(t *testing.T) {
	s := NewInMemoryStore()

	h, err := s.History("unknown")
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, s.Append("c1", msg(core.RoleUser, "hi"), msg(core.RoleAssistant, "hello")))
	require.NoError(t, s.Append("c1", msg(core.RoleUser, "again")))

	h, err = s.History("c1")
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, "hi", h[0].Content)
	assert.Equal(t, "again", h[2].Content)

	h[0].Content = "mutated"
	again, _ := s.History("c1")
	assert.Equal(t, "hi", again[0].Content, "readers receive copies")
}

func TestInMemoryStore_MaxMessagesDropsOldest(t *testing.T) {
	s := NewInMemoryStore(func(o *Options) { o.MaxMessages = 2 })
	require.NoError(t, s.Append("c", msg(core.RoleUser, "1"), msg(core.RoleAssistant, "2"), msg(core.RoleUser, "3")))

	h, _ := s.History("c")
	require.Len(t, h, 2)
	assert.Equal(t, "2", h[0].Content)
	assert.Equal(t, "3", h[1].Content)
}

func TestInMemoryStore_Reset(t *testing.T) {
	s := NewInMemoryStore()
	require.NoError(t, s.Append("c", msg(core.RoleUser, "x")))
	assert.Equal(t, 1, s.Len())
	require.NoError(t, s.Reset("c"))
	assert.Equal(t, 0, s.Len())
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	s := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append("c", msg(core.RoleUser, fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()
	h, _ := s.History("c")
	assert.Len(t, h, 50)
}
