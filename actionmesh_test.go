package actionmesh

import (
	"context"
	"testing"
	"time"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/internal/testutil"
	"github.com/hupe1980/actionmesh/model"
	"github.com/hupe1980/actionmesh/runner"
	"github.com/hupe1980/actionmesh/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listPlan = `[{"tool":"content_items.list","parameters":{"page":1,"pageSize":5},"reasoning":"list"}]`

func newTransport() *testutil.FakeTransport {
	return testutil.NewFakeTransport().
		Tool("content_items.list", "List content items", nil).
		Result("content_items.list", map[string]any{"content": "ok"})
}

func TestActionMesh_Run(t *testing.T) {
	mock := model.NewMockProvider("mock-1").
		AddResponse(listPlan, model.StopReasonEndTurn).
		AddResponse("Listed 5 items.", model.StopReasonEndTurn)

	am := New(mock, newTransport().Connector())
	out := am.Run(context.Background(), runnerRequest("list the top 5 items"))

	require.True(t, out.Success, out.Error)
	assert.Equal(t, "Listed 5 items.", out.Response)
	assert.Equal(t, "mock-1", am.ModelInfo().Name)
}

func TestActionMesh_ChatKeepsHistory(t *testing.T) {
	mock := model.NewMockProvider("m").
		AddResponse(listPlan, model.StopReasonEndTurn).
		AddResponse("First answer.", model.StopReasonEndTurn).
		AddResponse("[]", model.StopReasonEndTurn).
		AddResponse("Nothing else to do.", model.StopReasonEndTurn)
	store := session.NewInMemoryStore()
	fixed := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	am := New(mock, newTransport().Connector(), func(o *Options) {
		o.HistoryStore = store
		o.Now = func() time.Time { return fixed }
	})

	_, err := am.Chat(context.Background(), "c1", "list items", "")
	require.NoError(t, err)
	out, err := am.Chat(context.Background(), "c1", "anything else?", "page-1")
	require.NoError(t, err)
	require.True(t, out.Success, out.Error)

	h, _ := store.History("c1")
	require.Len(t, h, 4)
	assert.Equal(t, core.RoleUser, h[0].Role)
	assert.Equal(t, "First answer.", h[1].Content)
	assert.Equal(t, "anything else?", h[2].Content)
	assert.Equal(t, fixed, h[3].Timestamp)

	second := mock.Requests()[2]
	require.Len(t, second.Messages, 3)
	assert.Equal(t, "list items", second.Messages[0].Content)
	assert.Contains(t, second.Messages[2].Content, "Current page ID: page-1")

	require.NoError(t, am.ResetConversation("c1"))
	h, _ = store.History("c1")
	assert.Empty(t, h)
}

func TestActionMesh_ChatRecordsFailures(t *testing.T) {
	mock := model.NewMockProvider("m").AddResponse(`[{"tool":"ghost","parameters":{},"reasoning":""}]`, model.StopReasonEndTurn)
	store := session.NewInMemoryStore()
	am := New(mock, newTransport().Connector(), func(o *Options) { o.HistoryStore = store })

	out, err := am.Chat(context.Background(), "c", "haunt", "")
	require.NoError(t, err)
	assert.False(t, out.Success)

	h, _ := store.History("c")
	require.Len(t, h, 2)
	assert.Contains(t, h[1].Content, "Error: ")
}

func runnerRequest(prompt string) runner.Request { return runner.Request{Prompt: prompt} }
