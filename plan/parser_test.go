package plan

import (
	"testing"

	"github.com/hupe1980/actionmesh/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoActions = `[
  {"tool":"content_items.list","parameters":{"page":1,"pageSize":5},"reasoning":"list first"},
  {"tool":"content_items.get","parameters":{"id":"abc"},"reasoning":"then read one"}
]`

func toolNames(actions []core.PlannedAction) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Tool
	}
	return names
}

// -------------------- Direct extraction --------------------

func TestParse_ValidJSONWithAndWithoutFence(t *testing.T) {
	inputs := map[string]string{
		"bare":          twoActions,
		"padded":        "\n\n  " + twoActions + "  \n",
		"json fence":    "Here is the plan:\n```json\n" + twoActions + "\n```\nDone.",
		"plain fence":   "```\n" + twoActions + "\n```",
		"unclosed only": "```json\n" + twoActions,
	}

	want, err := Parse(twoActions)
	require.NoError(t, err)
	require.Len(t, want.Actions, 2)

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, err := Parse(in)
			require.NoError(t, err)
			assert.Equal(t, StrategyDirect, got.Strategy)
			assert.False(t, got.Truncated)
			assert.Equal(t, want.Actions, got.Actions)
		})
	}

	assert.Equal(t, "content_items.list", want.Actions[0].Tool)
	assert.Equal(t, float64(5), want.Actions[0].Parameters["pageSize"])
	assert.Equal(t, "then read one", want.Actions[1].Reasoning)
}

func TestParse_EmptyArray(t *testing.T) {
	got, err := Parse("[]")
	require.NoError(t, err)
	assert.NotNil(t, got.Actions)
	assert.Empty(t, got.Actions)
}

func TestParse_MissingParametersBecomeEmptyMap(t *testing.T) {
	got, err := Parse(`[{"tool":"ping","reasoning":"check"}]`)
	require.NoError(t, err)
	require.Len(t, got.Actions, 1)
	assert.NotNil(t, got.Actions[0].Parameters)
	assert.Empty(t, got.Actions[0].Parameters)
}

// -------------------- Truncation recovery --------------------

func TestParse_TruncatedMidObjectKeepsCompletePrefix(t *testing.T) {
	raw := `[
  {"tool":"a.create","parameters":{"data":{"title":"x {not a brace}"}},"reasoning":"one"},
  {"tool":"b.update","parameters":{"id":"1","data":{"tags":["p","q"]}},"reasoning":"two"},
  {"tool":"c.delete","parameters":{"id":`

	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyObjectRecovery, got.Strategy)
	assert.True(t, got.Truncated)
	assert.Equal(t, []string{"a.create", "b.update"}, toolNames(got.Actions))
	assert.Equal(t, map[string]any{"title": "x {not a brace}"}, got.Actions[0].Parameters["data"])
}

func TestParse_TruncatedMidPropertyKeepsCompletePrefix(t *testing.T) {
	raw := "```json\n" + `[{"tool":"first","parameters":{},"reasoning":"r1"},{"tool":"sec`

	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, StrategyObjectRecovery, got.Strategy)
	assert.Equal(t, []string{"first"}, toolNames(got.Actions))
}

func TestParse_TruncatedAfterTrailingComma(t *testing.T) {
	raw := `[{"tool":"first","parameters":{"q":"a\"}b"},"reasoning":"r1"},
  {"tool":"second","parameters":{},"reasoning":"r2"},
`
	got, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, toolNames(got.Actions))
	assert.Equal(t, `a"}b`, got.Actions[0].Parameters["q"])
}

func TestParse_BracketRepairWhenNoObjectsFound(t *testing.T) {
	got, err := Parse(`["oops",`)
	require.Error(t, err)
	assert.Nil(t, got)

	got, err = Parse(`[ `)
	require.NoError(t, err)
	assert.Equal(t, StrategyBracketRepair, got.Strategy)
	assert.Empty(t, got.Actions)
}

func TestParse_TruncatedBeforeAnyCompleteObjectFails(t *testing.T) {
	_, err := Parse(`[{"tool":"only","parame`)
	var mErr *core.MalformedPlanError
	require.ErrorAs(t, err, &mErr)
	assert.Contains(t, mErr.Raw, `"only"`)
	assert.Error(t, mErr.Unwrap())
}

// -------------------- Failures --------------------

func TestParse_InvalidText(t *testing.T) {
	cases := []string{
		"",
		"I cannot help with that.",
		`{"tool":"not-an-array"}`,
		"null",
		`[{"tool": }]`,
	}
	for _, in := range cases {
		_, err := Parse(in)
		var mErr *core.MalformedPlanError
		assert.ErrorAs(t, err, &mErr, "input %q", in)
	}
}

func TestObjectFragments_StopsAtOuterArrayEnd(t *testing.T) {
	frags := objectFragments(`prefix [{"a":1},{"b":[{"c":2}]}] {"ignored":true}`)
	assert.Equal(t, []string{`{"a":1}`, `{"b":[{"c":2}]}`}, frags)
}

// -------------------- Fallback --------------------

func TestFallback_WithoutPage(t *testing.T) {
	actions := Fallback("")
	require.Len(t, actions, 1)
	assert.Equal(t, "content_items.list", actions[0].Tool)
	assert.Equal(t, map[string]any{"page": 1, "pageSize": 10}, actions[0].Parameters)
	assert.NotEmpty(t, actions[0].Reasoning)
}

func TestFallback_ScopedToPage(t *testing.T) {
	actions := Fallback("page-42", func(o *FallbackOptions) {
		o.Tool = "pages.items"
		o.PageParam = "parent"
	})
	require.Len(t, actions, 1)
	assert.Equal(t, "pages.items", actions[0].Tool)
	assert.Equal(t, "page-42", actions[0].Parameters["parent"])
}
