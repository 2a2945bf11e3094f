package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	t.Run("plain text is returned untouched", func(t *testing.T) {
		out, err := RenderTemplate("no markers here", nil)
		require.NoError(t, err)
		assert.Equal(t, "no markers here", out)
	})

	t.Run("fields", func(t *testing.T) {
		out, err := RenderTemplate(`Tools:
{{.Tools}}`, map[string]any{"Tools": "- a\n- b"})
		require.NoError(t, err)
		assert.Equal(t, "Tools:\n- a\n- b", out)
	})

	t.Run("conditional", func(t *testing.T) {
		tmpl := `q{{if .PageID}} page={{.PageID}}{{end}}`
		out, err := RenderTemplate(tmpl, map[string]any{"PageID": ""})
		require.NoError(t, err)
		assert.Equal(t, "q", out)

		out, err = RenderTemplate(tmpl, map[string]any{"PageID": "p1"})
		require.NoError(t, err)
		assert.Equal(t, "q page=p1", out)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := RenderTemplate("{{.Broken", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse template")
	})
}

func TestSchemaHelpers(t *testing.T) {
	schema := ObjectSchema(map[string]string{"pageSize": "integer", "page": "integer"})
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []string{"page", "pageSize"}, PropertyKeys(schema))

	required := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"alpha": map[string]any{}, "beta": map[string]any{}, "pageId": map[string]any{}, "zeta": map[string]any{},
		},
		"required": []any{"zeta", "missing", "pageId"},
	}
	assert.Equal(t, []string{"zeta", "pageId", "alpha", "beta"}, PropertyKeys(required))

	assert.Nil(t, PropertyKeys(nil))
	assert.Nil(t, PropertyKeys(map[string]any{"type": "object"}))
	assert.Nil(t, PropertyKeys(ObjectSchema(nil)))
}

func TestTruncateBytes(t *testing.T) {
	assert.Equal(t, "abc", TruncateBytes("abc", 5))
	assert.Equal(t, "ab", TruncateBytes("abc", 2))
	assert.Equal(t, "", TruncateBytes("abc", 0))
	// "é" is two bytes; a cut inside it backs off to the rune start
	assert.Equal(t, "x", TruncateBytes("xé", 2))
	assert.Equal(t, "xé", TruncateBytes("xé", 3))
}
