package tool

import (
	"strings"

	"github.com/hupe1980/actionmesh/internal/util"
)

// convention maps a tool-name fragment to a plausible parameter shape.
type convention struct {
	match string
	props map[string]string
}

// conventions are checked in order; the first fragment contained in the
// lower-cased tool name wins. More specific verbs come first.
var conventions = []convention{
	{match: "list", props: map[string]string{"page": "integer", "pageSize": "integer", "filters": "object", "sort": "string"}},
	{match: "search", props: map[string]string{"query": "string"}},
	{match: "create", props: map[string]string{"data": "object"}},
	{match: "update", props: map[string]string{"id": "string", "data": "object"}},
	{match: "delete", props: map[string]string{"id": "string"}},
	{match: "get", props: map[string]string{"id": "string"}},
}

// InferSchema returns a best-effort parameter schema for a tool that exposes
// none, based on common naming conventions. Unknown names yield an empty
// object schema. Inferred schemas are hints, not contracts.
func InferSchema(name string) map[string]any {
	lower := strings.ToLower(name)
	for _, c := range conventions {
		if strings.Contains(lower, c.match) {
			return util.ObjectSchema(c.props)
		}
	}
	return util.ObjectSchema(nil)
}
