package tool

import (
	"fmt"
	"strings"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/internal/util"
)

const (
	// DefaultMaxTools caps the number of tools rendered by DescribeCompact.
	DefaultMaxTools = 20
	// DefaultMaxChars caps the length of the DescribeCompact output.
	DefaultMaxChars = 2000

	descriptionChars = 80
	paramHints       = 5
	ellipsis         = "..."
)

// DescribeCompact renders tools for inclusion in a prompt. At most maxTools
// entries are rendered, each as the name, the first 80 characters of the
// description and up to 5 parameter names. Omitted tools are counted and the
// whole text is cut to maxChars with an ellipsis. Non-positive caps select the
// defaults. The output depends only on the arguments.
func DescribeCompact(tools []core.ToolDescriptor, maxTools, maxChars int) string {
	if maxTools <= 0 {
		maxTools = DefaultMaxTools
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	shown := tools
	if len(shown) > maxTools {
		shown = shown[:maxTools]
	}

	var b strings.Builder
	for i, t := range shown {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(t.Name)
		if d := truncateRunes(strings.Join(strings.Fields(t.Description), " "), descriptionChars); d != "" {
			b.WriteString(": ")
			b.WriteString(d)
		}
		if keys := util.PropertyKeys(t.Schema); len(keys) > 0 {
			if len(keys) > paramHints {
				keys = keys[:paramHints]
			}
			fmt.Fprintf(&b, " (params: %s)", strings.Join(keys, ", "))
		}
	}
	if omitted := len(tools) - len(shown); omitted > 0 {
		fmt.Fprintf(&b, "\n... and %d more tools", omitted)
	}

	text := b.String()
	if len(text) <= maxChars {
		return text
	}
	if maxChars <= len(ellipsis) {
		return util.TruncateBytes(text, maxChars)
	}
	return util.TruncateBytes(text, maxChars-len(ellipsis)) + ellipsis
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
