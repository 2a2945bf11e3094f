package runner

import (
	"errors"
	"fmt"

	"github.com/hupe1980/actionmesh/core"
	"github.com/hupe1980/actionmesh/internal/util"
)

const maxDetailsChars = 500

// describeError maps a fatal error onto a human-readable message and a short
// diagnostic detail.
func describeError(err error) (string, string) {
	var (
		connErr     *core.TransportConnectError
		rateErr     *core.TransientUpstreamError
		notFoundErr *core.ToolNotFoundError
		execErr     *core.ToolExecutionError
	)

	var msg string
	switch {
	case errors.Is(err, ErrEmptyPrompt):
		msg = "A prompt is required"
	case errors.Is(err, core.ErrInvalidRequest):
		msg = "The request could not be sent to the language model"
	case errors.As(err, &connErr):
		msg = "Could not connect to the tool service"
	case errors.As(err, &rateErr):
		msg = "The language model is rate limited; please try again shortly"
	case errors.As(err, &notFoundErr):
		msg = fmt.Sprintf("The plan referenced an unknown tool: %s", notFoundErr.Tool)
	case errors.As(err, &execErr):
		msg = fmt.Sprintf("Action %d (%s) failed", execErr.Step, execErr.Tool)
	default:
		msg = "The request could not be completed"
	}

	details := err.Error()
	if len(details) > maxDetailsChars {
		details = util.TruncateBytes(details, maxDetailsChars) + "..."
	}
	return msg, details
}
