// Package plan turns raw model output into an ordered list of planned actions.
//
// Model output is unreliable: it may be wrapped in a fenced code block, cut off
// at the token ceiling, or end with a dangling comma. Parse applies an ordered
// chain of pure strategies, each a fallback for the previous one:
//
//  1. direct: extract the fenced block (or the trimmed text) and decode it
//  2. object recovery: on suspected truncation, keep every complete top-level
//     {...} element of the array, in order, and decode those
//  3. bracket repair: strip trailing commas/whitespace and close the array
//
// Recovery may only ever yield a prefix of the intended plan.
package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/actionmesh/core"
)

// Strategy names the parsing strategy that produced a plan.
type Strategy string

const (
	// StrategyDirect decoded the extracted text as-is.
	StrategyDirect Strategy = "direct"
	// StrategyObjectRecovery rebuilt the array from complete object fragments.
	StrategyObjectRecovery Strategy = "object_recovery"
	// StrategyBracketRepair closed a truncated array.
	StrategyBracketRepair Strategy = "bracket_repair"
)

// Result is a successfully parsed plan.
type Result struct {
	Actions  []core.PlannedAction
	Strategy Strategy
	// Truncated reports that the candidate text looked cut off.
	Truncated bool
}

var (
	fencedBlockRE = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
	openFenceRE   = regexp.MustCompile("^```[a-zA-Z]*\\s*")
)

var errNotArray = errors.New("plan is not a JSON array")

// Parse converts raw model text into planned actions. It returns a
// *core.MalformedPlanError carrying the error of the final attempt when every
// strategy fails.
func Parse(raw string) (*Result, error) {
	candidate := extractCandidate(raw)
	truncated := looksTruncated(candidate)

	var lastErr error
	if !truncated {
		actions, err := decode(candidate)
		if err == nil {
			return &Result{Actions: actions, Strategy: StrategyDirect}, nil
		}
		lastErr = err
	} else {
		fragments := objectFragments(candidate)
		if len(fragments) > 0 {
			actions, err := decode("[" + strings.Join(fragments, ",") + "]")
			if err == nil {
				return &Result{Actions: actions, Strategy: StrategyObjectRecovery, Truncated: true}, nil
			}
			lastErr = err
		} else {
			lastErr = errors.New("no complete action objects in truncated plan")
		}
	}

	if truncated {
		repaired := strings.TrimRight(candidate, ", \t\r\n") + "]"
		actions, err := decode(repaired)
		if err == nil {
			return &Result{Actions: actions, Strategy: StrategyBracketRepair, Truncated: true}, nil
		}
		lastErr = err
	}

	return nil, &core.MalformedPlanError{Raw: raw, Err: lastErr}
}

// extractCandidate returns the inner content of the first fenced block or the
// trimmed text. An opening fence that was never closed (truncated output) is
// stripped.
func extractCandidate(raw string) string {
	if m := fencedBlockRE.FindStringSubmatch(raw); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	text := strings.TrimSpace(raw)
	if loc := openFenceRE.FindStringIndex(text); loc != nil {
		text = strings.TrimSpace(text[loc[1]:])
	}
	return text
}

// looksTruncated reports an opened array that was never closed.
func looksTruncated(candidate string) bool {
	return strings.Contains(candidate, "[") && !strings.HasSuffix(candidate, "]")
}

// decode unmarshals a JSON array of actions and normalizes nil parameters.
func decode(text string) ([]core.PlannedAction, error) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "[") {
		return nil, errNotArray
	}
	var actions []core.PlannedAction
	if err := json.Unmarshal([]byte(trimmed), &actions); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if actions == nil {
		actions = []core.PlannedAction{}
	}
	for i := range actions {
		if actions[i].Parameters == nil {
			actions[i].Parameters = map[string]any{}
		}
	}
	return actions, nil
}

// objectFragments returns every complete, balanced {...} element that appears
// directly inside the first array of text, in source order. Braces inside JSON
// strings are ignored. The incomplete trailing element, if any, is dropped.
func objectFragments(text string) []string {
	start := strings.Index(text, "[")
	if start < 0 {
		return nil
	}

	var (
		fragments []string
		depth     int
		objStart  = -1
		inString  bool
		escaped   bool
	)

	for i := start + 1; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			if depth == 0 && c == '{' {
				objStart = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				// closing bracket of the outer array
				return fragments
			}
			depth--
			if depth == 0 && c == '}' && objStart >= 0 {
				fragments = append(fragments, text[objStart:i+1])
				objStart = -1
			}
		}
	}
	return fragments
}
