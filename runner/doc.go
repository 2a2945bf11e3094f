// Package runner implements the orchestration layer of ActionMesh.
//
// A Runner turns one natural-language request into a RequestOutcome:
//
//  1. open an execution-transport session (always closed before returning)
//  2. discover the tools it exposes and render a compact description
//  3. ask the model for a JSON action plan, using recent conversation history
//     and the page context
//  4. parse the plan, substituting a conservative fallback plan when the
//     model output cannot be salvaged
//  5. execute the plan step by step
//  6. ask the model to summarize what was done
//
// Every fatal condition is converted into a failed Outcome; nothing escapes
// Run as an error. Each Outcome carries the request's audit log.
//
// Runners hold no per-request state and are safe for concurrent use.
package runner
