// Package core provides the foundational domain types shared by every
// ActionMesh component. It defines:
//
//   - ConversationMessage (caller-owned multi-turn history)
//   - ToolDescriptor (a discovered remote tool and its parameter schema)
//   - PlannedAction (one model-proposed step of an execution plan)
//   - ExecutionResult (the opaque outcome of invoking a tool)
//   - AuditLog (the ordered, human-readable narrative of one request)
//   - the error taxonomy used across the gateway, parser, executor and runner
//
// Every value in this package is created fresh per request. Nothing here is
// shared across requests and nothing is persisted.
package core
