package core

// HistoryStore persists conversation histories on behalf of a caller. The
// orchestrator itself never persists history; callers that keep multi-turn
// conversations (the interactive CLI, an embedding application) own a store
// and pass the accumulated history with each request.
type HistoryStore interface {
	// History returns a copy of the conversation stored under id. Unknown ids
	// yield an empty history.
	History(id string) ([]ConversationMessage, error)
	// Append adds messages to the conversation stored under id.
	Append(id string, msgs ...ConversationMessage) error
	// Reset deletes the conversation stored under id.
	Reset(id string) error
}
