package entity

// ChatTurn is one utterance in a session's conversation memory.
type ChatTurn struct {
	Role    string // "user" or "assistant"
	Content string
}
