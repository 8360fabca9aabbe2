package dto

// BuildIndexMessage is the payload published to the index-build topic.
// The consumer owns all status transitions from here on.
type BuildIndexMessage struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}
