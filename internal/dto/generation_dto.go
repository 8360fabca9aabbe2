package dto

// GenerationRequest describes one streaming generation call.
// Either SessionID or Query must be present; chat and lesson modes accept both.
type GenerationRequest struct {
	SessionID string `json:"session_id" validate:"required_without=Query"`
	Query     string `json:"q" validate:"required_without=SessionID"`
	Mode      string `json:"mode" validate:"required,oneof=summary lesson chat"`
	Model     string `json:"model"`
	Language  string `json:"language"`
}

type ClearChatResponse struct {
	Cleared bool `json:"cleared"`
}

// Stream event types. Status and error events terminate or annotate the
// stream; content events carry generated text fragments.
const (
	StreamEventStatus  = "status"
	StreamEventContent = "content"
	StreamEventError   = "error"
)

// StreamEvent is one unit on a generation stream, transport-agnostic.
// The controller encodes it as an SSE frame.
type StreamEvent struct {
	Type string
	Data string
}

func StatusEvent(marker string) StreamEvent {
	return StreamEvent{Type: StreamEventStatus, Data: marker}
}

func ContentEvent(fragment string) StreamEvent {
	return StreamEvent{Type: StreamEventContent, Data: fragment}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{Type: StreamEventError, Data: message}
}
