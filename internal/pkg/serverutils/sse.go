package serverutils

import (
	"bufio"
	"strings"

	"ai-summary-be/internal/dto"
)

// WriteStreamEvent encodes one stream event as an SSE frame. Content
// fragments are split per line so embedded newlines survive the framing;
// status and error events carry an explicit event name.
func WriteStreamEvent(w *bufio.Writer, ev dto.StreamEvent) error {
	switch ev.Type {
	case dto.StreamEventStatus:
		_, err := w.WriteString("event: status\ndata: " + ev.Data + "\n\n")
		return err
	case dto.StreamEventError:
		_, err := w.WriteString("event: error\ndata: " + sanitize(ev.Data) + "\n\n")
		return err
	default:
		return writeContent(w, ev.Data)
	}
}

func writeContent(w *bufio.Writer, fragment string) error {
	if fragment == "" {
		_, err := w.WriteString("data: \n\n")
		return err
	}
	var sb strings.Builder
	for _, line := range strings.Split(sanitize(fragment), "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	_, err := w.WriteString(sb.String())
	return err
}

// sanitize normalizes line endings; a bare \r inside a data line would
// corrupt the SSE framing.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
