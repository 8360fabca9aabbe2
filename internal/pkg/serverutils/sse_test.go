package serverutils

import (
	"bufio"
	"bytes"
	"testing"

	"ai-summary-be/internal/dto"
)

func writeEvent(t *testing.T, ev dto.StreamEvent) string {
	t.Helper()
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := WriteStreamEvent(w, ev); err != nil {
		t.Fatalf("WriteStreamEvent() failed: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func TestWriteStreamEvent(t *testing.T) {
	tests := []struct {
		name string
		ev   dto.StreamEvent
		want string
	}{
		{
			name: "status event",
			ev:   dto.StatusEvent("START"),
			want: "event: status\ndata: START\n\n",
		},
		{
			name: "error event",
			ev:   dto.ErrorEvent("something broke"),
			want: "event: error\ndata: something broke\n\n",
		},
		{
			name: "single line content",
			ev:   dto.ContentEvent("hello"),
			want: "data: hello\n\n",
		},
		{
			name: "multi line content keeps every line",
			ev:   dto.ContentEvent("line one\nline two"),
			want: "data: line one\ndata: line two\n\n",
		},
		{
			name: "carriage returns normalized",
			ev:   dto.ContentEvent("a\r\nb"),
			want: "data: a\ndata: b\n\n",
		},
		{
			name: "empty content still frames",
			ev:   dto.ContentEvent(""),
			want: "data: \n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := writeEvent(t, tt.ev)
			if got != tt.want {
				t.Errorf("WriteStreamEvent() = %q, want %q", got, tt.want)
			}
		})
	}
}
