package entity

import "time"

// SessionHistory is one row of the upload journal shown on the frontend.
type SessionHistory struct {
	SessionID      string    `json:"session_id"`
	Filename       string    `json:"filename"`
	UploadedAt     time.Time `json:"uploaded_at"`
	Status         string    `json:"status"`
	Model          string    `json:"model,omitempty"`
	Characters     int       `json:"characters"`
	Words          int       `json:"words"`
	Pages          int       `json:"pages"`
	ReadingMinutes int       `json:"reading_minutes"`
	FileSize       int       `json:"file_size"`
}
