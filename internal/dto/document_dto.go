package dto

import "ai-summary-be/internal/entity"

type UploadResponse struct {
	SessionID  string `json:"session_id"`
	Characters int    `json:"characters"` // always 0: extraction runs in the background
	Pages      int    `json:"pages"`      // likewise, filled into history once extracted
	FileSize   int    `json:"file_size"`
}

type DeleteSessionResponse struct {
	Removed bool `json:"removed"`
}

type IndexStatusResponse struct {
	Status string `json:"status"`
	Chunks int    `json:"chunks,omitempty"`
	Error  string `json:"error,omitempty"`
}

type ModelsResponse struct {
	Default string   `json:"default"`
	Models  []string `json:"models"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type ListSessionsResponse struct {
	Sessions []entity.SessionHistory `json:"sessions"`
}
