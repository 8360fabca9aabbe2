package constant

// Index build lifecycle. Transitions are one-way:
// pending -> building -> (ready | failed).
const (
	IndexStatusPending  = "pending"
	IndexStatusBuilding = "building"
	IndexStatusReady    = "ready"
	IndexStatusFailed   = "failed"
	IndexStatusNotFound = "not_found"
)

// SSE status markers emitted on generation streams.
const (
	StreamStatusStart      = "START"
	StreamStatusExtracting = "EXTRACTING"
	StreamStatusCacheHit   = "CACHE_HIT"
	StreamStatusDone       = "DONE"
)

// Generation modes. The mode is part of the response cache fingerprint.
const (
	ModeSummary = "summary"
	ModeLesson  = "lesson"
	ModeChat    = "chat"
)

// Session history statuses.
const (
	HistoryStatusProcessing = "processing"
	HistoryStatusReady      = "ready"
	HistoryStatusEmpty      = "empty"
	HistoryStatusFailed     = "failed"
)
