package entity

// IndexStatus tracks the background index build for a session.
// Mutated only by the indexer; everyone else polls it.
type IndexStatus struct {
	SessionID string
	Status    string // constant.IndexStatusPending | Building | Ready | Failed
	Chunks    int    // set when Status is ready
	Error     string // set when Status is failed
}
