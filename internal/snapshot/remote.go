package snapshot

// Document is the remote store's record for one authenticated user: an
// opaque version stamp (epoch millis at write time, monotonically
// increasing), the write timestamp, and a full snapshot as payload. The
// version field is the compare-and-swap token for conflict detection.
type Document struct {
	Version   int64    `json:"version"`
	UpdatedAt int64    `json:"updatedAt"`
	Payload   Snapshot `json:"payload"`
}
