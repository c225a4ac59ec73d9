package documents

import (
	"context"
	"time"
)

// Document is one account's stored snapshot with its version stamp. Payload
// is the snapshot JSON, kept opaque at this layer.
type Document struct {
	UserID    string
	Version   int64
	UpdatedAt time.Time
	Payload   []byte
}

type Repository interface {
	Get(ctx context.Context, userID string) (*Document, error)

	// Put writes doc for its user. The write succeeds only when the stored
	// version still equals baseVersion (or no row exists and baseVersion is
	// zero), unless force is set; otherwise it fails with
	// common.ErrVersionConflict.
	Put(ctx context.Context, doc *Document, baseVersion int64, force bool) error
}
