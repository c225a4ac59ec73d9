package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lifeweeks/internal/common"
	"lifeweeks/internal/snapshot"
)

// Service stamps versions and converts between the stored row and the wire
// document shared with the client.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns the user's document, or common.ErrorNotFound when the account
// has never pushed.
func (s *Service) Get(ctx context.Context, userID string) (*snapshot.Document, error) {

	doc, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var payload snapshot.Snapshot
	if err := json.Unmarshal(doc.Payload, &payload); err != nil {
		return nil, fmt.Errorf("stored document is corrupt: %w", err)
	}

	return &snapshot.Document{
		Version:   doc.Version,
		UpdatedAt: doc.UpdatedAt.UnixMilli(),
		Payload:   payload,
	}, nil
}

// Put writes a new document version for the user, guarded by baseVersion
// unless force is set. Versions are wall-clock milliseconds, nudged forward
// when the clock has not advanced past the base or past the stored row; a
// forced push over a newer row must still move the version forward.
func (s *Service) Put(ctx context.Context, userID string, payload *snapshot.Snapshot, baseVersion int64, force bool) (*snapshot.Document, error) {

	snapshot.Sanitize(payload)

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	now := s.now()
	version := now.UnixMilli()
	if version <= baseVersion {
		version = baseVersion + 1
	}
	if current, err := s.repo.Get(ctx, userID); err == nil {
		if version <= current.Version {
			version = current.Version + 1
		}
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	doc := &Document{
		UserID:    userID,
		Version:   version,
		UpdatedAt: now,
		Payload:   data,
	}

	if err := s.repo.Put(ctx, doc, baseVersion, force); err != nil {
		return nil, err
	}

	return &snapshot.Document{
		Version:   version,
		UpdatedAt: now.UnixMilli(),
		Payload:   *payload,
	}, nil
}
