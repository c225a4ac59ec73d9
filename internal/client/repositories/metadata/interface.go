package metadata

import (
	"context"
)

// Repository is a small durable key-value store holding the settings keys
// (birth date, life expectancy), the legacy combined record, and the sync
// engine's last-seen remote version. A missing key reads as (nil, nil).
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
