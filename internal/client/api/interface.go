// Package api implements the client side of the sync server's REST API.
package api

import (
	"context"

	"lifeweeks/internal/snapshot"
)

// Client talks to the sync server for one account. Implementations hold the
// token pair internally and refresh it transparently.
type Client interface {
	Close() error

	// Register creates an account.
	Register(ctx context.Context, username, password string) error

	// Login authenticates and stores the token pair for later calls.
	Login(ctx context.Context, username, password string) error

	// Logout drops the stored token pair.
	Logout()

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// GetDocument reads the account's remote document. Fails with
	// common.ErrNoRemote when none has been written yet.
	GetDocument(ctx context.Context) (*snapshot.Document, error)

	// PutDocument writes a new remote document carrying payload. The write
	// succeeds only if the stored version still equals baseVersion, unless
	// force is set; otherwise it fails with common.ErrVersionConflict. The
	// server stamps and returns the new version.
	PutDocument(ctx context.Context, payload *snapshot.Snapshot, baseVersion int64, force bool) (*snapshot.Document, error)
}
