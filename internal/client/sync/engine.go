// Package sync implements the engine that reconciles the local store with
// the per-account remote document: additive pull-merge, compare-and-swap
// push, and the two explicit clobber escape hatches (force push, reset from
// remote). Every operation returns a structured Result instead of an error:
// each failure mode is an expected condition the caller presents to the
// user. Operations are not internally queued; callers serialize them.
package sync

import (
	"context"
	"errors"

	"lifeweeks/internal/client/api"
	"lifeweeks/internal/client/store"
	"lifeweeks/internal/common"
	"lifeweeks/internal/logging"
	"lifeweeks/internal/snapshot"
)

// State is the engine's per-session position in the sign-in lifecycle.
type State string

const (
	StateSignedOut      State = "signed-out"
	StateAuthenticating State = "authenticating"
	StateSignedIn       State = "signed-in"
)

// Reasons reported in Result when OK is false.
const (
	ReasonNotSignedIn = "not-signed-in"
	ReasonNoRemote    = "no-remote"
	ReasonConflict    = "conflict"
	ReasonAuth        = "auth-failed"
	ReasonNetwork     = "network"
)

// Result is the outcome of a sync operation.
type Result struct {
	OK     bool
	Reason string
}

func ok() Result { return Result{OK: true} }

func fail(r string) Result { return Result{Reason: r} }

// Engine drives sync for one account against one remote store.
type Engine struct {
	client   api.Client
	store    *store.Store
	logger   logging.Logger
	state    State
	username string
}

func NewEngine(client api.Client, st *store.Store, logger logging.Logger) *Engine {
	return &Engine{
		client: client,
		store:  st,
		logger: logger.With("component", "sync"),
		state:  StateSignedOut,
	}
}

// GetState returns the current session state.
func (e *Engine) GetState() State {
	return e.state
}

// Username returns the signed-in account name, empty when signed out.
func (e *Engine) Username() string {
	if e.state != StateSignedIn {
		return ""
	}
	return e.username
}

// SignIn authenticates and, on first sign-in for an account, creates the
// empty version-0 remote document so later pulls have something to read.
func (e *Engine) SignIn(ctx context.Context, username, password string) Result {
	e.state = StateAuthenticating

	if err := e.client.Login(ctx, username, password); err != nil {
		e.state = StateSignedOut
		e.logger.Warn(ctx, "sign-in failed", "user", username, "err", err)
		if errors.Is(err, api.ErrUnavailable) {
			return fail(ReasonNetwork)
		}
		return fail(ReasonAuth)
	}

	e.state = StateSignedIn
	e.username = username

	if err := e.ensureRemote(ctx); err != nil {
		// the session is still usable; the document will be created on push
		e.logger.Warn(ctx, "could not ensure remote document", "err", err)
	}
	return ok()
}

// Register creates an account on the server; it does not sign in.
func (e *Engine) Register(ctx context.Context, username, password string) Result {
	if err := e.client.Register(ctx, username, password); err != nil {
		e.logger.Warn(ctx, "registration failed", "user", username, "err", err)
		if errors.Is(err, api.ErrUnavailable) {
			return fail(ReasonNetwork)
		}
		return fail(ReasonAuth)
	}
	return ok()
}

// SignOut drops the session and returns the engine to SignedOut.
func (e *Engine) SignOut() {
	e.client.Logout()
	e.state = StateSignedOut
	e.username = ""
}

// ensureRemote creates the account's empty remote document if none exists,
// recording its version as last-seen.
func (e *Engine) ensureRemote(ctx context.Context) error {
	_, err := e.client.GetDocument(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrNoRemote) {
		return err
	}

	empty := &snapshot.Snapshot{FormatVersion: snapshot.FormatVersion, Marks: []snapshot.Mark{}}
	doc, err := e.client.PutDocument(ctx, empty, 0, false)
	if err != nil {
		return err
	}
	return e.store.SetLastRemoteVersion(ctx, doc.Version)
}

// PullAndMerge reads the remote document, merges it additively into the
// local snapshot (remote precedence on scalars, union of marks), applies the
// result through the store's import path, and records the remote version.
// Never destructive: a routine pull cannot lose local marks.
func (e *Engine) PullAndMerge(ctx context.Context) Result {
	if e.state != StateSignedIn {
		return fail(ReasonNotSignedIn)
	}

	remote, err := e.client.GetDocument(ctx)
	if err != nil {
		return e.failFrom(ctx, "pull", err)
	}

	local, err := e.store.BuildSnapshot(ctx)
	if err != nil {
		return e.failFrom(ctx, "pull", err)
	}

	merged := Merge(local, &remote.Payload)
	snapshot.Sanitize(merged)

	if err := e.store.ApplySnapshot(ctx, merged); err != nil {
		return e.failFrom(ctx, "pull", err)
	}
	if err := e.store.SetLastRemoteVersion(ctx, remote.Version); err != nil {
		return e.failFrom(ctx, "pull", err)
	}

	e.logger.Info(ctx, "pulled and merged", "remoteVersion", remote.Version, "marks", len(merged.Marks))
	return ok()
}

// PushSnapshot writes the local snapshot to the remote store. Without force
// the write is compare-and-swap on the last-seen version: if another device
// has pushed since this client's last pull, the push fails with conflict and
// nothing is written. On success the server's fresh version stamp becomes
// the new last-seen version.
func (e *Engine) PushSnapshot(ctx context.Context, force bool) Result {
	if e.state != StateSignedIn {
		return fail(ReasonNotSignedIn)
	}

	lastSeen, err := e.store.LastRemoteVersion(ctx)
	if err != nil {
		return e.failFrom(ctx, "push", err)
	}

	local, err := e.store.BuildSnapshot(ctx)
	if err != nil {
		return e.failFrom(ctx, "push", err)
	}

	doc, err := e.client.PutDocument(ctx, local, lastSeen, force)
	if err != nil {
		return e.failFrom(ctx, "push", err)
	}

	if err := e.store.SetLastRemoteVersion(ctx, doc.Version); err != nil {
		return e.failFrom(ctx, "push", err)
	}

	e.logger.Info(ctx, "pushed snapshot", "version", doc.Version, "forced", force)
	return ok()
}

// ResetFromRemote unconditionally overwrites local state with the remote
// payload. This is the explicit "discard local changes" recovery path.
func (e *Engine) ResetFromRemote(ctx context.Context) Result {
	if e.state != StateSignedIn {
		return fail(ReasonNotSignedIn)
	}

	remote, err := e.client.GetDocument(ctx)
	if err != nil {
		return e.failFrom(ctx, "reset", err)
	}

	payload := remote.Payload
	snapshot.Sanitize(&payload)

	if err := e.store.ApplySnapshot(ctx, &payload); err != nil {
		return e.failFrom(ctx, "reset", err)
	}
	if err := e.store.SetLastRemoteVersion(ctx, remote.Version); err != nil {
		return e.failFrom(ctx, "reset", err)
	}

	e.logger.Info(ctx, "reset from remote", "remoteVersion", remote.Version)
	return ok()
}

func (e *Engine) failFrom(ctx context.Context, op string, err error) Result {
	e.logger.Warn(ctx, op+" failed", "err", err)
	switch {
	case errors.Is(err, common.ErrNoRemote):
		return fail(ReasonNoRemote)
	case errors.Is(err, common.ErrVersionConflict):
		return fail(ReasonConflict)
	case errors.Is(err, api.ErrUnauthorized):
		return fail(ReasonNotSignedIn)
	default:
		return fail(ReasonNetwork)
	}
}
