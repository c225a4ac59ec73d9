package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"lifeweeks/internal/client/api"
	"lifeweeks/internal/client/config"
	"lifeweeks/internal/client/store"
	syncengine "lifeweeks/internal/client/sync"
	"lifeweeks/internal/logging"
)

// nowFn is a test seam for the wall clock used by display commands.
var nowFn = time.Now

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App ties the REPL to the local store and the sync engine. The store and
// engine are constructed here once and passed by handle; nothing is ambient.
type App struct {
	config *config.Config
	logger logging.Logger
	store  *store.Store
	engine *syncengine.Engine
	client api.Client
	Mode   Mode
	reader *bufio.Reader

	// memoryOnly is set when the durable medium could not be opened and the
	// session runs on in-memory repositories instead.
	memoryOnly bool
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	memoryOnly := false
	repos, _, err := store.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		// degrade to an in-memory session rather than refusing to start;
		// nothing will survive exit and the user is told so
		logger.Error(ctx, "local database unavailable, running in memory only", "err", err)
		repos = store.NewMemoryRepositories()
		memoryOnly = true
	}

	st := store.New(repos, logger)
	apiClient := api.NewHTTPClient(c.ServerBaseURL)
	engine := syncengine.NewEngine(apiClient, st, logger)

	return &App{
		config:     c,
		logger:     logger,
		store:      st,
		engine:     engine,
		client:     apiClient,
		Mode:       ModeOffline,
		reader:     bufio.NewReader(os.Stdin),
		memoryOnly: memoryOnly,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

// StartChangeWatcher drains the store's change notifications for the life of
// the session. The REPL recomputes everything on demand, so the watcher only
// records that the state moved; it keeps the subscription exercised the way a
// rendering frontend would.
func (a *App) StartChangeWatcher(ctx context.Context) {
	changes, cancel := a.store.Subscribe()
	defer cancel()

	for {
		select {
		case <-changes:
			a.logger.Debug(ctx, "local state changed")
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) isSignedIn() bool {
	return a.engine.GetState() == syncengine.StateSignedIn
}

// StartOnlineStatusWatcher periodically pings the server and flips the
// connectivity mode shown in the prompt.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			err := a.client.Ping(pingCtx)
			cancel()

			if err != nil {
				a.Mode = ModeOffline
			} else {
				a.Mode = ModeOnline
			}

		case <-ctx.Done():
			return
		}
	}
}
