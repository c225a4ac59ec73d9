// Package server initializes and runs the sync server. It wires the
// Postgres-backed repositories, the user and document services, and the
// HTTP API, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"lifeweeks/internal/logging"
	"lifeweeks/internal/server/config"
	"lifeweeks/internal/server/documents"
	"lifeweeks/internal/server/httpapi"
	"lifeweeks/internal/server/shared/db"
	"lifeweeks/internal/server/users"
)

type App struct {
	config          *config.Config
	logger          logging.Logger
	userService     *users.Service
	documentService *documents.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewProductionZapLogger()

	m, err := db.NewPostgresRepositoryManager(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := users.NewService(m.Users(), m.RefreshTokens(), c)
	ds := documents.NewService(m.Documents())

	return &App{config: c, logger: logger, userService: us, documentService: ds}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.documentService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

}
