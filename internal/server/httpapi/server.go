// Package httpapi exposes the sync server's JSON REST API: account
// registration and login, token refresh, and the version-guarded snapshot
// document endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"lifeweeks/internal/logging"
	"lifeweeks/internal/server/documents"
	"lifeweeks/internal/server/users"
)

type Server struct {
	httpServer      *http.Server
	logger          logging.Logger
	userService     *users.Service
	documentService *documents.Service
	secretKey       []byte
}

func NewServer(addr string, logger logging.Logger, us *users.Service, ds *documents.Service, secretKey string) *Server {
	s := &Server{
		logger:          logger.With("component", "httpapi"),
		userService:     us,
		documentService: ds,
		secretKey:       []byte(secretKey),
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	mux.HandleFunc("GET /api/ping", s.handlePing)

	mux.Handle("GET /api/document", s.authMiddleware(http.HandlerFunc(s.handleGetDocument)))
	mux.Handle("PUT /api/document", s.authMiddleware(http.HandlerFunc(s.handlePutDocument)))

	return mux
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
