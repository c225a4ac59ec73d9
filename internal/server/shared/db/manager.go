package db

import (
	"context"
	"database/sql"

	"lifeweeks/internal/server/documents"
	"lifeweeks/internal/server/refreshtokens"
	"lifeweeks/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Documents() documents.Repository
}
