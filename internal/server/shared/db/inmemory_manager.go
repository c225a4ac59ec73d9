package db

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"lifeweeks/internal/common"
	"lifeweeks/internal/server/documents"
	"lifeweeks/internal/server/refreshtokens"
	"lifeweeks/internal/server/users"
)

// InMemoryRepositoryManager backs the repositories with maps. It exists for
// tests and local experiments; nothing survives process exit.
type InMemoryRepositoryManager struct {
	users         *inMemoryUsers
	refreshTokens *inMemoryRefreshTokens
	documents     *inMemoryDocuments
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *InMemoryRepositoryManager) Documents() documents.Repository {
	return m.documents
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return &InMemoryRepositoryManager{
		users:         &inMemoryUsers{byName: make(map[string]*users.User)},
		refreshTokens: &inMemoryRefreshTokens{byToken: make(map[string]*refreshtokens.RefreshToken)},
		documents:     &inMemoryDocuments{byUser: make(map[string]*documents.Document)},
	}
}

type inMemoryUsers struct {
	mu     sync.RWMutex
	byName map[string]*users.User
}

func (r *inMemoryUsers) Create(ctx context.Context, user *users.User) (*users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[user.UserName]; exists {
		return nil, common.ErrorValidation
	}

	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()

	copied := *user
	r.byName[user.UserName] = &copied
	return user, nil
}

func (r *inMemoryUsers) GetUserByLogin(ctx context.Context, login string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byName[login]
	if !exists {
		return nil, common.ErrorNotFound
	}

	copied := *user
	return &copied, nil
}

type inMemoryRefreshTokens struct {
	mu      sync.RWMutex
	byToken map[string]*refreshtokens.RefreshToken
}

func (r *inMemoryRefreshTokens) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byToken[token] = &refreshtokens.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (r *inMemoryRefreshTokens) Find(ctx context.Context, token string) (*refreshtokens.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, exists := r.byToken[token]
	if !exists {
		return nil, common.ErrorNotFound
	}

	copied := *rt
	return &copied, nil
}

func (r *inMemoryRefreshTokens) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byToken, token)
	return nil
}

type inMemoryDocuments struct {
	mu     sync.RWMutex
	byUser map[string]*documents.Document
}

func (r *inMemoryDocuments) Get(ctx context.Context, userID string) (*documents.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, exists := r.byUser[userID]
	if !exists {
		return nil, common.ErrorNotFound
	}

	copied := *doc
	copied.Payload = append([]byte(nil), doc.Payload...)
	return &copied, nil
}

func (r *inMemoryDocuments) Put(ctx context.Context, doc *documents.Document, baseVersion int64, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, exists := r.byUser[doc.UserID]; exists && !force && current.Version != baseVersion {
		return common.ErrVersionConflict
	}

	copied := *doc
	copied.Payload = append([]byte(nil), doc.Payload...)
	r.byUser[doc.UserID] = &copied
	return nil
}
