package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeweeks/internal/common"
	"lifeweeks/internal/server/auth"
	"lifeweeks/internal/server/config"
	"lifeweeks/internal/server/refreshtokens"
)

type fakeUserRepo struct {
	byName    map[string]*User
	createErr error
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) (*User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user.ID = "u-" + user.UserName
	f.byName[user.UserName] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByLogin(ctx context.Context, login string) (*User, error) {
	user, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return user, nil
}

type fakeTokenRepo struct {
	byToken map[string]*refreshtokens.RefreshToken
}

func (f *fakeTokenRepo) Create(ctx context.Context, userID, token string, validity time.Duration) error {
	f.byToken[token] = &refreshtokens.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (f *fakeTokenRepo) Find(ctx context.Context, token string) (*refreshtokens.RefreshToken, error) {
	rt, ok := f.byToken[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeTokenRepo) Delete(ctx context.Context, token string) error {
	delete(f.byToken, token)
	return nil
}

func newTestService() (*Service, *fakeUserRepo, *fakeTokenRepo) {
	users := &fakeUserRepo{byName: make(map[string]*User)}
	tokens := &fakeTokenRepo{byToken: make(map[string]*refreshtokens.RefreshToken)}
	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Minute,
		RefreshTokenValidityDuration: time.Hour,
	}
	return NewService(users, tokens, cfg), users, tokens
}

func TestRegister_HashesPassword(t *testing.T) {
	s, repo, _ := newTestService()

	user, err := s.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	stored := repo.byName["alice"]
	require.NotNil(t, stored)
	assert.NotContains(t, string(stored.PasswordHash), "secret")
	assert.True(t, auth.VerifyPassword([]byte("secret"), stored.Salt, stored.PasswordHash))
}

func TestRegister_RejectsEmptyInput(t *testing.T) {
	s, _, _ := newTestService()

	_, err := s.Register(context.Background(), "  ", []byte("pw"))
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = s.Register(context.Background(), "bob", nil)
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_Success(t *testing.T) {
	s, _, tokens := newTestService()

	_, err := s.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)

	pair, err := s.Login(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// the access token carries the user id
	userID, err := auth.GetUserIDFromToken(pair.AccessToken, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, "u-alice", userID)

	// the refresh token was persisted
	_, ok := tokens.byToken[pair.RefreshToken]
	assert.True(t, ok)
}

func TestLogin_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	s, _, _ := newTestService()

	_, err := s.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)

	_, errWrong := s.Login(context.Background(), "alice", []byte("nope"))
	_, errGhost := s.Login(context.Background(), "ghost", []byte("nope"))

	require.ErrorIs(t, errWrong, common.ErrorUnauthorized)
	require.ErrorIs(t, errGhost, common.ErrorUnauthorized)
}

func TestRefresh_RotatesToken(t *testing.T) {
	s, _, tokens := newTestService()

	_, err := s.Register(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)

	pair, err := s.Login(context.Background(), "alice", []byte("secret"))
	require.NoError(t, err)

	newPair, err := s.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// the old token is gone; replaying it fails
	_, ok := tokens.byToken[pair.RefreshToken]
	assert.False(t, ok)

	_, err = s.Refresh(context.Background(), pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefresh_ExpiredTokenRemoved(t *testing.T) {
	s, _, tokens := newTestService()

	tokens.byToken["stale"] = &refreshtokens.RefreshToken{
		UserID:    "u-1",
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}

	_, err := s.Refresh(context.Background(), "stale")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)

	_, ok := tokens.byToken["stale"]
	assert.False(t, ok)
}
