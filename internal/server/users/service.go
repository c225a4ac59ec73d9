package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lifeweeks/internal/common"
	"lifeweeks/internal/server/auth"
	"lifeweeks/internal/server/config"
	"lifeweeks/internal/server/refreshtokens"
)

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	repo                         Repository
	refreshTokenRepo             refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewService(repo Repository, refreshTokenRepo refreshtokens.Repository, cfg *config.Config) *Service {
	return &Service{
		repo:                         repo,
		refreshTokenRepo:             refreshTokenRepo,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Register creates an account with an argon2id-hashed password.
func (s *Service) Register(ctx context.Context, username string, password []byte) (*User, error) {

	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	hash, salt := auth.HashPassword(password)

	user := &User{
		UserName:     username,
		Salt:         salt,
		PasswordHash: hash,
	}

	user, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}

	return user, nil
}

func (s *Service) generateAccessToken(user *User) (string, error) {
	token, err := auth.GenerateToken(user.ID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) generateRefreshToken() (string, error) {
	token, err := common.MakeRandHexString(32)
	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) issueTokenPair(ctx context.Context, user *User) (*TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}

	refreshToken, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}

	if err := s.refreshTokenRepo.Create(ctx, user.ID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Login checks the password and issues a fresh token pair. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, userName string, password []byte) (*TokenPair, error) {

	user, err := s.repo.GetUserByLogin(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	return s.issueTokenPair(ctx, user)
}

// Refresh rotates a refresh token: the presented token is invalidated and a
// new pair is issued. Expired or unknown tokens fail with
// ErrRefreshTokenExpired so the client knows to sign in again.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {

	rt, err := s.refreshTokenRepo.Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrRefreshTokenExpired
		}
		return nil, common.ErrorInternal
	}

	if time.Now().After(rt.ExpiresAt) {
		// stale row; remove it on the way out
		_ = s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, common.ErrRefreshTokenExpired
	}

	if err := s.refreshTokenRepo.Delete(ctx, refreshToken); err != nil {
		return nil, common.ErrorInternal
	}

	return s.issueTokenPair(ctx, &User{ID: rt.UserID})
}
