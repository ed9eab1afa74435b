package service

import (
	"context"
	"fmt"

	"wedding-guest-list/internal/session"
	apperrors "wedding-guest-list/pkg/app_errors"
	"wedding-guest-list/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// Login checks the credentials and opens a new session for the user.
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout(ctx context.Context, token string) error
}

type AuthServiceImpl struct {
	users map[string][]byte
	store session.Store
	// compared against for unknown users so both paths cost one bcrypt run
	dummyHash []byte
	log       *zap.Logger
}

// NewAuthService takes a map of username to bcrypt hash.
func NewAuthService(users map[string]string, store session.Store) (AuthService, error) {
	hashes := make(map[string][]byte, len(users))
	for name, hash := range users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("user %q: password is not a bcrypt hash: %w", name, err)
		}
		hashes[name] = []byte(hash)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &AuthServiceImpl{
		users:     hashes,
		store:     store,
		dummyHash: dummy,
		log:       logger.WithComponent("auth"),
	}, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*session.Session, error) {
	hash, ok := s.users[username]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.log.Warn("login for unknown user", zap.String("username", username))
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		s.log.Warn("login with wrong password", zap.String("username", username))
		return nil, apperrors.ErrInvalidCredentials
	}

	sess, err := s.store.Create(ctx, username)
	if err != nil {
		return nil, err
	}
	s.log.Info("user logged in", zap.String("username", username))
	return sess, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// HashPassword returns the bcrypt hash to put under users in the config file.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
