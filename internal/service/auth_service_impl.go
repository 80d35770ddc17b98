package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deepfocushub/deepfocus/internal/auth"
	"github.com/deepfocushub/deepfocus/internal/domain"
	"github.com/deepfocushub/deepfocus/internal/repository"
	"github.com/google/uuid"
)

const minPasswordLen = 6

type authService struct {
	users  repository.UserRepo
	tokens *auth.TokenIssuer
}

func NewAuthService(users repository.UserRepo, tokens *auth.TokenIssuer) AuthService {
	return &authService{users: users, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, username, password, confirmPassword string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.Invalidf("username is required")
	}
	if len(password) < minPasswordLen {
		return nil, domain.Invalidf("password must be at least %d characters", minPasswordLen)
	}
	if password != confirmPassword {
		return nil, domain.Invalidf("password confirmation does not match")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			return nil, fmt.Errorf("username already taken: %w", ErrConflict)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
