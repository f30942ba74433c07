package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnector-server/internal/domain"
	"devconnector-server/internal/repository"
	"devconnector-server/pkg/gravatar"
	"devconnector-server/pkg/hash"
)

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	now      func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates the user and returns a token for it.
func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (string, error) {
	email := normalizeEmail(req.Email)

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return "", ErrUserExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to check email existence: %w", err)
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: hashedPassword,
		Avatar:   gravatar.URL(email, gravatar.ProfileOptions),
		Date:     s.now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user.ID)
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.issue(user.ID)
}

// Me loads the authenticated user. The password hash never leaves the
// service.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	user.Password = ""
	return user, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}
