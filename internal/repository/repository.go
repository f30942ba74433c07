package repository

import (
	"context"
	"errors"

	"devconnector-server/internal/domain"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidID      = errors.New("invalid id")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrConflict       = errors.New("revision conflict")
)

// UserRepository assigns user ids on Create and enforces email uniqueness
// at insert time.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// PostRepository writes are conditional on post.Rev: Update and Delete fail
// with ErrConflict when the stored revision has moved since the post was read.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, post *domain.Post) error
}
