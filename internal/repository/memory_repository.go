package repository

import (
	"context"
	"sync"

	"devconnector-server/internal/domain"

	"github.com/google/uuid"
)

// memoryUserRepository keeps users in process memory. Reads return copies.
type memoryUserRepository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
}

func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func (r *memoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicateEmail
	}

	user.ID = uuid.New().String()
	r.users[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *memoryUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *memoryUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.users[id]
	return &user, nil
}

type memoryPostRepository struct {
	mu    sync.RWMutex
	posts map[string]*domain.Post
}

func NewMemoryPostRepository() PostRepository {
	return &memoryPostRepository{
		posts: make(map[string]*domain.Post),
	}
}

func (r *memoryPostRepository) Create(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = uuid.New().String()
	post.Rev = uuid.New().String()
	post.Normalize()
	r.posts[post.ID] = post.Clone()
	return nil
}

func (r *memoryPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return post.Clone(), nil
}

func (r *memoryPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	r.mu.RLock()
	posts := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p.Clone())
	}
	r.mu.RUnlock()

	sortByDateDesc(posts)
	return posts, nil
}

func (r *memoryPostRepository) Update(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Rev != post.Rev {
		return ErrConflict
	}

	post.Rev = uuid.New().String()
	post.Normalize()
	r.posts[post.ID] = post.Clone()
	return nil
}

func (r *memoryPostRepository) Delete(ctx context.Context, post *domain.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Rev != post.Rev {
		return ErrConflict
	}

	delete(r.posts, post.ID)
	return nil
}
