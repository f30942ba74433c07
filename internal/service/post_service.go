package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devconnector-server/internal/domain"
	"devconnector-server/internal/repository"

	"github.com/google/uuid"
)

// PostEvents receives notifications after a post mutation has been stored.
type PostEvents interface {
	PostCreated(post *domain.Post)
	PostDeleted(postID string)
	LikesUpdated(postID string, likes []domain.Like)
	CommentsUpdated(postID string, comments []domain.Comment)
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	events   PostEvents
	now      func() time.Time
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, events PostEvents) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		events:   events,
		now:      time.Now,
	}
}

func (s *PostService) Create(ctx context.Context, userID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	author, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		UserID:   userID,
		Text:     strings.TrimSpace(req.Text),
		Name:     author.Name,
		Avatar:   author.Avatar,
		Likes:    []domain.Like{},
		Comments: []domain.Comment{},
		Date:     s.now().UTC(),
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.events != nil {
		s.events.PostCreated(post)
	}
	return post, nil
}

// List returns every post, newest first.
func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	return s.loadPost(ctx, postID)
}

func (s *PostService) Delete(ctx context.Context, userID, postID string) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}

	if err := RequireOwner(userID, post.UserID); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post); err != nil {
		return translateWriteError(err, "delete post")
	}

	if s.events != nil {
		s.events.PostDeleted(post.ID)
	}
	return nil
}

func (s *PostService) Like(ctx context.Context, userID, postID string) ([]domain.Like, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.LikedBy(userID) {
		return nil, ErrAlreadyLiked
	}
	post.AddLike(domain.Like{ID: uuid.New().String(), UserID: userID})

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, translateWriteError(err, "like post")
	}

	if s.events != nil {
		s.events.LikesUpdated(post.ID, post.Likes)
	}
	return post.Likes, nil
}

func (s *PostService) Unlike(ctx context.Context, userID, postID string) ([]domain.Like, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if !post.RemoveLike(userID) {
		return nil, ErrNotLiked
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, translateWriteError(err, "unlike post")
	}

	if s.events != nil {
		s.events.LikesUpdated(post.ID, post.Likes)
	}
	return post.Likes, nil
}

func (s *PostService) Comment(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) ([]domain.Comment, error) {
	author, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	post.AddComment(domain.Comment{
		ID:     uuid.New().String(),
		UserID: userID,
		Text:   strings.TrimSpace(req.Text),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   s.now().UTC(),
	})

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, translateWriteError(err, "add comment")
	}

	if s.events != nil {
		s.events.CommentsUpdated(post.ID, post.Comments)
	}
	return post.Comments, nil
}

// DeleteComment removes the comment identified by commentID. Only the
// comment's author may remove it.
func (s *PostService) DeleteComment(ctx context.Context, userID, postID, commentID string) ([]domain.Comment, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment, ok := post.FindComment(commentID)
	if !ok {
		return nil, ErrCommentNotFound
	}

	if err := RequireOwner(userID, comment.UserID); err != nil {
		return nil, err
	}

	post.RemoveComment(commentID)

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, translateWriteError(err, "delete comment")
	}

	if s.events != nil {
		s.events.CommentsUpdated(post.ID, post.Comments)
	}
	return post.Comments, nil
}

func (s *PostService) loadPost(ctx context.Context, postID string) (*domain.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return post, nil
}

func (s *PostService) loadUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func translateWriteError(err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrConflict):
		return ErrConcurrentUpdate
	case errors.Is(err, repository.ErrNotFound):
		return ErrPostNotFound
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}
