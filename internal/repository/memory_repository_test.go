package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"devconnector-server/internal/domain"
)

func TestMemoryUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user := &domain.User{Name: "A", Email: "a@x.com", Password: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Create() did not assign an id")
	}

	err := repo.Create(ctx, &domain.User{Name: "B", Email: "a@x.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Create() duplicate error = %v, want ErrDuplicateEmail", err)
	}

	got, err := repo.FindByEmail(ctx, "a@x.com")
	if err != nil || got.ID != user.ID {
		t.Errorf("FindByEmail() = %+v, %v", got, err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{name: "existing", id: user.ID},
		{name: "unknown uuid", id: "7c9e6679-7425-40de-944b-e07fc1f90ae7", wantErr: ErrNotFound},
		{name: "malformed", id: "not-an-id", wantErr: ErrInvalidID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.FindByID(ctx, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("FindByID() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMemoryPostRepository_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	post := &domain.Post{UserID: "u1", Text: "hi", Date: time.Now()}
	if err := repo.Create(ctx, post); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, _ := repo.FindByID(ctx, post.ID)
	second, _ := repo.FindByID(ctx, post.ID)

	first.AddLike(domain.Like{ID: "l1", UserID: "u2"})
	if err := repo.Update(ctx, first); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	second.AddLike(domain.Like{ID: "l2", UserID: "u2"})
	if err := repo.Update(ctx, second); !errors.Is(err, ErrConflict) {
		t.Fatalf("stale Update() error = %v, want ErrConflict", err)
	}

	stored, _ := repo.FindByID(ctx, post.ID)
	if len(stored.Likes) != 1 {
		t.Errorf("Likes = %+v, want exactly one", stored.Likes)
	}

	if err := repo.Delete(ctx, second); !errors.Is(err, ErrConflict) {
		t.Errorf("stale Delete() error = %v, want ErrConflict", err)
	}
	if err := repo.Delete(ctx, stored); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryPostRepository_ReadsAreCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	post := &domain.Post{UserID: "u1", Text: "hi", Date: time.Now()}
	repo.Create(ctx, post)

	got, _ := repo.FindByID(ctx, post.ID)
	got.AddLike(domain.Like{ID: "l1", UserID: "u2"})
	got.Text = "changed"

	again, _ := repo.FindByID(ctx, post.ID)
	if again.Text != "hi" || len(again.Likes) != 0 {
		t.Errorf("stored post mutated through a read: %+v", again)
	}
}

func TestMemoryPostRepository_ListSortedByDateDesc(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPostRepository()

	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, text := range []string{"oldest", "middle", "newest"} {
		repo.Create(ctx, &domain.Post{UserID: "u1", Text: text, Date: base.Add(time.Duration(i) * time.Hour)})
	}

	posts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"newest", "middle", "oldest"}
	if len(posts) != len(want) {
		t.Fatalf("List() returned %d posts", len(posts))
	}
	for i, p := range posts {
		if p.Text != want[i] {
			t.Errorf("posts[%d] = %q, want %q", i, p.Text, want[i])
		}
	}
}
