package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"devconnector-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoUserRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create assigns an object id", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user := &domain.User{Name: "A", Email: "a@x.com", Password: "hash"}
		if err := repo.Create(context.Background(), user); err != nil {
			mt.Fatalf("Create() error = %v", err)
		}
		if _, err := primitive.ObjectIDFromHex(user.ID); err != nil {
			mt.Errorf("Create() assigned id %q: %v", user.ID, err)
		}
	})

	mt.Run("create duplicate email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_1",
		}))

		err := repo.Create(context.Background(), &domain.User{Email: "a@x.com"})
		if !errors.Is(err, ErrDuplicateEmail) {
			mt.Errorf("Create() error = %v, want ErrDuplicateEmail", err)
		}
	})

	mt.Run("find by email", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		oid := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: oid},
			{Key: "name", Value: "A"},
			{Key: "email", Value: "a@x.com"},
			{Key: "password", Value: "hash"},
		}))

		user, err := repo.FindByEmail(context.Background(), "a@x.com")
		if err != nil {
			mt.Fatalf("FindByEmail() error = %v", err)
		}
		if user.ID != oid.Hex() || user.Password != "hash" {
			mt.Errorf("FindByEmail() = %+v", user)
		}
	})

	mt.Run("find by email without match", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.users", mtest.FirstBatch))

		if _, err := repo.FindByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("FindByEmail() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		repo := NewMongoUserRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), "not-hex"); !errors.Is(err, ErrInvalidID) {
			mt.Errorf("FindByID() error = %v, want ErrInvalidID", err)
		}
	})
}

func TestMongoPostRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	author := primitive.NewObjectID()
	newPost := func() *domain.Post {
		return &domain.Post{
			ID:     primitive.NewObjectID().Hex(),
			UserID: author.Hex(),
			Text:   "hello",
			Date:   time.Now().UTC(),
			Rev:    "rev-1",
		}
	}

	mt.Run("update rotates the revision", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		post := newPost()
		if err := repo.Update(context.Background(), post); err != nil {
			mt.Fatalf("Update() error = %v", err)
		}
		if post.Rev == "rev-1" || post.Rev == "" {
			mt.Errorf("post.Rev = %q, want a fresh revision", post.Rev)
		}
	})

	updateMisses := []struct {
		name    string
		count   []bson.D
		wantErr error
	}{
		{name: "update with stale revision", count: []bson.D{{{Key: "n", Value: 1}}}, wantErr: ErrConflict},
		{name: "update of deleted post", wantErr: ErrNotFound},
	}
	for _, tt := range updateMisses {
		mt.Run(tt.name, func(mt *mtest.T) {
			repo := NewMongoPostRepository(mt.DB)
			mt.AddMockResponses(
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
				mtest.CreateCursorResponse(0, "test.posts", mtest.FirstBatch, tt.count...),
			)

			post := newPost()
			if err := repo.Update(context.Background(), post); !errors.Is(err, tt.wantErr) {
				mt.Errorf("Update() error = %v, want %v", err, tt.wantErr)
			}
			if post.Rev != "rev-1" {
				mt.Errorf("post.Rev = %q, want it unchanged", post.Rev)
			}
		})
	}

	mt.Run("delete with stale revision", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateCursorResponse(0, "test.posts", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		if err := repo.Delete(context.Background(), newPost()); !errors.Is(err, ErrConflict) {
			mt.Errorf("Delete() error = %v, want ErrConflict", err)
		}
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		if err := repo.Delete(context.Background(), newPost()); err != nil {
			mt.Errorf("Delete() error = %v", err)
		}
	})

	mt.Run("find by malformed id", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)

		if _, err := repo.FindByID(context.Background(), "xyz"); !errors.Is(err, ErrInvalidID) {
			mt.Errorf("FindByID() error = %v, want ErrInvalidID", err)
		}
	})

	mt.Run("find missing post", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.posts", mtest.FirstBatch))

		if _, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
			mt.Errorf("FindByID() error = %v, want ErrNotFound", err)
		}
	})

	mt.Run("list decodes likes and comments", func(mt *mtest.T) {
		repo := NewMongoPostRepository(mt.DB)
		liker := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.posts", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "user", Value: author},
			{Key: "text", Value: "hello"},
			{Key: "likes", Value: bson.A{bson.D{{Key: "_id", Value: "l1"}, {Key: "user", Value: liker}}}},
			{Key: "comments", Value: bson.A{}},
			{Key: "rev", Value: "rev-9"},
		}))

		posts, err := repo.List(context.Background())
		if err != nil {
			mt.Fatalf("List() error = %v", err)
		}
		if len(posts) != 1 {
			mt.Fatalf("List() returned %d posts, want 1", len(posts))
		}
		p := posts[0]
		if p.UserID != author.Hex() || p.Rev != "rev-9" {
			mt.Errorf("List()[0] = %+v", p)
		}
		if len(p.Likes) != 1 || p.Likes[0].UserID != liker.Hex() || p.Comments == nil {
			mt.Errorf("List()[0] likes = %+v, comments = %+v", p.Likes, p.Comments)
		}
	})
}
