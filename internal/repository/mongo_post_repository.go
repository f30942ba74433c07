package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"devconnector-server/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLike struct {
	ID   string             `bson:"_id"`
	User primitive.ObjectID `bson:"user"`
}

type mongoComment struct {
	ID     string             `bson:"_id"`
	User   primitive.ObjectID `bson:"user"`
	Text   string             `bson:"text"`
	Name   string             `bson:"name"`
	Avatar string             `bson:"avatar"`
	Date   time.Time          `bson:"date"`
}

// mongoPost.Rev is rotated on every write and used as the match condition
// for conditional replace and delete.
type mongoPost struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	User     primitive.ObjectID `bson:"user"`
	Text     string             `bson:"text"`
	Name     string             `bson:"name"`
	Avatar   string             `bson:"avatar"`
	Likes    []mongoLike        `bson:"likes"`
	Comments []mongoComment     `bson:"comments"`
	Date     time.Time          `bson:"date"`
	Rev      string             `bson:"rev"`
}

type mongoPostRepository struct {
	coll *mongo.Collection
}

func NewMongoPostRepository(db *mongo.Database) PostRepository {
	return &mongoPostRepository{
		coll: db.Collection(mongoPostsCollection),
	}
}

func (r *mongoPostRepository) Create(ctx context.Context, post *domain.Post) error {
	doc, err := toMongoPost(post)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	doc.Rev = uuid.New().String()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	post.ID = doc.ID.Hex()
	post.Rev = doc.Rev
	return nil
}

func (r *mongoPostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var doc mongoPost
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *mongoPostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var docs []mongoPost
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}

func (r *mongoPostRepository) Update(ctx context.Context, post *domain.Post) error {
	doc, err := toMongoPost(post)
	if err != nil {
		return err
	}
	doc.Rev = uuid.New().String()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "rev": post.Rev}, doc)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, doc.ID)
	}

	post.Rev = doc.Rev
	return nil
}

func (r *mongoPostRepository) Delete(ctx context.Context, post *domain.Post) error {
	oid, err := primitive.ObjectIDFromHex(post.ID)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "rev": post.Rev})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.missOrConflict(ctx, oid)
	}
	return nil
}

func (r *mongoPostRepository) missOrConflict(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to check post existence: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func toMongoPost(post *domain.Post) (mongoPost, error) {
	author, err := primitive.ObjectIDFromHex(post.UserID)
	if err != nil {
		return mongoPost{}, ErrInvalidID
	}

	doc := mongoPost{
		User:     author,
		Text:     post.Text,
		Name:     post.Name,
		Avatar:   post.Avatar,
		Likes:    make([]mongoLike, 0, len(post.Likes)),
		Comments: make([]mongoComment, 0, len(post.Comments)),
		Date:     post.Date,
	}
	if post.ID != "" {
		if doc.ID, err = primitive.ObjectIDFromHex(post.ID); err != nil {
			return mongoPost{}, ErrInvalidID
		}
	}

	for _, l := range post.Likes {
		uid, err := primitive.ObjectIDFromHex(l.UserID)
		if err != nil {
			return mongoPost{}, ErrInvalidID
		}
		doc.Likes = append(doc.Likes, mongoLike{ID: l.ID, User: uid})
	}
	for _, c := range post.Comments {
		uid, err := primitive.ObjectIDFromHex(c.UserID)
		if err != nil {
			return mongoPost{}, ErrInvalidID
		}
		doc.Comments = append(doc.Comments, mongoComment{
			ID:     c.ID,
			User:   uid,
			Text:   c.Text,
			Name:   c.Name,
			Avatar: c.Avatar,
			Date:   c.Date,
		})
	}

	return doc, nil
}

func (d *mongoPost) toDomain() *domain.Post {
	p := &domain.Post{
		ID:       d.ID.Hex(),
		UserID:   d.User.Hex(),
		Text:     d.Text,
		Name:     d.Name,
		Avatar:   d.Avatar,
		Likes:    make([]domain.Like, 0, len(d.Likes)),
		Comments: make([]domain.Comment, 0, len(d.Comments)),
		Date:     d.Date,
		Rev:      d.Rev,
	}
	for _, l := range d.Likes {
		p.Likes = append(p.Likes, domain.Like{ID: l.ID, UserID: l.User.Hex()})
	}
	for _, c := range d.Comments {
		p.Comments = append(p.Comments, domain.Comment{
			ID:     c.ID,
			UserID: c.User.Hex(),
			Text:   c.Text,
			Name:   c.Name,
			Avatar: c.Avatar,
			Date:   c.Date,
		})
	}
	return p
}
