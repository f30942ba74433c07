package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"devconnector-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
)

const (
	docTypePost = "post"

	// CouchDB caps _find at 25 rows unless a limit is sent.
	couchPageSize = 200
)

type postDocument struct {
	ID       string           `json:"_id"`
	Rev      string           `json:"_rev,omitempty"`
	Type     string           `json:"type"`
	PostID   string           `json:"post_id"`
	UserID   string           `json:"user"`
	Text     string           `json:"text"`
	Name     string           `json:"name"`
	Avatar   string           `json:"avatar"`
	Likes    []domain.Like    `json:"likes"`
	Comments []domain.Comment `json:"comments"`
	Date     time.Time        `json:"date"`
}

type postRepository struct {
	client   *kivik.Client
	dbName   string
	pageSize int
}

func NewPostRepository(client *kivik.Client, dbName string) PostRepository {
	return &postRepository{
		client:   client,
		dbName:   dbName,
		pageSize: couchPageSize,
	}
}

func postDocID(id string) string {
	return fmt.Sprintf("post:%s", id)
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	db := r.client.DB(r.dbName)

	post.ID = uuid.New().String()
	doc := newPostDocument(post)

	rev, err := db.Put(ctx, doc.ID, doc)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	post.Rev = rev
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	db := r.client.DB(r.dbName)

	var doc postDocument
	if err := db.Get(ctx, postDocID(id)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *postRepository) List(ctx context.Context) ([]*domain.Post, error) {
	db := r.client.DB(r.dbName)

	posts := []*domain.Post{}
	bookmark := ""
	for {
		query := map[string]interface{}{
			"selector": map[string]interface{}{
				"type": docTypePost,
			},
			"limit": r.pageSize,
		}
		switch {
		case bookmark != "":
			query["bookmark"] = bookmark
		case len(posts) > 0:
			query["skip"] = len(posts)
		}

		page, next, err := listPage(ctx, db, query)
		if err != nil {
			return nil, err
		}
		posts = append(posts, page...)

		if len(page) < r.pageSize {
			break
		}
		bookmark = next
	}

	sortByDateDesc(posts)
	return posts, nil
}

// listPage runs one _find request and returns its posts together with the
// bookmark for the following page, if the server sent one.
func listPage(ctx context.Context, db *kivik.DB, query map[string]interface{}) ([]*domain.Post, string, error) {
	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var page []*domain.Post
	for rows.Next() {
		var doc postDocument
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, "", fmt.Errorf("failed to scan post: %w", err)
		}
		page = append(page, doc.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("failed to list posts: %w", err)
	}

	var bookmark string
	if meta, err := rows.Metadata(); err == nil && meta != nil {
		bookmark = meta.Bookmark
	}
	return page, bookmark, nil
}

func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	db := r.client.DB(r.dbName)

	doc := newPostDocument(post)
	doc.Rev = post.Rev

	rev, err := db.Put(ctx, doc.ID, doc)
	if err != nil {
		switch kivik.HTTPStatus(err) {
		case http.StatusConflict:
			return ErrConflict
		case http.StatusNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	post.Rev = rev
	return nil
}

func (r *postRepository) Delete(ctx context.Context, post *domain.Post) error {
	db := r.client.DB(r.dbName)

	if _, err := db.Delete(ctx, postDocID(post.ID), post.Rev); err != nil {
		switch kivik.HTTPStatus(err) {
		case http.StatusConflict:
			return ErrConflict
		case http.StatusNotFound:
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

func newPostDocument(post *domain.Post) postDocument {
	return postDocument{
		ID:       postDocID(post.ID),
		Type:     docTypePost,
		PostID:   post.ID,
		UserID:   post.UserID,
		Text:     post.Text,
		Name:     post.Name,
		Avatar:   post.Avatar,
		Likes:    post.Likes,
		Comments: post.Comments,
		Date:     post.Date,
	}
}

func (d *postDocument) toDomain() *domain.Post {
	p := &domain.Post{
		ID:       d.PostID,
		UserID:   d.UserID,
		Text:     d.Text,
		Name:     d.Name,
		Avatar:   d.Avatar,
		Likes:    d.Likes,
		Comments: d.Comments,
		Date:     d.Date,
		Rev:      d.Rev,
	}
	p.Normalize()
	return p
}

func sortByDateDesc(posts []*domain.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date)
	})
}
