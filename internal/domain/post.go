package domain

import (
	"strings"
	"time"
)

// Post carries a snapshot of the author's name and avatar taken when the post
// was created. Rev is the store's revision marker used for conditional writes.
type Post struct {
	ID       string    `json:"_id"`
	UserID   string    `json:"user"`
	Text     string    `json:"text"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Likes    []Like    `json:"likes"`
	Comments []Comment `json:"comments"`
	Date     time.Time `json:"date"`
	Rev      string    `json:"-"`
}

type Like struct {
	ID     string `json:"_id"`
	UserID string `json:"user"`
}

type Comment struct {
	ID     string    `json:"_id"`
	UserID string    `json:"user"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	Date   time.Time `json:"date"`
}

type CreatePostRequest struct {
	Text string `json:"text" validate:"required" msg:"Text is required"`
}

type CreateCommentRequest struct {
	Text string `json:"text" validate:"required" msg:"Text is required"`
}

func (r *CreatePostRequest) Sanitize() {
	r.Text = strings.TrimSpace(r.Text)
}

func (r *CreateCommentRequest) Sanitize() {
	r.Text = strings.TrimSpace(r.Text)
}

type PostResponse struct {
	Post *Post `json:"post"`
}

// LikedBy reports whether userID appears among the post's likes.
func (p *Post) LikedBy(userID string) bool {
	return p.likeIndex(userID) >= 0
}

func (p *Post) likeIndex(userID string) int {
	for i, like := range p.Likes {
		if like.UserID == userID {
			return i
		}
	}
	return -1
}

// AddLike prepends a like so the newest appears first.
func (p *Post) AddLike(like Like) {
	p.Likes = append([]Like{like}, p.Likes...)
}

func (p *Post) RemoveLike(userID string) bool {
	i := p.likeIndex(userID)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
	return true
}

func (p *Post) AddComment(comment Comment) {
	p.Comments = append([]Comment{comment}, p.Comments...)
}

func (p *Post) FindComment(commentID string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// RemoveComment deletes by comment id, never by author.
func (p *Post) RemoveComment(commentID string) bool {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			p.Comments = append(p.Comments[:i:i], p.Comments[i+1:]...)
			return true
		}
	}
	return false
}

// Normalize replaces nil slices so they encode as [] rather than null.
func (p *Post) Normalize() {
	if p.Likes == nil {
		p.Likes = []Like{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}

func (p *Post) Clone() *Post {
	c := *p
	c.Likes = append([]Like{}, p.Likes...)
	c.Comments = append([]Comment{}, p.Comments...)
	return &c
}
