package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"devconnector-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
	"github.com/google/uuid"
)

const (
	docTypeUser       = "user"
	docTypeEmailClaim = "email_claim"
)

type userDocument struct {
	ID       string    `json:"_id"`
	Rev      string    `json:"_rev,omitempty"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Avatar   string    `json:"avatar"`
	Date     time.Time `json:"date"`
}

// emailClaimDocument reserves an address. Its id is derived from the email,
// so a second claim for the same address collides with a 409.
type emailClaimDocument struct {
	ID     string `json:"_id"`
	Type   string `json:"type"`
	UserID string `json:"user_id"`
}

type userRepository struct {
	client *kivik.Client
	dbName string
}

func NewUserRepository(client *kivik.Client, dbName string) UserRepository {
	return &userRepository{
		client: client,
		dbName: dbName,
	}
}

func userDocID(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func emailClaimDocID(email string) string {
	return fmt.Sprintf("email:%s", email)
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	db := r.client.DB(r.dbName)

	id := uuid.New().String()
	claim := emailClaimDocument{
		ID:     emailClaimDocID(user.Email),
		Type:   docTypeEmailClaim,
		UserID: id,
	}

	claimRev, err := db.Put(ctx, claim.ID, claim)
	if err != nil {
		if kivik.HTTPStatus(err) == http.StatusConflict {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to claim email: %w", err)
	}

	doc := userDocument{
		ID:       userDocID(id),
		Type:     docTypeUser,
		UserID:   id,
		Name:     user.Name,
		Email:    user.Email,
		Password: user.Password,
		Avatar:   user.Avatar,
		Date:     user.Date,
	}

	if _, err := db.Put(ctx, doc.ID, doc); err != nil {
		err = fmt.Errorf("failed to create user: %w", err)
		if _, delErr := db.Delete(ctx, claim.ID, claimRev); delErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to release email claim %s: %w", claim.ID, delErr))
		}
		return err
	}

	user.ID = id
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}

	db := r.client.DB(r.dbName)

	var doc userDocument
	if err := db.Get(ctx, userDocID(id)).ScanDoc(&doc); err != nil {
		if kivik.HTTPStatus(err) == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return doc.toDomain(), nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"type":  docTypeUser,
			"email": email,
		},
		"limit": 1,
	}

	rows := db.Find(ctx, query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query user by email: %w", err)
		}
		return nil, ErrNotFound
	}

	var doc userDocument
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return doc.toDomain(), nil
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:       d.UserID,
		Name:     d.Name,
		Email:    d.Email,
		Password: d.Password,
		Avatar:   d.Avatar,
		Date:     d.Date,
	}
}
