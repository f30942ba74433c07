package repository

import (
	"context"
	"fmt"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

const couchDesignDoc = "devconnector"

// OpenCouch makes a single connection attempt, creating the database and its
// Mango indexes when missing. Any failure is returned to the caller.
func OpenCouch(ctx context.Context, url, dbName string) (*kivik.Client, error) {
	client, err := kivik.New("couch", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
	}

	exists, err := client.DBExists(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, dbName); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	db := client.DB(dbName)
	indexes := map[string]interface{}{
		"type-email": map[string]interface{}{"fields": []string{"type", "email"}},
		"type":       map[string]interface{}{"fields": []string{"type"}},
	}
	for name, index := range indexes {
		if err := db.CreateIndex(ctx, couchDesignDoc, name, index); err != nil {
			return nil, fmt.Errorf("failed to create index %s: %w", name, err)
		}
	}

	return client, nil
}
