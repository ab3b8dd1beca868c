// Package docstore wraps the document store connection and implements the
// materializer's destination contract on a mongo collection.
package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	cerrors "github.com/cineexplorer/cinedoc/internal/errors"
)

// Config holds document store connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// DefaultConfig returns a default document store configuration.
func DefaultConfig() Config {
	return Config{
		URI:        "mongodb://localhost:27017",
		Database:   "cineexplorer",
		Collection: "movies_complete",
		Timeout:    10 * time.Second,
	}
}

// Client wraps the mongo client and the destination collection handle.
type Client struct {
	client  *mongo.Client
	db      *mongo.Database
	coll    *mongo.Collection
	timeout time.Duration
}

// Connect creates a client and verifies connectivity with a ping. An
// unreachable store surfaces as SourceUnavailable.
func Connect(ctx context.Context, config Config) (*Client, error) {
	const op = "docstore.Connect"

	opts := options.Client().
		ApplyURI(config.URI).
		SetServerSelectionTimeout(config.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to create document store client", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, cerrors.Wrap(cerrors.KindSourceUnavailable, op, "failed to ping document store", err)
	}

	db := client.Database(config.Database)
	return &Client{
		client:  client,
		db:      db,
		coll:    db.Collection(config.Collection),
		timeout: config.Timeout,
	}, nil
}

// Collection returns the destination collection handle.
func (c *Client) Collection() *mongo.Collection {
	return c.coll
}

// Close disconnects from the document store.
func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
