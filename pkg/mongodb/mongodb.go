package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
	MinPoolSize    uint64
	Monitor        *event.CommandMonitor
}

// Client wraps mongo.Client with the database the service works in.
type Client struct {
	*mongo.Client
	database string
	log      *zap.Logger
}

// NewClient creates a MongoDB client and pings the deployment.
//
// An error from the connect step (bad URI, bad options) means no client
// exists and nil is returned. A failed ping still returns the client
// together with the error: the driver keeps trying to select a server on
// every operation, so the caller may choose to keep serving.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize)
	if cfg.Monitor != nil {
		opts.SetMonitor(cfg.Monitor)
	}

	mc, err := mongo.Connect(context.Background(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	c := &Client{
		Client:   mc,
		database: cfg.Database,
		log:      log,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := c.Ping(ctx); err != nil {
		return c, fmt.Errorf("failed to reach MongoDB: %w", err)
	}

	log.Info("MongoDB connected",
		zap.String("database", cfg.Database),
		zap.Uint64("max_pool_size", cfg.MaxPoolSize),
		zap.Uint64("min_pool_size", cfg.MinPoolSize),
	)

	return c, nil
}

// Collection returns a handle to the named collection in the configured database.
func (c *Client) Collection(name string) *mongo.Collection {
	return c.Client.Database(c.database).Collection(name)
}

// Ping checks that a primary is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client, waiting for in-use connections up to ctx's deadline.
func (c *Client) Close(ctx context.Context) error {
	c.log.Info("Closing MongoDB connection")
	return c.Client.Disconnect(ctx)
}
