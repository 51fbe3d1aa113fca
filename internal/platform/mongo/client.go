package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace-backend/internal/common/logger"
)

// DB wraps a connected Mongo client and the service database handle.
type DB struct {
	client   *mongo.Client
	database *mongo.Database
}

func NewConnection(ctx context.Context, uri, database string) (*DB, error) {
	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetMaxPoolSize(10)
	clientOptions.SetMaxConnIdleTime(30 * time.Second)
	clientOptions.SetTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info().Str("database", database).Msg("MongoDB connection established")

	return &DB{
		client:   client,
		database: client.Database(database),
	}, nil
}

func (db *DB) Close(ctx context.Context) error {
	return db.client.Disconnect(ctx)
}

// Collection returns a handle to the named collection.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.database.Collection(name)
}
