package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/account/repository"
	platform "marketplace-backend/internal/platform/mongo"
)

type accountRepository struct {
	collection *mongo.Collection
}

func NewAccountRepository(db *platform.DB) repository.AccountRepository {
	return &accountRepository{
		collection: db.Collection("accounts"),
	}
}

// EnsureIndexes creates the unique email index. Called once at startup.
func EnsureIndexes(ctx context.Context, db *platform.DB) error {
	_, err := db.Collection("accounts").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create account indexes: %w", err)
	}
	return nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	_, err := r.collection.InsertOne(ctx, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email}, nil)
}

func (r *accountRepository) FindByToken(ctx context.Context, token string) (*models.Account, error) {
	// Credentials are excluded here, not post-filtered by callers.
	projection := bson.M{"hash": 0, "salt": 0}
	return r.findOne(ctx, bson.M{"token": token}, projection)
}

func (r *accountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	projection := bson.M{"hash": 0, "salt": 0}
	return r.findOne(ctx, bson.M{"_id": id}, projection)
}

func (r *accountRepository) findOne(ctx context.Context, filter bson.M, projection bson.M) (*models.Account, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}

	var account models.Account
	err := r.collection.FindOne(ctx, filter, opts).Decode(&account)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return &account, nil
}
