package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/features/offer/repository"
	platform "marketplace-backend/internal/platform/mongo"
)

type offerRepository struct {
	collection *mongo.Collection
}

func NewOfferRepository(db *platform.DB) repository.OfferRepository {
	return &offerRepository{
		collection: db.Collection("offers"),
	}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	_, err := r.collection.InsertOne(ctx, offer)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

func (r *offerRepository) GetByID(ctx context.Context, id string) (*models.Offer, error) {
	var offer models.Offer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&offer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}
	return &offer, nil
}

func (r *offerRepository) Find(ctx context.Context, filter repository.OfferFilter, sort repository.SortOrder, skip, limit int64) ([]*models.Offer, error) {
	opts := options.Find().
		SetSort(sortSpec(sort)).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find offers: %w", err)
	}
	defer cursor.Close(ctx)

	var offers []*models.Offer
	if err := cursor.All(ctx, &offers); err != nil {
		return nil, fmt.Errorf("failed to decode offers: %w", err)
	}
	return offers, nil
}

func (r *offerRepository) Count(ctx context.Context, filter repository.OfferFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count offers: %w", err)
	}
	return count, nil
}

func (r *offerRepository) Update(ctx context.Context, offer *models.Offer) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": offer.ID}, offer)
	if err != nil {
		return fmt.Errorf("failed to update offer: %w", err)
	}
	return nil
}

func (r *offerRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	return nil
}

func buildFilter(filter repository.OfferFilter) bson.M {
	query := bson.M{}

	if filter.NameSubstring != "" {
		query["name"] = primitive.Regex{
			Pattern: regexp.QuoteMeta(filter.NameSubstring),
			Options: "i",
		}
	}

	if filter.PriceMin != nil || filter.PriceMax != nil {
		price := bson.M{}
		if filter.PriceMin != nil {
			price["$gte"] = *filter.PriceMin
		}
		if filter.PriceMax != nil {
			price["$lte"] = *filter.PriceMax
		}
		query["price"] = price
	}

	return query
}

func sortSpec(sort repository.SortOrder) bson.D {
	switch sort {
	case repository.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}}
	case repository.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}}
	default:
		// Insertion order
		return bson.D{{Key: "created_at", Value: 1}}
	}
}
