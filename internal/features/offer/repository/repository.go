package repository

import (
	"context"

	"marketplace-backend/internal/features/offer/models"
)

// OfferFilter narrows offer queries. Zero values mean "no constraint";
// price bounds are inclusive and independently optional.
type OfferFilter struct {
	// NameSubstring matches case-insensitively anywhere in the name.
	NameSubstring string
	PriceMin      *float64
	PriceMax      *float64
}

// SortOrder controls result ordering.
type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price-asc"
	SortPriceDesc SortOrder = "price-desc"
)

// OfferRepository persists offer records. GetByID returns (nil, nil) when
// no offer matches.
type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id string) (*models.Offer, error)

	// Find returns the page window of matching offers in the requested
	// order; SortNone preserves insertion order.
	Find(ctx context.Context, filter OfferFilter, sort SortOrder, skip, limit int64) ([]*models.Offer, error)

	// Count returns the number of matching offers before pagination.
	Count(ctx context.Context, filter OfferFilter) (int64, error)

	Update(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, id string) error
}
