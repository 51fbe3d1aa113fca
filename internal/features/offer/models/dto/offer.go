package dto

import (
	"time"

	accountmodels "marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/platform/storage"
)

// OfferResponse is the shaped offer payload with the denormalized owner
// view (username and avatar only, never auth fields).
type OfferResponse struct {
	ID          string                      `json:"id"`
	Name        string                      `json:"name"`
	Description string                      `json:"description"`
	Price       float64                     `json:"price"`
	Attributes  []models.Attribute          `json:"attributes"`
	Image       *storage.Asset              `json:"image,omitempty"`
	Gallery     []storage.Asset             `json:"gallery"`
	OwnerID     string                      `json:"owner_id"`
	Owner       accountmodels.PublicProfile `json:"owner"`
	CreatedAt   time.Time                   `json:"created_at"`
}

// ListResponse is one page of offers plus the pre-pagination match count
// and the normalized page number used.
type ListResponse struct {
	Count  int64            `json:"count"`
	Offers []*OfferResponse `json:"offers"`
	Page   int              `json:"page"`
}

// FromOffer shapes an offer with its owner's public profile.
func FromOffer(offer *models.Offer, owner accountmodels.PublicProfile) *OfferResponse {
	gallery := offer.Gallery
	if gallery == nil {
		gallery = []storage.Asset{}
	}
	attrs := offer.Attributes
	if attrs == nil {
		attrs = []models.Attribute{}
	}
	return &OfferResponse{
		ID:          offer.ID,
		Name:        offer.Name,
		Description: offer.Description,
		Price:       offer.Price,
		Attributes:  attrs,
		Image:       offer.Image,
		Gallery:     gallery,
		OwnerID:     offer.OwnerID,
		Owner:       owner,
		CreatedAt:   offer.CreatedAt,
	}
}
