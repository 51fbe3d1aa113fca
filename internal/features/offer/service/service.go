package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/common/errors"
	"marketplace-backend/internal/common/logger"
	accountmodels "marketplace-backend/internal/features/account/models"
	accountrepo "marketplace-backend/internal/features/account/repository"
	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/features/offer/models/dto"
	"marketplace-backend/internal/features/offer/repository"
	"marketplace-backend/internal/platform/storage"
)

const primaryImageSlot = "main"

// PublishInput carries a publish request. Gallery files were already
// normalized to an ordered list at the boundary; Image must be present.
type PublishInput struct {
	Fields  models.OfferFields
	Image   []byte
	Gallery [][]byte
}

// UpdateInput carries a partial update. A nil Image leaves the primary
// image untouched; gallery files are appended, never replacing.
type UpdateInput struct {
	Fields  models.OfferFields
	Image   []byte
	Gallery [][]byte
}

type OfferService interface {
	Publish(ctx context.Context, owner *accountmodels.Account, input *PublishInput) (*dto.OfferResponse, error)
	Update(ctx context.Context, id string, owner *accountmodels.Account, input *UpdateInput) (*dto.OfferResponse, error)
	Delete(ctx context.Context, id string, owner *accountmodels.Account) error

	List(ctx context.Context, params ListParams) (*dto.ListResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OfferResponse, error)
}

type offerService struct {
	repo     repository.OfferRepository
	accounts accountrepo.AccountRepository
	assets   storage.AssetStore
}

func NewOfferService(repo repository.OfferRepository, accounts accountrepo.AccountRepository, assets storage.AssetStore) OfferService {
	return &offerService{
		repo:     repo,
		accounts: accounts,
		assets:   assets,
	}
}

func (s *offerService) Publish(ctx context.Context, owner *accountmodels.Account, input *PublishInput) (*dto.OfferResponse, error) {
	if input.Fields.Name == nil || *input.Fields.Name == "" ||
		input.Fields.Price == nil || len(input.Image) == 0 {
		return nil, errors.NewValidationError("name, price and picture are required")
	}
	if *input.Fields.Price < 0 {
		return nil, errors.NewValidationError("price must not be negative")
	}

	offer := &models.Offer{
		ID:         uuid.NewString(),
		Name:       *input.Fields.Name,
		Price:      *input.Fields.Price,
		Attributes: input.Fields.Attributes(),
		OwnerID:    owner.ID,
		CreatedAt:  time.Now().UTC(),
	}
	if input.Fields.Description != nil {
		offer.Description = *input.Fields.Description
	}

	prefix := offerAssetPrefix(offer.ID)

	image, err := s.assets.Upload(ctx, input.Image, prefix, primaryImageSlot)
	if err != nil {
		return nil, errors.NewAssetError("upload primary image", err)
	}
	offer.Image = image

	gallery, err := s.uploadGallery(ctx, prefix, input.Gallery)
	if err != nil {
		return nil, err
	}
	offer.Gallery = gallery

	// Persist only after every upload succeeded.
	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, errors.NewDatabaseError("create offer", err)
	}

	logger.Info().
		Str("offer_id", offer.ID).
		Str("owner_id", owner.ID).
		Int("gallery_size", len(offer.Gallery)).
		Msg("offer published")

	return dto.FromOffer(offer, owner.Public()), nil
}

func (s *offerService) Update(ctx context.Context, id string, owner *accountmodels.Account, input *UpdateInput) (*dto.OfferResponse, error) {
	offer, err := s.fetchOwned(ctx, id, owner)
	if err != nil {
		return nil, err
	}

	if input.Fields.Name != nil {
		offer.Name = *input.Fields.Name
	}
	if input.Fields.Description != nil {
		offer.Description = *input.Fields.Description
	}
	if input.Fields.Price != nil {
		if *input.Fields.Price < 0 {
			return nil, errors.NewValidationError("price must not be negative")
		}
		offer.Price = *input.Fields.Price
	}

	// Supplying any attribute replaces the whole list with the supplied
	// subset; attributes not resupplied are dropped.
	if input.Fields.HasAttributes() {
		offer.Attributes = input.Fields.Attributes()
	}

	prefix := offerAssetPrefix(offer.ID)

	if len(input.Image) > 0 {
		image, err := s.assets.Upload(ctx, input.Image, prefix, primaryImageSlot)
		if err != nil {
			return nil, errors.NewAssetError("upload primary image", err)
		}
		// The previous descriptor is overwritten; its asset is not
		// deleted from the store.
		offer.Image = image
	}

	appended, err := s.uploadGallery(ctx, prefix, input.Gallery)
	if err != nil {
		return nil, err
	}
	offer.Gallery = append(offer.Gallery, appended...)

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, errors.NewDatabaseError("update offer", err)
	}

	return dto.FromOffer(offer, owner.Public()), nil
}

func (s *offerService) Delete(ctx context.Context, id string, owner *accountmodels.Account) error {
	offer, err := s.fetchOwned(ctx, id, owner)
	if err != nil {
		return err
	}

	var keys []string
	if offer.Image != nil {
		keys = append(keys, offer.Image.Key)
	}
	for _, asset := range offer.Gallery {
		keys = append(keys, asset.Key)
	}

	// Best-effort cleanup: asset deletions run concurrently and their
	// failures never block deletion of the record.
	var wg sync.WaitGroup
	for _, key := range keys {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := s.assets.Delete(ctx, key); err != nil {
				logger.Warn().
					Err(err).
					Str("offer_id", offer.ID).
					Str("asset_key", key).
					Msg("failed to delete offer asset")
			}
		}(key)
	}
	wg.Wait()

	if err := s.repo.Delete(ctx, offer.ID); err != nil {
		return errors.NewDatabaseError("delete offer", err)
	}

	logger.Info().
		Str("offer_id", offer.ID).
		Str("owner_id", owner.ID).
		Msg("offer deleted")

	return nil
}

// fetchOwned loads an offer and enforces the ownership check shared by
// Update and Delete.
func (s *offerService) fetchOwned(ctx context.Context, id string, owner *accountmodels.Account) (*models.Offer, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find offer", err)
	}
	if offer == nil {
		return nil, errors.NewNotFoundError("offer", id)
	}
	if offer.OwnerID != owner.ID {
		return nil, errors.NewForbiddenError("offer belongs to another account")
	}
	return offer, nil
}

// uploadGallery uploads gallery files sequentially, preserving submission
// order. Slot names combine the upload timestamp with the index so they
// never collide across calls.
func (s *offerService) uploadGallery(ctx context.Context, prefix string, files [][]byte) ([]storage.Asset, error) {
	var gallery []storage.Asset
	for i, data := range files {
		slot := fmt.Sprintf("gallery_%d_%d", time.Now().UnixMilli(), i)
		asset, err := s.assets.Upload(ctx, data, prefix, slot)
		if err != nil {
			return nil, errors.NewAssetError("upload gallery image", err)
		}
		gallery = append(gallery, *asset)
	}
	return gallery, nil
}

func offerAssetPrefix(id string) string {
	return fmt.Sprintf("offers/%s", id)
}
