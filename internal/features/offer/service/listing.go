package service

import (
	"context"
	"strconv"

	"marketplace-backend/internal/common/errors"
	accountmodels "marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/features/offer/models/dto"
	"marketplace-backend/internal/features/offer/repository"
)

// pageSize is the fixed listing page size.
const pageSize = 10

// ListParams are the raw listing query parameters. Page arrives as a
// string so that absent and non-numeric values can both normalize to 1.
type ListParams struct {
	Name     string
	PriceMin *float64
	PriceMax *float64
	Sort     string
	Page     string
}

func (s *offerService) List(ctx context.Context, params ListParams) (*dto.ListResponse, error) {
	page := normalizePage(params.Page)
	sort := normalizeSort(params.Sort)

	filter := repository.OfferFilter{
		NameSubstring: params.Name,
		PriceMin:      params.PriceMin,
		PriceMax:      params.PriceMax,
	}

	count, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, errors.NewDatabaseError("count offers", err)
	}

	skip := int64(page-1) * pageSize
	offers, err := s.repo.Find(ctx, filter, sort, skip, pageSize)
	if err != nil {
		return nil, errors.NewDatabaseError("find offers", err)
	}

	owners, err := s.ownerProfiles(ctx, offers)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.OfferResponse, 0, len(offers))
	for _, offer := range offers {
		items = append(items, dto.FromOffer(offer, owners[offer.OwnerID]))
	}

	return &dto.ListResponse{
		Count:  count,
		Offers: items,
		Page:   page,
	}, nil
}

func (s *offerService) GetByID(ctx context.Context, id string) (*dto.OfferResponse, error) {
	offer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("find offer", err)
	}
	if offer == nil {
		return nil, errors.NewNotFoundError("offer", id)
	}

	owner := accountmodels.PublicProfile{}
	account, err := s.accounts.FindByID(ctx, offer.OwnerID)
	if err != nil {
		return nil, errors.NewDatabaseError("find offer owner", err)
	}
	if account != nil {
		owner = account.Public()
	}

	return dto.FromOffer(offer, owner), nil
}

// ownerProfiles resolves the public profile of each distinct owner on the
// page. Owners deleted since publication resolve to an empty profile.
func (s *offerService) ownerProfiles(ctx context.Context, offers []*models.Offer) (map[string]accountmodels.PublicProfile, error) {
	profiles := make(map[string]accountmodels.PublicProfile)
	for _, offer := range offers {
		if _, ok := profiles[offer.OwnerID]; ok {
			continue
		}
		account, err := s.accounts.FindByID(ctx, offer.OwnerID)
		if err != nil {
			return nil, errors.NewDatabaseError("find offer owner", err)
		}
		if account != nil {
			profiles[offer.OwnerID] = account.Public()
		} else {
			profiles[offer.OwnerID] = accountmodels.PublicProfile{}
		}
	}
	return profiles, nil
}

// normalizePage clamps the page parameter to 1 when absent, non-numeric
// or less than 1.
func normalizePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func normalizeSort(raw string) repository.SortOrder {
	switch raw {
	case string(repository.SortPriceAsc):
		return repository.SortPriceAsc
	case string(repository.SortPriceDesc):
		return repository.SortPriceDesc
	default:
		return repository.SortNone
	}
}
