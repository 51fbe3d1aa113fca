package repository

import (
	"context"

	"marketplace-backend/internal/features/account/models"
)

// AccountRepository persists user identity records. Lookups return
// (nil, nil) when no account matches.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error

	// FindByEmail returns the full record including credentials;
	// only the login flow may use it.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// FindByToken resolves a bearer token; credentials are excluded
	// by projection.
	FindByToken(ctx context.Context, token string) (*models.Account, error)

	// FindByID returns an account without credentials.
	FindByID(ctx context.Context, id string) (*models.Account, error)
}
