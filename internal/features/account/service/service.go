package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketplace-backend/internal/common/errors"
	"marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/account/repository"
	"marketplace-backend/internal/platform/storage"
)

// SignupInput carries the signup form. Avatar is nil when no file was
// submitted.
type SignupInput struct {
	Email      string
	Username   string
	Password   string
	Newsletter bool
	Avatar     []byte
}

type AccountService interface {
	Signup(ctx context.Context, input *SignupInput) (*models.Account, error)
	Login(ctx context.Context, email, password string) (*models.Account, error)

	// GetByToken resolves a bearer token to the acting account,
	// credentials excluded.
	GetByToken(ctx context.Context, token string) (*models.Account, error)
}

type accountService struct {
	repo   repository.AccountRepository
	assets storage.AssetStore
}

func NewAccountService(repo repository.AccountRepository, assets storage.AssetStore) AccountService {
	return &accountService{
		repo:   repo,
		assets: assets,
	}
}

func (s *accountService) Signup(ctx context.Context, input *SignupInput) (*models.Account, error) {
	if input.Email == "" || input.Username == "" || input.Password == "" {
		return nil, errors.NewValidationError("email, username and password are required")
	}

	existing, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, errors.NewDatabaseError("find account by email", err)
	}
	if existing != nil {
		return nil, errors.NewConflictError("email already registered")
	}

	salt, err := randomHex(8)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to generate salt")
	}
	token, err := randomHex(32)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to generate token")
	}

	account := &models.Account{
		ID:         uuid.NewString(),
		Email:      input.Email,
		Username:   input.Username,
		Newsletter: input.Newsletter,
		Token:      token,
		Hash:       hashPassword(input.Password, salt),
		Salt:       salt,
		CreatedAt:  time.Now().UTC(),
	}

	if len(input.Avatar) > 0 {
		prefix := fmt.Sprintf("users/%s", account.Username)
		asset, err := s.assets.Upload(ctx, input.Avatar, prefix, "avatar")
		if err != nil {
			return nil, errors.NewAssetError("upload avatar", err)
		}
		account.Avatar = asset
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, errors.NewDatabaseError("create account", err)
	}

	return account, nil
}

func (s *accountService) Login(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewDatabaseError("find account by email", err)
	}
	if account == nil {
		return nil, errors.NewUnauthorizedError("email or password is incorrect")
	}

	candidate := hashPassword(password, account.Salt)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(account.Hash)) != 1 {
		return nil, errors.NewUnauthorizedError("email or password is incorrect")
	}

	return account, nil
}

func (s *accountService) GetByToken(ctx context.Context, token string) (*models.Account, error) {
	account, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return nil, errors.NewDatabaseError("find account by token", err)
	}
	if account == nil {
		return nil, errors.NewUnauthorizedError("invalid token")
	}
	return account, nil
}

// hashPassword derives the stored credential: base64(SHA256(password+salt)).
func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
