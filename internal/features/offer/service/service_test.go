package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-backend/internal/common/errors"
	accountmodels "marketplace-backend/internal/features/account/models"
	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/features/offer/repository"
	"marketplace-backend/internal/platform/storage"
)

// --- fakes ---

type fakeAssetStore struct {
	mu        sync.Mutex
	uploads   map[string][]byte
	deleted   []string
	uploadErr error
	deleteErr error
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{uploads: make(map[string][]byte)}
}

func (f *fakeAssetStore) Upload(_ context.Context, data []byte, pathPrefix, slot string) (*storage.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	key := fmt.Sprintf("%s/%s", pathPrefix, slot)
	f.uploads[key] = data
	return &storage.Asset{
		URL: "https://assets.test/" + key,
		Key: key,
	}, nil
}

func (f *fakeAssetStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeOfferRepo struct {
	order  []string
	offers map[string]*models.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: make(map[string]*models.Offer)}
}

func (f *fakeOfferRepo) Create(_ context.Context, offer *models.Offer) error {
	cp := *offer
	f.offers[offer.ID] = &cp
	f.order = append(f.order, offer.ID)
	return nil
}

func (f *fakeOfferRepo) GetByID(_ context.Context, id string) (*models.Offer, error) {
	offer, ok := f.offers[id]
	if !ok {
		return nil, nil
	}
	cp := *offer
	return &cp, nil
}

func (f *fakeOfferRepo) matches(offer *models.Offer, filter repository.OfferFilter) bool {
	if filter.NameSubstring != "" &&
		!strings.Contains(strings.ToLower(offer.Name), strings.ToLower(filter.NameSubstring)) {
		return false
	}
	if filter.PriceMin != nil && offer.Price < *filter.PriceMin {
		return false
	}
	if filter.PriceMax != nil && offer.Price > *filter.PriceMax {
		return false
	}
	return true
}

func (f *fakeOfferRepo) matching(filter repository.OfferFilter) []*models.Offer {
	var result []*models.Offer
	for _, id := range f.order {
		offer := f.offers[id]
		if f.matches(offer, filter) {
			cp := *offer
			result = append(result, &cp)
		}
	}
	return result
}

func (f *fakeOfferRepo) Find(_ context.Context, filter repository.OfferFilter, order repository.SortOrder, skip, limit int64) ([]*models.Offer, error) {
	result := f.matching(filter)

	switch order {
	case repository.SortPriceAsc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	case repository.SortPriceDesc:
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	}

	if skip >= int64(len(result)) {
		return nil, nil
	}
	result = result[skip:]
	if limit < int64(len(result)) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeOfferRepo) Count(_ context.Context, filter repository.OfferFilter) (int64, error) {
	return int64(len(f.matching(filter))), nil
}

func (f *fakeOfferRepo) Update(_ context.Context, offer *models.Offer) error {
	cp := *offer
	f.offers[offer.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) Delete(_ context.Context, id string) error {
	delete(f.offers, id)
	for i, existing := range f.order {
		if existing == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeAccountRepo struct {
	accounts map[string]*accountmodels.Account
}

func newFakeAccountRepo(accounts ...*accountmodels.Account) *fakeAccountRepo {
	f := &fakeAccountRepo{accounts: make(map[string]*accountmodels.Account)}
	for _, a := range accounts {
		f.accounts[a.ID] = a
	}
	return f
}

func (f *fakeAccountRepo) Create(_ context.Context, account *accountmodels.Account) error {
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*accountmodels.Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func stripCredentials(a *accountmodels.Account) *accountmodels.Account {
	cp := *a
	cp.Hash = ""
	cp.Salt = ""
	return &cp
}

func (f *fakeAccountRepo) FindByToken(_ context.Context, token string) (*accountmodels.Account, error) {
	for _, a := range f.accounts {
		if a.Token == token {
			return stripCredentials(a), nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) FindByID(_ context.Context, id string) (*accountmodels.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, nil
	}
	return stripCredentials(a), nil
}

// --- helpers ---

func strptr(s string) *string   { return &s }
func f64ptr(v float64) *float64 { return &v }

func testAccount(id, username string) *accountmodels.Account {
	return &accountmodels.Account{
		ID:       id,
		Email:    username + "@example.com",
		Username: username,
		Token:    "token-" + id,
	}
}

type testEnv struct {
	svc      OfferService
	repo     *fakeOfferRepo
	accounts *fakeAccountRepo
	assets   *fakeAssetStore
	owner    *accountmodels.Account
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	owner := testAccount("owner-1", "alice")
	repo := newFakeOfferRepo()
	accounts := newFakeAccountRepo(owner)
	assets := newFakeAssetStore()
	return &testEnv{
		svc:      NewOfferService(repo, accounts, assets),
		repo:     repo,
		accounts: accounts,
		assets:   assets,
		owner:    owner,
	}
}

func validPublishInput() *PublishInput {
	return &PublishInput{
		Fields: models.OfferFields{
			Name:        strptr("Wool sweater"),
			Description: strptr("Barely worn"),
			Price:       f64ptr(25),
			Brand:       strptr("Acme"),
			Size:        strptr("M"),
		},
		Image: []byte("primary-image"),
	}
}

// --- publish ---

func TestPublish_MissingRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input *PublishInput
	}{
		{"no name", &PublishInput{Fields: models.OfferFields{Price: f64ptr(10)}, Image: []byte("img")}},
		{"empty name", &PublishInput{Fields: models.OfferFields{Name: strptr(""), Price: f64ptr(10)}, Image: []byte("img")}},
		{"no price", &PublishInput{Fields: models.OfferFields{Name: strptr("x")}, Image: []byte("img")}},
		{"no image", &PublishInput{Fields: models.OfferFields{Name: strptr("x"), Price: f64ptr(10)}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.Publish(ctx, env.owner, tc.input)
			require.Error(t, err)
			appErr, ok := errors.AsAppError(err)
			require.True(t, ok)
			assert.True(t, appErr.IsValidation())
			assert.Empty(t, env.repo.offers, "nothing may be persisted")
		})
	}
}

func TestPublish_GalleryLengthMatchesFiles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, n := range []int{0, 1, 3} {
		input := validPublishInput()
		for i := 0; i < n; i++ {
			input.Gallery = append(input.Gallery, []byte(fmt.Sprintf("gallery-%d", i)))
		}

		resp, err := env.svc.Publish(ctx, env.owner, input)
		require.NoError(t, err)
		assert.Len(t, resp.Gallery, n)
	}
}

func TestPublish_AttributesSubsetInOrder(t *testing.T) {
	env := newTestEnv(t)

	input := validPublishInput()
	input.Fields.Brand = strptr("Acme")
	input.Fields.Size = nil
	input.Fields.Color = strptr("blue")
	input.Fields.City = strptr("Lyon")

	resp, err := env.svc.Publish(context.Background(), env.owner, input)
	require.NoError(t, err)

	require.Len(t, resp.Attributes, 3)
	assert.Equal(t, models.AttributeBrand, resp.Attributes[0].Kind)
	assert.Equal(t, models.AttributeColor, resp.Attributes[1].Kind)
	assert.Equal(t, models.AttributeLocation, resp.Attributes[2].Kind)
	assert.Equal(t, "Lyon", resp.Attributes[2].Value)
}

func TestPublish_UploadFailurePersistsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.assets.uploadErr = fmt.Errorf("bucket unreachable")

	_, err := env.svc.Publish(context.Background(), env.owner, validPublishInput())
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeAssetUpstream, appErr.Code)
	assert.Empty(t, env.repo.offers)
}

func TestPublish_NegativePriceRejected(t *testing.T) {
	env := newTestEnv(t)

	input := validPublishInput()
	input.Fields.Price = f64ptr(-1)

	_, err := env.svc.Publish(context.Background(), env.owner, input)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.True(t, appErr.IsValidation())
}

func TestPublish_DenormalizedOwnerView(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.Publish(context.Background(), env.owner, validPublishInput())
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.Owner.Username)
	assert.Equal(t, env.owner.ID, resp.OwnerID)
}

// --- update ---

func publishOne(t *testing.T, env *testEnv, input *PublishInput) string {
	t.Helper()
	resp, err := env.svc.Publish(context.Background(), env.owner, input)
	require.NoError(t, err)
	return resp.ID
}

func TestUpdate_PriceOnlyLeavesRestUntouched(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validPublishInput()
	input.Gallery = [][]byte{[]byte("g1"), []byte("g2")}
	id := publishOne(t, env, input)

	resp, err := env.svc.Update(ctx, id, env.owner, &UpdateInput{
		Fields: models.OfferFields{Price: f64ptr(99)},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(99), resp.Price)
	assert.Equal(t, "Wool sweater", resp.Name)
	assert.Equal(t, "Barely worn", resp.Description)
	require.Len(t, resp.Attributes, 2)
	assert.Equal(t, models.AttributeBrand, resp.Attributes[0].Kind)
	assert.Equal(t, models.AttributeSize, resp.Attributes[1].Kind)
	assert.Len(t, resp.Gallery, 2, "gallery must be untouched when no files supplied")
}

func TestUpdate_AttributeReplacementDropsUnsupplied(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := publishOne(t, env, validPublishInput()) // has BRAND and SIZE

	resp, err := env.svc.Update(ctx, id, env.owner, &UpdateInput{
		Fields: models.OfferFields{Brand: strptr("OtherBrand")},
	})
	require.NoError(t, err)

	require.Len(t, resp.Attributes, 1)
	assert.Equal(t, models.AttributeBrand, resp.Attributes[0].Kind)
	assert.Equal(t, "OtherBrand", resp.Attributes[0].Value)
}

func TestUpdate_GalleryAppends(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validPublishInput()
	input.Gallery = [][]byte{[]byte("g1")}
	id := publishOne(t, env, input)

	resp, err := env.svc.Update(ctx, id, env.owner, &UpdateInput{
		Gallery: [][]byte{[]byte("g2"), []byte("g3")},
	})
	require.NoError(t, err)

	assert.Len(t, resp.Gallery, 3)
}

func TestUpdate_PrimaryImageOverwriteKeepsOldAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := publishOne(t, env, validPublishInput())

	resp, err := env.svc.Update(ctx, id, env.owner, &UpdateInput{
		Image: []byte("new-primary"),
	})
	require.NoError(t, err)

	require.NotNil(t, resp.Image)
	assert.Empty(t, env.assets.deleted, "replaced asset must not be deleted")
}

func TestUpdate_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Update(context.Background(), "missing", env.owner, &UpdateInput{})
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.True(t, appErr.IsNotFound())
}

func TestUpdate_ForbiddenForNonOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := publishOne(t, env, validPublishInput())

	stranger := testAccount("other-1", "mallory")
	_, err := env.svc.Update(ctx, id, stranger, &UpdateInput{
		Fields: models.OfferFields{Price: f64ptr(1)},
	})
	require.Error(t, err)

	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)
}

// --- delete ---

func TestDelete_ForbiddenKeepsOffer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := publishOne(t, env, validPublishInput())

	stranger := testAccount("other-1", "mallory")
	err := env.svc.Delete(ctx, id, stranger)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, errors.ErrCodeForbidden, appErr.Code)

	resp, err := env.svc.GetByID(ctx, id)
	require.NoError(t, err, "offer must remain retrievable")
	assert.Equal(t, id, resp.ID)
}

func TestDelete_RemovesAssetsAndRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validPublishInput()
	input.Gallery = [][]byte{[]byte("g1"), []byte("g2")}
	id := publishOne(t, env, input)

	require.NoError(t, env.svc.Delete(ctx, id, env.owner))

	assert.Len(t, env.assets.deleted, 3, "primary plus both gallery assets")

	_, err := env.svc.GetByID(ctx, id)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.True(t, appErr.IsNotFound())
}

func TestDelete_RecordGoneDespiteAssetFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := validPublishInput()
	input.Gallery = [][]byte{[]byte("g1")}
	id := publishOne(t, env, input)

	env.assets.deleteErr = fmt.Errorf("upstream down")

	require.NoError(t, env.svc.Delete(ctx, id, env.owner), "asset failures must not block deletion")

	_, err := env.svc.GetByID(ctx, id)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.True(t, appErr.IsNotFound())
}

func TestDelete_NotFound(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.Delete(context.Background(), "missing", env.owner)
	require.Error(t, err)
	appErr, _ := errors.AsAppError(err)
	assert.True(t, appErr.IsNotFound())
}

// --- round trip ---

func TestPublishThenGetByIDRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	published, err := env.svc.Publish(ctx, env.owner, validPublishInput())
	require.NoError(t, err)

	fetched, err := env.svc.GetByID(ctx, published.ID)
	require.NoError(t, err)

	assert.Equal(t, published.Name, fetched.Name)
	assert.Equal(t, published.Description, fetched.Description)
	assert.Equal(t, published.Price, fetched.Price)
	assert.Equal(t, published.Attributes, fetched.Attributes)
	assert.Equal(t, "alice", fetched.Owner.Username)
}
