package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/cache"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/model"
	"creator-funnel/internal/repository"
	"creator-funnel/internal/testutil"
)

func validRegistration() *dto.RegisterCreatorRequest {
	return &dto.RegisterCreatorRequest{
		Email:              "alice@example.com",
		PhoneNumber:        "0754000000",
		Name:               "Alice",
		ClubzilaCreatorID:  "1821",
		ClubzilaAuthID:     "107",
		SubscriptionAmount: decimal.NewFromInt(1500),
	}
}

func TestRegisterCreatorDefaults(t *testing.T) {
	svc := NewCreatorService(repository.NewCreatorRepository(testutil.NewTestDB(t)), nil, nil, nil)

	c, err := svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, model.CreatorPending, c.Status)
	assert.Equal(t, "USD", c.Currency)
}

func TestRegisterCreatorMissingField(t *testing.T) {
	svc := NewCreatorService(repository.NewCreatorRepository(testutil.NewTestDB(t)), nil, nil, nil)

	req := validRegistration()
	req.ClubzilaAuthID = ""
	_, err := svc.Register(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "Missing required field: clubzila_auth_id", err.Error())

	req = validRegistration()
	req.SubscriptionAmount = decimal.Zero
	_, err = svc.Register(context.Background(), req)
	assert.Equal(t, "Missing required field: subscription_amount", err.Error())
}

func TestCreatorStatusLifecycle(t *testing.T) {
	svc := NewCreatorService(repository.NewCreatorRepository(testutil.NewTestDB(t)), nil, nil, nil)
	ctx := context.Background()

	c, err := svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, c.ID, "active")
	require.NoError(t, err)
	assert.Equal(t, model.CreatorActive, updated.Status)

	_, err = svc.UpdateStatus(ctx, c.ID, "banned")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.UpdateStatus(ctx, "missing", "active")
	assert.ErrorIs(t, err, ErrCreatorNotFound)

	list, p, err := svc.List(ctx, dto.CreatorFilter{Status: "active", Limit: 500})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 100, p.Limit)
}

func TestNormalizePage(t *testing.T) {
	page, limit, offset := normalizePage(0, 0)
	assert.Equal(t, []int{1, 20, 0}, []int{page, limit, offset})

	page, limit, offset = normalizePage(3, 10)
	assert.Equal(t, []int{3, 10, 20}, []int{page, limit, offset})
}

func TestCreatorStatusChangeEvictsCachedPages(t *testing.T) {
	f := newPageFixture(t)
	c := f.activeCreator(t)
	ctx := context.Background()
	svc := NewCreatorService(f.creators, f.pages, f.cache, nil)

	page, err := f.svc.Create(ctx, &dto.CreateLandingPageRequest{
		CreatorID: c.ID, Title: "Alice", Template: "minimal", CreatorIDDisplay: "@alice", SuccessRedirectURL: "https://e.com/ok",
	})
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, page.PageID)
	require.NoError(t, err)
	require.True(t, f.redis.Exists(cache.PageKey(page.PageID)))

	_, err = svc.UpdateStatus(ctx, c.ID, "suspended")
	require.NoError(t, err)
	assert.False(t, f.redis.Exists(cache.PageKey(page.PageID)))
}
