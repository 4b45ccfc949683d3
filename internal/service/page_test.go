package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
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

type pageFixture struct {
	svc      *pageServiceImpl
	pages    repository.LandingPageRepository
	creators repository.CreatorRepository
	cache    cache.PageCache
	redis    *miniredis.Miniredis
}

func newPageFixture(t *testing.T) *pageFixture {
	t.Helper()
	db := testutil.NewTestDB(t)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := &pageFixture{
		pages:    repository.NewLandingPageRepository(db),
		creators: repository.NewCreatorRepository(db),
		cache:    cache.NewPageCache(rdb, time.Minute),
		redis:    mr,
	}
	f.svc = NewPageService(
		f.pages,
		f.creators,
		f.cache,
		PageDefaults{BaseURL: "https://funnel.example.com/"},
		nil,
	).(*pageServiceImpl)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func (f *pageFixture) activeCreator(t *testing.T) *model.Creator {
	t.Helper()
	c := &model.Creator{
		ID:                 uuid.NewString(),
		Email:              "alice@example.com",
		PhoneNumber:        "0754000000",
		Name:               "Alice",
		Status:             model.CreatorActive,
		ClubzilaCreatorID:  "1821",
		ClubzilaAuthID:     "107",
		SubscriptionAmount: decimal.NewFromInt(2000),
		Currency:           "TZS",
	}
	require.NoError(t, f.creators.Create(context.Background(), c))
	return c
}

func TestCreateBuildsStructuredPageID(t *testing.T) {
	f := newPageFixture(t)
	c := f.activeCreator(t)

	page, err := f.svc.Create(context.Background(), &dto.CreateLandingPageRequest{
		CreatorID:          c.ID,
		Title:              "Alice Live",
		Template:           "modern",
		CreatorIDDisplay:   "@alice",
		SuccessRedirectURL: "https://example.com/thanks",
	})
	require.NoError(t, err)

	assert.Equal(t, "107-1821-modern-1700000000000", page.PageID)
	assert.Equal(t, model.PageDraft, page.Status)
	assert.Equal(t, "https://example.com/thanks", page.FailureRedirectURL)
	require.NotNil(t, page.CreatorRef)
	assert.Equal(t, int64(1821), *page.CreatorRef)
	require.NotNil(t, page.AccountRef)
	assert.Equal(t, int64(107), *page.AccountRef)
}

func TestCreateRequiresActiveCreator(t *testing.T) {
	f := newPageFixture(t)
	c := f.activeCreator(t)
	require.NoError(t, f.creators.UpdateStatus(context.Background(), c.ID, model.CreatorPending))

	_, err := f.svc.Create(context.Background(), &dto.CreateLandingPageRequest{
		CreatorID: c.ID, Title: "x", Template: "minimal", CreatorIDDisplay: "x", SuccessRedirectURL: "https://e.com",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(context.Background(), &dto.CreateLandingPageRequest{
		CreatorID: "missing", Title: "x", Template: "minimal", CreatorIDDisplay: "x", SuccessRedirectURL: "https://e.com",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveUsesCreatorPriceAndCaches(t *testing.T) {
	f := newPageFixture(t)
	c := f.activeCreator(t)
	ctx := context.Background()

	page, err := f.svc.Create(ctx, &dto.CreateLandingPageRequest{
		CreatorID: c.ID, Title: "Alice", Template: "minimal", CreatorIDDisplay: "@alice", SuccessRedirectURL: "https://e.com/ok",
	})
	require.NoError(t, err)

	data, err := f.svc.Resolve(ctx, page.PageID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", data.CreatorName)
	assert.Equal(t, "@alice", data.CreatorIDDisplay)
	assert.Equal(t, "https://e.com/ok", data.FailureRedirectURL)
	assert.True(t, data.SubscriptionAmount.Equal(decimal.NewFromInt(2000)))
	assert.True(t, f.redis.Exists(cache.PageKey(page.PageID)))

	// a cache hit does not touch the store
	require.NoError(t, f.pages.Update(ctx, page.PageID, map[string]interface{}{"title": "Changed behind cache"}))
	data, err = f.svc.Resolve(ctx, page.PageID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", data.CreatorName)
}

func TestResolveDefaultsWithoutCreator(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{
		PageID: "1821-minimal-1700000000000", CreatorID: "1821", Title: "Legacy", Template: "minimal",
	})
	require.NoError(t, err)

	data, err := f.svc.Resolve(ctx, "1821-minimal-1700000000000")
	require.NoError(t, err)
	assert.Equal(t, "1821", data.CreatorIDDisplay)
	assert.Equal(t, "TZS", data.Currency)
	assert.True(t, data.SubscriptionAmount.Equal(decimal.NewFromInt(500)))
}

func TestResolveNotFound(t *testing.T) {
	f := newPageFixture(t)

	_, err := f.svc.Resolve(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, err, ErrPageNotFound)

	_, err = f.svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestResolveArchivedIsNotFound(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: "1821-minimal-2", CreatorID: "1821", Title: "x", Template: "minimal"})
	require.NoError(t, err)
	archived := "archived"
	_, err = f.svc.Update(ctx, "1821-minimal-2", &dto.UpdateLandingPageRequest{Status: &archived})
	require.NoError(t, err)

	_, err = f.svc.Resolve(ctx, "1821-minimal-2")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestCreateWithIDValidation(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: "p", Title: "x", Template: "minimal"})
	require.Error(t, err)
	assert.Equal(t, "Missing required fields: pageId, creatorId, title, template", err.Error())

	req := &dto.PublicLandingPageRequest{PageID: "1821-minimal-3", CreatorID: "1821", Title: "x", Template: "minimal"}
	_, err = f.svc.CreateWithID(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.CreateWithID(ctx, req)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: "1821-minimal-4", CreatorID: "1821", Title: "Before", Template: "minimal"})
	require.NoError(t, err)
	_, err = f.svc.Resolve(ctx, "1821-minimal-4")
	require.NoError(t, err)

	title := "After"
	page, err := f.svc.Update(ctx, "1821-minimal-4", &dto.UpdateLandingPageRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "After", page.Title)
	assert.False(t, f.redis.Exists(cache.PageKey("1821-minimal-4")))

	data, err := f.svc.Resolve(ctx, "1821-minimal-4")
	require.NoError(t, err)
	assert.Equal(t, "After", data.CreatorName)

	bad := "gallery"
	_, err = f.svc.Update(ctx, "1821-minimal-4", &dto.UpdateLandingPageRequest{Template: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Update(ctx, "missing", &dto.UpdateLandingPageRequest{Title: &title})
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestUpdateTemplateRederivesRefs(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: "107-1821-x", CreatorID: "107", Title: "x", Template: "minimal"})
	require.NoError(t, err)

	modern := "modern"
	page, err := f.svc.Update(ctx, "107-1821-x", &dto.UpdateLandingPageRequest{Template: &modern})
	require.NoError(t, err)
	assert.Equal(t, "modern", page.Template)
	require.NotNil(t, page.AccountRef)
	assert.Equal(t, int64(107), *page.AccountRef)
	require.NotNil(t, page.CreatorRef)
	assert.Equal(t, int64(1821), *page.CreatorRef)

	minimal := "minimal"
	page, err = f.svc.Update(ctx, "107-1821-x", &dto.UpdateLandingPageRequest{Template: &minimal})
	require.NoError(t, err)
	assert.Nil(t, page.AccountRef)
	require.NotNil(t, page.CreatorRef)
	assert.Equal(t, int64(107), *page.CreatorRef)
}

func TestUpdateTemplateRejectsUnreadablePageID(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: "1821-minimal-x", CreatorID: "1821", Title: "x", Template: "minimal"})
	require.NoError(t, err)

	modern := "modern"
	_, err = f.svc.Update(ctx, "1821-minimal-x", &dto.UpdateLandingPageRequest{Template: &modern})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, "Page ID 1821-minimal-x cannot be used with template modern: creator ID must be a valid integer", err.Error())

	page, err := f.pages.FindByPageID(ctx, "1821-minimal-x")
	require.NoError(t, err)
	assert.Equal(t, "minimal", page.Template)
	require.NotNil(t, page.CreatorRef)
	assert.Equal(t, int64(1821), *page.CreatorRef)
	assert.Nil(t, page.AccountRef)

	// same template is a no-op for the refs
	_, err = f.svc.Update(ctx, "1821-minimal-x", &dto.UpdateLandingPageRequest{Template: &page.Template})
	require.NoError(t, err)
}

func TestPublishReturnsPublicURL(t *testing.T) {
	f := newPageFixture(t)
	c := f.activeCreator(t)
	ctx := context.Background()

	page, err := f.svc.Create(ctx, &dto.CreateLandingPageRequest{
		CreatorID: c.ID, Title: "Alice", Template: "minimal", CreatorIDDisplay: "@alice", SuccessRedirectURL: "https://e.com",
	})
	require.NoError(t, err)

	res, err := f.svc.Publish(ctx, page.PageID)
	require.NoError(t, err)
	assert.Equal(t, "https://funnel.example.com/page/"+page.PageID, res.PublicURL)
	assert.True(t, strings.HasPrefix(page.PageID, "1821-minimal-"))

	stored, err := f.pages.FindByPageID(ctx, page.PageID)
	require.NoError(t, err)
	assert.Equal(t, model.PagePublished, stored.Status)
	assert.NotNil(t, stored.PublishedAt)

	_, err = f.svc.Publish(ctx, "missing")
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestListPagesPaginates(t *testing.T) {
	f := newPageFixture(t)
	ctx := context.Background()

	for _, id := range []string{"1-minimal-1", "2-minimal-1", "3-betting-1"} {
		template := "minimal"
		if strings.Contains(id, "betting") {
			template = "betting"
		}
		_, err := f.svc.CreateWithID(ctx, &dto.PublicLandingPageRequest{PageID: id, CreatorID: "c", Title: id, Template: template})
		require.NoError(t, err)
	}

	pages, p, err := f.svc.List(ctx, dto.LandingPageFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, pages, 2)
	assert.Equal(t, int64(3), p.Total)
	assert.Equal(t, 1, p.Page)

	pages, _, err = f.svc.List(ctx, dto.LandingPageFilter{Template: "betting"})
	require.NoError(t, err)
	assert.Len(t, pages, 1)

	_, _, err = f.svc.List(ctx, dto.LandingPageFilter{Status: "weird"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
