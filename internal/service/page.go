package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/cache"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/model"
	"creator-funnel/internal/pageid"
	"creator-funnel/internal/repository"
)

var ErrPageNotFound = apperr.NotFound("Landing page not found")

type PageService interface {
	// Resolve returns the display data of a live page. Archived pages are not found.
	Resolve(ctx context.Context, pageID string) (*dto.PageData, error)
	Create(ctx context.Context, req *dto.CreateLandingPageRequest) (*model.LandingPage, error)
	CreateWithID(ctx context.Context, req *dto.PublicLandingPageRequest) (*model.LandingPage, error)
	Update(ctx context.Context, pageID string, req *dto.UpdateLandingPageRequest) (*model.LandingPage, error)
	Publish(ctx context.Context, pageID string) (*dto.PublishResult, error)
	List(ctx context.Context, filter dto.LandingPageFilter) ([]model.LandingPage, *dto.Pagination, error)
}

type PageDefaults struct {
	BaseURL  string
	Amount   decimal.Decimal
	Currency string
}

type pageServiceImpl struct {
	pageRepo    repository.LandingPageRepository
	creatorRepo repository.CreatorRepository
	cache       cache.PageCache
	group       singleflight.Group
	defaults    PageDefaults
	now         func() time.Time
	log         *zap.Logger
}

func NewPageService(
	pageRepo repository.LandingPageRepository,
	creatorRepo repository.CreatorRepository,
	pageCache cache.PageCache,
	defaults PageDefaults,
	log *zap.Logger,
) PageService {
	if pageCache == nil {
		pageCache = cache.NewPageCache(nil, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if defaults.Currency == "" {
		defaults.Currency = "TZS"
	}
	if defaults.Amount.IsZero() {
		defaults.Amount = decimal.NewFromInt(500)
	}

	return &pageServiceImpl{
		pageRepo:    pageRepo,
		creatorRepo: creatorRepo,
		cache:       pageCache,
		defaults:    defaults,
		now:         time.Now,
		log:         log.With(zap.String("component", "page_service")),
	}
}

func (s *pageServiceImpl) Resolve(ctx context.Context, pageID string) (*dto.PageData, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, apperr.Validation("Page ID is required")
	}

	cached, err := s.cache.Get(ctx, pageID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("page cache read failed", zap.String("page_id", pageID), zap.Error(err))
	}

	v, err, _ := s.group.Do(pageID, func() (interface{}, error) {
		page, err := s.pageRepo.FindByPageID(ctx, pageID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("find landing page: %w", err)
		}
		if page.Status == model.PageArchived {
			return nil, ErrPageNotFound
		}

		data, err := s.pageData(ctx, page)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, data); err != nil {
			s.log.Warn("page cache write failed", zap.String("page_id", pageID), zap.Error(err))
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*dto.PageData), nil
}

func (s *pageServiceImpl) pageData(ctx context.Context, page *model.LandingPage) (*dto.PageData, error) {
	data := &dto.PageData{
		PageID:             page.PageID,
		Template:           page.Template,
		CreatorName:        page.Title,
		Description:        page.Description,
		CreatorIDDisplay:   page.CreatorIDDisplay,
		SuccessRedirectURL: page.SuccessRedirectURL,
		FailureRedirectURL: page.FailureRedirectURL,
		SubscriptionAmount: s.defaults.Amount,
		Currency:           s.defaults.Currency,
	}
	if data.FailureRedirectURL == "" {
		data.FailureRedirectURL = data.SuccessRedirectURL
	}

	if page.CreatorID == nil {
		return data, nil
	}

	creator, err := s.creatorRepo.Get(ctx, *page.CreatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get page creator: %w", err)
	}
	if creator.SubscriptionAmount.IsPositive() {
		data.SubscriptionAmount = creator.SubscriptionAmount
	}
	if creator.Currency != "" {
		data.Currency = creator.Currency
	}
	return data, nil
}

func (s *pageServiceImpl) Create(ctx context.Context, req *dto.CreateLandingPageRequest) (*model.LandingPage, error) {
	template := pageid.Normalize(req.Template)
	if !pageid.Known(template) {
		return nil, apperr.Validation("Invalid field: template")
	}

	creator, err := s.creatorRepo.Get(ctx, req.CreatorID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}
	if creator.Status != model.CreatorActive {
		return nil, apperr.Validation("Creator is not active")
	}

	creatorRef, err := strconv.ParseInt(creator.ClubzilaCreatorID, 10, 64)
	if err != nil {
		return nil, apperr.Validation(fmt.Sprintf("Invalid creator ID: %s. Creator ID must be a number.", creator.ClubzilaCreatorID))
	}
	var accountRef *int64
	if v, err := strconv.ParseInt(creator.ClubzilaAuthID, 10, 64); err == nil {
		accountRef = &v
	}

	now := s.now()
	ref, err := pageid.New(creatorRef, accountRef, template, now)
	if err != nil {
		return nil, apperr.ValidationDetail("Landing page creation failed", err.Error())
	}

	page := &model.LandingPage{
		ID:                 uuid.NewString(),
		PageID:             ref.String(),
		CreatorID:          &creator.ID,
		Title:              req.Title,
		Description:        req.Description,
		Template:           template,
		CustomDomain:       req.CustomDomain,
		Status:             model.PageDraft,
		CreatorIDDisplay:   req.CreatorIDDisplay,
		SuccessRedirectURL: req.SuccessRedirectURL,
		FailureRedirectURL: req.FailureRedirectURL,
		CreatorRef:         &ref.CreatorRef,
		AccountRef:         ref.AccountRef,
	}
	if page.FailureRedirectURL == "" {
		page.FailureRedirectURL = page.SuccessRedirectURL
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("store landing page: %w", err)
	}

	s.log.Info("landing page created",
		zap.String("page_id", page.PageID),
		zap.String("creator_id", creator.ID),
		zap.String("template", template),
	)
	return page, nil
}

func (s *pageServiceImpl) CreateWithID(ctx context.Context, req *dto.PublicLandingPageRequest) (*model.LandingPage, error) {
	pageID := strings.TrimSpace(req.PageID)
	if pageID == "" || req.CreatorID == "" || req.Title == "" || req.Template == "" {
		return nil, apperr.Validation("Missing required fields: pageId, creatorId, title, template")
	}
	template := pageid.Normalize(req.Template)
	if !pageid.Known(template) {
		return nil, apperr.Validation("Invalid field: template")
	}

	_, err := s.pageRepo.FindByPageID(ctx, pageID)
	if err == nil {
		return nil, apperr.Conflict("Landing page already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find landing page: %w", err)
	}

	now := s.now()
	page := &model.LandingPage{
		ID:                 uuid.NewString(),
		PageID:             pageID,
		Title:              req.Title,
		Description:        req.Description,
		Template:           template,
		Status:             model.PagePublished,
		CreatorIDDisplay:   req.CreatorIDDisplay,
		SuccessRedirectURL: req.SuccessRedirectURL,
		FailureRedirectURL: req.FailureRedirectURL,
		PublishedAt:        &now,
	}
	if page.CreatorIDDisplay == "" {
		page.CreatorIDDisplay = req.CreatorID
	}
	if page.FailureRedirectURL == "" {
		page.FailureRedirectURL = page.SuccessRedirectURL
	}

	// legacy ids stay parseable at subscribe time even when refs are not stored
	if ref, err := pageid.Parse(pageID, template); err == nil {
		page.CreatorRef = &ref.CreatorRef
		page.AccountRef = ref.AccountRef
	}

	if creator, err := s.creatorRepo.Get(ctx, req.CreatorID); err == nil {
		page.CreatorID = &creator.ID
	}

	if err := s.pageRepo.Create(ctx, page); err != nil {
		return nil, fmt.Errorf("store landing page: %w", err)
	}

	s.log.Info("landing page stored", zap.String("page_id", page.PageID), zap.String("template", template))
	return page, nil
}

func (s *pageServiceImpl) Update(ctx context.Context, pageID string, req *dto.UpdateLandingPageRequest) (*model.LandingPage, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, apperr.Validation("Page ID is required")
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Template != nil {
		template := pageid.Normalize(*req.Template)
		if !pageid.Known(template) {
			return nil, apperr.Validation("Invalid field: template")
		}
		if err := s.retemplate(ctx, pageID, template, updates); err != nil {
			return nil, err
		}
	}
	if req.CreatorIDDisplay != nil {
		updates["creator_id_display"] = *req.CreatorIDDisplay
	}
	if req.SuccessRedirectURL != nil {
		updates["success_redirect_url"] = *req.SuccessRedirectURL
	}
	if req.FailureRedirectURL != nil {
		updates["failure_redirect_url"] = *req.FailureRedirectURL
	}
	if req.CustomDomain != nil {
		updates["custom_domain"] = *req.CustomDomain
	}
	if req.Status != nil {
		status := model.PageStatus(*req.Status)
		if !status.Valid() {
			return nil, apperr.Validation("Invalid field: status")
		}
		updates["status"] = status
		if status == model.PagePublished {
			updates["published_at"] = s.now()
		}
	}

	if len(updates) > 0 {
		updates["updated_at"] = s.now()
		err := s.pageRepo.Update(ctx, pageID, updates)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("update landing page: %w", err)
		}
		s.invalidate(ctx, pageID)
	}

	page, err := s.pageRepo.FindByPageID(ctx, pageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find landing page: %w", err)
	}
	return page, nil
}

// retemplate records a template change together with the refs the page id yields under it.
func (s *pageServiceImpl) retemplate(ctx context.Context, pageID, template string, updates map[string]interface{}) error {
	current, err := s.pageRepo.FindByPageID(ctx, pageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPageNotFound
	}
	if err != nil {
		return fmt.Errorf("find landing page: %w", err)
	}
	if pageid.Normalize(current.Template) == template {
		return nil
	}

	ref, err := pageid.Parse(pageID, template)
	if err != nil {
		return apperr.ValidationDetail(
			fmt.Sprintf("Page ID %s cannot be used with template %s", pageID, template),
			err.Error(),
		)
	}
	updates["template"] = template
	updates["creator_ref"] = ref.CreatorRef
	updates["account_ref"] = ref.AccountRef
	return nil
}

func (s *pageServiceImpl) Publish(ctx context.Context, pageID string) (*dto.PublishResult, error) {
	now := s.now()
	err := s.pageRepo.Update(ctx, pageID, map[string]interface{}{
		"status":       model.PagePublished,
		"published_at": now,
		"updated_at":   now,
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("publish landing page: %w", err)
	}
	s.invalidate(ctx, pageID)

	s.log.Info("landing page published", zap.String("page_id", pageID))
	return &dto.PublishResult{
		PageID:    pageID,
		PublicURL: PublicURL(s.defaults.BaseURL, pageID),
	}, nil
}

func (s *pageServiceImpl) List(ctx context.Context, filter dto.LandingPageFilter) ([]model.LandingPage, *dto.Pagination, error) {
	if filter.Status != "" && !model.PageStatus(filter.Status).Valid() {
		return nil, nil, apperr.Validation("Invalid field: status")
	}

	page, limit, offset := normalizePage(filter.Page, filter.Limit)
	pages, total, err := s.pageRepo.List(ctx, repository.LandingPageQuery{
		CreatorID: filter.CreatorID,
		Status:    filter.Status,
		Template:  filter.Template,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list landing pages: %w", err)
	}

	return pages, &dto.Pagination{Page: page, Limit: limit, Total: total}, nil
}

func (s *pageServiceImpl) invalidate(ctx context.Context, pageID string) {
	if err := s.cache.Delete(ctx, pageID); err != nil {
		s.log.Warn("page cache invalidation failed", zap.String("page_id", pageID), zap.Error(err))
	}
}

func PublicURL(baseURL, pageID string) string {
	return strings.TrimRight(baseURL, "/") + "/page/" + pageID
}
