package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/cache"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/model"
	"creator-funnel/internal/repository"
)

const defaultCreatorCurrency = "USD"

var ErrCreatorNotFound = apperr.NotFound("Creator not found")

type CreatorService interface {
	Register(ctx context.Context, req *dto.RegisterCreatorRequest) (*model.Creator, error)
	Get(ctx context.Context, id string) (*model.Creator, error)
	List(ctx context.Context, filter dto.CreatorFilter) ([]model.Creator, *dto.Pagination, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Creator, error)
}

type creatorServiceImpl struct {
	creatorRepo repository.CreatorRepository
	pageRepo    repository.LandingPageRepository
	cache       cache.PageCache
	log         *zap.Logger
}

func NewCreatorService(
	creatorRepo repository.CreatorRepository,
	pageRepo repository.LandingPageRepository,
	pageCache cache.PageCache,
	log *zap.Logger,
) CreatorService {
	if pageCache == nil {
		pageCache = cache.NewPageCache(nil, 0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &creatorServiceImpl{
		creatorRepo: creatorRepo,
		pageRepo:    pageRepo,
		cache:       pageCache,
		log:         log,
	}
}

func (s *creatorServiceImpl) Register(ctx context.Context, req *dto.RegisterCreatorRequest) (*model.Creator, error) {
	required := []struct {
		name  string
		value string
	}{
		{"email", req.Email},
		{"phone_number", req.PhoneNumber},
		{"name", req.Name},
		{"clubzila_creator_id", req.ClubzilaCreatorID},
		{"clubzila_auth_id", req.ClubzilaAuthID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, apperr.Validation("Missing required field: " + f.name)
		}
	}
	if !req.SubscriptionAmount.IsPositive() {
		return nil, apperr.Validation("Missing required field: subscription_amount")
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCreatorCurrency
	}

	creator := &model.Creator{
		ID:                 uuid.NewString(),
		Email:              strings.TrimSpace(req.Email),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		Name:               strings.TrimSpace(req.Name),
		BusinessName:       req.BusinessName,
		AvatarURL:          req.AvatarURL,
		Status:             model.CreatorPending,
		ClubzilaCreatorID:  strings.TrimSpace(req.ClubzilaCreatorID),
		ClubzilaAuthID:     strings.TrimSpace(req.ClubzilaAuthID),
		SubscriptionAmount: req.SubscriptionAmount,
		Currency:           currency,
	}
	if err := s.creatorRepo.Create(ctx, creator); err != nil {
		return nil, fmt.Errorf("store creator: %w", err)
	}

	s.log.Info("creator registered", zap.String("creator_id", creator.ID), zap.String("email", creator.Email))
	return creator, nil
}

func (s *creatorServiceImpl) Get(ctx context.Context, id string) (*model.Creator, error) {
	creator, err := s.creatorRepo.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get creator: %w", err)
	}
	return creator, nil
}

func (s *creatorServiceImpl) List(ctx context.Context, filter dto.CreatorFilter) ([]model.Creator, *dto.Pagination, error) {
	if filter.Status != "" && !model.CreatorStatus(filter.Status).Valid() {
		return nil, nil, apperr.Validation("Invalid field: status")
	}

	page, limit, offset := normalizePage(filter.Page, filter.Limit)
	creators, total, err := s.creatorRepo.List(ctx, repository.CreatorQuery{
		Status: filter.Status,
		Search: strings.TrimSpace(filter.Search),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list creators: %w", err)
	}

	return creators, &dto.Pagination{Page: page, Limit: limit, Total: total}, nil
}

func (s *creatorServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*model.Creator, error) {
	next := model.CreatorStatus(status)
	if !next.Valid() {
		return nil, apperr.Validation("Invalid field: status")
	}

	err := s.creatorRepo.UpdateStatus(ctx, id, next)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCreatorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update creator status: %w", err)
	}

	s.log.Info("creator status changed", zap.String("creator_id", id), zap.String("status", status))
	s.evictPages(ctx, id)
	return s.Get(ctx, id)
}

// evictPages drops cached page data of the creator's pages so renders pick up the new status.
func (s *creatorServiceImpl) evictPages(ctx context.Context, creatorID string) {
	if s.pageRepo == nil {
		return
	}
	pages, err := s.pageRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		s.log.Warn("list creator pages for cache eviction failed", zap.String("creator_id", creatorID), zap.Error(err))
		return
	}
	for _, page := range pages {
		if err := s.cache.Delete(ctx, page.PageID); err != nil {
			s.log.Warn("page cache invalidation failed", zap.String("page_id", page.PageID), zap.Error(err))
		}
	}
}
