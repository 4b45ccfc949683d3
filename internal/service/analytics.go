package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"creator-funnel/internal/apperr"
	"creator-funnel/internal/dto"
	"creator-funnel/internal/repository"
)

type AnalyticsService interface {
	TrackView(ctx context.Context, pageID string) error
	PageAnalytics(ctx context.Context, pageID string) (*dto.PageAnalytics, error)
	CreatorAnalytics(ctx context.Context, creatorID string) (*dto.CreatorAnalytics, error)
}

type analyticsServiceImpl struct {
	pageRepo repository.LandingPageRepository
	subRepo  repository.SubscriptionRepository
}

func NewAnalyticsService(
	pageRepo repository.LandingPageRepository,
	subRepo repository.SubscriptionRepository,
) AnalyticsService {
	return &analyticsServiceImpl{
		pageRepo: pageRepo,
		subRepo:  subRepo,
	}
}

func (s *analyticsServiceImpl) TrackView(ctx context.Context, pageID string) error {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return apperr.Validation("Page ID is required")
	}

	err := s.pageRepo.IncrementViews(ctx, pageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrPageNotFound
	}
	if err != nil {
		return fmt.Errorf("track view: %w", err)
	}
	return nil
}

func (s *analyticsServiceImpl) PageAnalytics(ctx context.Context, pageID string) (*dto.PageAnalytics, error) {
	page, err := s.pageRepo.FindByPageID(ctx, pageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find landing page: %w", err)
	}

	return &dto.PageAnalytics{
		PageID:         page.PageID,
		Views:          page.Views,
		Subscriptions:  page.Subscriptions,
		ConversionRate: page.ConversionRate,
	}, nil
}

func (s *analyticsServiceImpl) CreatorAnalytics(ctx context.Context, creatorID string) (*dto.CreatorAnalytics, error) {
	pages, err := s.pageRepo.ListByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list creator pages: %w", err)
	}
	subs, err := s.subRepo.ListCompletedByCreator(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("list creator subscriptions: %w", err)
	}

	out := &dto.CreatorAnalytics{
		CreatorID:         creatorID,
		TotalRevenue:      decimal.Zero,
		LandingPagesCount: len(pages),
	}
	for _, p := range pages {
		out.TotalViews += p.Views
		out.TotalSubscriptions += p.Subscriptions
	}
	for _, sub := range subs {
		out.TotalRevenue = out.TotalRevenue.Add(sub.Amount)
	}
	return out, nil
}
