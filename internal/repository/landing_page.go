package repository

import (
	"context"

	"gorm.io/gorm"

	"creator-funnel/internal/model"
)

// recomputed after every counter change; views is never negative
const conversionRateExpr = "CASE WHEN views > 0 THEN subscriptions * 100.0 / views ELSE 0 END"

type LandingPageQuery struct {
	CreatorID string
	Status    string
	Template  string
	Offset    int
	Limit     int
}

type LandingPageRepository interface {
	Create(ctx context.Context, page *model.LandingPage) error
	FindByPageID(ctx context.Context, pageID string) (*model.LandingPage, error)
	List(ctx context.Context, q LandingPageQuery) ([]model.LandingPage, int64, error)
	ListByCreator(ctx context.Context, creatorID string) ([]model.LandingPage, error)
	Update(ctx context.Context, pageID string, updates map[string]interface{}) error
	IncrementViews(ctx context.Context, pageID string) error
	IncrementSubscriptions(ctx context.Context, pageID string) error
}

type landingPageRepoImpl struct {
	db *gorm.DB
}

func NewLandingPageRepository(db *gorm.DB) LandingPageRepository {
	return &landingPageRepoImpl{
		db: db,
	}
}

func (r *landingPageRepoImpl) Create(ctx context.Context, page *model.LandingPage) error {
	return r.db.WithContext(ctx).Create(page).Error
}

func (r *landingPageRepoImpl) FindByPageID(ctx context.Context, pageID string) (*model.LandingPage, error) {
	var page model.LandingPage
	err := r.db.WithContext(ctx).
		Where("page_id = ?", pageID).
		First(&page).Error
	if err != nil {
		return nil, err
	}

	return &page, nil
}

func (r *landingPageRepoImpl) List(ctx context.Context, q LandingPageQuery) ([]model.LandingPage, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.LandingPage{})
	if q.CreatorID != "" {
		query = query.Where("creator_id = ?", q.CreatorID)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Template != "" {
		query = query.Where("template = ?", q.Template)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pages []model.LandingPage
	err := query.
		Order("created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&pages).Error
	if err != nil {
		return nil, 0, err
	}

	return pages, total, nil
}

func (r *landingPageRepoImpl) ListByCreator(ctx context.Context, creatorID string) ([]model.LandingPage, error) {
	var pages []model.LandingPage
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Find(&pages).Error
	return pages, err
}

func (r *landingPageRepoImpl) Update(ctx context.Context, pageID string, updates map[string]interface{}) error {
	result := r.db.
		WithContext(ctx).
		Model(&model.LandingPage{}).
		Where("page_id = ?", pageID).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *landingPageRepoImpl) IncrementViews(ctx context.Context, pageID string) error {
	return r.incrementCounter(ctx, pageID, "views")
}

func (r *landingPageRepoImpl) IncrementSubscriptions(ctx context.Context, pageID string) error {
	return r.incrementCounter(ctx, pageID, "subscriptions")
}

func (r *landingPageRepoImpl) incrementCounter(ctx context.Context, pageID, column string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.LandingPage{}).
			Where("page_id = ?", pageID).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.LandingPage{}).
			Where("page_id = ?", pageID).
			UpdateColumn("conversion_rate", gorm.Expr(conversionRateExpr)).Error
	})
}
