package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"creator-funnel/internal/model"
)

type CreatorQuery struct {
	Status string
	Search string
	Offset int
	Limit  int
}

type CreatorRepository interface {
	Create(ctx context.Context, creator *model.Creator) error
	Get(ctx context.Context, creatorID string) (*model.Creator, error)
	List(ctx context.Context, q CreatorQuery) ([]model.Creator, int64, error)
	UpdateStatus(ctx context.Context, creatorID string, status model.CreatorStatus) error
}

type creatorRepoImpl struct {
	db *gorm.DB
}

func NewCreatorRepository(db *gorm.DB) CreatorRepository {
	return &creatorRepoImpl{
		db: db,
	}
}

func (r *creatorRepoImpl) Create(ctx context.Context, creator *model.Creator) error {
	return r.db.WithContext(ctx).Create(creator).Error
}

func (r *creatorRepoImpl) Get(ctx context.Context, creatorID string) (*model.Creator, error) {
	var creator model.Creator
	err := r.db.WithContext(ctx).
		Where("id = ?", creatorID).
		First(&creator).Error
	if err != nil {
		return nil, err
	}

	return &creator, nil
}

func (r *creatorRepoImpl) List(ctx context.Context, q CreatorQuery) ([]model.Creator, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Creator{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(business_name) LIKE ?",
			like, like, like,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var creators []model.Creator
	err := query.
		Order("created_at DESC").
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&creators).Error
	if err != nil {
		return nil, 0, err
	}

	return creators, total, nil
}

func (r *creatorRepoImpl) UpdateStatus(ctx context.Context, creatorID string, status model.CreatorStatus) error {
	result := r.db.
		WithContext(ctx).
		Model(&model.Creator{}).
		Where("id = ?", creatorID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
