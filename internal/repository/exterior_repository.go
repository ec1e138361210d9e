package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type ExteriorRepository interface {
	BaseRepository[models.Exterior]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Exterior, error)
	GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Exterior) error
	Count(ctx context.Context) (int64, error)
}

type exteriorRepository struct {
	BaseRepository[models.Exterior]
	db *gorm.DB
}

func NewExteriorRepository(db *gorm.DB) ExteriorRepository {
	return &exteriorRepository{BaseRepository: NewBaseRepository[models.Exterior](db), db: db}
}

func (r *exteriorRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Exterior, error) {
	var out []models.Exterior
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list exteriors failed")
	}
	return out, nil
}

func (r *exteriorRepository) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Exterior) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "no exteriors found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get latest exterior failed")
	}
	return nil
}

func (r *exteriorRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Exterior{}).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count exteriors failed")
	}
	return n, nil
}
