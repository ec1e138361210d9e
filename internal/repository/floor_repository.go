package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type FloorRepository interface {
	BaseRepository[models.Floor]
	GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Floor) error
	ListRooms(ctx context.Context, floorID uuid.UUID) ([]models.FloorRoom, error)
	ReplaceRooms(ctx context.Context, floorID uuid.UUID, rooms []models.FloorRoom) ([]models.FloorRoom, error)
}

type floorRepository struct {
	BaseRepository[models.Floor]
	db *gorm.DB
}

func NewFloorRepository(db *gorm.DB) FloorRepository {
	return &floorRepository{BaseRepository: NewBaseRepository[models.Floor](db), db: db}
}

func (r *floorRepository) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Floor) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "floor not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get floor by project failed")
	}
	return nil
}

func (r *floorRepository) ListRooms(ctx context.Context, floorID uuid.UUID) ([]models.FloorRoom, error) {
	var out []models.FloorRoom
	if err := r.db.WithContext(ctx).Where("floor_id = ?", floorID).Order("name ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list floor rooms failed")
	}
	return out, nil
}

// ReplaceRooms swaps the persisted room set of a floor for the given one in a
// single transaction and returns the authoritative rows as stored.
func (r *floorRepository) ReplaceRooms(ctx context.Context, floorID uuid.UUID, rooms []models.FloorRoom) ([]models.FloorRoom, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	if err := tx.Where("floor_id = ?", floorID).Delete(&models.FloorRoom{}).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "clear floor rooms failed")
	}

	for i := range rooms {
		rooms[i].FloorID = floorID
		if err := tx.Create(&rooms[i]).Error; err != nil {
			tx.Rollback()
			return nil, appErr.Wrap(err, appErr.CodeInternal, "save floor room failed")
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return r.ListRooms(ctx, floorID)
}
