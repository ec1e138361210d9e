package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type InteriorRepository interface {
	BaseRepository[models.Interior]
	GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Interior) error
	ListRooms(ctx context.Context, interiorID uuid.UUID) ([]models.InteriorRoom, error)
	GetRoomByName(ctx context.Context, interiorID uuid.UUID, name string, dest *models.InteriorRoom) error
	UpsertRoom(ctx context.Context, room *models.InteriorRoom) error
	SeedRooms(ctx context.Context, interiorID uuid.UUID, names []string) ([]models.InteriorRoom, error)
}

type interiorRepository struct {
	BaseRepository[models.Interior]
	db *gorm.DB
}

func NewInteriorRepository(db *gorm.DB) InteriorRepository {
	return &interiorRepository{BaseRepository: NewBaseRepository[models.Interior](db), db: db}
}

func (r *interiorRepository) GetByProject(ctx context.Context, projectID uuid.UUID, dest *models.Interior) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "interior not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get interior by project failed")
	}
	return nil
}

func (r *interiorRepository) ListRooms(ctx context.Context, interiorID uuid.UUID) ([]models.InteriorRoom, error) {
	var out []models.InteriorRoom
	if err := r.db.WithContext(ctx).Where("interior_id = ?", interiorID).Order("name ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list interior rooms failed")
	}
	return out, nil
}

func (r *interiorRepository) GetRoomByName(ctx context.Context, interiorID uuid.UUID, name string, dest *models.InteriorRoom) error {
	if err := r.db.WithContext(ctx).Where("interior_id = ? AND name = ?", interiorID, name).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "interior room not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get interior room failed")
	}
	return nil
}

// UpsertRoom creates the room instance or updates its color/style/image in
// place, keyed by (interior_id, name). Only the targeted row is written.
func (r *interiorRepository) UpsertRoom(ctx context.Context, room *models.InteriorRoom) error {
	var existing models.InteriorRoom
	err := r.db.WithContext(ctx).Where("interior_id = ? AND name = ?", room.InteriorID, room.Name).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		if err := r.db.WithContext(ctx).Create(room).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create interior room failed")
		}
		return nil
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "lookup interior room failed")
	}

	existing.Color = room.Color
	existing.Style = room.Style
	if room.ImageURL != "" {
		existing.ImageURL = room.ImageURL
	}
	if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "update interior room failed")
	}
	*room = existing
	return nil
}

// SeedRooms ensures one row per instance name, creating missing rows without
// touching existing ones, and removes rows whose names are no longer wanted.
// Existing customizations survive a re-save of the same inventory.
func (r *interiorRepository) SeedRooms(ctx context.Context, interiorID uuid.UUID, names []string) ([]models.InteriorRoom, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var existing []models.InteriorRoom
	if err := tx.Where("interior_id = ?", interiorID).Find(&existing).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list interior rooms failed")
	}
	have := make(map[string]bool, len(existing))
	for _, room := range existing {
		have[room.Name] = true
		if !wanted[room.Name] {
			if err := tx.Delete(&models.InteriorRoom{}, "id = ?", room.ID).Error; err != nil {
				tx.Rollback()
				return nil, appErr.Wrap(err, appErr.CodeInternal, "remove stale interior room failed")
			}
		}
	}

	for _, n := range names {
		if have[n] {
			continue
		}
		room := models.InteriorRoom{InteriorID: interiorID, Name: n}
		if err := tx.Create(&room).Error; err != nil {
			tx.Rollback()
			return nil, appErr.Wrap(err, appErr.CodeInternal, "seed interior room failed")
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}
	return r.ListRooms(ctx, interiorID)
}
