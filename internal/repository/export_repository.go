package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ExportRepository interface {
	BaseRepository[models.Export]
	GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Export) error
	UpdateStatus(ctx context.Context, exportID uuid.UUID, status string) error
	Complete(ctx context.Context, exportID uuid.UUID, archivePath, checksum string, manifest []byte) error
	Fail(ctx context.Context, exportID uuid.UUID, msg string) error
}

type exportRepository struct {
	BaseRepository[models.Export]
	db *gorm.DB
}

func NewExportRepository(db *gorm.DB) ExportRepository {
	return &exportRepository{BaseRepository: NewBaseRepository[models.Export](db), db: db}
}

func (r *exportRepository) GetLatestByProject(ctx context.Context, projectID uuid.UUID, dest *models.Export) error {
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at DESC").First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "no exports found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get latest export failed")
	}
	return nil
}

func (r *exportRepository) UpdateStatus(ctx context.Context, exportID uuid.UUID, status string) error {
	res := r.db.WithContext(ctx).Model(&models.Export{}).Where("id = ?", exportID).Update("status", status)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "update export status failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "export not found")
	}
	return nil
}

func (r *exportRepository) Complete(ctx context.Context, exportID uuid.UUID, archivePath, checksum string, manifest []byte) error {
	res := r.db.WithContext(ctx).Model(&models.Export{}).Where("id = ?", exportID).Updates(map[string]any{
		"status":       models.ExportStatusCompleted,
		"archive_path": archivePath,
		"checksum":     checksum,
		"manifest":     datatypes.JSON(manifest),
		"error":        "",
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "complete export failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "export not found")
	}
	return nil
}

func (r *exportRepository) Fail(ctx context.Context, exportID uuid.UUID, msg string) error {
	res := r.db.WithContext(ctx).Model(&models.Export{}).Where("id = ?", exportID).Updates(map[string]any{
		"status": models.ExportStatusFailed,
		"error":  msg,
	})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "fail export failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "export not found")
	}
	return nil
}
