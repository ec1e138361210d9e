package repository

import (
	"context"

	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type SettingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, key string, dest *models.Setting) error
	Set(ctx context.Context, key, value string) (*models.Setting, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]models.Setting, error) {
	var out []models.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list settings failed")
	}
	return out, nil
}

func (r *settingRepository) Get(ctx context.Context, key string, dest *models.Setting) error {
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "setting not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get setting failed")
	}
	return nil
}

func (r *settingRepository) Set(ctx context.Context, key, value string) (*models.Setting, error) {
	var s models.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if err == gorm.ErrRecordNotFound {
		s = models.Setting{Key: key, Value: value}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "create setting failed")
		}
		return &s, nil
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "lookup setting failed")
	}
	s.Value = value
	if err := r.db.WithContext(ctx).Save(&s).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "update setting failed")
	}
	return &s, nil
}

func (r *settingRepository) Delete(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where("key = ?", key).Delete(&models.Setting{})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "delete setting failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "setting not found")
	}
	return nil
}
