package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type UserRepository interface {
	BaseRepository[models.User]
	GetByEmail(ctx context.Context, email string, dest *models.User) error
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)

	CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error
	GetPasswordReset(ctx context.Context, token string, dest *models.PasswordReset) error
	MarkPasswordResetUsed(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, dest *models.User) error {
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "user not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get user by email failed")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list users failed")
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count users failed")
	}
	return n, nil
}

func (r *userRepository) CreatePasswordReset(ctx context.Context, reset *models.PasswordReset) error {
	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create password reset failed")
	}
	return nil
}

func (r *userRepository) GetPasswordReset(ctx context.Context, token string, dest *models.PasswordReset) error {
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(dest).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "reset token not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get password reset failed")
	}
	return nil
}

func (r *userRepository) MarkPasswordResetUsed(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.PasswordReset{}).Where("id = ?", id).Update("used_at", time.Now())
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "mark reset used failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "reset token not found")
	}
	return nil
}
