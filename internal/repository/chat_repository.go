package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/maya-ai/engine/internal/models"
	appErr "github.com/maya-ai/engine/pkg/errors"
	"gorm.io/gorm"
)

type ChatRepository interface {
	BaseRepository[models.Chat]
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)
	List(ctx context.Context) ([]models.Chat, error)
	Count(ctx context.Context) (int64, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.ChatMessage, error)
	AppendMessage(ctx context.Context, msg *models.ChatMessage) error
}

type chatRepository struct {
	BaseRepository[models.Chat]
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{BaseRepository: NewBaseRepository[models.Chat](db), db: db}
}

func (r *chatRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	var out []models.Chat
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list chats by user failed")
	}
	return out, nil
}

func (r *chatRepository) List(ctx context.Context) ([]models.Chat, error) {
	var out []models.Chat
	if err := r.db.WithContext(ctx).Order("updated_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list chats failed")
	}
	return out, nil
}

func (r *chatRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Chat{}).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count chats failed")
	}
	return n, nil
}

func (r *chatRepository) ListMessages(ctx context.Context, chatID uuid.UUID) ([]models.ChatMessage, error) {
	var out []models.ChatMessage
	if err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list chat messages failed")
	}
	return out, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, msg *models.ChatMessage) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "append chat message failed")
	}
	return nil
}
