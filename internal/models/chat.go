package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message role values.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Chat is a conversation between a user and the assistant.
type Chat struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Title     string         `gorm:"type:text;not null" json:"title" validate:"required"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ChatMessage is one turn of a chat. ImageURL carries either the uploaded
// input image or an image returned by the assistant, stored normalized.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;index;not null" json:"chat_id" validate:"required"`
	Role      string    `gorm:"type:varchar(16);not null" json:"role" validate:"required,oneof=user assistant"`
	Content   string    `gorm:"type:text" json:"content"`
	ImageURL  string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
