package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project represents a design effort owned by a user. Stage tracks how far
// the workspace has progressed: floor_plan -> interior -> exterior.
type Project struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Name        string         `gorm:"not null;index:idx_projects_user_name,unique" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Stage       string         `gorm:"type:varchar(32);not null;default:'floor_plan'" json:"stage" validate:"required,oneof=floor_plan interior exterior"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
