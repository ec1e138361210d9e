package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Exterior is one generated exterior design attempt. Rows are append-only;
// each generation creates a fresh row and the newest one is the preview.
type Exterior struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	FacadeStyle string         `gorm:"type:varchar(64)" json:"facade_style"`
	Material    string         `gorm:"type:varchar(64)" json:"material"`
	LandSize    string         `gorm:"type:varchar(32)" json:"land_size"`
	Prompt      string         `gorm:"type:text" json:"prompt"`
	ImageURL    string         `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
