package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interior holds the individually customizable room instances of a project.
// Like Floor it is singular per project and created lazily.
type Interior struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	Name      string         `gorm:"not null" json:"name" validate:"required"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// InteriorRoom is one concrete room instance, e.g. "Bedroom 2". Names are
// unique within an interior. ImageURL is set by generation calls and stored
// already normalized to an absolute URL.
type InteriorRoom struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InteriorID uuid.UUID `gorm:"type:uuid;not null;index:idx_interior_rooms_interior_name,unique" json:"interior_id" validate:"required"`
	Name       string    `gorm:"not null;index:idx_interior_rooms_interior_name,unique" json:"name" validate:"required"`
	Color      string    `gorm:"type:varchar(32)" json:"color"`
	Style      string    `gorm:"type:varchar(64)" json:"style"`
	ImageURL   string    `gorm:"type:text" json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
