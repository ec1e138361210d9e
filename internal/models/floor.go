package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Floor holds aggregate room-type quantities for a project. Each project has
// at most one floor; it is created lazily on first workspace load or save.
type Floor struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"project_id" validate:"required"`
	Name      string         `gorm:"not null" json:"name" validate:"required"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// FloorRoom is a room type with a quantity on a floor. Rows exist only for
// quantities greater than zero; saving quantity 0 removes the row.
type FloorRoom struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FloorID   uuid.UUID `gorm:"type:uuid;not null;index:idx_floor_rooms_floor_name,unique" json:"floor_id" validate:"required"`
	Name      string    `gorm:"not null;index:idx_floor_rooms_floor_name,unique" json:"name" validate:"required"`
	Quantity  int       `gorm:"not null" json:"quantity" validate:"gte=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
