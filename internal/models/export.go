package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Export statuses driven by the export worker.
const (
	ExportStatusPending   = "pending"
	ExportStatusPackaging = "packaging"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// Export is a packaging run that collects a project's generated images into
// a downloadable archive.
type Export struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	Status      string         `gorm:"type:varchar(32);index;not null" json:"status" validate:"required,oneof=pending packaging completed failed"`
	ArchivePath string         `gorm:"type:text" json:"archive_path,omitempty"`
	Checksum    string         `gorm:"type:varchar(64)" json:"checksum,omitempty"`
	Manifest    datatypes.JSON `gorm:"type:jsonb" json:"manifest,omitempty"`
	Error       string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
