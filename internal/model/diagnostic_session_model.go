package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DiagnosticSession persists one submission as a single row; the whole phase
// tree lives in the Service1 JSON document. Version backs the CAS write.
type DiagnosticSession struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string         `gorm:"type:text;not null;index"`
	DisplayName  string         `gorm:"type:text;not null"`
	Contact      string         `gorm:"type:text"`
	OriginIP     string         `gorm:"type:text;not null"`
	UserAgent    string         `gorm:"type:text"`
	Locale       string         `gorm:"type:text;not null;default:'fr'"`
	Active       bool           `gorm:"not null;default:false"`
	ReviewStatus string         `gorm:"type:text;not null;default:'pending'"`
	Service1     datatypes.JSON `gorm:"type:jsonb"`
	Version      int64          `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (DiagnosticSession) TableName() string {
	return "diagnostic_sessions"
}
