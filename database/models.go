package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for all database models.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:text;primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BeforeCreate generates a UUID if not already set.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// GuideRecord is a generated travel guide. Content holds the guide as JSON
// so the store stays independent of the guide's shape.
type GuideRecord struct {
	BaseModel
	RunID       string `gorm:"size:64;index"`
	Destination string `gorm:"size:256;index"`
	Title       string `gorm:"size:256"`
	Prompt      string `gorm:"type:text"`
	Generator   string `gorm:"size:64"`
	Content     []byte `gorm:"type:blob;not null"`
}

// TableName pins the table name.
func (GuideRecord) TableName() string { return "guides" }

// Models lists every model the service migrates.
func Models() []any {
	return []any{&GuideRecord{}}
}
