package models

import (
	"time"

	"centavo/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the columns shared by every table. The numeric ID is the
// primary key used for joins; Key is the opaque UUID exposed in URLs and
// never changes after creation.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Key       string    `gorm:"type:uuid;uniqueIndex;not null" json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUIDv7 key to new records.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.Key == "" || !uuid.IsValid(b.Key) {
		b.Key = uuid.New()
	}
	return nil
}
