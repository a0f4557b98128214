package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goal is a savings target over a closed date range.
type Goal struct {
	Base
	UserID      uint            `gorm:"not null;index;uniqueIndex:idx_goals_user_description" json:"-"`
	Description string          `gorm:"not null;uniqueIndex:idx_goals_user_description" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(11,2);not null" json:"amount"`
	StartsAt    time.Time       `gorm:"not null" json:"starts_at"`
	EndsAt      time.Time       `gorm:"not null" json:"ends_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
