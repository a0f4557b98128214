package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is a calendar-month-aligned period during which a fixed amount
// applies to a category. StartsAt is always the first day of a month and
// EndsAt, when present, the last day of one. A nil EndsAt marks the
// category's open-ended budget, of which at most one may exist at a time;
// creating a newer open-ended budget truncates the previous one.
//
// The unique indexes on (category_id, starts_at) and (category_id, ends_at)
// are the storage-level backstop for the non-overlap invariant the budget
// service maintains procedurally.
type Budget struct {
	Base
	CategoryID uint            `gorm:"not null;index;uniqueIndex:idx_budgets_category_starts_at;uniqueIndex:idx_budgets_category_ends_at" json:"-"`
	Amount     decimal.Decimal `gorm:"type:decimal(11,2);not null" json:"amount"`
	StartsAt   time.Time       `gorm:"not null;uniqueIndex:idx_budgets_category_starts_at" json:"starts_at"`
	EndsAt     *time.Time      `gorm:"uniqueIndex:idx_budgets_category_ends_at" json:"ends_at,omitempty"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// OpenEnded reports whether the budget has no declared end date.
func (b *Budget) OpenEnded() bool {
	return b.EndsAt == nil
}

// Contains reports whether date falls within the budget's span. An
// open-ended budget extends indefinitely into the future.
func (b *Budget) Contains(date time.Time) bool {
	if date.Before(b.StartsAt) {
		return false
	}
	return b.EndsAt == nil || !date.After(*b.EndsAt)
}
