package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is a signed movement on a wallet: positive amounts are income,
// negative amounts are spending. The optional category must belong to the
// same user as the wallet.
type Payment struct {
	Base
	WalletID      uint            `gorm:"not null;index" json:"-"`
	CategoryID    *uint           `gorm:"index" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(11,2);not null" json:"amount"`
	EffectiveDate time.Time       `gorm:"not null;index" json:"effective_date"`

	Wallet   Wallet    `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
