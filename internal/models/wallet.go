package models

import "github.com/shopspring/decimal"

// Wallet holds a running balance maintained by the payment service.
// Balance stays within (-1e9, 1e9).
type Wallet struct {
	Base
	UserID      uint            `gorm:"not null;index;uniqueIndex:idx_wallets_user_description" json:"-"`
	Description string          `gorm:"not null;uniqueIndex:idx_wallets_user_description" json:"description"`
	Balance     decimal.Decimal `gorm:"type:decimal(11,2);not null" json:"balance"`

	User     User      `gorm:"foreignKey:UserID" json:"-"`
	Payments []Payment `gorm:"foreignKey:WalletID" json:"-"`
}
