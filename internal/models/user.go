package models

import "time"

// User owns every other record in the system. Email, username and
// documentation (a Brazilian CPF) are globally unique; categories,
// wallets and goals are unique per user by description.
type User struct {
	Base
	FullName string `json:"full_name,omitempty"`
	Nickname string `gorm:"not null" json:"nickname"`
	// Username and Documentation are optional; their uniqueness is
	// enforced case-insensitively by the user service (and by partial
	// unique indexes in the migrations) so absent values never collide.
	Username       string     `json:"username,omitempty"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordDigest string     `gorm:"not null" json:"-"`
	Documentation  string     `json:"documentation,omitempty"`
	DateOfBirth    *time.Time `json:"date_of_birth,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`

	AccessTokens []AccessToken `gorm:"foreignKey:UserID" json:"-"`
	Categories   []Category    `gorm:"foreignKey:UserID" json:"-"`
	Wallets      []Wallet      `gorm:"foreignKey:UserID" json:"-"`
	Goals        []Goal        `gorm:"foreignKey:UserID" json:"-"`
}

// Confirmed reports whether the user completed email confirmation.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil
}
