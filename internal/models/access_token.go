package models

import "time"

// AccessToken is an opaque bearer credential. Only the SHA-256 hex digest
// of the secret is stored; the plain secret is shown once at issuance.
// A token is usable while it is not revoked and younger than the
// configured TTL.
type AccessToken struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	UserID    uint       `gorm:"not null;index" json:"-"`
	Token     string     `gorm:"uniqueIndex;not null" json:"-"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// ExpiresAt returns the moment the token stops being usable, given the TTL.
func (t *AccessToken) ExpiresAt(ttl time.Duration) time.Time {
	return t.CreatedAt.Add(ttl)
}

// Revoked reports whether the token was explicitly revoked or has aged out.
func (t *AccessToken) Revoked(ttl time.Duration) bool {
	return t.RevokedAt != nil || time.Now().After(t.ExpiresAt(ttl))
}
