package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"centavo/internal/config"
	apperrors "centavo/internal/errors"
	"centavo/internal/models"
)

// tokenService issues and checks opaque access tokens. Only the SHA-256
// digest of a token ever reaches the database, so a leaked table dump
// cannot be replayed as credentials.
type tokenService struct {
	db *gorm.DB
}

// NewTokenService creates a new TokenServicer.
func NewTokenService(db *gorm.DB) TokenServicer {
	return &tokenService{db: db}
}

// Authenticate checks an email/password pair and returns the user.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *tokenService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.db.Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordDigest), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &user, nil
}

// IssueToken mints a fresh access token for the user. The plain secret
// is returned exactly once; only its digest is persisted.
func (s *tokenService) IssueToken(user *models.User) (string, *models.AccessToken, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	plain := hex.EncodeToString(secret)

	token := &models.AccessToken{
		UserID: user.ID,
		Token:  digest(plain),
	}
	if err := s.db.Create(token).Error; err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return plain, token, nil
}

// AuthenticateToken resolves a plain bearer token to its owner. Revoked
// tokens and tokens older than the configured TTL are rejected.
func (s *tokenService) AuthenticateToken(plainToken string) (uint, string, error) {
	cutoff := time.Now().Add(-config.Get().AccessTokenTTL)

	var token models.AccessToken
	err := s.db.Preload("User").
		Where("token = ? AND revoked_at IS NULL AND created_at >= ?", digest(plainToken), cutoff).
		First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", apperrors.ErrUnauthorized
		}
		return 0, "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token.UserID, token.User.Key, nil
}

// RevokeToken stamps revoked_at once; revoking twice is a no-op.
func (s *tokenService) RevokeToken(token *models.AccessToken) error {
	if token.RevokedAt != nil {
		return nil
	}

	now := time.Now()
	if err := s.db.Model(token).Update("revoked_at", &now).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	token.RevokedAt = &now
	return nil
}

// RevokePlainToken revokes the token whose digest matches plainToken.
// Already-revoked and unknown tokens are rejected the same way.
func (s *tokenService) RevokePlainToken(plainToken string) error {
	var token models.AccessToken
	err := s.db.Where("token = ? AND revoked_at IS NULL", digest(plainToken)).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUnauthorized
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.RevokeToken(&token)
}

func digest(plain string) string {
	h := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(h[:])
}
