package services

import (
	"testing"
	"time"

	"centavo/internal/config"
	"centavo/internal/models"
	"centavo/internal/testutil"
)

func TestAuthenticate(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		got, err := svc.Authenticate(user.Email, "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, got.ID)
		}
	})

	t.Run("email_is_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUserWithEmail(t, db, "login.case@test.com")

		got, err := svc.Authenticate("  Login.Case@Test.COM ", "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected user %d, got %d", user.ID, got.ID)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Authenticate(user.Email, "wrongpassword")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)

		_, err := svc.Authenticate("nobody@test.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestIssueToken(t *testing.T) {
	t.Run("stores_only_the_digest", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		plain, token, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)
		if plain == "" {
			t.Fatal("expected a plain token")
		}
		if token.Token == plain {
			t.Error("expected the stored token to be a digest, not the plain secret")
		}

		var stored models.AccessToken
		testutil.AssertNoError(t, db.First(&stored, token.ID).Error)
		if stored.Token != token.Token {
			t.Error("expected the digest to be persisted")
		}
	})

	t.Run("tokens_are_unique", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		a, _, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)
		b, _, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)
		if a == b {
			t.Error("expected distinct tokens on each issue")
		}
	})
}

func TestAuthenticateToken(t *testing.T) {
	pin := func(t *testing.T, ttl time.Duration) {
		t.Helper()
		config.Set(&config.Config{AccessTokenTTL: ttl, OnlyBrazilianCPF: true})
	}

	t.Run("valid_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pin(t, 30*time.Minute)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		plain, _, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)

		userID, userKey, err := svc.AuthenticateToken(plain)
		testutil.AssertNoError(t, err)
		if userID != user.ID || userKey != user.Key {
			t.Errorf("expected %d/%s, got %d/%s", user.ID, user.Key, userID, userKey)
		}
	})

	t.Run("unknown_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pin(t, 30*time.Minute)
		svc := NewTokenService(db)

		_, _, err := svc.AuthenticateToken("deadbeef")
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("expired_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		pin(t, 30*time.Minute)
		plain, token, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)

		// Age the token past the TTL.
		past := time.Now().Add(-time.Hour)
		testutil.AssertNoError(t, db.Model(token).Update("created_at", past).Error)

		_, _, err = svc.AuthenticateToken(plain)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})

	t.Run("revoked_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		pin(t, 30*time.Minute)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		plain, token, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)
		testutil.AssertNoError(t, svc.RevokeToken(token))

		_, _, err = svc.AuthenticateToken(plain)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}

func TestRevokeToken(t *testing.T) {
	t.Run("revoking_twice_keeps_first_timestamp", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		_, token, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.RevokeToken(token))
		if token.RevokedAt == nil {
			t.Fatal("expected revoked_at to be set")
		}
		stamped := *token.RevokedAt

		testutil.AssertNoError(t, svc.RevokeToken(token))
		if !token.RevokedAt.Equal(stamped) {
			t.Error("expected second revoke to be a no-op")
		}
	})

	t.Run("revoke_by_plain_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		config.Set(&config.Config{AccessTokenTTL: 30 * time.Minute, OnlyBrazilianCPF: true})
		svc := NewTokenService(db)
		user := testutil.CreateTestUser(t, db)

		plain, _, err := svc.IssueToken(user)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.RevokePlainToken(plain))
		_, _, err = svc.AuthenticateToken(plain)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")

		// A second revoke finds nothing to revoke.
		err = svc.RevokePlainToken(plain)
		testutil.AssertAppError(t, err, "UNAUTHORIZED")
	})
}
