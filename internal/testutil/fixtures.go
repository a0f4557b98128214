package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centavo/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email. The
// password is always "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Nickname:       fmt.Sprintf("tester%d", nextID()),
		Email:          email,
		PasswordDigest: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique description.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID uint) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID:      userID,
		Description: fmt.Sprintf("Test Category %d", nextID()),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestWallet creates a wallet with the given balance.
func CreateTestWallet(t *testing.T, db *gorm.DB, userID uint, balance decimal.Decimal) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:      userID,
		Description: fmt.Sprintf("Test Wallet %d", nextID()),
		Balance:     balance,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestPayment creates a payment on the given wallet. It writes the
// row directly and does not touch the wallet balance.
func CreateTestPayment(t *testing.T, db *gorm.DB, walletID uint, amount decimal.Decimal) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		WalletID:      walletID,
		Amount:        amount,
		EffectiveDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("failed to create test payment: %v", err)
	}
	return payment
}

// CreateTestGoal creates a goal covering the next thirty days.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID uint) *models.Goal {
	t.Helper()

	now := time.Now().UTC().Truncate(24 * time.Hour)
	goal := &models.Goal{
		UserID:      userID,
		Description: fmt.Sprintf("Test Goal %d", nextID()),
		Amount:      decimal.NewFromInt(1000),
		StartsAt:    now,
		EndsAt:      now.AddDate(0, 0, 30),
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestBudget creates a budget row directly, bypassing the
// allocator. Use it to seed exact period layouts.
func CreateTestBudget(t *testing.T, db *gorm.DB, categoryID uint, startsAt time.Time, endsAt *time.Time) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		CategoryID: categoryID,
		Amount:     decimal.NewFromInt(100),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
