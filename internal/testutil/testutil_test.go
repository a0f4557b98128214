package testutil_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"centavo/internal/errors"
	"centavo/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	// Verify all tables exist by doing a simple count query on each model.
	var count int64
	for _, table := range []string{"users", "access_tokens", "categories", "wallets", "payments", "goals", "budgets"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == 0 {
		t.Fatal("user should have a non-zero ID")
	}
	if user.Key == "" {
		t.Fatal("user should have a key")
	}

	category := testutil.CreateTestCategory(t, db, user.ID)
	if category.UserID != user.ID {
		t.Errorf("expected category owner %d, got %d", user.ID, category.UserID)
	}

	wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.RequireFromString("500.00"))
	if !wallet.Balance.Equal(decimal.RequireFromString("500.00")) {
		t.Errorf("expected balance 500.00, got %s", wallet.Balance)
	}

	payment := testutil.CreateTestPayment(t, db, wallet.ID, decimal.RequireFromString("-42.90"))
	if payment.WalletID != wallet.ID {
		t.Errorf("expected wallet %d, got %d", wallet.ID, payment.WalletID)
	}

	goal := testutil.CreateTestGoal(t, db, user.ID)
	if !goal.EndsAt.After(goal.StartsAt) {
		t.Errorf("expected goal span %v to %v to be ordered", goal.StartsAt, goal.EndsAt)
	}

	budget := testutil.CreateTestBudget(t, db, category.ID, goal.StartsAt, nil)
	if budget.EndsAt != nil {
		t.Errorf("expected an open-ended budget, got end %v", budget.EndsAt)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrWalletNotFound, "custom message")
	testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
