package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/testutil"
)

func TestCreatePayment(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	t.Run("adjusts_wallet_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.NewFromInt(100))

		payment, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-30), today)
		testutil.AssertNoError(t, err)
		if payment.ID == 0 {
			t.Fatal("expected non-zero payment ID")
		}

		got, err := wallets.GetWalletByKey(user.ID, wallet.Key)
		testutil.AssertNoError(t, err)
		if !got.Balance.Equal(decimal.NewFromInt(70)) {
			t.Errorf("expected balance 70, got %s", got.Balance)
		}
	})

	t.Run("income_increases_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.NewFromInt(100))

		_, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromFloat(49.90), today)
		testutil.AssertNoError(t, err)

		got, err := wallets.GetWalletByKey(user.ID, wallet.Key)
		testutil.AssertNoError(t, err)
		if !got.Balance.Equal(decimal.NewFromFloat(149.90)) {
			t.Errorf("expected balance 149.90, got %s", got.Balance)
		}
	})

	t.Run("with_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		payment, err := svc.CreatePayment(user.ID, wallet.Key, &cat.Key, decimal.NewFromInt(-10), today)
		testutil.AssertNoError(t, err)
		if payment.CategoryID == nil || *payment.CategoryID != cat.ID {
			t.Errorf("expected category %d, got %v", cat.ID, payment.CategoryID)
		}
	})

	t.Run("other_users_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)
		cat := testutil.CreateTestCategory(t, db, other.ID)

		_, err := svc.CreatePayment(user.ID, wallet.Key, &cat.Key, decimal.NewFromInt(-10), today)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)

		_, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.Zero, today)
		testutil.AssertValidationError(t, err, "amount", apperrors.KindInvalid)
	})

	t.Run("amount_out_of_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)

		_, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.New(-1, 9), today)
		testutil.AssertValidationError(t, err, "amount", apperrors.KindOutOfRange)
	})

	t.Run("unknown_wallet", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreatePayment(user.ID, "3b4a2f1e-0000-0000-0000-000000000000", nil, decimal.NewFromInt(-10), today)
		testutil.AssertAppError(t, err, "WALLET_NOT_FOUND")
	})
}

func TestGetPayments(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	t.Run("wallet_payments_newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)

		older, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-10), today.AddDate(0, 0, -2))
		testutil.AssertNoError(t, err)
		newer, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-20), today)
		testutil.AssertNoError(t, err)

		result, err := svc.GetWalletPayments(user.ID, wallet.Key, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Fatalf("expected 2 payments, got %d", result.TotalItems)
		}
		if result.Data[0].ID != newer.ID || result.Data[1].ID != older.ID {
			t.Error("expected payments ordered by effective date, newest first")
		}
	})

	t.Run("user_payments_span_wallets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		w1 := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)
		w2 := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)
		foreign := testutil.CreateTestWallet(t, db, other.ID, decimal.Zero)

		_, err := svc.CreatePayment(user.ID, w1.Key, nil, decimal.NewFromInt(-10), today)
		testutil.AssertNoError(t, err)
		_, err = svc.CreatePayment(user.ID, w2.Key, nil, decimal.NewFromInt(-20), today)
		testutil.AssertNoError(t, err)
		_, err = svc.CreatePayment(other.ID, foreign.Key, nil, decimal.NewFromInt(-30), today)
		testutil.AssertNoError(t, err)

		result, err := svc.GetUserPayments(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 payments, got %d", result.TotalItems)
		}
	})

	t.Run("other_users_payment", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, other.ID, decimal.Zero)
		payment, err := svc.CreatePayment(other.ID, wallet.Key, nil, decimal.NewFromInt(-10), today)
		testutil.AssertNoError(t, err)

		_, err = svc.GetPaymentByKey(user.ID, payment.Key)
		testutil.AssertAppError(t, err, "PAYMENT_NOT_FOUND")
	})
}

func TestUpdatePayment(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	t.Run("amount_change_applies_delta", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.NewFromInt(100))

		payment, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-30), today)
		testutil.AssertNoError(t, err)

		amount := decimal.NewFromInt(-50)
		_, err = svc.UpdatePayment(user.ID, payment.Key, UpdatePaymentParams{Amount: &amount})
		testutil.AssertNoError(t, err)

		got, err := wallets.GetWalletByKey(user.ID, wallet.Key)
		testutil.AssertNoError(t, err)
		if !got.Balance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected balance 50, got %s", got.Balance)
		}
	})

	t.Run("clearing_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		payment, err := svc.CreatePayment(user.ID, wallet.Key, &cat.Key, decimal.NewFromInt(-10), today)
		testutil.AssertNoError(t, err)

		empty := ""
		updated, err := svc.UpdatePayment(user.ID, payment.Key, UpdatePaymentParams{CategoryKey: &empty})
		testutil.AssertNoError(t, err)
		if updated.CategoryID != nil {
			t.Errorf("expected category to be cleared, got %v", *updated.CategoryID)
		}
	})

	t.Run("rejects_zero_amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.Zero)

		payment, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-10), today)
		testutil.AssertNoError(t, err)

		zero := decimal.Zero
		_, err = svc.UpdatePayment(user.ID, payment.Key, UpdatePaymentParams{Amount: &zero})
		testutil.AssertValidationError(t, err, "amount", apperrors.KindInvalid)
	})
}

func TestDeletePayment(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	t.Run("backs_amount_out_of_balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		wallets := NewWalletService(db)
		svc := NewPaymentService(db, wallets)
		user := testutil.CreateTestUser(t, db)
		wallet := testutil.CreateTestWallet(t, db, user.ID, decimal.NewFromInt(100))

		payment, err := svc.CreatePayment(user.ID, wallet.Key, nil, decimal.NewFromInt(-30), today)
		testutil.AssertNoError(t, err)

		testutil.AssertNoError(t, svc.DeletePayment(user.ID, payment.Key))

		got, err := wallets.GetWalletByKey(user.ID, wallet.Key)
		testutil.AssertNoError(t, err)
		if !got.Balance.Equal(decimal.NewFromInt(100)) {
			t.Errorf("expected balance restored to 100, got %s", got.Balance)
		}

		_, err = svc.GetPaymentByKey(user.ID, payment.Key)
		testutil.AssertAppError(t, err, "PAYMENT_NOT_FOUND")
	})
}
