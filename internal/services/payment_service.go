package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// paymentService handles payment-related business logic. Wallet balances
// are running totals: every payment write adjusts the owning wallet
// inside the same transaction, so balance and history cannot drift apart.
type paymentService struct {
	db      *gorm.DB
	wallets WalletServicer
}

// NewPaymentService creates a new PaymentServicer.
func NewPaymentService(db *gorm.DB, wallets WalletServicer) PaymentServicer {
	return &paymentService{db: db, wallets: wallets}
}

// CreatePayment records a payment on a wallet and adds its amount to the
// wallet balance. The optional category must belong to the same user.
func (s *paymentService) CreatePayment(
	userID uint,
	walletKey string,
	categoryKey *string,
	amount decimal.Decimal,
	effectiveDate time.Time,
) (*models.Payment, error) {
	wallet, err := s.wallets.GetWalletByKey(userID, walletKey)
	if err != nil {
		return nil, err
	}

	var categoryID *uint
	if categoryKey != nil && *categoryKey != "" {
		var category models.Category
		if err := s.db.Where("key = ? AND user_id = ?", *categoryKey, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		categoryID = &category.ID
	}

	if verr := validatePayment(amount, effectiveDate); verr != nil {
		return nil, verr
	}

	payment := &models.Payment{
		WalletID:      wallet.ID,
		CategoryID:    categoryID,
		Amount:        amount,
		EffectiveDate: effectiveDate,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}
		return s.adjustBalance(tx, wallet.ID, amount)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return payment, nil
}

// GetWalletPayments returns a page of one wallet's payments.
func (s *paymentService) GetWalletPayments(userID uint, walletKey string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error) {
	wallet, err := s.wallets.GetWalletByKey(userID, walletKey)
	if err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Payment{}).Where("wallet_id = ?", wallet.ID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Preload("Category").Scopes(pagination.Paginate(page)).
		Order("effective_date DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetUserPayments returns a page of the user's payments across wallets.
func (s *paymentService) GetUserPayments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error) {
	page.Defaults()

	base := s.db.Model(&models.Payment{}).
		Joins("JOIN wallets ON wallets.id = payments.wallet_id").
		Where("wallets.user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var payments []models.Payment
	if err := base.Preload("Wallet").Preload("Category").Scopes(pagination.Paginate(page)).
		Order("payments.effective_date DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(payments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetPaymentByKey returns a payment by key if its wallet belongs to the user.
func (s *paymentService) GetPaymentByKey(userID uint, key string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.Preload("Wallet").Preload("Category").
		Joins("JOIN wallets ON wallets.id = payments.wallet_id").
		Where("payments.key = ? AND wallets.user_id = ?", key, userID).
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPaymentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &payment, nil
}

// UpdatePayment changes a payment's amount, date or category. An amount
// change applies the delta to the wallet balance in the same transaction.
func (s *paymentService) UpdatePayment(userID uint, key string, params UpdatePaymentParams) (*models.Payment, error) {
	payment, err := s.GetPaymentByKey(userID, key)
	if err != nil {
		return nil, err
	}

	amount := payment.Amount
	if params.Amount != nil {
		amount = *params.Amount
	}
	effectiveDate := payment.EffectiveDate
	if params.EffectiveDate != nil {
		effectiveDate = *params.EffectiveDate
	}
	if verr := validatePayment(amount, effectiveDate); verr != nil {
		return nil, verr
	}

	updates := map[string]interface{}{
		"amount":         amount,
		"effective_date": effectiveDate,
	}

	if params.CategoryKey != nil {
		if *params.CategoryKey == "" {
			updates["category_id"] = nil
			payment.CategoryID = nil
			payment.Category = nil
		} else {
			var category models.Category
			if err := s.db.Where("key = ? AND user_id = ?", *params.CategoryKey, userID).First(&category).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, apperrors.ErrCategoryNotFound
				}
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			updates["category_id"] = category.ID
			payment.CategoryID = &category.ID
			payment.Category = &category
		}
	}

	delta := amount.Sub(payment.Amount)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(payment).Updates(updates).Error; err != nil {
			return err
		}
		if !delta.IsZero() {
			return s.adjustBalance(tx, payment.WalletID, delta)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	payment.Amount = amount
	payment.EffectiveDate = effectiveDate
	return payment, nil
}

// DeletePayment removes a payment and backs its amount out of the wallet.
func (s *paymentService) DeletePayment(userID uint, key string) error {
	payment, err := s.GetPaymentByKey(userID, key)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(payment).Error; err != nil {
			return err
		}
		return s.adjustBalance(tx, payment.WalletID, payment.Amount.Neg())
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// adjustBalance applies a delta to a wallet's running balance. The read
// and write happen on the transaction's connection, so concurrent
// adjustments serialize at the database.
func (s *paymentService) adjustBalance(tx *gorm.DB, walletID uint, delta decimal.Decimal) error {
	var wallet models.Wallet
	if err := tx.First(&wallet, walletID).Error; err != nil {
		return err
	}
	return tx.Model(&wallet).Update("balance", wallet.Balance.Add(delta)).Error
}

func validatePayment(amount decimal.Decimal, effectiveDate time.Time) *apperrors.ValidationError {
	verr := &apperrors.ValidationError{}

	if amount.IsZero() {
		verr.Add("amount", apperrors.KindInvalid, "must be other than 0")
	} else if amount.Abs().GreaterThanOrEqual(maxAmount) {
		verr.Add("amount", apperrors.KindOutOfRange, "must be between -1000000000 and 1000000000")
	}
	if effectiveDate.IsZero() {
		verr.Add("effective_date", apperrors.KindBlank, "can't be blank")
	}

	if verr.Any() {
		return verr
	}
	return nil
}
