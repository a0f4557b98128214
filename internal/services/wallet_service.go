package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// maxBalance bounds wallet balances to the open interval (-1e9, 1e9).
var maxBalance = decimal.New(1, 9)

// walletService handles wallet-related business logic.
type walletService struct {
	db *gorm.DB
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB) WalletServicer {
	return &walletService{db: db}
}

// CreateWallet creates a wallet with an opening balance.
func (s *walletService) CreateWallet(userID uint, description string, balance decimal.Decimal) (*models.Wallet, error) {
	verr := &apperrors.ValidationError{}

	if err := s.checkDescription(userID, description, 0, verr); err != nil {
		return nil, err
	}
	if balance.Abs().GreaterThanOrEqual(maxBalance) {
		verr.Add("balance", apperrors.KindOutOfRange, "must be between -1000000000 and 1000000000")
	}
	if verr.Any() {
		return nil, verr
	}

	wallet := &models.Wallet{UserID: userID, Description: description, Balance: balance}
	if err := s.db.Create(wallet).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallet, nil
}

// GetUserWallets returns a page of the user's wallets.
func (s *walletService) GetUserWallets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error) {
	page.Defaults()

	base := s.db.Model(&models.Wallet{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var wallets []models.Wallet
	if err := base.Scopes(pagination.Paginate(page)).Order("description ASC").Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(wallets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetWalletByKey returns a wallet by key if it belongs to the user.
func (s *walletService) GetWalletByKey(userID uint, key string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.Where("key = ? AND user_id = ?", key, userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &wallet, nil
}

// UpdateWallet renames a wallet. The balance is owned by the payment
// service and cannot be set directly after creation.
func (s *walletService) UpdateWallet(userID uint, key, description string) (*models.Wallet, error) {
	wallet, err := s.GetWalletByKey(userID, key)
	if err != nil {
		return nil, err
	}

	verr := &apperrors.ValidationError{}
	if err := s.checkDescription(userID, description, wallet.ID, verr); err != nil {
		return nil, err
	}
	if verr.Any() {
		return nil, verr
	}

	if err := s.db.Model(wallet).Update("description", description).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return wallet, nil
}

// DeleteWallet removes a wallet and its payments. No balance bookkeeping
// happens here; the wallet is going away with its history.
func (s *walletService) DeleteWallet(userID uint, key string) error {
	wallet, err := s.GetWalletByKey(userID, key)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wallet_id = ?", wallet.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(wallet).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *walletService) checkDescription(userID uint, description string, excludeID uint, verr *apperrors.ValidationError) error {
	if strings.TrimSpace(description) == "" {
		verr.Add("description", apperrors.KindBlank, "can't be blank")
		return nil
	}

	var count int64
	err := s.db.Model(&models.Wallet{}).
		Where("user_id = ? AND LOWER(description) = ? AND id <> ?", userID, strings.ToLower(description), excludeID).
		Count(&count).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		verr.Add("description", apperrors.KindTaken, "has already been taken")
	}
	return nil
}
