package services

import (
	"time"

	"github.com/shopspring/decimal"

	"centavo/internal/models"
	"centavo/internal/pagination"
)

// CreateUserParams carries the attributes accepted at registration.
type CreateUserParams struct {
	FullName             string
	Nickname             string
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	Documentation        string
	DateOfBirth          *time.Time
}

// UpdateUserParams carries the attributes a user may change on their own
// profile. Nil pointers leave the corresponding column untouched.
type UpdateUserParams struct {
	FullName             *string
	Nickname             *string
	Username             *string
	Password             *string
	PasswordConfirmation *string
	Documentation        *string
	DateOfBirth          *time.Time
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(params CreateUserParams) (*models.User, error)
	GetUserByKey(key string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	UpdateUser(userID uint, params UpdateUserParams) (*models.User, error)
	DeleteUser(userID uint) error
	ConfirmUser(userID uint) error
}

// TokenServicer defines the contract for session and access-token logic.
type TokenServicer interface {
	Authenticate(email, password string) (*models.User, error)
	IssueToken(user *models.User) (plainToken string, token *models.AccessToken, err error)
	AuthenticateToken(plainToken string) (userID uint, userKey string, err error)
	RevokeToken(token *models.AccessToken) error
	RevokePlainToken(plainToken string) error
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, description string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByKey(userID uint, key string) (*models.Category, error)
	UpdateCategory(userID uint, key, description string) (*models.Category, error)
	DeleteCategory(userID uint, key string) error
}

// WalletServicer defines the contract for wallet-related business logic.
type WalletServicer interface {
	CreateWallet(userID uint, description string, balance decimal.Decimal) (*models.Wallet, error)
	GetUserWallets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error)
	GetWalletByKey(userID uint, key string) (*models.Wallet, error)
	UpdateWallet(userID uint, key, description string) (*models.Wallet, error)
	DeleteWallet(userID uint, key string) error
}

// UpdatePaymentParams carries the attributes a payment update may change.
type UpdatePaymentParams struct {
	Amount        *decimal.Decimal
	EffectiveDate *time.Time
	CategoryKey   *string
}

// PaymentServicer defines the contract for payment-related business logic.
// Every write keeps the owning wallet's running balance in step inside
// the same transaction.
type PaymentServicer interface {
	CreatePayment(userID uint, walletKey string, categoryKey *string, amount decimal.Decimal, effectiveDate time.Time) (*models.Payment, error)
	GetWalletPayments(userID uint, walletKey string, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error)
	GetUserPayments(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Payment], error)
	GetPaymentByKey(userID uint, key string) (*models.Payment, error)
	UpdatePayment(userID uint, key string, params UpdatePaymentParams) (*models.Payment, error)
	DeletePayment(userID uint, key string) error
}

// GoalServicer defines the contract for goal-related business logic.
type GoalServicer interface {
	CreateGoal(userID uint, description string, amount decimal.Decimal, startsAt, endsAt time.Time) (*models.Goal, error)
	GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error)
	GetGoalByKey(userID uint, key string) (*models.Goal, error)
	UpdateGoal(userID uint, key string, description *string, amount *decimal.Decimal, startsAt, endsAt *time.Time) (*models.Goal, error)
	DeleteGoal(userID uint, key string) error
}

// BudgetServicer defines the contract for the budget period allocator.
// CreateBudget owns the non-overlap invariant for a category's periods:
// it normalizes dates to month boundaries, supersedes the category's
// open-ended budget when the candidate has no end date, and validates
// the candidate against the remaining periods, all atomically.
type BudgetServicer interface {
	CreateBudget(userID uint, categoryKey string, amount decimal.Decimal, startsAt time.Time, endsAt *time.Time) (*models.Budget, error)
	GetBudgetByKey(userID uint, key string) (*models.Budget, error)
	UpdateBudget(userID uint, key string, amount *decimal.Decimal, endsAt *time.Time) (*models.Budget, error)
	DeleteBudget(userID uint, key string) error
	BudgetFor(userID uint, categoryKey string, date time.Time) (*models.Budget, error)
	ListOpenEnded(categoryID uint) ([]models.Budget, error)
}
