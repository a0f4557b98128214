package services

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
	"centavo/internal/models"
)

// maxAmount is the exclusive upper bound for budget amounts.
var maxAmount = decimal.New(1, 9)

// budgetService maintains the budget periods of each category as a
// non-overlapping timeline. Creates targeting the same category are
// serialized through a per-category mutex so two concurrent callers
// cannot both observe "no open-ended budget" and insert one each; the
// unique indexes on (category_id, starts_at) and (category_id, ends_at)
// remain as the storage-level backstop.
type budgetService struct {
	db    *gorm.DB
	locks sync.Map // category ID -> *sync.Mutex
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// beginningOfMonth truncates t to the first day of its month.
func beginningOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// endOfMonth extends t to the last day of its month.
func endOfMonth(t time.Time) time.Time {
	return beginningOfMonth(t).AddDate(0, 1, -1)
}

func (s *budgetService) lockCategory(categoryID uint) func() {
	v, _ := s.locks.LoadOrStore(categoryID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *budgetService) findCategory(userID uint, categoryKey string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("key = ? AND user_id = ?", categoryKey, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func (s *budgetService) findBudget(userID uint, key string) (*models.Budget, error) {
	var budget models.Budget
	err := s.db.Joins("JOIN categories ON categories.id = budgets.category_id").
		Where("budgets.key = ? AND categories.user_id = ?", key, userID).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// CreateBudget creates a budget period for a category. Dates are
// normalized to month boundaries before anything else: starts_at to the
// first day of its month, ends_at to the last day of its own. When the
// candidate has no end date, the category's current open-ended budget is
// truncated first so the candidate can take over as the open-ended one.
// The truncation and the insert commit together or not at all.
func (s *budgetService) CreateBudget(
	userID uint,
	categoryKey string,
	amount decimal.Decimal,
	startsAt time.Time,
	endsAt *time.Time,
) (*models.Budget, error) {
	category, err := s.findCategory(userID, categoryKey)
	if err != nil {
		return nil, err
	}

	budget := &models.Budget{CategoryID: category.ID, Amount: amount}
	if !startsAt.IsZero() {
		budget.StartsAt = beginningOfMonth(startsAt)
	}
	if endsAt != nil {
		e := endOfMonth(*endsAt)
		budget.EndsAt = &e
	}

	unlock := s.lockCategory(category.ID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if budget.EndsAt == nil {
			if err := s.supersedeOpenEnded(tx, budget); err != nil {
				return err
			}
		}

		verr := &apperrors.ValidationError{}
		if err := s.validateBudget(tx, budget, verr, true); err != nil {
			return err
		}
		if verr.Any() {
			return verr
		}

		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// supersedeOpenEnded closes the category's current open-ended budget so
// the candidate can take its place. An open-ended budget starting after
// the candidate keeps only its own starting month; otherwise it is closed
// one day before the candidate begins, leaving a contiguous timeline.
//
// Finding more than one open-ended budget means the at-most-one invariant
// was already broken outside the allocator; that is surfaced as an
// internal fault instead of guessing which one to truncate.
func (s *budgetService) supersedeOpenEnded(tx *gorm.DB, candidate *models.Budget) error {
	open, err := s.listOpenEnded(tx, candidate.CategoryID)
	if err != nil {
		return err
	}

	switch len(open) {
	case 0:
		return nil
	case 1:
	default:
		logger.Get().Errorw("multiple open-ended budgets for category",
			"category_id", candidate.CategoryID,
			"count", len(open),
		)
		return apperrors.ErrBudgetStateInvalid
	}

	current := &open[0]
	var newEnd time.Time
	if current.StartsAt.After(candidate.StartsAt) {
		// The candidate starts before an open-ended budget scheduled for
		// the future: shrink that budget to exactly its starting month.
		newEnd = endOfMonth(current.StartsAt)
	} else {
		newEnd = candidate.StartsAt.AddDate(0, 0, -1)
	}
	current.EndsAt = &newEnd

	verr := &apperrors.ValidationError{}
	if err := s.validateBudget(tx, current, verr, false); err != nil {
		return err
	}
	if verr.Any() {
		// The truncation itself is invalid. If the candidate is also
		// invalid (for example it reuses the current budget's start
		// date), report the candidate's violations; an invalid
		// truncation of a valid candidate is a consistency fault.
		cerr := &apperrors.ValidationError{}
		if err := s.validateBudget(tx, candidate, cerr, true); err != nil {
			return err
		}
		if cerr.Any() {
			return cerr
		}

		logger.Get().Errorw("superseded budget failed validation",
			"category_id", candidate.CategoryID,
			"budget_key", current.Key,
			"errors", verr.ByField(),
		)
		return apperrors.ErrBudgetStateInvalid
	}

	if err := tx.Model(current).Update("ends_at", newEnd).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// validateBudget records every violation on verr; nothing short-circuits.
// asCandidate enables the checks that only apply to new periods (the
// not-in-a-past-month rule), which must not run against existing budgets
// being truncated: their start dates are legitimately in the past.
func (s *budgetService) validateBudget(tx *gorm.DB, b *models.Budget, verr *apperrors.ValidationError, asCandidate bool) error {
	if b.Amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", apperrors.KindTooSmall, "must be greater than 0")
	} else if b.Amount.GreaterThanOrEqual(maxAmount) {
		verr.Add("amount", apperrors.KindTooLarge, "must be less than 1000000000")
	}

	if b.StartsAt.IsZero() {
		verr.Add("starts_at", apperrors.KindBlank, "can't be blank")
	} else {
		if asCandidate && b.StartsAt.Before(beginningOfMonth(time.Now().UTC())) {
			verr.Add("starts_at", apperrors.KindInPast, "cannot be in the past")
		}

		taken, err := s.startsAtTaken(tx, b)
		if err != nil {
			return err
		}
		if taken {
			verr.Add("starts_at", apperrors.KindTaken, "has already been taken")
		}
	}

	if b.EndsAt != nil && !b.StartsAt.IsZero() && !b.EndsAt.After(b.StartsAt) {
		verr.Add("ends_at", apperrors.KindNotAfter, "must be after starts_at")
	}

	taken, err := s.endsAtTaken(tx, b)
	if err != nil {
		return err
	}
	if taken {
		verr.Add("ends_at", apperrors.KindTaken, "has already been taken")
	}

	return nil
}

func (s *budgetService) startsAtTaken(tx *gorm.DB, b *models.Budget) (bool, error) {
	var count int64
	err := tx.Model(&models.Budget{}).
		Where("category_id = ? AND starts_at = ? AND id <> ?", b.CategoryID, b.StartsAt, b.ID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// endsAtTaken treats a nil ends_at as a value: two open-ended budgets in
// one category collide. Supersession exists to close the previous one
// before this check runs.
func (s *budgetService) endsAtTaken(tx *gorm.DB, b *models.Budget) (bool, error) {
	q := tx.Model(&models.Budget{}).Where("category_id = ? AND id <> ?", b.CategoryID, b.ID)
	if b.EndsAt == nil {
		q = q.Where("ends_at IS NULL")
	} else {
		q = q.Where("ends_at = ?", *b.EndsAt)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// GetBudgetByKey returns a budget by key if its category belongs to the user.
func (s *budgetService) GetBudgetByKey(userID uint, key string) (*models.Budget, error) {
	return s.findBudget(userID, key)
}

// UpdateBudget changes a budget's amount and, when requested, its end
// date. The start date and category are immutable through this path;
// the request types cannot even express them.
func (s *budgetService) UpdateBudget(userID uint, key string, amount *decimal.Decimal, endsAt *time.Time) (*models.Budget, error) {
	budget, err := s.findBudget(userID, key)
	if err != nil {
		return nil, err
	}

	if amount != nil {
		budget.Amount = *amount
	}
	if endsAt != nil {
		e := endOfMonth(*endsAt)
		budget.EndsAt = &e
	}

	unlock := s.lockCategory(budget.CategoryID)
	defer unlock()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		verr := &apperrors.ValidationError{}
		if err := s.validateBudget(tx, budget, verr, false); err != nil {
			return err
		}
		if verr.Any() {
			return verr
		}

		if err := tx.Model(budget).Select("amount", "ends_at").
			Updates(map[string]interface{}{"amount": budget.Amount, "ends_at": budget.EndsAt}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budget, nil
}

// DeleteBudget removes a budget period.
func (s *budgetService) DeleteBudget(userID uint, key string) error {
	budget, err := s.findBudget(userID, key)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// BudgetFor resolves the single budget period covering date, if any.
// Open-ended budgets extend indefinitely into the future. Should the
// data ever contain overlapping periods, the one with the earliest end
// date wins, with open-ended sorting last.
func (s *budgetService) BudgetFor(userID uint, categoryKey string, date time.Time) (*models.Budget, error) {
	category, err := s.findCategory(userID, categoryKey)
	if err != nil {
		return nil, err
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var budget models.Budget
	err = s.db.Where("category_id = ?", category.ID).
		Where("(? BETWEEN starts_at AND ends_at) OR (? >= starts_at AND ends_at IS NULL)", day, day).
		Order("ends_at IS NULL, ends_at ASC").
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// ListOpenEnded returns the category's open-ended budgets ordered by
// start date. At steady state the result has at most one element; it is
// exposed for diagnostics and tests.
func (s *budgetService) ListOpenEnded(categoryID uint) ([]models.Budget, error) {
	return s.listOpenEnded(s.db, categoryID)
}

func (s *budgetService) listOpenEnded(tx *gorm.DB, categoryID uint) ([]models.Budget, error) {
	var budgets []models.Budget
	err := tx.Where("category_id = ? AND ends_at IS NULL", categoryID).
		Order("starts_at ASC").
		Find(&budgets).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}
