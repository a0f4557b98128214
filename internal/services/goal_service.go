package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// goalService handles savings-goal business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// CreateGoal creates a savings goal over a closed date range.
func (s *goalService) CreateGoal(userID uint, description string, amount decimal.Decimal, startsAt, endsAt time.Time) (*models.Goal, error) {
	verr := &apperrors.ValidationError{}
	if err := s.validateGoal(userID, description, amount, startsAt, endsAt, 0, verr); err != nil {
		return nil, err
	}
	if verr.Any() {
		return nil, verr
	}

	goal := &models.Goal{
		UserID:      userID,
		Description: description,
		Amount:      amount,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	}
	if err := s.db.Create(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// GetUserGoals returns a page of the user's goals.
func (s *goalService) GetUserGoals(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Goal], error) {
	page.Defaults()

	base := s.db.Model(&models.Goal{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.Goal
	if err := base.Scopes(pagination.Paginate(page)).Order("starts_at ASC").Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByKey returns a goal by key if it belongs to the user.
func (s *goalService) GetGoalByKey(userID uint, key string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.db.Where("key = ? AND user_id = ?", key, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal changes any of a goal's attributes; nil means keep.
func (s *goalService) UpdateGoal(userID uint, key string, description *string, amount *decimal.Decimal, startsAt, endsAt *time.Time) (*models.Goal, error) {
	goal, err := s.GetGoalByKey(userID, key)
	if err != nil {
		return nil, err
	}

	newDescription := goal.Description
	if description != nil {
		newDescription = *description
	}
	newAmount := goal.Amount
	if amount != nil {
		newAmount = *amount
	}
	newStartsAt := goal.StartsAt
	if startsAt != nil {
		newStartsAt = *startsAt
	}
	newEndsAt := goal.EndsAt
	if endsAt != nil {
		newEndsAt = *endsAt
	}

	verr := &apperrors.ValidationError{}
	if err := s.validateGoal(userID, newDescription, newAmount, newStartsAt, newEndsAt, goal.ID, verr); err != nil {
		return nil, err
	}
	if verr.Any() {
		return nil, verr
	}

	updates := map[string]interface{}{
		"description": newDescription,
		"amount":      newAmount,
		"starts_at":   newStartsAt,
		"ends_at":     newEndsAt,
	}
	if err := s.db.Model(goal).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	goal.Description = newDescription
	goal.Amount = newAmount
	goal.StartsAt = newStartsAt
	goal.EndsAt = newEndsAt
	return goal, nil
}

// DeleteGoal removes a goal.
func (s *goalService) DeleteGoal(userID uint, key string) error {
	goal, err := s.GetGoalByKey(userID, key)
	if err != nil {
		return err
	}

	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *goalService) validateGoal(userID uint, description string, amount decimal.Decimal, startsAt, endsAt time.Time, excludeID uint, verr *apperrors.ValidationError) error {
	if strings.TrimSpace(description) == "" {
		verr.Add("description", apperrors.KindBlank, "can't be blank")
	} else {
		var count int64
		err := s.db.Model(&models.Goal{}).
			Where("user_id = ? AND LOWER(description) = ? AND id <> ?", userID, strings.ToLower(description), excludeID).
			Count(&count).Error
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			verr.Add("description", apperrors.KindTaken, "has already been taken")
		}
	}

	if amount.LessThanOrEqual(decimal.Zero) {
		verr.Add("amount", apperrors.KindTooSmall, "must be greater than 0")
	} else if amount.GreaterThanOrEqual(maxAmount) {
		verr.Add("amount", apperrors.KindTooLarge, "must be less than 1000000000")
	}

	if startsAt.IsZero() {
		verr.Add("starts_at", apperrors.KindBlank, "can't be blank")
	}
	if endsAt.IsZero() {
		verr.Add("ends_at", apperrors.KindBlank, "can't be blank")
	} else if !startsAt.IsZero() && !endsAt.After(startsAt) {
		verr.Add("ends_at", apperrors.KindNotAfter, "must be after starts_at")
	}

	return nil
}
