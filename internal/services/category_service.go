package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category; descriptions are unique per user,
// compared case-insensitively.
func (s *categoryService) CreateCategory(userID uint, description string) (*models.Category, error) {
	if verr, err := s.validateDescription(userID, description, 0); err != nil {
		return nil, err
	} else if verr != nil {
		return nil, verr
	}

	category := &models.Category{UserID: userID, Description: description}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories returns a page of the user's categories.
func (s *categoryService) GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	page.Defaults()

	base := s.db.Model(&models.Category{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.Category
	if err := base.Scopes(pagination.Paginate(page)).Order("description ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByKey returns a category by key if it belongs to the user.
func (s *categoryService) GetCategoryByKey(userID uint, key string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("key = ? AND user_id = ?", key, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory renames a category.
func (s *categoryService) UpdateCategory(userID uint, key, description string) (*models.Category, error) {
	category, err := s.GetCategoryByKey(userID, key)
	if err != nil {
		return nil, err
	}

	if verr, err := s.validateDescription(userID, description, category.ID); err != nil {
		return nil, err
	} else if verr != nil {
		return nil, verr
	}

	if err := s.db.Model(category).Update("description", description).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// DeleteCategory removes a category, cascading to its budgets and
// detaching its payments.
func (s *categoryService) DeleteCategory(userID uint, key string) error {
	category, err := s.GetCategoryByKey(userID, key)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", category.ID).Delete(&models.Budget{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Payment{}).Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) validateDescription(userID uint, description string, excludeID uint) (*apperrors.ValidationError, error) {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(description) == "" {
		verr.Add("description", apperrors.KindBlank, "can't be blank")
		return verr, nil
	}

	var count int64
	err := s.db.Model(&models.Category{}).
		Where("user_id = ? AND LOWER(description) = ? AND id <> ?", userID, strings.ToLower(description), excludeID).
		Count(&count).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		verr.Add("description", apperrors.KindTaken, "has already been taken")
		return verr, nil
	}
	return nil, nil
}
