package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"centavo/internal/config"
	apperrors "centavo/internal/errors"
	"centavo/internal/models"
	"centavo/internal/validator"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// userService handles user-related business logic.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// CreateUser registers a new user. Every violation is collected into one
// ValidationError so the client sees all problems at once.
func (s *userService) CreateUser(params CreateUserParams) (*models.User, error) {
	verr := &apperrors.ValidationError{}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		verr.Add("email", apperrors.KindBlank, "can't be blank")
	} else if !emailRegex.MatchString(email) {
		verr.Add("email", apperrors.KindInvalid, "is invalid")
	} else {
		taken, err := s.emailTaken(email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("email", apperrors.KindTaken, "has already been taken")
		}
	}

	if params.Nickname == "" {
		verr.Add("nickname", apperrors.KindBlank, "can't be blank")
	}

	s.validatePassword(params.Password, params.PasswordConfirmation, verr)

	username := strings.TrimSpace(params.Username)
	if username != "" {
		taken, err := s.usernameTaken(username, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			verr.Add("username", apperrors.KindTaken, "has already been taken")
		}
	}

	documentation, err := s.validateDocumentation(params.Documentation, 0, verr)
	if err != nil {
		return nil, err
	}

	if params.DateOfBirth != nil && params.DateOfBirth.After(time.Now()) {
		verr.Add("date_of_birth", apperrors.KindInvalid, "must be on or before today")
	}

	if verr.Any() {
		return nil, verr
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		FullName:       params.FullName,
		Nickname:       params.Nickname,
		Username:       username,
		Email:          email,
		PasswordDigest: string(digest),
		Documentation:  documentation,
		DateOfBirth:    params.DateOfBirth,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// GetUserByKey retrieves a user by their public key.
func (s *userService) GetUserByKey(key string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("key = ?", key).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by internal ID.
func (s *userService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// UpdateUser changes a user's own profile. Email and key are immutable.
func (s *userService) UpdateUser(userID uint, params UpdateUserParams) (*models.User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	verr := &apperrors.ValidationError{}
	updates := make(map[string]interface{})

	if params.FullName != nil {
		updates["full_name"] = *params.FullName
	}
	if params.Nickname != nil {
		if *params.Nickname == "" {
			verr.Add("nickname", apperrors.KindBlank, "can't be blank")
		} else {
			updates["nickname"] = *params.Nickname
		}
	}
	if params.Username != nil {
		username := strings.TrimSpace(*params.Username)
		if username != "" {
			taken, err := s.usernameTaken(username, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				verr.Add("username", apperrors.KindTaken, "has already been taken")
			}
		}
		updates["username"] = username
	}
	if params.Password != nil {
		confirmation := ""
		if params.PasswordConfirmation != nil {
			confirmation = *params.PasswordConfirmation
		}
		s.validatePassword(*params.Password, confirmation, verr)
		if !verr.Any() {
			digest, err := bcrypt.GenerateFromPassword([]byte(*params.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			updates["password_digest"] = string(digest)
		}
	}
	if params.Documentation != nil {
		documentation, err := s.validateDocumentation(*params.Documentation, userID, verr)
		if err != nil {
			return nil, err
		}
		updates["documentation"] = documentation
	}
	if params.DateOfBirth != nil {
		if params.DateOfBirth.After(time.Now()) {
			verr.Add("date_of_birth", apperrors.KindInvalid, "must be on or before today")
		} else {
			updates["date_of_birth"] = params.DateOfBirth
		}
	}

	if verr.Any() {
		return nil, verr
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return user, nil
}

// DeleteUser removes the user and everything they own in one transaction.
func (s *userService) DeleteUser(userID uint) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		// Budgets hang off categories and payments off wallets, so they
		// go first to satisfy the foreign keys.
		if err := tx.Where("category_id IN (?)",
			tx.Model(&models.Category{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.Budget{}).Error; err != nil {
			return err
		}
		if err := tx.Where("wallet_id IN (?)",
			tx.Model(&models.Wallet{}).Select("id").Where("user_id = ?", userID),
		).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.Category{}, &models.Wallet{}, &models.Goal{}, &models.AccessToken{},
		} {
			if err := tx.Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ConfirmUser stamps confirmed_at once; confirming twice is a no-op.
func (s *userService) ConfirmUser(userID uint) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Confirmed() {
		return nil
	}

	now := time.Now()
	if err := s.db.Model(user).Update("confirmed_at", &now).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *userService) validatePassword(password, confirmation string, verr *apperrors.ValidationError) {
	if len(password) < minPasswordLength {
		verr.Add("password", apperrors.KindTooShort, "is too short (minimum is 8 characters)")
	}
	if confirmation == "" {
		verr.Add("password_confirmation", apperrors.KindBlank, "can't be blank")
	} else if confirmation != password {
		verr.Add("password_confirmation", apperrors.KindConfirmation, "doesn't match password")
	}
}

// validateDocumentation strips the CPF to digits and, when the
// deployment is restricted to Brazilian CPFs, verifies the check digits.
func (s *userService) validateDocumentation(documentation string, excludeID uint, verr *apperrors.ValidationError) (string, error) {
	if documentation == "" {
		return "", nil
	}

	stripped := validator.StripCPF(documentation)
	if config.Get().OnlyBrazilianCPF && !validator.ValidCPF(stripped) {
		verr.Add("documentation", apperrors.KindInvalid, "is invalid")
		return stripped, nil
	}

	var count int64
	err := s.db.Model(&models.User{}).
		Where("documentation = ? AND id <> ?", stripped, excludeID).
		Count(&count).Error
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		verr.Add("documentation", apperrors.KindTaken, "has already been taken")
	}
	return stripped, nil
}

func (s *userService) emailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

func (s *userService) usernameTaken(username string, excludeID uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.User{}).
		Where("LOWER(username) = ? AND id <> ?", strings.ToLower(username), excludeID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
