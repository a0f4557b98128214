package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// UserHandler handles user registration and profile requests.
type UserHandler struct {
	userService services.UserServicer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService services.UserServicer) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents the registration payload. Documentation,
// when provided, must be a Brazilian CPF in deployments where
// ONLY_BRAZILIAN_CPF is set.
type CreateUserRequest struct {
	FullName             string `json:"full_name"`
	Nickname             string `json:"nickname" binding:"required"`
	Username             string `json:"username"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
	Documentation        string `json:"documentation"`
	DateOfBirth          string `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateUserRequest represents the profile update payload. Nil fields
// stay untouched; email and key never change.
type UpdateUserRequest struct {
	FullName             *string `json:"full_name"`
	Nickname             *string `json:"nickname"`
	Username             *string `json:"username"`
	Password             *string `json:"password"`
	PasswordConfirmation *string `json:"password_confirmation"`
	Documentation        *string `json:"documentation"`
	DateOfBirth          string  `json:"date_of_birth" binding:"omitempty,datetime=2006-01-02"`
}

// Register handles user registration.
// @Summary     Register
// @Tags        users
// @Accept      json
// @Produce     json
// @Param       request body CreateUserRequest true "User details"
// @Success     201 {object} models.User "User created"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /users [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	dateOfBirth, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date_of_birth must be a date"))
		return
	}

	user, err := h.userService.CreateUser(services.CreateUserParams{
		FullName:             req.FullName,
		Nickname:             req.Nickname,
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Documentation:        req.Documentation,
		DateOfBirth:          dateOfBirth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// GetUser handles retrieving the authenticated user's own profile.
// @Summary     Get own profile
// @Tags        users
// @Produce     json
// @Security    BearerAuth
// @Param       key path string true "User key"
// @Success     200 {object} models.User "Profile"
// @Failure     403 {object} map[string]string "Not your profile"
// @Router      /users/{key} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, err := h.authorizeSelf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateUser handles profile changes.
// @Summary     Update own profile
// @Tags        users
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string            true "User key"
// @Param       request body UpdateUserRequest true "Changed fields"
// @Success     200 {object} models.User "Updated profile"
// @Failure     403 {object} map[string]string "Not your profile"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /users/{key} [patch]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, err := h.authorizeSelf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	dateOfBirth, err := parseOptionalDate(req.DateOfBirth)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date_of_birth must be a date"))
		return
	}

	user, err := h.userService.UpdateUser(userID, services.UpdateUserParams{
		FullName:             req.FullName,
		Nickname:             req.Nickname,
		Username:             req.Username,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		Documentation:        req.Documentation,
		DateOfBirth:          dateOfBirth,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// DeleteUser handles account deletion, cascading to everything the user owns.
// @Summary     Delete own account
// @Tags        users
// @Security    BearerAuth
// @Param       key path string true "User key"
// @Success     204 "Account deleted"
// @Failure     403 {object} map[string]string "Not your profile"
// @Router      /users/{key} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, err := h.authorizeSelf(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.userService.DeleteUser(userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// authorizeSelf ensures the path key identifies the authenticated user.
func (h *UserHandler) authorizeSelf(c *gin.Context) (uint, error) {
	userID, err := getUserID(c)
	if err != nil {
		return 0, err
	}
	userKey, err := getUserKey(c)
	if err != nil {
		return 0, err
	}
	if c.Param("key") != userKey {
		return 0, apperrors.ErrForbidden
	}
	return userID, nil
}
