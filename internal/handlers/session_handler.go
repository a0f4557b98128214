package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"centavo/internal/config"
	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// SessionHandler handles authentication requests.
type SessionHandler struct {
	tokenService services.TokenServicer
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(tokenService services.TokenServicer) *SessionHandler {
	return &SessionHandler{tokenService: tokenService}
}

// CreateSessionRequest represents the login payload.
type CreateSessionRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateSession handles login: it checks the credentials and issues an
// access token. The plain token appears only in this response; it cannot
// be recovered later.
// @Summary     Log in
// @Description Exchange email and password for an access token
// @Tags        sessions
// @Accept      json
// @Produce     json
// @Param       request body CreateSessionRequest true "Credentials"
// @Success     201 {object} map[string]string "Access token"
// @Failure     401 {object} map[string]string "Invalid credentials"
// @Router      /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.tokenService.Authenticate(req.Email, req.Password)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plain, token, err := h.tokenService.IssueToken(user)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token": plain,
		"expires_at":   token.ExpiresAt(config.Get().AccessTokenTTL),
		"user":         gin.H{"key": user.Key, "nickname": user.Nickname},
	})
}

// DeleteSession handles logout by revoking the bearer token that
// authenticated the request.
// @Summary     Log out
// @Tags        sessions
// @Security    BearerAuth
// @Success     204 "Token revoked"
// @Failure     401 {object} map[string]string "Invalid token"
// @Router      /sessions [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	plain, ok := c.Get("accessToken")
	if !ok {
		respondWithError(c, apperrors.ErrUnauthorized)
		return
	}

	if err := h.tokenService.RevokePlainToken(plain.(string)); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
