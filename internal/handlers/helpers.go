package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "centavo/internal/errors"
	"centavo/internal/logger"
)

// dateLayout is the wire format for date-only fields.
const dateLayout = "2006-01-02"

// getUserID extracts the authenticated user ID from the Gin context.
func getUserID(c *gin.Context) (uint, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return 0, apperrors.ErrUnauthorized
	}
	return userID.(uint), nil
}

// getUserKey extracts the authenticated user's public key from the context.
func getUserKey(c *gin.Context) (string, error) {
	userKey, exists := c.Get("userKey")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return userKey.(string), nil
}

// parseDate parses a date-only value into UTC midnight.
func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

// parseOptionalDate parses a date-only value, mapping "" to nil.
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// respondWithError writes a consistent JSON error response.
// ValidationErrors become a 422 with the per-field message map. AppErrors
// carry their own status and code. Anything else is logged and hidden
// behind a generic internal error.
func respondWithError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		c.JSON(422, gin.H{"errors": verr.ByField()})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
