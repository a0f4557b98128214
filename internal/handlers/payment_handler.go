package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "centavo/internal/errors"
	"centavo/internal/pagination"
	"centavo/internal/services"
)

// PaymentHandler handles payment requests.
type PaymentHandler struct {
	paymentService services.PaymentServicer
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService services.PaymentServicer) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest represents the payload for recording a payment on
// a wallet. Positive amounts are income, negative amounts spending.
type CreatePaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	EffectiveDate string          `json:"effective_date" binding:"required,datetime=2006-01-02"`
	CategoryKey   *string         `json:"category_key"`
}

// UpdatePaymentRequest represents the payload for changing a payment.
// An empty category_key detaches the payment from its category.
type UpdatePaymentRequest struct {
	Amount        *decimal.Decimal `json:"amount"`
	EffectiveDate string           `json:"effective_date" binding:"omitempty,datetime=2006-01-02"`
	CategoryKey   *string          `json:"category_key"`
}

// CreatePayment handles recording a payment on a wallet.
// @Summary     Record a payment
// @Description Record a payment on a wallet, adjusting the wallet balance
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string               true "Wallet key"
// @Param       request body CreatePaymentRequest true "Payment details"
// @Success     201 {object} models.Payment "Payment created"
// @Failure     404 {object} map[string]string "Wallet or category not found"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /wallets/{key}/payments [post]
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	effectiveDate, err := parseDate(req.EffectiveDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "effective_date must be a date"))
		return
	}

	payment, err := h.paymentService.CreatePayment(userID, c.Param("key"), req.CategoryKey, req.Amount, effectiveDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}

// GetWalletPayments handles listing one wallet's payments.
// @Summary     List a wallet's payments
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       key       path  string true  "Wallet key"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Failure     404 {object} map[string]string "Wallet not found"
// @Router      /wallets/{key}/payments [get]
func (h *PaymentHandler) GetWalletPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.paymentService.GetWalletPayments(userID, c.Param("key"), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayments handles listing the user's payments across wallets.
// @Summary     List payments
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Payment] "Paginated payments"
// @Router      /payments [get]
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.paymentService.GetUserPayments(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayment handles retrieving a payment.
// @Summary     Get payment
// @Tags        payments
// @Produce     json
// @Security    BearerAuth
// @Param       key path string true "Payment key"
// @Success     200 {object} models.Payment "Payment details"
// @Failure     404 {object} map[string]string "Payment not found"
// @Router      /payments/{key} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	payment, err := h.paymentService.GetPaymentByKey(userID, c.Param("key"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// UpdatePayment handles changing a payment, applying any amount delta to
// the wallet balance.
// @Summary     Update payment
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string               true "Payment key"
// @Param       request body UpdatePaymentRequest true "Changed fields"
// @Success     200 {object} models.Payment "Updated payment"
// @Failure     404 {object} map[string]string "Payment not found"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /payments/{key} [patch]
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	effectiveDate, err := parseOptionalDate(req.EffectiveDate)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "effective_date must be a date"))
		return
	}

	payment, err := h.paymentService.UpdatePayment(userID, c.Param("key"), services.UpdatePaymentParams{
		Amount:        req.Amount,
		EffectiveDate: effectiveDate,
		CategoryKey:   req.CategoryKey,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": payment})
}

// DeletePayment handles deleting a payment, backing its amount out of
// the wallet balance.
// @Summary     Delete payment
// @Tags        payments
// @Security    BearerAuth
// @Param       key path string true "Payment key"
// @Success     204 "Payment deleted"
// @Failure     404 {object} map[string]string "Payment not found"
// @Router      /payments/{key} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.paymentService.DeletePayment(userID, c.Param("key")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
