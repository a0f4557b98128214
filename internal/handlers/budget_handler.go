package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "centavo/internal/errors"
	"centavo/internal/services"
)

// BudgetHandler handles budget period requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the request payload for creating a
// budget period. Dates travel as date-only strings; starts_at lands on
// the first day of its month, ends_at on the last day of its own, and
// omitting ends_at makes the period open-ended.
type CreateBudgetRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	StartsAt string          `json:"starts_at" binding:"required,datetime=2006-01-02"`
	EndsAt   string          `json:"ends_at" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateBudgetRequest represents the request payload for updating a
// budget period. The start date and category are immutable.
type UpdateBudgetRequest struct {
	Amount *decimal.Decimal `json:"amount"`
	EndsAt string           `json:"ends_at" binding:"omitempty,datetime=2006-01-02"`
}

// CreateBudget handles the creation of a budget period for a category.
// @Summary     Create a budget period
// @Description Create a budget period for a category; an open-ended period supersedes the category's previous open-ended one
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string              true "Category key"
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} models.Budget "Budget created"
// @Failure     401 {object} map[string]string "Unauthorized"
// @Failure     404 {object} map[string]string "Category not found"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /categories/{key}/budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	startsAt, err := parseDate(req.StartsAt)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "starts_at must be a date"))
		return
	}
	endsAt, err := parseOptionalDate(req.EndsAt)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "ends_at must be a date"))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, c.Param("key"), req.Amount, startsAt, endsAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"budget": budget})
}

// GetBudget handles retrieving a budget period.
// @Summary     Get budget period
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       key path string true "Budget key"
// @Success     200 {object} models.Budget "Budget details"
// @Failure     404 {object} map[string]string "Budget not found"
// @Router      /budgets/{key} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByKey(userID, c.Param("key"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// UpdateBudget handles updating a budget period's amount or end date.
// @Summary     Update budget period
// @Description Update a budget period's amount or end date; the start date and category cannot change
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       key     path string              true "Budget key"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} models.Budget "Updated budget"
// @Failure     404 {object} map[string]string "Budget not found"
// @Failure     422 {object} map[string]interface{} "Validation errors"
// @Router      /budgets/{key} [patch]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	endsAt, err := parseOptionalDate(req.EndsAt)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "ends_at must be a date"))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, c.Param("key"), req.Amount, endsAt)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget handles deleting a budget period.
// @Summary     Delete budget period
// @Tags        budgets
// @Security    BearerAuth
// @Param       key path string true "Budget key"
// @Success     204 "Budget deleted"
// @Failure     404 {object} map[string]string "Budget not found"
// @Router      /budgets/{key} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, c.Param("key")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetCategoryBudget resolves the budget period covering a date.
// @Summary     Resolve a category's budget for a date
// @Description Return the budget period, if any, whose span contains the given date (today when omitted)
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       key  path  string true  "Category key"
// @Param       date query string false "Date (YYYY-MM-DD, default today)"
// @Success     200 {object} models.Budget "Budget covering the date"
// @Failure     404 {object} map[string]string "No budget covers the date"
// @Router      /categories/{key}/budget [get]
func (h *BudgetHandler) GetCategoryBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	date := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		date, err = parseDate(v)
		if err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be a date"))
			return
		}
	}

	budget, err := h.budgetService.BudgetFor(userID, c.Param("key"), date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}
