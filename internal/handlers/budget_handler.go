package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/events"
	"spacebudget/internal/money"
	"spacebudget/internal/services"
	"spacebudget/internal/types"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
	publisher     events.Publisher
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer, publisher events.Publisher) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService, publisher: publisher}
}

// UpsertBudgetRequest represents the request payload for setting a monthly limit
type UpsertBudgetRequest struct {
	CategoryID string       `json:"category_id" binding:"required,uuid"`
	Month      string       `json:"month" binding:"required,month" example:"2025-09"`
	Amount     money.Amount `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"400000.00"`
}

// BudgetKeyQuery identifies one budget by category and month.
type BudgetKeyQuery struct {
	CategoryID string `form:"categoryId" binding:"required,uuid"`
	Month      string `form:"month" binding:"required,month"`
}

// BudgetHistoryQuery selects the history of a category, optionally for one month.
type BudgetHistoryQuery struct {
	CategoryID string `form:"categoryId" binding:"required,uuid"`
	Month      string `form:"month" binding:"omitempty,month"`
}

// ListBudgets returns budget progress for a month
// @Summary     List budgets
// @Description Limit, spent and remaining per budgeted expense category, ordered by category name
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       slug  path  string true "Space slug"
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {array}  services.BudgetProgress
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/budgets [get]
func (h *BudgetHandler) ListBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := parseMonth(c, "month")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), userID, c.Param("slug"), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month, "budgets": budgets})
}

// UpsertBudget sets the limit of a category for a month
// @Summary     Set a budget
// @Description Creates or updates the budget and appends a history entry
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string              true "Space slug"
// @Param       request body UpsertBudgetRequest true "Budget"
// @Success     200 {object} models.Budget
// @Failure     400 {object} ErrorResponse "Invalid input or income category"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Concurrent update"
// @Router      /spaces/{slug}/budgets [put]
func (h *BudgetHandler) UpsertBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpsertBudgetRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}
	month, err := types.ParseMonth(req.Month)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidMonth)
		return
	}

	slug := c.Param("slug")
	budget, err := h.budgetService.UpsertBudget(c.Request.Context(), userID, slug, services.UpsertBudgetInput{
		CategoryID: req.CategoryID,
		Month:      month,
		Amount:     req.Amount,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{
		"category_id": budget.CategoryID,
		"month":       budget.Month.String(),
		"amount":      budget.Amount.String(),
	}
	h.auditService.Log(c.Request.Context(), userID, slug, "UPSERT_BUDGET", "budget", budget.ID, c.ClientIP(), changes)
	publish(c, h.publisher, events.New(events.BudgetUpserted, slug, budget.ID, userID, changes))

	c.JSON(http.StatusOK, gin.H{"budget": budget})
}

// DeleteBudget removes the budget of a category for a month
// @Summary     Delete a budget
// @Description History entries are kept. A missing budget returns a null id.
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       slug       path  string true "Space slug"
// @Param       categoryId query string true "Category ID"
// @Param       month      query string true "Month (YYYY-MM)"
// @Success     200 {object} DeletedResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/budgets [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query BudgetKeyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, err)
		return
	}
	month, err := types.ParseMonth(query.Month)
	if err != nil {
		respondWithError(c, apperrors.ErrInvalidMonth)
		return
	}

	slug := c.Param("slug")
	deleted, err := h.budgetService.DeleteBudget(c.Request.Context(), userID, slug, query.CategoryID, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted != nil {
		changes := map[string]any{"category_id": query.CategoryID, "month": month.String()}
		h.auditService.Log(c.Request.Context(), userID, slug, "DELETE_BUDGET", "budget", *deleted, c.ClientIP(), changes)
		publish(c, h.publisher, events.New(events.BudgetDeleted, slug, *deleted, userID, changes))
	}

	c.JSON(http.StatusOK, DeletedResponse{ID: deleted})
}

// ListBudgetHistory lists limit changes of a category
// @Summary     Budget history
// @Description Newest first. Without a month, covers every budget of the category.
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       slug       path  string true  "Space slug"
// @Param       categoryId query string true  "Category ID"
// @Param       month      query string false "Month (YYYY-MM)"
// @Param       cursor     query string false "Cursor from the previous page"
// @Param       limit      query int    false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.Page[models.BudgetHistory]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /spaces/{slug}/budgets/history [get]
func (h *BudgetHandler) ListBudgetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query BudgetHistoryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, err)
		return
	}
	page, err := parseCursor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var month *types.Month
	if query.Month != "" {
		m, err := types.ParseMonth(query.Month)
		if err != nil {
			respondWithError(c, apperrors.ErrInvalidMonth)
			return
		}
		month = &m
	}

	result, err := h.budgetService.ListBudgetHistory(c.Request.Context(), userID, c.Param("slug"), query.CategoryID, month, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
