package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/services"
)

// SummaryHandler serves the read-only dashboard views.
type SummaryHandler struct {
	summaryService services.SummaryServicer
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService}
}

// MonthSummary returns totals, balances and budget progress for a month
// @Summary     Month summary
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       slug  path  string true "Space slug"
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {object} services.MonthSummary
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/summary [get]
func (h *SummaryHandler) MonthSummary(c *gin.Context) {
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

	summary, err := h.summaryService.MonthSummary(c.Request.Context(), userID, c.Param("slug"), month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// FormOptions returns the categories and holdings offered when entering a transaction
// @Summary     Form options
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Success     200 {object} services.FormOptions
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/form-options [get]
func (h *SummaryHandler) FormOptions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	options, err := h.summaryService.FormOptions(c.Request.Context(), userID, c.Param("slug"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}
