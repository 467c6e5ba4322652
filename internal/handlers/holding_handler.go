package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/services"
)

// HoldingHandler handles holding-related requests.
type HoldingHandler struct {
	holdingService services.HoldingServicer
	auditService   services.AuditServicer
}

// NewHoldingHandler creates a new HoldingHandler.
func NewHoldingHandler(holdingService services.HoldingServicer, auditService services.AuditServicer) *HoldingHandler {
	return &HoldingHandler{holdingService: holdingService, auditService: auditService}
}

// CreateHoldingRequest represents the request payload for creating a holding
type CreateHoldingRequest struct {
	Name           string             `json:"name" binding:"required,max=50"`
	Type           models.HoldingType `json:"type" binding:"required,holding_type"`
	Color          string             `json:"color" binding:"required,hex_color"`
	Currency       string             `json:"currency" binding:"omitempty,max=8"`
	OpeningBalance *money.Amount      `json:"opening_balance" binding:"omitempty,gte=0" swaggertype:"string" example:"150000.00"`
}

// UpdateHoldingRequest represents the request payload for updating a holding
type UpdateHoldingRequest struct {
	Name           *string             `json:"name" binding:"omitempty,max=50"`
	Type           *models.HoldingType `json:"type" binding:"omitempty,holding_type"`
	Color          *string             `json:"color" binding:"omitempty,hex_color"`
	Currency       *string             `json:"currency" binding:"omitempty,min=1,max=8"`
	OpeningBalance *money.Amount       `json:"opening_balance" binding:"omitempty,gte=0" swaggertype:"string"`
}

// ListHoldingsQuery holds the filters of a holding listing.
type ListHoldingsQuery struct {
	Query string             `form:"q"`
	Type  models.HoldingType `form:"type" binding:"omitempty,holding_type"`
}

// ListHoldings lists the holdings of a space
// @Summary     List holdings
// @Description Newest first, seek-paginated
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       slug   path  string true  "Space slug"
// @Param       q      query string false "Name contains (case-insensitive)"
// @Param       type   query string false "bank, card, cash or etc"
// @Param       cursor query string false "Cursor from the previous page"
// @Param       limit  query int    false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.Page[models.Holding]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/holdings [get]
func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListHoldingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, err)
		return
	}
	page, err := parseCursor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.HoldingFilter{Query: query.Query}
	if query.Type != "" {
		filter.Type = &query.Type
	}

	result, err := h.holdingService.ListHoldings(c.Request.Context(), userID, c.Param("slug"), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CreateHolding creates a holding in a space
// @Summary     Create a holding
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string               true "Space slug"
// @Param       request body CreateHoldingRequest true "Holding details"
// @Success     201 {object} models.Holding
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /spaces/{slug}/holdings [post]
func (h *HoldingHandler) CreateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateHoldingRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	in := services.HoldingInput{
		Name:           req.Name,
		Type:           req.Type,
		Color:          req.Color,
		Currency:       req.Currency,
		OpeningBalance: money.Zero,
	}
	if req.OpeningBalance != nil {
		in.OpeningBalance = *req.OpeningBalance
	}

	slug := c.Param("slug")
	holding, err := h.holdingService.CreateHolding(c.Request.Context(), userID, slug, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, slug, "CREATE_HOLDING", "holding", holding.ID, c.ClientIP(),
		map[string]any{"name": holding.Name, "type": holding.Type, "opening_balance": holding.OpeningBalance.String()})

	c.JSON(http.StatusCreated, gin.H{"holding": holding})
}

// UpdateHolding applies a partial update to a holding
// @Summary     Update a holding
// @Tags        holdings
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string               true "Space slug"
// @Param       id      path string               true "Holding ID"
// @Param       request body UpdateHoldingRequest true "Fields to update"
// @Success     200 {object} models.Holding
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Holding not found"
// @Failure     409 {object} ErrorResponse "Duplicate name"
// @Router      /spaces/{slug}/holdings/{id} [put]
func (h *HoldingHandler) UpdateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHoldingRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	holding, err := h.holdingService.UpdateHolding(c.Request.Context(), userID, slug, holdingID, services.HoldingPatch{
		Name:           req.Name,
		Type:           req.Type,
		Color:          req.Color,
		Currency:       req.Currency,
		OpeningBalance: req.OpeningBalance,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, slug, "UPDATE_HOLDING", "holding", holding.ID, c.ClientIP(),
		map[string]any{"name": holding.Name, "type": holding.Type, "opening_balance": holding.OpeningBalance.String()})

	c.JSON(http.StatusOK, gin.H{"holding": holding})
}

// DeleteHolding deletes a holding that no transaction references
// @Summary     Delete a holding
// @Tags        holdings
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Param       id   path string true "Holding ID"
// @Success     200 {object} DeletedResponse
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     409 {object} ErrorResponse "Holding in use"
// @Router      /spaces/{slug}/holdings/{id} [delete]
func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holdingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	deleted, err := h.holdingService.DeleteHolding(c.Request.Context(), userID, slug, holdingID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted != nil {
		h.auditService.Log(c.Request.Context(), userID, slug, "DELETE_HOLDING", "holding", *deleted, c.ClientIP(), nil)
	}

	c.JSON(http.StatusOK, DeletedResponse{ID: deleted})
}
