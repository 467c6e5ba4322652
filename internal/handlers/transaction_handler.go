package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacebudget/internal/events"
	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	exportService      services.ExportServicer
	auditService       services.AuditServicer
	publisher          events.Publisher
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(
	transactionService services.TransactionServicer,
	exportService services.ExportServicer,
	auditService services.AuditServicer,
	publisher events.Publisher,
) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		exportService:      exportService,
		auditService:       auditService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Expenses carry category_id and from_holding_id, incomes category_id and
// to_holding_id, transfers from_holding_id and to_holding_id.
type CreateTransactionRequest struct {
	Type          string       `json:"type" binding:"required,transaction_type" enums:"expense,income,transfer"`
	Amount        money.Amount `json:"amount" binding:"required,gt=0" swaggertype:"string" example:"12000.00"`
	OccurredAt    time.Time    `json:"occurred_at" binding:"required"`
	Memo          *string      `json:"memo" binding:"omitempty,max=500"`
	CategoryID    *string      `json:"category_id" binding:"omitempty,uuid"`
	FromHoldingID *string      `json:"from_holding_id" binding:"omitempty,uuid"`
	ToHoldingID   *string      `json:"to_holding_id" binding:"omitempty,uuid"`
}

// UpdateTransactionRequest represents the request payload for patching a transaction.
// References that the resulting type does not carry are cleared.
type UpdateTransactionRequest struct {
	Type          *string       `json:"type" binding:"omitempty,transaction_type" enums:"expense,income,transfer"`
	Amount        *money.Amount `json:"amount" binding:"omitempty,gt=0" swaggertype:"string"`
	OccurredAt    *time.Time    `json:"occurred_at"`
	Memo          *string       `json:"memo" binding:"omitempty,max=500"`
	CategoryID    *string       `json:"category_id" binding:"omitempty,uuid"`
	FromHoldingID *string       `json:"from_holding_id" binding:"omitempty,uuid"`
	ToHoldingID   *string       `json:"to_holding_id" binding:"omitempty,uuid"`
}

// ListTransactionsQuery holds the filters of a transaction listing.
type ListTransactionsQuery struct {
	Query      string `form:"q"`
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	HoldingID  string `form:"holdingId" binding:"omitempty,uuid"`
	From       string `form:"from"`
	To         string `form:"to"`
}

// ListTransactions lists the transactions of a space
// @Summary     List transactions
// @Description Newest first by occurred_at, seek-paginated
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       slug       path  string   true  "Space slug"
// @Param       q          query string   false "Memo contains (case-insensitive)"
// @Param       type       query []string false "expense, income or transfer (repeatable)" collectionFormat(multi)
// @Param       categoryId query string   false "Category ID"
// @Param       holdingId  query string   false "Holding ID, matched as source or destination"
// @Param       from       query string   false "Lower bound (RFC3339 or YYYY-MM-DD)"
// @Param       to         query string   false "Upper bound (RFC3339, or YYYY-MM-DD for the whole day)"
// @Param       cursor     query string   false "Cursor from the previous page"
// @Param       limit      query int      false "Page size (default 20, max 100)"
// @Success     200 {object} pagination.Page[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query ListTransactionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, err)
		return
	}
	page, err := parseCursor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter := services.TransactionFilter{
		Query: query.Query,
		From:  query.From,
		To:    query.To,
	}
	for _, t := range c.QueryArray("type") {
		filter.Types = append(filter.Types, ledger.Type(t))
	}
	if query.CategoryID != "" {
		filter.CategoryID = &query.CategoryID
	}
	if query.HoldingID != "" {
		filter.HoldingID = &query.HoldingID
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), userID, c.Param("slug"), filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns one transaction
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Param       id   path string true "Transaction ID"
// @Success     200 {object} models.Transaction
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /spaces/{slug}/transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), userID, c.Param("slug"), transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// CreateTransaction records an expense, income or transfer
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string                   true "Space slug"
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     403 {object} ErrorResponse "No access"
// @Failure     422 {object} ErrorResponse "References do not match the type"
// @Router      /spaces/{slug}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	txType, err := ledger.ParseType(req.Type)
	if err != nil {
		respondWithError(c, err)
		return
	}
	draft, err := ledger.NewDraft(ledger.Row{
		Type: txType,
		Refs: ledger.Refs{
			CategoryID:    req.CategoryID,
			FromHoldingID: req.FromHoldingID,
			ToHoldingID:   req.ToHoldingID,
		},
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	transaction, err := h.transactionService.CreateTransaction(c.Request.Context(), userID, slug, services.NewTransaction{
		Draft:      draft,
		Amount:     req.Amount,
		OccurredAt: req.OccurredAt,
		Memo:       req.Memo,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := transactionChanges(transaction)
	h.auditService.Log(c.Request.Context(), userID, slug, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), changes)
	publish(c, h.publisher, events.New(events.TransactionCreated, slug, transaction.ID, userID, changes))

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial update to a transaction
// @Summary     Update a transaction
// @Description Changing the type clears the references the new type does not carry
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       slug    path string                   true "Space slug"
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     422 {object} ErrorResponse "References do not match the type"
// @Router      /spaces/{slug}/transactions/{id} [patch]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := bindJSON(c, &req); err != nil {
		respondWithError(c, err)
		return
	}

	patch := services.TransactionPatch{
		Patch: ledger.Patch{
			Refs: ledger.Refs{
				CategoryID:    req.CategoryID,
				FromHoldingID: req.FromHoldingID,
				ToHoldingID:   req.ToHoldingID,
			},
		},
		Amount:     req.Amount,
		OccurredAt: req.OccurredAt,
		Memo:       req.Memo,
	}
	if req.Type != nil {
		txType, err := ledger.ParseType(*req.Type)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.Type = &txType
	}

	slug := c.Param("slug")
	transaction, err := h.transactionService.UpdateTransaction(c.Request.Context(), userID, slug, transactionID, patch)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := transactionChanges(transaction)
	h.auditService.Log(c.Request.Context(), userID, slug, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(), changes)
	publish(c, h.publisher, events.New(events.TransactionUpdated, slug, transaction.ID, userID, changes))

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction deletes a transaction
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       slug path string true "Space slug"
// @Param       id   path string true "Transaction ID"
// @Success     200 {object} DeletedResponse
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	slug := c.Param("slug")
	deleted, err := h.transactionService.DeleteTransaction(c.Request.Context(), userID, slug, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if deleted != nil {
		h.auditService.Log(c.Request.Context(), userID, slug, "DELETE_TRANSACTION", "transaction", *deleted, c.ClientIP(), nil)
		publish(c, h.publisher, events.New(events.TransactionDeleted, slug, *deleted, userID, nil))
	}

	c.JSON(http.StatusOK, DeletedResponse{ID: deleted})
}

// ExportTransactions downloads a month of transactions as a spreadsheet
// @Summary     Export transactions
// @Tags        transactions
// @Produce     application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security    BearerAuth
// @Param       slug  path  string true "Space slug"
// @Param       month query string true "Month (YYYY-MM)"
// @Success     200 {file} file
// @Failure     400 {object} ErrorResponse "Invalid month"
// @Failure     403 {object} ErrorResponse "No access"
// @Router      /spaces/{slug}/transactions/export [get]
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
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

	slug := c.Param("slug")
	var buf bytes.Buffer
	if err := h.exportService.ExportTransactions(c.Request.Context(), userID, slug, month, &buf); err != nil {
		respondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-%s.xlsx"`, slug, month))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func transactionChanges(t *models.Transaction) map[string]any {
	return map[string]any{
		"type":            t.Type,
		"amount":          t.Amount.String(),
		"occurred_at":     t.OccurredAt,
		"category_id":     t.CategoryID,
		"from_holding_id": t.FromHoldingID,
		"to_holding_id":   t.ToHoldingID,
	}
}
