package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/events"
	"spacebudget/internal/logger"
	"spacebudget/internal/middleware"
	"spacebudget/internal/money"
	"spacebudget/internal/pagination"
	"spacebudget/internal/types"
	"spacebudget/internal/uuid"
)

// ErrorResponse documents the error envelope returned by every endpoint.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code" example:"INVALID_INPUT"`
		Message string `json:"message" example:"Invalid input"`
	} `json:"error"`
}

// DeletedResponse is returned by delete endpoints. ID is null when nothing
// was deleted.
type DeletedResponse struct {
	ID *string `json:"id"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID validates a uuid path parameter.
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// parseMonth reads a required YYYY-MM query parameter.
func parseMonth(c *gin.Context, param string) (types.Month, error) {
	month, err := types.ParseMonth(c.Query(param))
	if err != nil {
		return types.Month{}, apperrors.ErrInvalidMonth
	}
	return month, nil
}

// parseCursor reads the cursor and limit query parameters.
func parseCursor(c *gin.Context) (pagination.CursorRequest, error) {
	var req pagination.CursorRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be a number")
	}
	return req, nil
}

// bindJSON decodes the request body into req. Validation failures are passed
// on untouched so that the error middleware can name the offending fields.
func bindJSON(c *gin.Context, req interface{}) error {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return err
	}
	switch {
	case errors.Is(err, money.ErrOutOfRange):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be at most "+money.Max.String())
	case errors.Is(err, money.ErrBelowCent):
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "Amount must be at least 0.01")
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid request body")
}

// respondWithError hands err to the error middleware, which renders the
// {"error": {"code", "message"}} envelope.
func respondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// publish delivers a domain event. Failures are logged and never reach the
// client.
func publish(c *gin.Context, publisher events.Publisher, event events.Event) {
	if err := publisher.Publish(c.Request.Context(), event); err != nil {
		logger.Get().Errorw("failed to publish event",
			"error", err,
			"type", event.Type,
			"resource_id", event.ResourceID,
		)
	}
}
