package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "spacebudget/internal/errors"
	"spacebudget/internal/logger"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. AppErrors are returned with
// their code and message, validation errors become INVALID_INPUT naming the
// offending fields, and anything else is logged and reported as a generic
// internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		// Process the last error (most relevant in a middleware chain)
		err := c.Errors.Last().Err

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respond(c, validationError(validationErrs))
			return
		}

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"request_id", requestid.Get(c),
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			respond(c, appErr)
			return
		}

		// Unexpected error: log full details, return generic message
		logger.Get().Errorw("unexpected error",
			"request_id", requestid.Get(c),
			"error", err.Error(),
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		respond(c, apperrors.ErrInternalServer)
	}
}

// Recovery turns panics into INTERNAL_ERROR responses.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Get().Errorw("panic recovered",
			"request_id", requestid.Get(c),
			"panic", fmt.Sprint(recovered),
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    apperrors.ErrInternalServer.Code,
				"message": apperrors.ErrInternalServer.Message,
			},
		})
	})
}

func respond(c *gin.Context, appErr *apperrors.AppError) {
	c.JSON(appErr.StatusCode, gin.H{
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		},
	})
}

// validationError keeps the dedicated codes of month and transaction type
// fields; everything else is INVALID_INPUT.
func validationError(errs validator.ValidationErrors) *apperrors.AppError {
	for _, e := range errs {
		switch e.Tag() {
		case "month":
			return apperrors.ErrInvalidMonth
		case "transaction_type":
			return apperrors.ErrInvalidTransactionType
		}
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, validationMessage(errs))
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fieldErrorText(e))
	}
	return strings.Join(msgs, "; ")
}

func fieldErrorText(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "uuid":
		return fmt.Sprintf("%s must be a uuid", e.Field())
	case "month":
		return fmt.Sprintf("%s must be in YYYY-MM format", e.Field())
	case "hex_color":
		return fmt.Sprintf("%s must be a hex color such as #FF8800", e.Field())
	case "oneof", "transaction_type", "category_kind", "holding_type", "member_role":
		return fmt.Sprintf("%s has an unsupported value", e.Field())
	}
	return fmt.Sprintf("%s is not valid", e.Field())
}
