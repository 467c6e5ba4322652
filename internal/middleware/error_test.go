package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "spacebudget/internal/errors"
)

func runWithError(err error) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/", func(c *gin.Context) { _ = c.Error(err) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	return rec
}

func TestErrorHandler(t *testing.T) {
	t.Run("app_error", func(t *testing.T) {
		rec := runWithError(apperrors.ErrSameHoldingTransfer)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("status = %d, want 422", rec.Code)
		}
		if code := errorCode(t, rec); code != "SAME_HOLDING_TRANSFER" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("wrapped_internal_hides_details", func(t *testing.T) {
		rec := runWithError(apperrors.Wrap(apperrors.ErrInternalServer, errors.New("pq: relation does not exist")))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		body := rec.Body.String()
		if want := "An internal error occurred"; !strings.Contains(body, want) || strings.Contains(body, "pq:") {
			t.Errorf("unexpected body %s", body)
		}
	})

	t.Run("unexpected_error", func(t *testing.T) {
		rec := runWithError(errors.New("boom"))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", rec.Code)
		}
		if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("validation_error", func(t *testing.T) {
		type input struct {
			Name string `validate:"required"`
		}
		err := validator.New().Struct(input{})

		rec := runWithError(err)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		errObj := parseBody(t, rec)["error"].(map[string]interface{})
		if errObj["code"] != "INVALID_INPUT" || errObj["message"] != "Name is required" {
			t.Errorf("unexpected error %v", errObj)
		}
	})

	t.Run("month_tag_keeps_its_code", func(t *testing.T) {
		v := validator.New()
		_ = v.RegisterValidation("month", func(fl validator.FieldLevel) bool { return false })
		type input struct {
			Month string `validate:"required,month"`
		}

		rec := runWithError(v.Struct(input{Month: "2025/09"}))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_MONTH" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("transaction_type_tag_keeps_its_code", func(t *testing.T) {
		v := validator.New()
		_ = v.RegisterValidation("transaction_type", func(fl validator.FieldLevel) bool { return false })
		type input struct {
			Type string `validate:"required,transaction_type"`
		}

		rec := runWithError(v.Struct(input{Type: "refund"}))
		if code := errorCode(t, rec); code != "INVALID_TRANSACTION_TYPE" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("no_error", func(t *testing.T) {
		r := gin.New()
		r.Use(ErrorHandler())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/", func(c *gin.Context) { panic("nil map") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if code := errorCode(t, rec); code != "INTERNAL_ERROR" {
		t.Errorf("code = %q", code)
	}
}
