// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spacebudget/internal/ledger"
	"spacebudget/internal/models"
	"spacebudget/internal/money"
	"spacebudget/internal/slug"
	"spacebudget/internal/types"
)

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)

// Register registers all custom validators with the Gin binding engine and
// makes JSON binding reject unknown keys.
func Register() {
	binding.EnableDecoderDisallowUnknownFields = true

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn installs the custom validators on v.
func RegisterOn(v *validator.Validate) {
	// Amounts are validated as their float value so that the builtin gt/gte
	// tags apply; storage keeps the exact decimal.
	v.RegisterCustomTypeFunc(amountValue, money.Amount{})

	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("month", validateMonth)
	_ = v.RegisterValidation("slug", validateSlug)
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("category_kind", validateCategoryKind)
	_ = v.RegisterValidation("holding_type", validateHoldingType)
	_ = v.RegisterValidation("member_role", validateMemberRole)
}

func amountValue(field reflect.Value) interface{} {
	if a, ok := field.Interface().(money.Amount); ok {
		f, _ := a.Float64()
		return f
	}
	return nil
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateMonth(fl validator.FieldLevel) bool {
	return types.IsMonth(fl.Field().String())
}

func validateSlug(fl validator.FieldLevel) bool {
	return slug.Valid(fl.Field().String())
}

func validateTransactionType(fl validator.FieldLevel) bool {
	return ledger.Type(fl.Field().String()).Valid()
}

func validateCategoryKind(fl validator.FieldLevel) bool {
	return models.CategoryKind(fl.Field().String()).Valid()
}

func validateHoldingType(fl validator.FieldLevel) bool {
	return models.HoldingType(fl.Field().String()).Valid()
}

func validateMemberRole(fl validator.FieldLevel) bool {
	return models.MemberRole(fl.Field().String()).Valid()
}
