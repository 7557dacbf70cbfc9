package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NullSentinel is the literal string some extraction pipelines emit for absent fields.
const NullSentinel = "null"

// IsBlank reports whether an extracted field carries no usable value:
// empty, whitespace-only, or the literal "null" sentinel.
func IsBlank(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || trimmed == NullSentinel
}

// NormalizeText folds case and surrounding whitespace for master-data comparison.
func NormalizeText(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// TextEquals compares two claimed/stored values case-insensitively, trimmed.
func TextEquals(a, b string) bool {
	return NormalizeText(a) == NormalizeText(b)
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

// get type name of struct
func GetTypeName[T any]() string {
	var v T
	typeOfT := reflect.TypeOf(v)
	return typeOfT.Name()
}
