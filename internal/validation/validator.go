// Shelfwise - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/shelfwise/internal/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// bookIDPattern matches catalogue identifiers: ISBN-10, ISBN-13 and the
// alphanumeric variants found in imported book datasets.
var bookIDPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z-]{0,31}$`)

// FieldError describes one request field that failed a rule.
type FieldError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the JSON name of the offending field.
func (e *FieldError) Field() string { return e.field }

// Tag returns the rule that failed, e.g. "max" or "book_id".
func (e *FieldError) Tag() string { return e.tag }

// Param returns the rule parameter ("10" for max=10).
func (e *FieldError) Param() string { return e.param }

// Value returns the rejected value.
func (e *FieldError) Value() interface{} { return e.value }

func (e *FieldError) Error() string { return e.message }

// RequestValidationError collects every failed rule of one request body.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the individual field failures in struct order.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i := range ve.errors {
		messages[i] = ve.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// ToAPIError renders the failures as a VALIDATION_ERROR body. A single
// failure carries its field and tag in Details; several are listed under
// Details["fields"].
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	switch len(ve.errors) {
	case 0:
		return &models.APIError{Code: models.ErrCodeValidation, Message: "Validation failed"}
	case 1:
		fe := ve.errors[0]
		return &models.APIError{
			Code:    models.ErrCodeValidation,
			Message: fe.message,
			Details: map[string]interface{}{
				"field": fe.field,
				"tag":   fe.tag,
				"value": fe.value,
			},
		}
	}

	fields := make([]map[string]interface{}, len(ve.errors))
	messages := make([]string, len(ve.errors))
	for i, fe := range ve.errors {
		fields[i] = map[string]interface{}{
			"field":   fe.field,
			"tag":     fe.tag,
			"message": fe.message,
		}
		messages[i] = fe.message
	}
	return &models.APIError{
		Code:    models.ErrCodeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]interface{}{"fields": fields},
	}
}

// GetValidator returns the shared validator with the catalogue rules
// registered. Safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonFieldName)
		if err := validate.RegisterValidation("book_id", func(fl validator.FieldLevel) bool {
			return bookIDPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("validation: register book_id: %v", err))
		}
	})
	return validate
}

// ValidateStruct checks s against its validate tags. It returns nil when
// every rule passes.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []FieldError{{
			field:   "unknown",
			tag:     "unknown",
			message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			field:   fe.Field(),
			tag:     fe.Tag(),
			param:   fe.Param(),
			value:   fe.Value(),
			message: message(fe),
		}
	}
	return &RequestValidationError{errors: out}
}

// jsonFieldName reports fields by their json tag so messages match the
// request body. An empty result makes the validator fall back to the Go name.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "book_id":
		return field + " must be 1-32 letters, digits or hyphens"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
