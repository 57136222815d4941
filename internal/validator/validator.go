// Package validator provides request validation using go-playground/validator.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"property-match-service/internal/domain"
)

// Custom tags registered by New.
const (
	// TagBudgetMax checks an int64 upper bound against the sibling BudgetMin
	// field. Zero or negative means unbounded and always passes.
	TagBudgetMax = "budget_max"

	// TagIntent checks a string against the known search intents.
	TagIntent = "intent"
)

// Validator wraps the go-playground validator with custom configuration.
type Validator struct {
	v *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Message)
	}
	return sb.String()
}

// New creates a new Validator instance with custom tag name and validations.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names for field names in errors, query tags for query DTOs
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return fld.Name
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation(TagBudgetMax, validateBudgetMax)
	_ = v.RegisterValidation(TagIntent, validateIntent)

	return &Validator{v: v}
}

// Validate validates the given struct and returns ValidationErrors if invalid.
func (v *Validator) Validate(i interface{}) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Value:   fmt.Sprintf("%v", e.Value()),
			Message: formatErrorMessage(e),
		})
	}

	return errs
}

func validateBudgetMax(fl validator.FieldLevel) bool {
	maxValue := fl.Field().Int()
	if maxValue <= 0 {
		return true
	}
	minField := fl.Parent().FieldByName("BudgetMin")
	if !minField.IsValid() || !minField.CanInt() {
		return true
	}
	return maxValue >= minField.Int()
}

func validateIntent(fl validator.FieldLevel) bool {
	return domain.Intent(strings.ToLower(strings.TrimSpace(fl.Field().String()))).IsValid()
}

// formatErrorMessage generates a human-readable error message.
func formatErrorMessage(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case TagBudgetMax:
		return fmt.Sprintf("%s must be greater than or equal to budget_min", field)
	case TagIntent:
		return fmt.Sprintf("%s must be one of: %s", field, intentList())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

func intentList() string {
	names := make([]string, len(domain.Intents))
	for i, in := range domain.Intents {
		names[i] = string(in)
	}
	return strings.Join(names, " ")
}
