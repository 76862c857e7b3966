// ABOUTME: Input validation built on go-playground/validator
// ABOUTME: Registers enum and field checks and converts failures into ValidationError
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports input rejected before any remote call was made.
type ValidationError struct {
	Entity string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s %s", e.Entity, e.Field, e.Reason)
}

var validate *validator.Validate

type enumValue interface {
	Valid() bool
}

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		v, ok := fl.Field().Interface().(enumValue)
		return ok && v.Valid()
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		_, err := time.Parse("15:04", fl.Field().String())
		return err == nil
	})
}

// Validate checks a create input's tags and returns a *ValidationError for
// the first failing field.
func Validate(entity string, input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Entity: entity, Field: fe.Field(), Reason: describeTag(fe.Tag(), fe.Param())}
	}
	return &ValidationError{Entity: entity, Reason: err.Error()}
}

// checkVar validates a single patch value with the same rule set as inputs.
func checkVar(entity, field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return &ValidationError{Entity: entity, Field: field, Reason: describeTag(fieldErrs[0].Tag(), fieldErrs[0].Param())}
		}
		return &ValidationError{Entity: entity, Field: field, Reason: err.Error()}
	}
	return nil
}

func describeTag(tag, param string) string {
	switch tag {
	case "required", "nonblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "uri":
		return "must be a valid URI"
	case "enum":
		return "has an unknown value"
	case "hhmm":
		return "must be HH:MM"
	case "gte":
		return "must be >= " + param
	}
	return "failed " + tag
}
