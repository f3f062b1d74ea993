// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package request

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// ValidationError collects every problem found while validating a request.
// A nil *ValidationError means the request is valid.
type ValidationError struct {
	errs []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("Validation Failed: ")
	for i, msg := range e.errs {
		fmt.Fprintf(&b, "%d: %s;", i+1, msg)
	}
	return b.String()
}

// Errors returns the collected messages in the order they were added.
func (e *ValidationError) Errors() []string {
	return e.errs
}

// AddValidationError appends msg to err, allocating err when it is nil.
func AddValidationError(msg string, err *ValidationError) *ValidationError {
	if err == nil {
		err = &ValidationError{}
	}
	err.errs = append(err.errs, msg)
	return err
}

// AddValidationErrors appends msgs in order.
func AddValidationErrors(msgs []string, err *ValidationError) *ValidationError {
	for _, msg := range msgs {
		err = AddValidationError(msg, err)
	}
	return err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report wire names (max_num_segments) rather than Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks the validate tags of v and adds one message per
// failing field to err.
func ValidateStruct(v any, err *ValidationError) *ValidationError {
	verr := validate.Struct(v)
	if verr == nil {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(verr, &fieldErrs) {
		return AddValidationError(verr.Error(), err)
	}
	return AddValidationErrors(lo.Map(fieldErrs, func(fe validator.FieldError, _ int) string {
		return formatFieldError(fe)
	}), err)
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("[%s] is required", fe.Field())
	case "min":
		return fmt.Sprintf("[%s] must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("[%s] must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("[%s] failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}
