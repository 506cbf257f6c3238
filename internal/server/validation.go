package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const unknownFieldPrefix = "json: unknown field "

// bindJSON decodes the body leniently and runs the binding tags.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return translateBindError(err)
	}
	return nil
}

// bindStrictJSON rejects unknown fields before running the binding tags.
func bindStrictJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil {
		return newValidationError("body", "invalid_update", "at least one field must be provided")
	}
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return newValidationError("body", "invalid_update", "at least one field must be provided")
		}
		return translateBindError(err)
	}
	if dec.More() {
		return invalidRequestError()
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return translateBindError(err)
	}
	return nil
}

func translateBindError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := ValidationErrors{Errors: make([]ValidationError, 0, len(fieldErrs))}
		for _, fe := range fieldErrs {
			out.Errors = append(out.Errors, ValidationError{
				Field:   fe.Field(),
				Code:    validatorCode(fe.Tag()),
				Message: validatorMessage(fe),
			})
		}
		return &out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return newValidationError(field, "invalid_type", fmt.Sprintf("expected %s", typeErr.Type.String()))
	}

	if msg := err.Error(); strings.HasPrefix(msg, unknownFieldPrefix) {
		field := strings.Trim(strings.TrimPrefix(msg, unknownFieldPrefix), `"`)
		return newValidationError(field, "unrecognized_key", fmt.Sprintf("unrecognized field %q", field))
	}

	return invalidRequestError()
}

func validatorCode(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min", "gt", "gte":
		return "too_small"
	case "max", "lt", "lte":
		return "too_big"
	case "oneof":
		return "invalid_enum_value"
	default:
		return "invalid_" + tag
	}
}

func validatorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isTextKind(fe) {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isTextKind(fe) {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return "invalid value"
	}
}

func isTextKind(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}
