package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"github.com/wajidashraf/CostModelAppTraining/internal/nrm2"
	obsmiddleware "github.com/wajidashraf/CostModelAppTraining/internal/observability/logger"
	"go.uber.org/zap"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// domainValidationFields maps domain validation sentinels to the request
// field they concern.
var domainValidationFields = map[error]string{
	domain.ErrInvalidID:          "id",
	domain.ErrInvalidProjectName: "projectName",
	domain.ErrInvalidStatus:      "status",
	domain.ErrInvalidGIFA:        "gifa",
	domain.ErrEmptyUpdate:        "body",
	domain.ErrInvalidQuantity:    "quantity",
	domain.ErrInvalidUnitRate:    "unitRate",
	domain.ErrInvalidUnit:        "unit",
	domain.ErrInvalidElementCode: "elementCode",
	domain.ErrInvalidElementName: "elementName",
	domain.ErrInvalidDescription: "description",
	domain.ErrInvalidNotes:       "notes",
	domain.ErrTotalOutOfRange:    "totalCost",
}

func ErrorHandlingMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		if status >= http.StatusInternalServerError {
			obsmiddleware.WithContext(c.Request.Context(), log).Error("request failed",
				zap.String("error_type", payload.Type),
				zap.Error(lastErr.Err),
			)
		}
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if field, ok := validationField(err); ok {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   field,
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	var cfgErr *nrm2.ConfigurationError
	switch {
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, errorPayload{
			Type:    "configuration_error",
			Message: "cost element template is unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog returns the error type and a stable code for request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case len(payload.Errors) > 0:
		return payload.Type, payload.Errors[0].Code
	case status == http.StatusNotFound:
		return payload.Type, err.Error()
	default:
		return payload.Type, payload.Type
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationField(err error) (string, bool) {
	if errors.Is(err, ErrInvalidRequest) {
		return "request", true
	}
	for sentinel, field := range domainValidationFields {
		if errors.Is(err, sentinel) {
			return field, true
		}
	}
	return "", false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, domain.ErrModelNotFound),
		errors.Is(err, domain.ErrWorkNotFound):
		return true
	default:
		return false
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrModelNotFound):
		return "cost model not found"
	case errors.Is(err, domain.ErrWorkNotFound):
		return "measured work not found"
	default:
		return "not found"
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "invalid_update":
		return "at least one field must be provided"
	case "total_out_of_range":
		return "quantity x unit rate exceeds the maximum line total"
	default:
		return "invalid value"
	}
}
