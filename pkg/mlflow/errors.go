package mlflow

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error codes returned by the tracking server in error response bodies.
const (
	ErrCodeResourceDoesNotExist  = "RESOURCE_DOES_NOT_EXIST"
	ErrCodeResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ErrCodeInvalidParameterValue = "INVALID_PARAMETER_VALUE"
	ErrCodePermissionDenied      = "PERMISSION_DENIED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

var (
	errSchemeRequired  = errors.New("must use http or https scheme")
	errNonFiniteMetric = errors.New("metric value must be finite")
)

// APIError is a non-2xx response from the tracking server. The server
// reports failures as {"error_code": "...", "message": "..."}; bodies that
// don't match that shape degrade to the raw body text in Message.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("tracking server error (status %d): %s: %s", e.StatusCode, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("tracking server error (status %d): %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response body.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    string(body),
	}

	var parsed struct {
		ErrorCode string `json:"error_code"`
		Message   string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.ErrorCode != "" {
		apiErr.ErrorCode = parsed.ErrorCode
		apiErr.Message = parsed.Message
	}

	return apiErr
}

func hasErrorCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == code
}

// IsNotFound reports whether err is a RESOURCE_DOES_NOT_EXIST response.
func IsNotFound(err error) bool {
	return hasErrorCode(err, ErrCodeResourceDoesNotExist)
}

// IsAlreadyExists reports whether err is a RESOURCE_ALREADY_EXISTS response.
func IsAlreadyExists(err error) bool {
	return hasErrorCode(err, ErrCodeResourceAlreadyExists)
}

// IsInvalidParameter reports whether err is an INVALID_PARAMETER_VALUE
// response.
func IsInvalidParameter(err error) bool {
	return hasErrorCode(err, ErrCodeInvalidParameterValue)
}

// IsPermissionDenied reports whether err is a PERMISSION_DENIED response.
func IsPermissionDenied(err error) bool {
	return hasErrorCode(err, ErrCodePermissionDenied)
}
