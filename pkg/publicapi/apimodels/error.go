package apimodels

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dsx-project/dsx/pkg/models"
)

// APIError is the JSON body of every failed API call. The status code lets
// clients branch programmatically while the message is printed as is.
type APIError struct {
	// HTTPStatusCode is the http status code associated with this error.
	HTTPStatusCode int `json:"Status"`

	// Message is a short, human-readable description of the error.
	Message string `json:"Message"`

	// RequestID is the request ID of the request that caused the error.
	RequestID string `json:"RequestID"`

	// Code is the error code of the error.
	Code string `json:"Code"`

	// Component is the component that caused the error.
	Component string `json:"Component"`

	// Hint suggests how the caller may fix the error.
	Hint string `json:"Hint,omitempty"`

	Details map[string]string `json:"Details,omitempty"`
}

// NewAPIError creates a new APIError with the given HTTP status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{
		HTTPStatusCode: statusCode,
		Message:        message,
		Details:        make(map[string]string),
	}
}

func (e *APIError) Error() string {
	return e.Message
}

// GenerateAPIErrorFromHTTPResponse parses the body of a failed response.
func GenerateAPIErrorFromHTTPResponse(resp *http.Response) *APIError {
	if resp == nil {
		return NewAPIError(0, "API call error, invalid response")
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewAPIError(
			resp.StatusCode,
			fmt.Sprintf("Unable to read API call response body. Error: %q", err.Error()))
	}

	var apiErr APIError
	err = json.Unmarshal(body, &apiErr)
	if err != nil {
		return NewAPIError(
			resp.StatusCode,
			fmt.Sprintf("Unable to parse API call response body. Error: %q. Body received: %q",
				err.Error(),
				string(body),
			))
	}

	// If the JSON didn't include a status code, use the HTTP Status
	if apiErr.HTTPStatusCode == 0 {
		apiErr.HTTPStatusCode = resp.StatusCode
	}

	return &apiErr
}

// FromBaseError converts a models.BaseError to an APIError
func FromBaseError(err *models.BaseError) *APIError {
	return &APIError{
		HTTPStatusCode: err.HTTPStatusCode(),
		Message:        err.Error(),
		Code:           string(err.Code()),
		Component:      err.Component(),
		Hint:           err.Hint(),
		Details:        err.Details(),
	}
}

// ToBaseError converts an APIError back to a models.BaseError, keeping the
// request ID among the details.
func (e *APIError) ToBaseError() *models.BaseError {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["request_id"] = e.RequestID
	return models.NewBaseError("%s", e.Message).
		WithHTTPStatusCode(e.HTTPStatusCode).
		WithCode(models.ErrorCode(e.Code)).
		WithComponent(e.Component).
		WithHint(e.Hint).
		WithDetails(details)
}

// IsNotFound reports whether err is an API error for a missing resource.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound
}
