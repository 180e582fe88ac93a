package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// GenericErrorMessage is shown when a failure carries no backend detail.
const GenericErrorMessage = "An error occurred."

var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx backend response.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

func newAPIError(status int, detail string) *APIError {
	return &APIError{Status: status, Detail: detail}
}

// DetailMessage is the user-facing text for a failed gateway call.
// Transport errors and backend rejections without detail share the fallback.
func DetailMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return GenericErrorMessage
}
