package backend

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the backend. Detail carries the
// backend's `{"detail": "..."}` body text when one was present.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// newAPIError builds an APIError from a non-2xx response body.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return &APIError{Status: status, Detail: payload.Detail}
	}
	return &APIError{Status: status}
}

// ErrorText returns the user-facing text for a failed call: the backend's
// detail when present, a generic message for detail-less HTTP failures, and
// the raw error string for transport-level failures.
func ErrorText(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("request failed with status %d", apiErr.Status)
	}
	return err.Error()
}
