package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

// APIError is an error response from the Guilded API.
type APIError struct {
	// Status is the HTTP status code.
	Status int

	// Code is Guilded's machine readable error code, e.g. "NotFound".
	Code string `json:"code"`

	Message string `json:"message"`

	// Meta carries any additional detail the API attached to the error.
	Meta json.RawMessage `json:"meta,omitempty"`
}

func newAPIError(status int, body []byte) *APIError {
	ret := &APIError{Status: status}
	// A non-JSON body just leaves Code and Message empty.
	jsoniter.Unmarshal(body, ret)
	return ret
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("guilded api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("guilded api error %d", e.Status)
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

// IsForbidden reports whether err is an APIError with a 403 status.
func IsForbidden(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusForbidden
}
