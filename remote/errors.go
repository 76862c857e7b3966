// ABOUTME: Error type for non-2xx PostgREST responses
// ABOUTME: Maps Postgres constraint codes onto the gateway sentinel errors
package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/harperreed/rapport/db"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote store error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote store error %d: %s", e.Status, e.Message)
}

// Unwrap exposes the matching gateway sentinel so callers can use errors.Is
// without knowing which backend they talk to.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "23503":
		return db.ErrReference
	case "23505":
		return db.ErrConflict
	case "42P01", "PGRST205":
		return db.ErrUnknownTable
	}
	if e.Status == http.StatusConflict {
		return db.ErrConflict
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	}
	e := &APIError{Status: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		e.Code = payload.Code
		e.Message = payload.Message
		if payload.Details != "" {
			e.Message += ": " + payload.Details
		}
		return e
	}
	e.Message = strings.TrimSpace(string(body))
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}
