package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GenericMessage is shown when a failure carries no readable message.
const GenericMessage = "An error occurred"

// APIError is returned for any non-2xx response from the hosted service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	for _, key := range []string{"msg", "message", "error_description", "error"} {
		if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
			apiErr.Message = v
			break
		}
	}
	return apiErr
}

// UserMessage returns the text shown to the user for err: a backend
// message verbatim when there is one, the error text for plain errors,
// and GenericMessage otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return GenericMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return GenericMessage
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
