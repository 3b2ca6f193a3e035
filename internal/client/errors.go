package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// error bodies larger than this are truncated
const maxErrorBodySize = 64 * 1024

// ClientError represents an error encountered when communicating with the follow API
// StatusCode 0 = network/connection or internal error, >0 = HTTP response received
type ClientError struct {
	StatusCode int    `json:"status_code"`
	Detail     string `json:"detail,omitempty"`
	Body       []byte `json:"-"`
	LogMessage string `json:"log_message"`
	err        error
}

func (e *ClientError) Error() string {
	return e.LogMessage
}

func (e *ClientError) Unwrap() error {
	return e.err
}

// Payload returns what the API sent back when the request failed, or the error message when there was no response body
func (e *ClientError) Payload() string {
	if len(e.Body) > 0 {
		return string(e.Body)
	}
	return e.LogMessage
}

// NewClientConnectionError creates a ClientError for network/connection issues
func NewClientConnectionError(err error) *ClientError {
	return &ClientError{
		StatusCode: 0,
		LogMessage: fmt.Sprintf("network error: %v", err),
		err:        err,
	}
}

// NewClientInternalError creates a ClientError for internal errors, supply the error and an explanation of what was being done when the error occurred
func NewClientInternalError(err error, while string) *ClientError {
	return &ClientError{
		StatusCode: 0,
		LogMessage: fmt.Sprintf("internal error: %v while %v", err, while),
		err:        err,
	}
}

// NewClientApiError creates a ClientError from an error response sent by the follow API.
//
// The API reports errors as {"detail": "..."}, or as {"detail": [{"msg": "..."}, ...]} for request validation failures.
func NewClientApiError(res *http.Response) *ClientError {
	if res.Body == nil {
		return &ClientError{
			StatusCode: res.StatusCode,
			LogMessage: fmt.Sprintf("follow API status %d (no response body)", res.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxErrorBodySize))
	if err != nil {
		return &ClientError{
			StatusCode: res.StatusCode,
			LogMessage: fmt.Sprintf("follow API status %d (error reading response body: %v)", res.StatusCode, err),
			err:        err,
		}
	}

	detail := parseDetail(body)

	logMsg := fmt.Sprintf("follow API status %d", res.StatusCode)
	if detail != "" {
		logMsg += fmt.Sprintf(" - %s", detail)
	}

	return &ClientError{
		StatusCode: res.StatusCode,
		Detail:     detail,
		Body:       body,
		LogMessage: logMsg,
	}
}

func parseDetail(body []byte) string {
	var serverErr struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &serverErr); err != nil {
		return ""
	}

	if len(serverErr.Detail) == 0 {
		return serverErr.Message
	}

	var detail string
	if err := json.Unmarshal(serverErr.Detail, &detail); err == nil {
		return detail
	}

	var validationErrors []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(serverErr.Detail, &validationErrors); err == nil {
		msgs := make([]string, 0, len(validationErrors))
		for _, v := range validationErrors {
			if v.Msg != "" {
				msgs = append(msgs, v.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}

	return string(serverErr.Detail)
}

// IsAlreadyExists reports whether err is the API's response to registering an account that already exists.
//
// The API has no error code for this case, it is recognised by a 400 status and a detail message containing "already"
// (e.g "Email already registered", "Username already taken").
func IsAlreadyExists(err error) bool {
	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		return false
	}
	return clientErr.StatusCode == http.StatusBadRequest && strings.Contains(clientErr.Detail, "already")
}

// StatusCode returns the HTTP status of a failed API call, or 0 when no response was received
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}
