package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// NetworkError means no response arrived (DNS, refused connection, timeout, cancellation).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network error: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response without a usable error body.
type ServerError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Body)
}

// ApplicationError is a non-2xx response whose JSON body explains the failure.
type ApplicationError struct {
	Op         string
	StatusCode int
	Messages   []string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Message())
}

// Message joins the server messages for display.
func (e *ApplicationError) Message() string { return strings.Join(e.Messages, "; ") }

// NotFoundError is returned by single-record lookups on 404.
type NotFoundError struct {
	Resource string
	ID       ID
	Err      error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %s not found", e.Resource, e.ID) }
func (e *NotFoundError) Unwrap() error { return e.Err }

// ServerMessage returns the backend-provided message carried by err, if any.
func ServerMessage(err error) (string, bool) {
	var appErr *ApplicationError
	if errors.As(err, &appErr) && len(appErr.Messages) > 0 {
		return appErr.Message(), true
	}
	return "", false
}

// StatusCode reports the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	var srvErr *ServerError
	if errors.As(err, &srvErr) {
		return srvErr.StatusCode
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound
	}
	return 0
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// errorBody covers both API families: {"error": "..."} from the booking API
// and {"detail": "..."} or {"detail": [{"msg": "..."}]} from the admin API.
type errorBody struct {
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

func decodeErrorResponse(op string, status int, body []byte) error {
	if msgs := errorMessages(body); len(msgs) > 0 {
		return &ApplicationError{Op: op, StatusCode: status, Messages: msgs}
	}
	return &ServerError{Op: op, StatusCode: status, Body: truncate(strings.TrimSpace(string(body)), maxErrorBody)}
}

const maxErrorBody = 300

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func errorMessages(body []byte) []string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil
	}
	var msgs []string
	if s := strings.TrimSpace(eb.Error); s != "" {
		msgs = append(msgs, s)
	}
	if len(eb.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(eb.Detail, &detail); err == nil {
			if s := strings.TrimSpace(detail); s != "" {
				msgs = append(msgs, s)
			}
		} else {
			var items []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(eb.Detail, &items); err == nil {
				for _, item := range items {
					if s := strings.TrimSpace(item.Msg); s != "" {
						msgs = append(msgs, s)
					}
				}
			}
		}
	}
	if len(msgs) == 0 {
		if s := strings.TrimSpace(eb.Message); s != "" {
			msgs = append(msgs, s)
		}
	}
	return msgs
}
