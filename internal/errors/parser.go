package errors

import (
	"encoding/json"
	"strings"
)

// ErrorInfo carries a stable code plus a human-readable message.
type ErrorInfo struct {
	Code    string
	Message string
}

const fallbackMessage = "Something went wrong. Please try again"

// remoteErrorBody covers the response shapes the grocery API is known to
// produce. Older endpoints use a top-level "message", some use "error",
// and the v2 endpoints nest the message under "data".
type remoteErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    struct {
		Message string `json:"message"`
	} `json:"data"`
}

// ExtractRemoteMessage pulls a human-readable message out of a remote
// error response body. Shapes are checked in priority order: "message",
// "error", "data.message", then a generic fallback.
func ExtractRemoteMessage(body []byte) string {
	if len(body) == 0 {
		return fallbackMessage
	}

	var parsed remoteErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fallbackMessage
	}

	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(parsed.Error); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(parsed.Data.Message); msg != "" {
		return msg
	}
	return fallbackMessage
}

// ClassifyRemoteStatus maps a remote HTTP status to an error code.
func ClassifyRemoteStatus(statusCode int) string {
	switch {
	case statusCode == 401 || statusCode == 403:
		return SessionUnauthenticated
	case statusCode == 404:
		return CartItemNotFound
	case statusCode == 400 || statusCode == 422:
		return ValidationRejected
	case statusCode >= 500:
		return InternalRemoteAPI
	default:
		return InternalServerError
	}
}

// ParseRemoteError builds ErrorInfo from a remote response.
func ParseRemoteError(statusCode int, body []byte) ErrorInfo {
	return ErrorInfo{
		Code:    ClassifyRemoteStatus(statusCode),
		Message: ExtractRemoteMessage(body),
	}
}
