package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRemoteMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{
			name:     "top-level message",
			body:     `{"message":"Quantity exceeds stock"}`,
			expected: "Quantity exceeds stock",
		},
		{
			name:     "error field when message absent",
			body:     `{"error":"Vegetable not found"}`,
			expected: "Vegetable not found",
		},
		{
			name:     "nested data message",
			body:     `{"data":{"message":"Cart is locked during checkout"}}`,
			expected: "Cart is locked during checkout",
		},
		{
			name:     "message takes priority over error",
			body:     `{"message":"primary","error":"secondary"}`,
			expected: "primary",
		},
		{
			name:     "error takes priority over data message",
			body:     `{"error":"secondary","data":{"message":"tertiary"}}`,
			expected: "secondary",
		},
		{
			name:     "blank message falls through",
			body:     `{"message":"  ","error":"Vegetable not found"}`,
			expected: "Vegetable not found",
		},
		{
			name:     "empty body",
			body:     "",
			expected: fallbackMessage,
		},
		{
			name:     "malformed json",
			body:     `<html>502 Bad Gateway</html>`,
			expected: fallbackMessage,
		},
		{
			name:     "no known fields",
			body:     `{"status":"failed"}`,
			expected: fallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractRemoteMessage([]byte(tt.body)))
		})
	}
}

func TestClassifyRemoteStatus(t *testing.T) {
	assert.Equal(t, SessionUnauthenticated, ClassifyRemoteStatus(401))
	assert.Equal(t, SessionUnauthenticated, ClassifyRemoteStatus(403))
	assert.Equal(t, CartItemNotFound, ClassifyRemoteStatus(404))
	assert.Equal(t, ValidationRejected, ClassifyRemoteStatus(400))
	assert.Equal(t, ValidationRejected, ClassifyRemoteStatus(422))
	assert.Equal(t, InternalRemoteAPI, ClassifyRemoteStatus(500))
	assert.Equal(t, InternalRemoteAPI, ClassifyRemoteStatus(503))
}

func TestParseRemoteError(t *testing.T) {
	info := ParseRemoteError(422, []byte(`{"message":"Quantity exceeds stock"}`))

	assert.Equal(t, ValidationRejected, info.Code)
	assert.Equal(t, "Quantity exceeds stock", info.Message)
}
