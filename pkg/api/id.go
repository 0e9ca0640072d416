package api

import (
	"strings"

	"github.com/google/uuid"
)

const (
	requestIDPrefix = "req_"
	callIDPrefix    = "call_"
)

// NewRequestID generates a request ID: "req_" followed by a random UUID
// without dashes.
func NewRequestID() string {
	return requestIDPrefix + compactUUID()
}

// NewCallID generates an ID for a tool invocation that arrived without one.
func NewCallID() string {
	return callIDPrefix + compactUUID()
}

func compactUUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
