package transport

import (
	"context"

	"github.com/rhuss/sandchat/pkg/api"
)

// RequestID returns middleware that makes sure every request carries an ID.
// An ID already in the context (set by the HTTP adapter from X-Request-ID)
// is kept.
func RequestID() Middleware {
	return func(next ChatHandler) ChatHandler {
		return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, api.NewRequestID())
			}
			return next.Chat(ctx, req)
		})
	}
}
