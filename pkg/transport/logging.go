package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/rhuss/sandchat/pkg/api"
)

// Logging returns middleware that emits one structured log entry per chat
// turn with the request ID, history length, duration and outcome.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next ChatHandler) ChatHandler {
		return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
			start := time.Now()

			resp, err := next.Chat(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.Int("messages", len(req.Messages)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "chat failed", attrs...)
				return resp, err
			}

			if resp != nil && resp.FunctionOutput != nil {
				attrs = append(attrs, slog.String("function_output", string(resp.FunctionOutput.Type)))
			}
			logger.LogAttrs(ctx, slog.LevelInfo, "chat completed", attrs...)
			return resp, nil
		})
	}
}
