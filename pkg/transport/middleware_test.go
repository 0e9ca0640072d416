package transport

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rhuss/sandchat/pkg/api"
)

var userTurn = &api.ChatRequest{Messages: []api.Message{{Role: api.RoleUser, Content: "hi"}}}

func okHandler() ChatHandler {
	return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		return &api.ChatResponse{Response: "hello"}, nil
	})
}

func TestChainAppliesMiddlewareInOrder(t *testing.T) {
	var order []string

	mw := func(name string) Middleware {
		return func(next ChatHandler) ChatHandler {
			return ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
				order = append(order, name+":before")
				resp, err := next.Chat(ctx, req)
				order = append(order, name+":after")
				return resp, err
			})
		}
	}

	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		order = append(order, "handler")
		return nil, nil
	})

	Chain(mw("first"), mw("second"), mw("third"))(handler).Chat(context.Background(), userTurn)

	expected := []string{
		"first:before", "second:before", "third:before",
		"handler",
		"third:after", "second:after", "first:after",
	}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("order = %v, want %v", order, expected)
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		panic("test panic")
	})

	resp, err := Recovery()(handler).Chat(context.Background(), userTurn)
	if resp != nil {
		t.Errorf("expected nil response, got %+v", resp)
	}

	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *api.APIError, got %T: %v", err, err)
	}
	if apiErr.Type != api.ErrorTypeServerError {
		t.Errorf("error type = %q, want %q", apiErr.Type, api.ErrorTypeServerError)
	}
}

func TestRecoveryPassesThroughNormalExecution(t *testing.T) {
	resp, err := Recovery()(okHandler()).Chat(context.Background(), userTurn)
	if err != nil || resp.Response != "hello" {
		t.Fatalf("got %+v, %v", resp, err)
	}
}

func TestRequestIDGeneratesNewID(t *testing.T) {
	var capturedID string
	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		capturedID = RequestIDFromContext(ctx)
		return nil, nil
	})

	RequestID()(handler).Chat(context.Background(), userTurn)

	if !strings.HasPrefix(capturedID, "req_") {
		t.Errorf("request ID = %q, want req_ prefix", capturedID)
	}
}

func TestRequestIDPropagatesExisting(t *testing.T) {
	var capturedID string
	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		capturedID = RequestIDFromContext(ctx)
		return nil, nil
	})

	ctx := ContextWithRequestID(context.Background(), "existing-id-123")
	RequestID()(handler).Chat(ctx, userTurn)

	if capturedID != "existing-id-123" {
		t.Errorf("request ID = %q, want %q", capturedID, "existing-id-123")
	}
}

func TestLoggingEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		return &api.ChatResponse{
			Response:       "here is your chart",
			FunctionOutput: &api.FunctionOutput{Type: api.OutputChart},
		}, nil
	})

	ctx := ContextWithRequestID(context.Background(), "req-log-test")
	Logging(logger)(handler).Chat(ctx, userTurn)

	output := buf.String()
	for _, expected := range []string{"request_id=req-log-test", "messages=1", "function_output=chart", "chat completed"} {
		if !strings.Contains(output, expected) {
			t.Errorf("log output missing %q in:\n%s", expected, output)
		}
	}
}

func TestLoggingEmitsErrorOnFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	handler := ChatHandlerFunc(func(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
		return nil, api.NewModelError("test failure")
	})

	_, err := Logging(logger)(handler).Chat(context.Background(), userTurn)
	if err == nil {
		t.Fatal("error must be passed through")
	}

	output := buf.String()
	if !strings.Contains(output, "chat failed") || !strings.Contains(output, "test failure") {
		t.Errorf("log output missing failure details in:\n%s", output)
	}
}
