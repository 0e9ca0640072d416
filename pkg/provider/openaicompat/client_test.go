package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/provider"
)

func TestComplete_TextResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "granite" || req.Stream || req.N != 1 {
			t.Errorf("unexpected request %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("messages = %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Model: "granite",
			Choices: []ChatChoice{{
				Message:      ChatMessage{Role: "assistant", Content: "Hello!"},
				FinishReason: "stop",
			}},
			Usage: &ChatUsage{PromptTokens: 7, CompletionTokens: 2, TotalTokens: 9},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", 0)
	defer c.Close()

	resp, err := c.Complete(context.Background(), &provider.ProviderRequest{
		Model: "granite",
		Messages: []provider.ProviderMessage{
			{Role: provider.RoleSystem, Content: "be brief"},
			{Role: provider.RoleUser, Content: "hi"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "Hello!" || resp.HasToolCalls() {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Usage.InputTokens != 7 || resp.Usage.OutputTokens != 2 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("FinishReason = %q", resp.FinishReason)
	}
}

func TestComplete_ToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Tools) != 1 || req.ToolChoice != "auto" {
			t.Errorf("tools = %+v, tool_choice = %v", req.Tools, req.ToolChoice)
		}
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []ChatChoice{{
				Message: ChatMessage{
					Role: "assistant",
					ToolCalls: []ChatToolCall{{
						ID:       "call_1",
						Function: ChatFunctionCall{Name: "execute_python", Arguments: `{"code":"print(1)"}`},
					}},
				},
				FinishReason: "tool_calls",
			}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	resp, err := c.Complete(context.Background(), &provider.ProviderRequest{
		Model:    "m",
		Messages: []provider.ProviderMessage{{Role: provider.RoleUser, Content: "run"}},
		Tools: []provider.ProviderTool{{
			Type:     "function",
			Function: provider.ProviderFunctionDef{Name: "execute_python"},
		}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(resp.ToolCalls) != 1 {
		t.Fatalf("tool calls = %+v", resp.ToolCalls)
	}
	tc := resp.ToolCalls[0]
	if tc.ID != "call_1" || tc.Type != "function" || tc.Function.Name != "execute_python" {
		t.Errorf("tool call = %+v", tc)
	}
}

func TestComplete_ModelMapper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "openai/gpt-4o" {
			t.Errorf("model = %q", req.Model)
		}
		json.NewEncoder(w).Encode(ChatCompletionResponse{
			Choices: []ChatChoice{{Message: ChatMessage{Content: "ok"}, FinishReason: "stop"}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 0)
	c.ModelMapper = func(string) string { return "openai/gpt-4o" }
	if _, err := c.Complete(context.Background(), &provider.ProviderRequest{Model: "gpt-4o"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType api.ErrorType
		wantMsg  string
	}{
		{"rate limited", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, api.ErrorTypeTooManyRequests, "slow down"},
		{"server error", http.StatusBadGateway, ``, api.ErrorTypeModelError, "model service error (HTTP 502)"},
		{"unauthorized", http.StatusUnauthorized, ``, api.ErrorTypeModelError, "model service authentication failed"},
		{"bad request", http.StatusBadRequest, `{"error":{"message":"bad tools"}}`, api.ErrorTypeModelError, "bad tools"},
		{"no choices", http.StatusOK, `{"choices":[]}`, api.ErrorTypeModelError, "model service returned no choices"},
		{"garbage", http.StatusOK, `not json`, api.ErrorTypeModelError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, "", 0).Complete(context.Background(), &provider.ProviderRequest{Model: "m"})
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *api.APIError, got %v", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", apiErr.Type, tt.wantType)
			}
			if tt.wantMsg != "" && apiErr.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestComplete_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "", 0).Complete(context.Background(), &provider.ProviderRequest{Model: "m"})
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != api.ErrorTypeModelError {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestTranslateToChat_ToolCallOnlyMessage(t *testing.T) {
	cr := TranslateToChat(&provider.ProviderRequest{
		Messages: []provider.ProviderMessage{
			{
				Role: provider.RoleAssistant,
				ToolCalls: []provider.ProviderToolCall{{
					ID: "c1", Type: "function",
					Function: provider.ProviderFunctionCall{Name: "create_chart", Arguments: "{}"},
				}},
			},
			{Role: provider.RoleTool, ToolCallID: "c1", Content: `{"type":"bar"}`},
		},
	})

	if cr.Messages[0].Content != nil {
		t.Errorf("content = %v, want nil", cr.Messages[0].Content)
	}
	if cr.Messages[1].ToolCallID != "c1" || cr.Messages[1].Content != `{"type":"bar"}` {
		t.Errorf("tool message = %+v", cr.Messages[1])
	}
	if cr.ToolChoice != nil {
		t.Errorf("ToolChoice = %v, want nil without tools", cr.ToolChoice)
	}
}

func TestExtractContentString(t *testing.T) {
	parts := []any{
		map[string]any{"type": "text", "text": "a"},
		map[string]any{"type": "text", "text": "b"},
	}
	if got := ExtractContentString(parts); got != "ab" {
		t.Errorf("got %q", got)
	}
	if got := ExtractContentString(nil); got != "" {
		t.Errorf("got %q", got)
	}
}
