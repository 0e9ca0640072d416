package litellm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rhuss/sandchat/pkg/api"
	"github.com/rhuss/sandchat/pkg/provider"
	"github.com/rhuss/sandchat/pkg/provider/openaicompat"
)

func TestLiteLLMProvider_Name(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	if p.Name() != "litellm" {
		t.Errorf("expected name %q, got %q", "litellm", p.Name())
	}
}

func TestLiteLLMProvider_New_MissingBaseURL(t *testing.T) {
	_, err := New(Config{})
	if err == nil {
		t.Fatal("expected error for missing BaseURL")
	}
}

func TestLiteLLMProvider_Complete_TextResponse(t *testing.T) {
	chatResp := openaicompat.ChatCompletionResponse{
		ID:    "chatcmpl-litellm-1",
		Model: "openai/gpt-4",
		Choices: []openaicompat.ChatChoice{
			{
				Index: 0,
				Message: openaicompat.ChatMessage{
					Role:    "assistant",
					Content: "Hello from LiteLLM!",
				},
				FinishReason: "stop",
			},
		},
		Usage: &openaicompat.ChatUsage{
			PromptTokens:     10,
			CompletionTokens: 5,
			TotalTokens:      15,
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResp)
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	req := &provider.ProviderRequest{
		Model: "gpt-4",
		Messages: []provider.ProviderMessage{
			{Role: "user", Content: "Hello"},
		},
	}

	resp, err := p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.FinishReason != "stop" {
		t.Errorf("expected finish reason %q, got %q", "stop", resp.FinishReason)
	}
	if resp.Text != "Hello from LiteLLM!" {
		t.Errorf("expected text %q, got %q", "Hello from LiteLLM!", resp.Text)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestLiteLLMProvider_ModelMapping(t *testing.T) {
	var receivedModel string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var chatReq openaicompat.ChatCompletionRequest
		json.NewDecoder(r.Body).Decode(&chatReq)
		receivedModel = chatReq.Model

		resp := openaicompat.ChatCompletionResponse{
			Model: chatReq.Model,
			Choices: []openaicompat.ChatChoice{
				{
					Message:      openaicompat.ChatMessage{Role: "assistant", Content: "ok"},
					FinishReason: "stop",
				},
			},
			Usage: &openaicompat.ChatUsage{},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(Config{
		BaseURL: srv.URL,
		ModelMapping: map[string]string{
			"gpt-4":  "openai/gpt-4",
			"claude": "anthropic/claude-3-opus",
		},
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	// Test mapped model.
	req := &provider.ProviderRequest{
		Model:    "gpt-4",
		Messages: []provider.ProviderMessage{{Role: "user", Content: "Hi"}},
	}
	_, err = p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if receivedModel != "openai/gpt-4" {
		t.Errorf("expected mapped model %q, got %q", "openai/gpt-4", receivedModel)
	}

	// Test unmapped model (pass-through).
	req.Model = "unknown-model"
	_, err = p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if receivedModel != "unknown-model" {
		t.Errorf("expected pass-through model %q, got %q", "unknown-model", receivedModel)
	}
}

func TestLiteLLMProvider_Complete_AuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth != "Bearer litellm-key-123" {
			t.Errorf("expected Authorization %q, got %q", "Bearer litellm-key-123", auth)
		}

		resp := openaicompat.ChatCompletionResponse{
			Model: "m",
			Choices: []openaicompat.ChatChoice{
				{Message: openaicompat.ChatMessage{Role: "assistant", Content: "ok"}, FinishReason: "stop"},
			},
			Usage: &openaicompat.ChatUsage{},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL, APIKey: "litellm-key-123"})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	req := &provider.ProviderRequest{
		Model:    "m",
		Messages: []provider.ProviderMessage{{Role: "user", Content: "Hi"}},
	}

	_, err = p.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestLiteLLMProvider_Complete_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer p.Close()

	req := &provider.ProviderRequest{
		Model:    "m",
		Messages: []provider.ProviderMessage{{Role: "user", Content: "Hi"}},
	}

	_, err = p.Complete(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	apiErr, ok := err.(*api.APIError)
	if !ok {
		t.Fatalf("expected *api.APIError, got %T", err)
	}
	if apiErr.Type != api.ErrorTypeModelError {
		t.Errorf("expected error type %q, got %q", api.ErrorTypeModelError, apiErr.Type)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("http://litellm:4000")
	if cfg.BaseURL != "http://litellm:4000" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.Timeout != openaicompat.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, openaicompat.DefaultTimeout)
	}
	if cfg.modelMapper() != nil {
		t.Error("modelMapper() should be nil without a mapping")
	}
}

func TestConfig_ModelMapperCopiesMapping(t *testing.T) {
	mapping := map[string]string{"gpt-4o-mini": "openai/gpt-4o-mini"}
	mapper := Config{ModelMapping: mapping}.modelMapper()
	mapping["gpt-4o-mini"] = "changed"

	tests := []struct{ in, want string }{
		{"gpt-4o-mini", "openai/gpt-4o-mini"},
		{"llama3", "llama3"},
	}
	for _, tt := range tests {
		if got := mapper(tt.in); got != tt.want {
			t.Errorf("mapper(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
