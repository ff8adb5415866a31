package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func groqOKResponse(content string) groqResponse {
	return groqResponse{
		Choices: []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}{
			{Message: struct {
				Content string `json:"content"`
			}{Content: content}},
		},
		Model: "llama-3.3-70b-versatile",
		Usage: struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		}{PromptTokens: 12, CompletionTokens: 7},
	}
}

func TestGroqProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req groqRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "llama-3.3-70b-versatile" {
			t.Errorf("model = %q, want default groq model", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "generate" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v, want json_object", req.ResponseFormat)
		}
		if req.Temperature == nil || *req.Temperature != 0.7 {
			t.Errorf("temperature = %v, want 0.7", req.Temperature)
		}

		json.NewEncoder(w).Encode(groqOKResponse(`{"ok":true}`))
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "persona"},
			{Role: "user", Content: "generate"},
		},
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.TotalTokens() != 19 {
		t.Errorf("TotalTokens() = %d, want 19", resp.TotalTokens())
	}
}

func TestGroqProvider_Complete_MissingKey(t *testing.T) {
	provider := NewGroqProvider("")

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("Complete() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestGroqProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestGroqProvider_Complete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(groqOKResponse(""))
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on empty completion content")
	}
}

func TestGroqProvider_Complete_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(groqResponse{Choices: nil})
	}))
	defer server.Close()

	provider := NewGroqProvider("test-key", WithBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error when no choices")
	}
}

func TestGroqProvider_HealthCheck_MissingKey(t *testing.T) {
	provider := NewGroqProvider("")
	if err := provider.HealthCheck(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("HealthCheck() error = %v, want ErrMissingAPIKey", err)
	}
}
