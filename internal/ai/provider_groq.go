package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	defaultGroqBaseURL = "https://api.groq.com/openai/v1"
	defaultGroqModel   = "llama-3.3-70b-versatile"
)

// GroqProvider implements Provider for Groq and other OpenAI-compatible
// chat-completions APIs via a configurable base URL.
type GroqProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// GroqOption configures a GroqProvider.
type GroqOption func(*GroqProvider)

// WithBaseURL sets the base URL for the OpenAI-compatible API.
func WithBaseURL(url string) GroqOption {
	return func(p *GroqProvider) {
		p.baseURL = url
	}
}

// WithModel sets the default model used when a request does not name one.
func WithModel(model string) GroqOption {
	return func(p *GroqProvider) {
		p.model = model
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) GroqOption {
	return func(p *GroqProvider) {
		p.client = client
	}
}

// NewGroqProvider creates a new Groq-backed provider.
func NewGroqProvider(apiKey string, opts ...GroqOption) *GroqProvider {
	p := &GroqProvider{
		apiKey:  apiKey,
		baseURL: defaultGroqBaseURL,
		model:   defaultGroqModel,
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// groqRequest is the request body for the chat completions API.
type groqRequest struct {
	Model          string        `json:"model"`
	Messages       []groqMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    *float64      `json:"temperature,omitempty"`
	ResponseFormat *groqFormat   `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqFormat struct {
	Type string `json:"type"`
}

// groqResponse is the response from the chat completions API.
type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (p *GroqProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.apiKey == "" {
		return CompletionResponse{}, ErrMissingAPIKey
	}

	model := req.Model
	if model == "" {
		model = p.model
	}

	messages := make([]groqMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = groqMessage(m)
	}

	gReq := groqRequest{
		Model:    model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		gReq.MaxTokens = req.MaxTokens
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		gReq.Temperature = &temp
	}
	if req.JSONMode {
		gReq.ResponseFormat = &groqFormat{Type: "json_object"}
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, fmt.Errorf("groq api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var gResp groqResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return CompletionResponse{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if len(gResp.Choices) == 0 {
		return CompletionResponse{}, fmt.Errorf("no choices in response")
	}
	if gResp.Choices[0].Message.Content == "" {
		return CompletionResponse{}, fmt.Errorf("empty completion content")
	}

	return CompletionResponse{
		Content:      gResp.Choices[0].Message.Content,
		Model:        gResp.Model,
		InputTokens:  gResp.Usage.PromptTokens,
		OutputTokens: gResp.Usage.CompletionTokens,
	}, nil
}

func (p *GroqProvider) HealthCheck(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}
