package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// OllamaProvider talks to a local Ollama server's chat endpoint. Structured
// requests use Ollama's format field, which accepts "json" or a schema.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaProvider creates a provider for the Ollama server at baseURL.
func NewOllamaProvider(baseURL string, model string) *OllamaProvider {
	return &OllamaProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
	Format   any             `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	NumPredict  int      `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	Model           string        `json:"model"`
	DoneReason      string        `json:"done_reason"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error,omitempty"`
}

func (p *OllamaProvider) buildRequest(req CompletionRequest) ollamaChatRequest {
	out := ollamaChatRequest{
		Model:    req.Model,
		Messages: make([]ollamaMessage, 0, len(req.Messages)),
	}
	if out.Model == "" {
		out.Model = p.model
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, ollamaMessage{Role: string(m.Role), Content: m.Content})
	}
	if t := req.temperature(); t != nil || req.MaxTokens > 0 {
		out.Options = &ollamaOptions{Temperature: t, NumPredict: req.MaxTokens}
	}
	switch {
	case req.Schema != nil:
		out.Format = req.Schema
	case req.JSONMode:
		out.Format = "json"
	}
	return out
}

func (p *OllamaProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	status, body, err := postJSON(ctx, p.client, p.Name(), p.baseURL+"/api/chat", nil, p.buildRequest(req))
	if err != nil {
		return nil, err
	}

	var apiResp ollamaChatResponse
	if err := json.Unmarshal(body, &apiResp); err != nil || status != http.StatusOK {
		if status == http.StatusOK {
			return nil, fmt.Errorf("failed to unmarshal ollama response: %w", err)
		}
		if apiResp.Error != "" {
			return nil, fmt.Errorf("ollama returned status %d: %s", status, apiResp.Error)
		}
		return nil, statusError(p.Name(), status, body)
	}
	warnIfTruncated(ctx, p.Name(), apiResp.Model, apiResp.DoneReason == "length", apiResp.EvalCount)

	return &CompletionResponse{
		Content:      apiResp.Message.Content,
		InputTokens:  apiResp.PromptEvalCount,
		OutputTokens: apiResp.EvalCount,
		Model:        apiResp.Model,
		FinishReason: apiResp.DoneReason,
	}, nil
}
