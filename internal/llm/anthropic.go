package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL  = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"
	// anthropicMaxTokens is required by the Messages API; pages need room.
	anthropicMaxTokens = 8192
)

// AnthropicProvider talks to the Anthropic Messages API over HTTP. The API
// has no response-schema option, so structured requests carry the schema as
// an instruction appended to the system prompt.
type AnthropicProvider struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey string, model string) *AnthropicProvider {
	return &AnthropicProvider{
		apiKey: apiKey,
		model:  model,
		url:    anthropicAPIURL,
		client: &http.Client{},
	}
}

func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	Model      string             `json:"model"`
	StopReason string             `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (p *AnthropicProvider) buildRequest(req CompletionRequest) (anthropicRequest, error) {
	system, turns := splitSystem(req.Messages)
	if req.Structured() {
		instruction, err := jsonInstruction(req.Schema)
		if err != nil {
			return anthropicRequest{}, err
		}
		if system != "" {
			system += "\n\n"
		}
		system += instruction
	}

	out := anthropicRequest{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.temperature(),
		System:      system,
		Messages:    make([]anthropicMessage, 0, len(turns)),
	}
	if out.Model == "" {
		out.Model = p.model
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = anthropicMaxTokens
	}
	for _, m := range turns {
		out.Messages = append(out.Messages, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}
	return out, nil
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	apiReq, err := p.buildRequest(req)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("x-api-key", p.apiKey)
	header.Set("anthropic-version", anthropicVersion)

	status, body, err := postJSON(ctx, p.client, p.Name(), p.url, header, apiReq)
	if err != nil {
		return nil, err
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		if status != http.StatusOK {
			return nil, statusError(p.Name(), status, body)
		}
		return nil, fmt.Errorf("failed to unmarshal anthropic response: %w", err)
	}
	if apiResp.Error != nil {
		return nil, fmt.Errorf("anthropic API error (%s): %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if status != http.StatusOK {
		return nil, statusError(p.Name(), status, body)
	}

	var content strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	warnIfTruncated(ctx, p.Name(), apiResp.Model, apiResp.StopReason == "max_tokens", apiResp.Usage.OutputTokens)

	return &CompletionResponse{
		Content:      content.String(),
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
		Model:        apiResp.Model,
		FinishReason: apiResp.StopReason,
	}, nil
}

// jsonInstruction tells a model without native structured output to answer
// with a single JSON document matching schema.
func jsonInstruction(schema map[string]any) (string, error) {
	if schema == nil {
		return "Respond with a single valid JSON object and nothing else.", nil
	}
	raw, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response schema: %w", err)
	}
	return "Respond with a single valid JSON object and nothing else. It must conform to this JSON schema:\n" + string(raw), nil
}
