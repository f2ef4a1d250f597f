package llm

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for a generation request.
type CompletionRequest struct {
	Model     string
	Messages  []Message
	MaxTokens int
	// Temperature is the sampling temperature. Zero leaves the provider's
	// default in place.
	Temperature float64
	JSONMode    bool
	// Schema, when set, asks for structured output constrained by the given
	// JSON schema object. It implies JSONMode.
	Schema map[string]any
}

// Structured reports whether the request expects a JSON response.
func (r CompletionRequest) Structured() bool {
	return r.JSONMode || r.Schema != nil
}

// temperature returns the temperature to send, or nil for the provider default.
func (r CompletionRequest) temperature() *float64 {
	if r.Temperature <= 0 {
		return nil
	}
	t := r.Temperature
	return &t
}

// CompletionResponse contains the result of a generation request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
