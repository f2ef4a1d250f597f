package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for generative model backends.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

// unconfiguredProvider fails every call. It stands in for a provider whose
// credential is missing so that the problem surfaces on the first generation
// request rather than at startup.
type unconfiguredProvider struct {
	name string
	err  error
}

func (p *unconfiguredProvider) Name() string { return p.name }

func (p *unconfiguredProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return nil, fmt.Errorf("%s provider unavailable: %w", p.name, p.err)
}
