// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/ziadkadry99/instasite/internal/llm"
)

// Reply is one scripted outcome of a Complete call.
type Reply struct {
	Content string
	Err     error
}

// Provider records every request and answers from a queue of replies. When
// the queue is empty it answers with Fallback, or fails if Fallback is nil.
type Provider struct {
	mu       sync.Mutex
	calls    []llm.CompletionRequest
	replies  []Reply
	Fallback *Reply
	// Gate, when set, is received from before each reply is returned so that
	// tests can hold a call in flight.
	Gate chan struct{}
}

// New returns a Provider that answers with the given replies in order.
func New(replies ...Reply) *Provider {
	return &Provider{replies: replies}
}

// Text is shorthand for a successful reply.
func Text(content string) Reply {
	return Reply{Content: content}
}

// Fail is shorthand for a failing reply.
func Fail(err error) Reply {
	return Reply{Err: err}
}

// Push appends replies to the queue.
func (p *Provider) Push(replies ...Reply) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.replies = append(p.replies, replies...)
}

func (p *Provider) Name() string { return "fake" }

func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	var r Reply
	switch {
	case len(p.replies) > 0:
		r = p.replies[0]
		p.replies = p.replies[1:]
	case p.Fallback != nil:
		r = *p.Fallback
	default:
		r = Reply{Err: fmt.Errorf("llmtest: no scripted reply for call %d", len(p.calls))}
	}
	gate := p.Gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.CompletionResponse{
		Content:      r.Content,
		InputTokens:  llm.EstimateTokens(lastUser(req)),
		OutputTokens: llm.EstimateTokens(r.Content),
		Model:        req.Model,
		FinishReason: "stop",
	}, nil
}

// Calls returns a copy of the recorded requests.
func (p *Provider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.CompletionRequest(nil), p.calls...)
}

// CallCount returns the number of Complete calls made so far.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func lastUser(req llm.CompletionRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == llm.RoleUser {
			return req.Messages[i].Content
		}
	}
	return ""
}
