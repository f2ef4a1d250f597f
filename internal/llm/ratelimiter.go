package llm

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ziadkadry99/instasite/internal/logging"
)

// ErrRateLimited is returned when a request cannot get a slot before its
// context deadline.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitedProvider spaces generation requests to at most rpm per minute.
// A full minute's worth of requests may burst after an idle period.
type RateLimitedProvider struct {
	provider  Provider
	limiter   *rate.Limiter
	throttled atomic.Int64
}

// NewRateLimitedProvider wraps provider with a limiter allowing rpm requests
// per minute. A non-positive rpm returns provider unchanged.
func NewRateLimitedProvider(provider Provider, rpm int) Provider {
	if rpm <= 0 {
		return provider
	}
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.provider.Name()
}

// Throttled reports how many requests had to wait for a slot.
func (r *RateLimitedProvider) Throttled() int64 {
	return r.throttled.Load()
}

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.wait(ctx, req.Model); err != nil {
		return nil, err
	}
	return r.provider.Complete(ctx, req)
}

func (r *RateLimitedProvider) wait(ctx context.Context, model string) error {
	res := r.limiter.Reserve()
	delay := res.Delay()
	if delay == 0 {
		return nil
	}
	r.throttled.Add(1)

	logger := logging.FromContext(ctx).With(
		zap.String("provider", r.provider.Name()),
		zap.String("model", model),
		zap.Duration("delay", delay),
	)

	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < delay {
		res.Cancel()
		logger.Warn("generation request would outlive its deadline waiting for the rate limiter")
		return fmt.Errorf("%s: %w: next slot in %s", r.provider.Name(), ErrRateLimited, delay.Round(time.Millisecond))
	}

	logger.Debug("waiting for rate limiter")
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		res.Cancel()
		return fmt.Errorf("%s: waiting for rate limiter: %w", r.provider.Name(), ctx.Err())
	}
}
