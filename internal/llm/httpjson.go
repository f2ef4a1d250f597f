package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/logging"
)

// maxResponseBody bounds how much of a provider response is read. Generated
// pages are well under this.
const maxResponseBody = 8 << 20

// postJSON sends in to url as JSON and returns the response status and body.
// Transport failures are wrapped with the provider name.
func postJSON(ctx context.Context, client *http.Client, provider, url string, header http.Header, in any) (int, []byte, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %s request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create %s request: %w", provider, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read %s response: %w", provider, err)
	}
	return resp.StatusCode, raw, nil
}

// statusError describes a non-200 response, keeping the body short enough to log.
func statusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512] + "..."
	}
	return fmt.Errorf("%s returned status %d: %s", provider, status, msg)
}

// splitSystem separates system messages, joined by blank lines, from the
// conversation turns.
func splitSystem(msgs []Message) (string, []Message) {
	var system []string
	turns := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}

// warnIfTruncated logs completions cut off by the output token limit. Such
// page code usually fails to compile in the preview.
func warnIfTruncated(ctx context.Context, provider, model string, truncated bool, outputTokens int) {
	if !truncated {
		return
	}
	logging.FromContext(ctx).Warn("completion truncated at the output token limit",
		zap.String("provider", provider),
		zap.String("model", model),
		zap.Int("output_tokens", outputTokens),
	)
}
