// Package generator produces blueprints and page source from a generative
// service. Every call is independent: nothing is cached and identical inputs
// may yield different output.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/llm"
	"github.com/ziadkadry99/instasite/internal/logging"
)

const (
	blueprintMaxTokens = 8192
	pageMaxTokens      = 16384
	sectionMaxTokens   = 4096

	// DefaultTemperature is used for page and section code.
	DefaultTemperature = 0.7
)

// Params is the user input a blueprint is generated from.
type Params struct {
	Goal     string   `json:"goal"`
	Audience string   `json:"audience"`
	Type     string   `json:"type"`
	Pages    []string `json:"pages"`
	Colors   []string `json:"colors"`
	Tone     string   `json:"tone"`
}

// Validate checks that the parameters are usable for a generation request.
func (p Params) Validate() error {
	if strings.TrimSpace(p.Goal) == "" {
		return fmt.Errorf("%w: website goal is required", ErrInvalidParams)
	}
	if strings.TrimSpace(p.Audience) == "" {
		return fmt.Errorf("%w: audience is required", ErrInvalidParams)
	}
	if len(p.Pages) == 0 {
		return fmt.Errorf("%w: at least one page must be requested", ErrInvalidParams)
	}
	return nil
}

// UsageRecorder receives one entry per generation call.
type UsageRecorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// Options configures a Generator.
type Options struct {
	// BlueprintModel is used for blueprint generation.
	BlueprintModel string
	// PageModel is used for page and section code.
	PageModel string
	// Temperature applies to page and section code. Zero means DefaultTemperature.
	Temperature float64
	// Timeout bounds a single call. Zero means no timeout.
	Timeout time.Duration
	// Recorder, when set, receives usage for every call.
	Recorder UsageRecorder
}

// Generator issues generation requests to a provider.
type Generator struct {
	provider llm.Provider
	opts     Options
}

// New creates a Generator.
func New(provider llm.Provider, opts Options) *Generator {
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Generator{provider: provider, opts: opts}
}

// GenerateBlueprint asks for a structured blueprint. The result satisfies the
// blueprint's structural invariants; anything else is a *GenerationError.
func (g *Generator) GenerateBlueprint(ctx context.Context, p Params) (*blueprint.Blueprint, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	content, err := g.complete(ctx, ledger.KindBlueprint, "", llm.CompletionRequest{
		Model: g.opts.BlueprintModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: buildBlueprintPrompt(p)},
		},
		MaxTokens: blueprintMaxTokens,
		Schema:    blueprint.Schema(),
	})
	if err != nil {
		return nil, &GenerationError{Op: "generate blueprint", Err: err}
	}

	bp, err := blueprint.Parse(content)
	if err != nil {
		return nil, &GenerationError{Op: "generate blueprint", Err: err}
	}
	return bp, nil
}

// GeneratePageCode asks for the full source of one page. The blueprint is
// not modified; storing the result is up to the caller. A slug that is not
// in the blueprint fails before any request is made.
func (g *Generator) GeneratePageCode(ctx context.Context, bp *blueprint.Blueprint, slug string) (string, error) {
	if bp == nil {
		return "", &NotFoundError{Kind: "page", Key: slug}
	}
	page, ok := bp.PageBySlug(slug)
	if !ok {
		return "", &NotFoundError{Kind: "page", Key: slug}
	}

	prompt, err := buildPagePrompt(bp, page)
	if err != nil {
		return "", &GenerationError{Op: "generate page " + slug, Err: err}
	}

	content, err := g.complete(ctx, ledger.KindPage, slug, llm.CompletionRequest{
		Model: g.opts.PageModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   pageMaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Op: "generate page " + slug, Err: err}
	}

	code := StripCodeFences(content)
	if code == "" {
		return "", &GenerationError{Op: "generate page " + slug, Err: ErrEmptyOutput}
	}
	return code, nil
}

// RegenerateSection asks for a replacement fragment for one section. The
// fragment is returned as-is after fence stripping; it is never merged into
// the page's code.
func (g *Generator) RegenerateSection(ctx context.Context, bp *blueprint.Blueprint, slug, sectionID string) (string, error) {
	if bp == nil {
		return "", &NotFoundError{Kind: "page", Key: slug}
	}
	page, ok := bp.PageBySlug(slug)
	if !ok {
		return "", &NotFoundError{Kind: "page", Key: slug}
	}
	section, ok := page.SectionByID(sectionID)
	if !ok {
		return "", &NotFoundError{Kind: "section", Key: slug + "/" + sectionID}
	}

	prompt, err := buildSectionPrompt(bp, page, section)
	if err != nil {
		return "", &GenerationError{Op: "regenerate section " + sectionID, Err: err}
	}

	target := slug + "/" + sectionID
	content, err := g.complete(ctx, ledger.KindSection, target, llm.CompletionRequest{
		Model: g.opts.PageModel,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: prompt},
		},
		MaxTokens:   sectionMaxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		return "", &GenerationError{Op: "regenerate section " + sectionID, Err: err}
	}

	fragment := StripCodeFences(content)
	if fragment == "" {
		return "", &GenerationError{Op: "regenerate section " + sectionID, Err: ErrEmptyOutput}
	}
	return fragment, nil
}

// complete issues one request, applying the timeout and recording usage.
func (g *Generator) complete(ctx context.Context, kind ledger.Kind, target string, req llm.CompletionRequest) (string, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	logger := logging.FromContext(ctx).With(
		zap.String("kind", string(kind)),
		zap.String("target", target),
		zap.String("model", req.Model),
	)

	start := time.Now()
	resp, err := g.provider.Complete(ctx, req)
	elapsed := time.Since(start)

	entry := ledger.Entry{
		Kind:     kind,
		Target:   target,
		Provider: g.provider.Name(),
		Model:    req.Model,
		Duration: elapsed,
	}
	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.InputTokens = resp.InputTokens
		entry.OutputTokens = resp.OutputTokens
		entry.CostUSD = llm.EstimateCost(req.Model, resp.InputTokens, resp.OutputTokens)
	}
	g.record(ctx, entry)

	if err != nil {
		logger.Warn("generation failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return "", err
	}
	logger.Info("generation completed",
		zap.Duration("elapsed", elapsed),
		zap.Int("input_tokens", resp.InputTokens),
		zap.Int("output_tokens", resp.OutputTokens),
	)
	if strings.TrimSpace(resp.Content) == "" {
		return "", ErrEmptyOutput
	}
	return resp.Content, nil
}

func (g *Generator) record(ctx context.Context, e ledger.Entry) {
	if g.opts.Recorder == nil {
		return
	}
	// Usage is accounting only; a failed write must not fail the generation.
	if err := g.opts.Recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		logging.FromContext(ctx).Warn("recording usage", zap.Error(err))
	}
}
