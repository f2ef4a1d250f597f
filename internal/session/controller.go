// Package session holds the per-browser application state: which screen is
// shown, the installed blueprint, and the generation requests in flight.
//
// The blueprint is an immutable value. Every update builds a new value from
// the current one and installs it under the controller's lock, so readers
// holding an older snapshot are never affected.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/deploy"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/logging"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

// Generator produces blueprints and page source.
type Generator interface {
	GenerateBlueprint(ctx context.Context, p generator.Params) (*blueprint.Blueprint, error)
	GeneratePageCode(ctx context.Context, bp *blueprint.Blueprint, slug string) (string, error)
	RegenerateSection(ctx context.Context, bp *blueprint.Blueprint, slug, sectionID string) (string, error)
}

// Controller is the state of one editing session. All methods are safe for
// concurrent use.
type Controller struct {
	id     string
	gen    Generator
	logger *zap.Logger

	mu          sync.Mutex
	revision    uint64
	screen      Screen
	step        Step
	params      generator.Params
	bp          *blueprint.Blueprint
	epoch       uint64 // bumped whenever a new blueprint is installed
	currentPage string
	inFlight    map[string]bool
	notice      *Notice
	sandboxErr  *sandbox.RenderError
	lastActive  time.Time

	deployer *deploy.Simulator
	subs     map[chan Snapshot]struct{}
	now      func() time.Time
}

func newController(id string, gen Generator, deployDelay time.Duration, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		id:       id,
		gen:      gen,
		logger:   logger.With(zap.String("session_id", id)),
		screen:   ScreenLanding,
		params:   DefaultParams(),
		inFlight: make(map[string]bool),
		subs:     make(map[chan Snapshot]struct{}),
		now:      time.Now,
	}
	c.lastActive = c.now()
	c.deployer = deploy.NewSimulator(deployDelay, func(deploy.Status) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.publishLocked()
	})
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	inFlight := make([]string, 0, len(c.inFlight))
	for k := range c.inFlight {
		inFlight = append(inFlight, k)
	}
	sort.Strings(inFlight)

	return Snapshot{
		ID:           c.id,
		Revision:     c.revision,
		Screen:       c.screen,
		Step:         c.step,
		StepLabel:    c.step.Label(),
		Params:       c.params,
		Blueprint:    c.bp,
		CurrentPage:  c.currentPage,
		InFlight:     inFlight,
		Notice:       c.notice,
		SandboxError: c.sandboxErr,
		Deploy:       c.deployer.Status(),
	}
}

// Subscribe returns a channel that receives the latest snapshot after every
// change, and a function that ends the subscription. Slow readers only miss
// intermediate snapshots, never the most recent one.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.snapshotLocked()
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			c.mu.Unlock()
		})
	}
}

// publishLocked bumps the revision and hands the new snapshot to every
// subscriber, replacing any snapshot it has not read yet.
func (c *Controller) publishLocked() {
	c.revision++
	c.lastActive = c.now()
	snap := c.snapshotLocked()
	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (c *Controller) ctx(ctx context.Context) context.Context {
	ctx = ledger.WithSession(ctx, c.id)
	return logging.WithLogger(ctx, c.logger)
}

// StartSetup moves to the setup form. It is allowed from every screen except
// while a site is being generated; the installed blueprint is kept.
func (c *Controller) StartSetup() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.screen == ScreenGenerating {
		return ErrBusy
	}
	c.screen = ScreenSetup
	c.step = StepNone
	c.publishLocked()
	return nil
}

// Generate produces a new blueprint and its home page. Both must succeed for
// the result to be installed; on any failure the session returns to the
// setup screen with a notice and the previous blueprint untouched.
func (c *Controller) Generate(ctx context.Context, p generator.Params) error {
	if err := c.beginGenerate(p); err != nil {
		return err
	}
	return c.runGenerate(c.ctx(ctx), p)
}

// GenerateAsync validates and starts Generate in the background. Errors
// that happen after the start are reported through the session state.
func (c *Controller) GenerateAsync(ctx context.Context, p generator.Params) error {
	if err := c.beginGenerate(p); err != nil {
		return err
	}
	go c.runGenerate(c.ctx(context.WithoutCancel(ctx)), p)
	return nil
}

func (c *Controller) beginGenerate(p generator.Params) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen == ScreenGenerating {
		return ErrBusy
	}
	if c.screen != ScreenSetup {
		return fmt.Errorf("%w: generate from %s", ErrInvalidTransition, c.screen)
	}
	if err := p.Validate(); err != nil {
		return err
	}

	c.params = p
	c.screen = ScreenGenerating
	c.step = StepAnalyzing
	c.notice = nil
	c.publishLocked()
	return nil
}

func (c *Controller) runGenerate(ctx context.Context, p generator.Params) error {
	bp, err := c.gen.GenerateBlueprint(ctx, p)
	if err != nil {
		return c.failGenerate(err)
	}

	c.mu.Lock()
	c.step = StepBuilding
	c.publishLocked()
	c.mu.Unlock()

	home, _ := bp.Home()
	code, err := c.gen.GeneratePageCode(ctx, bp, home.Slug)
	if err != nil {
		return c.failGenerate(err)
	}
	installed, err := bp.WithPageCode(home.Slug, code)
	if err != nil {
		return c.failGenerate(err)
	}

	// The simulator notifies through the controller lock, so reset it first.
	c.deployer.Reset()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = StepFinalizing
	c.bp = installed
	c.epoch++
	c.currentPage = home.Slug
	c.inFlight = make(map[string]bool)
	c.sandboxErr = nil
	c.screen = ScreenEditor
	c.publishLocked()

	c.logger.Info("site generated",
		zap.Int("pages", len(installed.Pages)),
		zap.String("home", home.Slug),
	)
	return nil
}

func (c *Controller) failGenerate(err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.screen = ScreenSetup
	c.step = StepNone
	c.notice = &Notice{Message: "Failed to generate website: " + err.Error(), At: c.now()}
	c.publishLocked()
	c.logger.Warn("site generation failed", zap.Error(err))
	return err
}

// SelectPage shows the page with slug in the editor, generating its code if
// it has none. Selecting a page whose generation is already running only
// switches the view.
func (c *Controller) SelectPage(ctx context.Context, slug string) error {
	run, err := c.beginPage(slug, false)
	if err != nil || run == nil {
		return err
	}
	return run(c.ctx(ctx))
}

// SelectPageAsync is SelectPage with the generation run in the background.
func (c *Controller) SelectPageAsync(ctx context.Context, slug string) error {
	run, err := c.beginPage(slug, false)
	if err != nil || run == nil {
		return err
	}
	go run(c.ctx(context.WithoutCancel(ctx)))
	return nil
}

// RegeneratePage replaces the page's code with a freshly generated one. A
// page already generating is rejected with ErrGenerationInProgress.
func (c *Controller) RegeneratePage(ctx context.Context, slug string) error {
	run, err := c.beginPage(slug, true)
	if err != nil {
		return err
	}
	return run(c.ctx(ctx))
}

// RegeneratePageAsync is RegeneratePage with the generation run in the
// background.
func (c *Controller) RegeneratePageAsync(ctx context.Context, slug string) error {
	run, err := c.beginPage(slug, true)
	if err != nil {
		return err
	}
	go run(c.ctx(context.WithoutCancel(ctx)))
	return nil
}

// beginPage selects slug and, when a generation is needed, marks it in
// flight and returns the function that performs it.
func (c *Controller) beginPage(slug string, force bool) (func(context.Context) error, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.editorReadyLocked(); err != nil {
		return nil, err
	}
	page, ok := c.bp.PageBySlug(slug)
	if !ok {
		return nil, &generator.NotFoundError{Kind: "page", Key: slug}
	}

	if c.currentPage != slug {
		c.currentPage = slug
		c.sandboxErr = nil
	}

	if c.inFlight[slug] {
		if force {
			c.publishLocked()
			return nil, fmt.Errorf("page %q: %w", slug, ErrGenerationInProgress)
		}
		c.publishLocked()
		return nil, nil
	}
	if page.Generated() && !force {
		c.publishLocked()
		return nil, nil
	}

	c.inFlight[slug] = true
	c.notice = nil
	bp, epoch := c.bp, c.epoch
	c.publishLocked()

	return func(ctx context.Context) error {
		code, err := c.gen.GeneratePageCode(ctx, bp, slug)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			// A different blueprint was installed meanwhile.
			return nil
		}
		delete(c.inFlight, slug)
		if err != nil {
			c.notice = &Notice{Message: fmt.Sprintf("Failed to generate page %q: %v", slug, err), At: c.now()}
			c.publishLocked()
			c.logger.Warn("page generation failed", zap.String("slug", slug), zap.Error(err))
			return err
		}

		next, err := c.bp.WithPageCode(slug, code)
		if err != nil {
			return err
		}
		c.bp = next
		if c.currentPage == slug {
			c.sandboxErr = nil
		}
		c.publishLocked()
		c.logger.Info("page generated", zap.String("slug", slug), zap.Int("bytes", len(code)))
		return nil
	}, nil
}

// RegenerateSection produces a replacement fragment for one section and
// caches it on the section. The page's code is never changed.
func (c *Controller) RegenerateSection(ctx context.Context, slug, sectionID string) (string, error) {
	key := slug + "/" + sectionID

	c.mu.Lock()
	if err := c.editorReadyLocked(); err != nil {
		c.mu.Unlock()
		return "", err
	}
	page, ok := c.bp.PageBySlug(slug)
	if !ok {
		c.mu.Unlock()
		return "", &generator.NotFoundError{Kind: "page", Key: slug}
	}
	if _, ok := page.SectionByID(sectionID); !ok {
		c.mu.Unlock()
		return "", &generator.NotFoundError{Kind: "section", Key: key}
	}
	if c.inFlight[key] {
		c.mu.Unlock()
		return "", fmt.Errorf("section %q: %w", key, ErrGenerationInProgress)
	}
	c.inFlight[key] = true
	bp, epoch := c.bp, c.epoch
	c.publishLocked()
	c.mu.Unlock()

	fragment, err := c.gen.RegenerateSection(c.ctx(ctx), bp, slug, sectionID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return fragment, err
	}
	delete(c.inFlight, key)
	if err != nil {
		c.notice = &Notice{Message: fmt.Sprintf("Failed to regenerate section %q: %v", sectionID, err), At: c.now()}
		c.publishLocked()
		return "", err
	}
	next, err := c.bp.WithSectionContent(slug, sectionID, fragment)
	if err != nil {
		return "", err
	}
	c.bp = next
	c.publishLocked()
	return fragment, nil
}

// ReportSandboxError records a failure reported by a preview document. Reports
// for a page other than the current one, or for code that has since been
// replaced, are ignored. It reports whether the error is the one recorded.
// Repeating the recorded error does not publish a new revision.
func (c *Controller) ReportSandboxError(re *sandbox.RenderError) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bp == nil || re == nil || re.Slug != c.currentPage {
		return false
	}
	page, ok := c.bp.PageBySlug(re.Slug)
	if !ok || !page.Generated() || sandbox.Version(page.Code) != re.Version {
		return false
	}

	if c.sandboxErr != nil && *c.sandboxErr == *re {
		return true
	}

	c.sandboxErr = re
	c.publishLocked()
	c.logger.Warn("sandbox reported an error",
		zap.String("slug", re.Slug),
		zap.String("kind", string(re.Kind)),
		zap.String("message", re.Message),
	)
	return true
}

// Deploy starts a simulated deployment of the current site.
func (c *Controller) Deploy() (deploy.Status, error) {
	c.mu.Lock()
	if err := c.editorReadyLocked(); err != nil {
		c.mu.Unlock()
		return deploy.Status{}, err
	}
	c.mu.Unlock()
	return c.deployer.Start(), nil
}

// DeployStatus returns the state of the simulated deployment.
func (c *Controller) DeployStatus() deploy.Status {
	return c.deployer.Status()
}

// CloseDeploy dismisses the deployment dialog.
func (c *Controller) CloseDeploy() {
	c.deployer.Reset()
}

func (c *Controller) editorReadyLocked() error {
	if c.bp == nil {
		return ErrNoBlueprint
	}
	if c.screen != ScreenEditor {
		return fmt.Errorf("%w: editor operation on %s", ErrInvalidTransition, c.screen)
	}
	return nil
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// IsNotFound reports whether err means a page or section is not in the
// blueprint.
func IsNotFound(err error) bool {
	return generator.IsNotFound(err)
}

// IsConflict reports whether err is a rejected concurrent operation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrGenerationInProgress)
}
