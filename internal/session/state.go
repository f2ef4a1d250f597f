package session

import (
	"errors"
	"time"

	"github.com/ziadkadry99/instasite/internal/blueprint"
	"github.com/ziadkadry99/instasite/internal/deploy"
	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/sandbox"
)

var (
	// ErrBusy is returned when a site generation is already running.
	ErrBusy = errors.New("session is busy generating")
	// ErrGenerationInProgress is returned when the same page or section is
	// already being generated.
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrNoBlueprint is returned by editor operations before a blueprint exists.
	ErrNoBlueprint = errors.New("no blueprint has been generated")
	// ErrInvalidTransition is returned when an operation is not allowed on the
	// current screen.
	ErrInvalidTransition = errors.New("operation not allowed on the current screen")
	// ErrSessionNotFound is returned for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// Screen is the top-level view a session is on.
type Screen string

const (
	ScreenLanding    Screen = "landing"
	ScreenSetup      Screen = "setup"
	ScreenGenerating Screen = "generating"
	ScreenEditor     Screen = "editor"
)

// Step is the progress marker shown while generating.
type Step int

const (
	StepNone Step = iota
	// StepAnalyzing covers the blueprint request.
	StepAnalyzing
	// StepBuilding covers the home page request.
	StepBuilding
	// StepFinalizing is reached once both succeeded.
	StepFinalizing
)

// Label is the progress text for the step.
func (s Step) Label() string {
	switch s {
	case StepAnalyzing:
		return "Analyzing your business goals"
	case StepBuilding:
		return "Building site structure"
	case StepFinalizing:
		return "Generating pages"
	default:
		return ""
	}
}

// Notice is a user-visible message about the last failed operation.
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Snapshot is a consistent, read-only view of a session. The blueprint is
// shared, never copied: installed blueprints are not modified in place.
type Snapshot struct {
	ID           string               `json:"id"`
	Revision     uint64               `json:"revision"`
	Screen       Screen               `json:"screen"`
	Step         Step                 `json:"step"`
	StepLabel    string               `json:"step_label,omitempty"`
	Params       generator.Params     `json:"params"`
	Blueprint    *blueprint.Blueprint `json:"blueprint,omitempty"`
	CurrentPage  string               `json:"current_page,omitempty"`
	InFlight     []string             `json:"in_flight,omitempty"`
	Notice       *Notice              `json:"notice,omitempty"`
	SandboxError *sandbox.RenderError `json:"sandbox_error,omitempty"`
	Deploy       deploy.Status        `json:"deploy"`
}

// Current returns the selected page, if any.
func (s Snapshot) Current() (blueprint.Page, bool) {
	if s.Blueprint == nil || s.CurrentPage == "" {
		return blueprint.Page{}, false
	}
	return s.Blueprint.PageBySlug(s.CurrentPage)
}

// Generating reports whether the page with slug has a request in flight.
func (s Snapshot) Generating(slug string) bool {
	for _, k := range s.InFlight {
		if k == slug {
			return true
		}
	}
	return false
}

// DefaultParams are the setup form's initial values.
func DefaultParams() generator.Params {
	return generator.Params{
		Type:   "Business",
		Pages:  []string{"home", "features", "pricing", "contact"},
		Colors: []string{"#4F46E5", "#0F172A", "#22C55E"},
		Tone:   "Professional",
	}
}

// WebsiteTypes are the choices offered on the setup form.
var WebsiteTypes = []string{"Business", "Portfolio", "E-commerce", "SaaS", "Personal Brand"}

// Tones are the brand tones offered on the setup form.
var Tones = []string{"Professional", "Friendly", "Minimalist", "Bold & Playful", "Elegant"}

// PageOptions are the pages offered on the setup form.
var PageOptions = []string{"home", "features", "pricing", "contact", "about", "blog", "faq"}
