// Package editor serves the browser editor: the screens of a session, its
// JSON API, a live update stream and the sandboxed page previews.
package editor

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/sandbox"
	"github.com/ziadkadry99/instasite/internal/session"
)

// UsageLister lists the recorded generation calls of a session.
type UsageLister interface {
	ForSession(ctx context.Context, sessionID string) ([]ledger.Entry, error)
}

// Editor provides the editor screens and API.
type Editor struct {
	sessions *session.Manager
	sandbox  *sandbox.Renderer
	usage    UsageLister
	logger   *zap.Logger
	md       *renderer
	tmpl     *template.Template
}

// New creates an Editor. usage may be nil.
func New(sessions *session.Manager, usage UsageLister, logger *zap.Logger) (*Editor, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sb, err := sandbox.NewRenderer()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("editor").Funcs(templateFuncs).Parse(screensTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing editor templates: %w", err)
	}
	return &Editor{
		sessions: sessions,
		sandbox:  sb,
		usage:    usage,
		logger:   logger,
		md:       newRenderer(),
		tmpl:     tmpl,
	}, nil
}

// RegisterRoutes mounts all editor routes onto the given router.
func (e *Editor) RegisterRoutes(r chi.Router) {
	r.Get("/", e.handleLanding)
	r.Post("/sessions", e.handleNewSession)
	r.Get("/s/{id}", e.handleScreen)
	r.Get("/s/{id}/preview/{slug}", e.handlePreview)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", e.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", e.handleGet)
			r.Post("/setup", e.handleSetup)
			r.Post("/generate", e.handleGenerate)
			r.Post("/pages/{slug}/select", e.handleSelect)
			r.Post("/pages/{slug}/regenerate", e.handleRegenerate)
			r.Post("/pages/{slug}/sections/{sectionID}/regenerate", e.handleRegenerateSection)
			r.Post("/sandbox-errors", e.handleSandboxError)
			r.Post("/deploy", e.handleDeploy)
			r.Get("/deploy", e.handleDeployStatus)
			r.Delete("/deploy", e.handleDeployClose)
			r.Get("/usage", e.handleUsage)
		})
	})

	r.Get("/ws/sessions/{id}", e.handleWebSocket)
}

func (e *Editor) controller(r *http.Request) (*session.Controller, error) {
	return e.sessions.Get(chi.URLParam(r, "id"))
}
