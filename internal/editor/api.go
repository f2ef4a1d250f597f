package editor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/instasite/internal/generator"
	"github.com/ziadkadry99/instasite/internal/ledger"
	"github.com/ziadkadry99/instasite/internal/logging"
	"github.com/ziadkadry99/instasite/internal/sandbox"
	"github.com/ziadkadry99/instasite/internal/session"
)

const (
	maxParamsBody = 64 << 10
	maxReportBody = 16 << 10
)

type errorResponse struct {
	Error string `json:"error"`
}

type fragmentResponse struct {
	Slug      string `json:"slug"`
	SectionID string `json:"section_id"`
	Fragment  string `json:"fragment"`
}

type sandboxReport struct {
	Slug    string `json:"slug"`
	Version string `json:"version"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type reportResponse struct {
	Recorded bool `json:"recorded"`
}

type usageResponse struct {
	Entries []usageEntry `json:"entries"`
	CostUSD float64      `json:"cost_usd"`
}

type usageEntry struct {
	Kind         ledger.Kind `json:"kind"`
	Target       string      `json:"target,omitempty"`
	Model        string      `json:"model"`
	InputTokens  int         `json:"input_tokens"`
	OutputTokens int         `json:"output_tokens"`
	CostUSD      float64     `json:"cost_usd"`
	DurationMS   int64       `json:"duration_ms"`
	Error        string      `json:"error,omitempty"`
}

func (e *Editor) handleCreate(w http.ResponseWriter, r *http.Request) {
	c := e.sessions.Create()
	writeJSON(w, http.StatusCreated, c.Snapshot())
}

func (e *Editor) handleGet(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (e *Editor) handleSetup(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := c.StartSetup(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (e *Editor) handleGenerate(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var p generator.Params
	if err := decodeBody(w, r, maxParamsBody, &p); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := c.GenerateAsync(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c.Snapshot())
}

func (e *Editor) handleSelect(w http.ResponseWriter, r *http.Request) {
	e.pageAction(w, r, (*session.Controller).SelectPageAsync)
}

func (e *Editor) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	e.pageAction(w, r, (*session.Controller).RegeneratePageAsync)
}

func (e *Editor) pageAction(w http.ResponseWriter, r *http.Request, action func(*session.Controller, context.Context, string) error) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := action(c, r.Context(), chi.URLParam(r, "slug")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, c.Snapshot())
}

func (e *Editor) handleRegenerateSection(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	slug, sectionID := chi.URLParam(r, "slug"), chi.URLParam(r, "sectionID")
	fragment, err := c.RegenerateSection(r.Context(), slug, sectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fragmentResponse{Slug: slug, SectionID: sectionID, Fragment: fragment})
}

func (e *Editor) handleSandboxError(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var rep sandboxReport
	if err := decodeBody(w, r, maxReportBody, &rep); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	re, err := sandbox.NewRenderError(rep.Slug, rep.Version, rep.Kind, rep.Message)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
		return
	}

	recorded := c.ReportSandboxError(re)
	if !recorded {
		logging.FromContext(r.Context()).Debug("ignoring stale sandbox report",
			zap.String("slug", re.Slug),
			zap.String("version", re.Version),
		)
	}
	writeJSON(w, http.StatusAccepted, reportResponse{Recorded: recorded})
}

func (e *Editor) handleDeploy(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := c.Deploy()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, st)
}

func (e *Editor) handleDeployStatus(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c.DeployStatus())
}

func (e *Editor) handleDeployClose(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}
	c.CloseDeploy()
	w.WriteHeader(http.StatusNoContent)
}

func (e *Editor) handleUsage(w http.ResponseWriter, r *http.Request) {
	c, err := e.controller(r)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := usageResponse{Entries: []usageEntry{}}
	if e.usage != nil {
		entries, err := e.usage.ForSession(r.Context(), c.ID())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
			return
		}
		for _, en := range entries {
			resp.Entries = append(resp.Entries, usageEntry{
				Kind:         en.Kind,
				Target:       en.Target,
				Model:        en.Model,
				InputTokens:  en.InputTokens,
				OutputTokens: en.OutputTokens,
				CostUSD:      en.CostUSD,
				DurationMS:   en.Duration.Milliseconds(),
				Error:        en.Error,
			})
			resp.CostUSD += en.CostUSD
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound), generator.IsNotFound(err):
		return http.StatusNotFound
	case session.IsConflict(err),
		errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrNoBlueprint):
		return http.StatusConflict
	case errors.Is(err, generator.ErrInvalidParams):
		return http.StatusUnprocessableEntity
	case generator.IsGenerationError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
