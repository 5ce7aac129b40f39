// Package http exposes the game service as a JSON HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/platform/errors/i18n"
	"github.com/louisbranch/killchain/internal/services/game/app"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/scoring"
)

// Handler routes the game HTTP API.
type Handler struct {
	svc *app.Service
}

// NewHandler builds the API routes over a game service.
func NewHandler(svc *app.Service) http.Handler {
	h := &Handler{svc: svc}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/sessions", h.startSession)
	mux.HandleFunc("GET /v1/sessions/{id}", h.getSession)
	mux.HandleFunc("POST /v1/sessions/{id}/phases", h.completePhase)
	mux.HandleFunc("POST /v1/sessions/{id}/actions", h.applyAction)
	mux.HandleFunc("GET /v1/sessions/{id}/scenario", h.scenario)
	mux.HandleFunc("GET /v1/sessions/{id}/events", h.listEvents)
	mux.HandleFunc("GET /v1/sessions/{id}/report", h.report)
	mux.HandleFunc("GET /v1/stories", h.listStories)
	mux.HandleFunc("GET /v1/components", h.listComponents)
	return mux
}

type startSessionRequest struct {
	StoryID      string   `json:"story_id,omitempty"`
	ComponentIDs []string `json:"component_ids,omitempty"`
	ContextHint  string   `json:"context_hint,omitempty"`
}

func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sess, err := h.svc.StartSession(r.Context(), app.StartSessionInput{
		StoryID:      req.StoryID,
		ComponentIDs: req.ComponentIDs,
		ContextHint:  req.ContextHint,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	annotateSpan(r.Context(), r.PathValue("id"))
	sess, err := h.svc.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type completePhaseRequest struct {
	Slot        int               `json:"slot"`
	ComponentID string            `json:"component_id"`
	Outcome     scoring.Outcome   `json:"outcome"`
	Context     map[string]string `json:"context,omitempty"`
}

func (h *Handler) completePhase(w http.ResponseWriter, r *http.Request) {
	var req completePhaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	annotateSpan(r.Context(), r.PathValue("id"))
	sess, err := h.svc.CompletePhase(r.Context(), app.CompletePhaseInput{
		SessionID:   r.PathValue("id"),
		Slot:        req.Slot,
		ComponentID: req.ComponentID,
		Outcome:     req.Outcome,
		Context:     req.Context,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request) {
	var req action.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	annotateSpan(r.Context(), r.PathValue("id"))
	eff, err := h.svc.ApplyAction(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, eff)
}

func (h *Handler) scenario(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Scenario(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListActions(r.Context(), r.PathValue("id"), r.URL.Query().Get("filter"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": entries})
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Report(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) listStories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"stories": h.svc.ListStories()})
}

func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"components": h.svc.ListComponents()})
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperrors.New(apperrors.CodeInvalidRequest, "request body required")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidRequest, "decode request body", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	}

	var metadata map[string]string
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		metadata = appErr.Metadata
	}
	catalog := i18n.Match(r.Header.Get("Accept-Language"))
	writeJSON(w, status, map[string]errorBody{"error": {
		Code:    string(code),
		Message: catalog.Format(string(code), metadata),
	}})
}
