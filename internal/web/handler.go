// Package web serves the server-rendered study page and its form actions.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/flashgen/internal/api"
	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/redact"
	"github.com/phrazzld/flashgen/internal/study"
)

//go:embed templates/page.html
var templateFS embed.FS

// pageData is the view model rendered by page.html.
type pageData struct {
	State           study.State
	MaxInputLength  int
	HasCard         bool
	Card            domain.Flashcard
	Flipped         bool
	Position        int
	Total           int
	ProgressPercent int
	AtFirst         bool
	AtLast          bool
}

func newPageData(state study.State, flipped bool) pageData {
	data := pageData{
		State:          state,
		MaxInputLength: api.MaxInputTextLength,
	}
	data.Card, data.HasCard = state.CurrentCard()
	if data.HasCard {
		data.Flipped = flipped
		data.Position, data.Total = state.Progress()
		data.ProgressPercent = int(state.ProgressFraction() * 100)
		data.AtFirst = state.AtFirstCard()
		data.AtLast = state.AtLastCard()
	}
	return data
}

// Handler renders the study page for the caller's session.
type Handler struct {
	registry *study.Registry
	page     *template.Template
	logger   *slog.Logger
}

// NewHandler parses the embedded page template.
func NewHandler(registry *study.Registry, logger *slog.Logger) (*Handler, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Handler{
		registry: registry,
		page:     page,
		logger:   logger.With(slog.String("component", "web_handler")),
	}, nil
}

// RegisterRoutes mounts the page and form actions on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Page)
	r.Post("/input", h.SetInput)
	r.Post("/generate", h.Generate)
	r.Post("/study/open", h.action((*study.Store).OpenStudy))
	r.Post("/study/close", h.action((*study.Store).CloseStudy))
	r.Post("/study/next", h.action((*study.Store).NextCard))
	r.Post("/study/prev", h.action((*study.Store).PrevCard))
	r.Post("/reset", h.action((*study.Store).Reset))
}

// Page handles GET /. The query parameter flip=1 shows the definition side
// of the current study card.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	data := newPageData(store.Snapshot(), r.URL.Query().Get("flip") == "1")

	var buf bytes.Buffer
	if err := h.page.Execute(&buf, data); err != nil {
		log.Error("failed to render page", slog.String("error", redact.Error(err)))
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug("failed to write page", slog.String("error", err.Error()))
	}
}

// SetInput handles POST /input.
func (h *Handler) SetInput(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	text, ok := h.formInput(w, r)
	if !ok {
		return
	}
	store.SetInputText(r.Context(), text)
	redirectHome(w, r)
}

// Generate handles POST /generate. The submitted input_text, when present,
// replaces the stored text first. Outcomes are reflected in the page state,
// so every result redirects home.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	text, ok := h.formInput(w, r)
	if !ok {
		return
	}
	if _, submitted := r.PostForm["input_text"]; submitted {
		store.SetInputText(r.Context(), text)
	}

	if err := store.Generate(context.WithoutCancel(r.Context())); err != nil {
		log.Debug("generation did not produce a deck",
			slog.Int("status_code", api.MapErrorToStatusCode(err)),
			slog.String("error", redact.Error(err)))
	}
	redirectHome(w, r)
}

func (h *Handler) action(apply func(*study.Store, context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := h.sessionStore(w, r)
		if !ok {
			return
		}
		apply(store, r.Context())
		redirectHome(w, r)
	}
}

// formInput parses the form and returns input_text, rejecting oversized text.
func (h *Handler) formInput(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, shared.MaxRequestBodyBytes)
	if err := r.ParseForm(); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid form submission", err)
		return "", false
	}
	text := r.PostForm.Get("input_text")
	if len([]rune(text)) > api.MaxInputTextLength {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Input text is too long")
		return "", false
	}
	return text, true
}

func (h *Handler) sessionStore(w http.ResponseWriter, r *http.Request) (*study.Store, bool) {
	sessionID, ok := shared.GetSessionID(r.Context())
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			api.GetSafeErrorMessage(study.ErrInvalidSession), study.ErrInvalidSession)
		return nil, false
	}
	store, err := h.registry.GetOrCreate(sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, api.MapErrorToStatusCode(err), api.GetSafeErrorMessage(err), err)
		return nil, false
	}
	return store, true
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
