package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/events"
	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/phrazzld/flashgen/internal/study"
)

const (
	// MaxInputTextLength bounds the text accepted by PUT /api/input.
	MaxInputTextLength = 100_000

	// eventBufferSize is how many pending state events a stream holds before
	// it starts dropping the oldest.
	eventBufferSize = 16

	// keepAliveInterval is how often an idle event stream sends a comment.
	keepAliveInterval = 15 * time.Second
)

// SetInputRequest is the body of PUT /api/input.
type SetInputRequest struct {
	InputText string `json:"input_text" validate:"max=100000"` // MaxInputTextLength
}

// Subscriber registers event handlers. events.InMemoryEmitter implements it.
type Subscriber interface {
	Subscribe(handler events.Handler) (unsubscribe func())
}

// StudyHandler serves the JSON study API for the caller's session.
type StudyHandler struct {
	registry   *study.Registry
	subscriber Subscriber
	logger     *slog.Logger
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(registry *study.Registry, subscriber Subscriber, logger *slog.Logger) *StudyHandler {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for StudyHandler")
	}
	if subscriber == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("subscriber cannot be nil for StudyHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}

	return &StudyHandler{
		registry:   registry,
		subscriber: subscriber,
		logger:     logger.With(slog.String("component", "study_handler")),
	}
}

// RegisterRoutes mounts the study API on r.
func (h *StudyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/state", h.GetState)
	r.Put("/input", h.SetInput)
	r.Post("/generate", h.Generate)
	r.Route("/study", func(r chi.Router) {
		r.Post("/open", h.action((*study.Store).OpenStudy))
		r.Post("/close", h.action((*study.Store).CloseStudy))
		r.Post("/next", h.action((*study.Store).NextCard))
		r.Post("/prev", h.action((*study.Store).PrevCard))
	})
	r.Post("/reset", h.action((*study.Store).Reset))
	r.Get("/events", h.StreamEvents)
}

// GetState handles GET /api/state.
func (h *StudyHandler) GetState(w http.ResponseWriter, r *http.Request) {
	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, store.Snapshot())
}

// SetInput handles PUT /api/input.
func (h *StudyHandler) SetInput(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	var req SetInputRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	store.SetInputText(r.Context(), req.InputText)
	log.Debug("input text updated", slog.Int("input_runes", len([]rune(req.InputText))))
	shared.RespondWithJSON(w, r, http.StatusOK, store.Snapshot())
}

// Generate handles POST /api/generate. It blocks until the request completes
// and returns the resulting state. The generation outlives a disconnected
// client; the store's request timeout still bounds it.
func (h *StudyHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}

	if err := store.Generate(context.WithoutCancel(r.Context())); err != nil {
		status := MapErrorToStatusCode(err)
		var opts []shared.ResponseOption
		if errors.Is(err, study.ErrSuperseded) {
			opts = append(opts, shared.WithElevatedLogLevel())
		}
		shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
		return
	}

	snap := store.Snapshot()
	log.Debug("generated flashcards", slog.Int("card_count", len(snap.Flashcards)))
	shared.RespondWithJSON(w, r, http.StatusOK, snap)
}

// action adapts a store method to a handler that returns the new state.
func (h *StudyHandler) action(apply func(*study.Store, context.Context)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := h.sessionStore(w, r)
		if !ok {
			return
		}
		apply(store, r.Context())
		shared.RespondWithJSON(w, r, http.StatusOK, store.Snapshot())
	}
}

// StreamEvents handles GET /api/events. It writes the current state, then one
// "state" event per change until the client disconnects.
func (h *StudyHandler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	store, ok := h.sessionStore(w, r)
	if !ok {
		return
	}
	sessionID, _ := shared.GetSessionID(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Streaming unsupported", errors.New("response writer does not implement http.Flusher"))
		return
	}

	updates := make(chan json.RawMessage, eventBufferSize)
	unsubscribe := h.subscriber.Subscribe(events.HandlerFunc(func(_ context.Context, event *events.Event) error {
		if event.Type != events.TypeStateChanged || event.Source != sessionID {
			return nil
		}
		offerLatest(updates, event.Payload)
		return nil
	}))
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	initial, err := json.Marshal(store.Snapshot())
	if err != nil {
		log.Error("failed to encode initial state", slog.String("error", err.Error()))
		return
	}
	if err := writeEvent(w, "state", initial); err != nil {
		return
	}
	flusher.Flush()
	log.Debug("event stream opened")

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug("event stream closed")
			return
		case payload := <-updates:
			if err := writeEvent(w, "state", payload); err != nil {
				return
			}
			flusher.Flush()
		case <-keepAlive.C:
			if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// sessionStore resolves the caller's store, writing an error response when it
// cannot.
func (h *StudyHandler) sessionStore(w http.ResponseWriter, r *http.Request) (*study.Store, bool) {
	sessionID, ok := shared.GetSessionID(r.Context())
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			GetSafeErrorMessage(study.ErrInvalidSession), study.ErrInvalidSession)
		return nil, false
	}

	store, err := h.registry.GetOrCreate(sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return nil, false
	}
	return store, true
}

// offerLatest queues payload, dropping the oldest pending payload when the
// queue is full. Each payload is a complete state, so only the newest matters.
func offerLatest(queue chan json.RawMessage, payload json.RawMessage) {
	for {
		select {
		case queue <- payload:
			return
		default:
		}
		select {
		case <-queue:
		default:
		}
	}
}

func writeEvent(w io.Writer, name string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return err
}
