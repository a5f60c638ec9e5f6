package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/flashgen/internal/domain"
	"github.com/phrazzld/flashgen/internal/events"
	"github.com/phrazzld/flashgen/internal/extract"
	"github.com/phrazzld/flashgen/internal/generation"
	"github.com/phrazzld/flashgen/internal/redact"
)

// responseExcerptRunes bounds how much model output is logged on failure.
const responseExcerptRunes = 200

// Option configures a Store.
type Option func(*Store)

// WithExtractor replaces the default JSON extractor.
func WithExtractor(x extract.Extractor) Option {
	return func(s *Store) { s.extractor = x }
}

// WithPromptBuilder replaces the built-in prompt template.
func WithPromptBuilder(b *generation.PromptBuilder) Option {
	return func(s *Store) { s.prompts = b }
}

// WithEmitter publishes a TypeStateChanged event after every mutation.
// Events are delivered in mutation order, so handlers must not call the
// store's mutating methods.
func WithEmitter(e events.Emitter) Option {
	return func(s *Store) { s.emitter = e }
}

// WithRequestTimeout bounds each generation request. Zero means no bound
// beyond the caller's context.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// WithSource sets the event source, normally the session id.
func WithSource(source string) Option {
	return func(s *Store) { s.source = source }
}

// WithClock overrides time.Now for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the study state of a single session. It is safe for concurrent use.
type Store struct {
	// pubMu is taken before mu and held until the resulting event has been
	// emitted.
	pubMu sync.Mutex
	mu    sync.Mutex
	state State

	// request tracks the in-flight generation; uuid.Nil when idle.
	request uuid.UUID
	cancel  context.CancelFunc

	lastActive time.Time

	client    generation.Client
	prompts   *generation.PromptBuilder
	extractor extract.Extractor
	emitter   events.Emitter
	logger    *slog.Logger
	timeout   time.Duration
	source    string
	now       func() time.Time
}

// NewStore creates a Store in the initial state.
func NewStore(client generation.Client, logger *slog.Logger, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("generation client cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	s := &Store{
		state:   InitialState(),
		client:  client,
		emitter: events.Discard,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.extractor == nil {
		s.extractor = extract.New()
	}
	if s.prompts == nil {
		s.prompts = generation.MustDefaultPromptBuilder()
	}
	s.logger = logger.With(slog.String("component", "study_store"))
	if s.source != "" {
		s.logger = s.logger.With(slog.String("session_id", s.source))
	}
	s.lastActive = s.now()

	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// CurrentCard returns the card under the study cursor, if study mode is open.
func (s *Store) CurrentCard() (domain.Flashcard, bool) {
	return s.Snapshot().CurrentCard()
}

// Progress returns the 1-based cursor position and the deck size.
func (s *Store) Progress() (position, total int) {
	return s.Snapshot().Progress()
}

// LastActive returns when an action was last applied to the store.
func (s *Store) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// SetInputText replaces the input text.
func (s *Store) SetInputText(ctx context.Context, text string) {
	s.update(ctx, func(st *State) {
		st.InputText = text
	})
}

// OpenStudy enters study mode at the first card. It does nothing when the
// deck is empty.
func (s *Store) OpenStudy(ctx context.Context) {
	s.update(ctx, func(st *State) {
		if len(st.Flashcards) == 0 {
			return
		}
		st.StudyMode = StudyMode{IsOpen: true, CurrentIndex: 0}
	})
}

// CloseStudy leaves study mode. The cursor is kept.
func (s *Store) CloseStudy(ctx context.Context) {
	s.update(ctx, func(st *State) {
		st.StudyMode.IsOpen = false
	})
}

// NextCard advances the cursor, stopping at the last card.
func (s *Store) NextCard(ctx context.Context) {
	s.update(ctx, func(st *State) {
		if !st.StudyMode.IsOpen {
			return
		}
		st.StudyMode.CurrentIndex = min(len(st.Flashcards)-1, st.StudyMode.CurrentIndex+1)
	})
}

// PrevCard moves the cursor back, stopping at the first card.
func (s *Store) PrevCard(ctx context.Context) {
	s.update(ctx, func(st *State) {
		if !st.StudyMode.IsOpen {
			return
		}
		st.StudyMode.CurrentIndex = max(0, st.StudyMode.CurrentIndex-1)
	})
}

// Reset restores the initial state and abandons any in-flight generation.
func (s *Store) Reset(ctx context.Context) {
	s.update(ctx, func(st *State) {
		s.supersedeLocked()
		*st = InitialState()
	})
}

// touch records activity without publishing an event.
func (s *Store) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = s.now()
}

// Close abandons any in-flight generation without touching the state.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

// Generate asks the generation client for flashcards from the current input
// text.
//
// Blank input sets MsgEmptyInput and returns a *domain.ValidationError
// without sending a request. Otherwise the deck, error and study mode are
// cleared and the store is marked loading while the request runs without the
// lock held. On success the deck is replaced and the input text cleared. On
// failure the deck stays empty, Error is set to MsgGenerationFailed and the
// returned error matches ErrGenerationFailed and its cause.
//
// If a later Generate or Reset runs before this request completes, the result
// is discarded and ErrSuperseded is returned.
func (s *Store) Generate(ctx context.Context) error {
	s.pubMu.Lock()
	s.mu.Lock()
	s.lastActive = s.now()
	s.supersedeLocked()

	if domain.IsBlank(s.state.InputText) {
		s.state.Error = MsgEmptyInput
		s.state.IsLoading = false
		snap := s.state.Clone()
		s.mu.Unlock()

		s.publish(ctx, snap)
		s.pubMu.Unlock()
		return domain.NewValidationError("input_text", "cannot be empty", domain.ErrEmptyContent)
	}

	token := uuid.New()
	reqCtx, cancel := s.requestContext(ctx)
	s.request = token
	s.cancel = cancel

	input := s.state.InputText
	s.state.Error = ""
	s.state.Flashcards = []domain.Flashcard{}
	s.state.StudyMode = StudyMode{}
	s.state.IsLoading = true
	snap := s.state.Clone()
	s.mu.Unlock()

	s.publish(ctx, snap)
	s.pubMu.Unlock()

	log := s.logger.With(slog.String("request_id", token.String()))
	log.DebugContext(ctx, "starting flashcard generation", slog.Int("input_runes", len([]rune(input))))

	cards, raw, genErr := s.run(reqCtx, input)
	cancel()

	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.mu.Lock()
	if s.request != token {
		s.mu.Unlock()
		log.InfoContext(ctx, "discarding superseded generation result")
		return ErrSuperseded
	}
	s.request = uuid.Nil
	s.cancel = nil
	s.lastActive = s.now()
	s.state.IsLoading = false
	if genErr != nil {
		s.state.Flashcards = []domain.Flashcard{}
		s.state.Error = MsgGenerationFailed
	} else {
		s.state.Flashcards = cards
		s.state.InputText = ""
	}
	snap = s.state.Clone()
	s.mu.Unlock()

	if genErr != nil {
		attrs := []any{slog.String("error", redact.Error(genErr))}
		if raw != "" {
			attrs = append(attrs, slog.String("response_excerpt", redact.Excerpt(raw, responseExcerptRunes)))
		}
		log.ErrorContext(ctx, "flashcard generation failed", attrs...)
	} else {
		log.InfoContext(ctx, "flashcard generation succeeded", slog.Int("card_count", len(cards)))
	}

	s.publish(ctx, snap)

	if genErr != nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, genErr)
	}
	return nil
}

// run sends the prompt and extracts the deck. raw is the accumulated
// response, empty when the request itself failed.
func (s *Store) run(ctx context.Context, input string) (cards []domain.Flashcard, raw string, err error) {
	prompt, err := s.prompts.Build(input)
	if err != nil {
		return nil, "", err
	}

	raw, err = generation.Collect(ctx, s.client, prompt)
	if err != nil {
		var reqErr *generation.RequestError
		if !errors.As(err, &reqErr) {
			err = generation.NewRequestError("", err)
		}
		return nil, "", err
	}

	cards, err = s.extractor.Extract(raw)
	if err != nil {
		return nil, raw, err
	}
	return cards, raw, nil
}

func (s *Store) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

// supersedeLocked cancels the in-flight request, if any. s.mu must be held.
func (s *Store) supersedeLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.request = uuid.Nil
	s.cancel = nil
}

// update applies fn under the lock and publishes the resulting state.
func (s *Store) update(ctx context.Context, fn func(*State)) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()

	s.mu.Lock()
	s.lastActive = s.now()
	fn(&s.state)
	snap := s.state.Clone()
	s.mu.Unlock()

	s.publish(ctx, snap)
}

func (s *Store) publish(ctx context.Context, snap State) {
	event, err := events.NewEvent(events.TypeStateChanged, s.source, snap)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build state change event", slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "state change handler failed", slog.String("error", redact.Error(err)))
	}
}
