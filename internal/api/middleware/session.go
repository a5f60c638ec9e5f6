package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/phrazzld/flashgen/internal/api/shared"
	"github.com/phrazzld/flashgen/internal/config"
	"github.com/phrazzld/flashgen/internal/platform/logger"
)

// sessionIDValue is the key of the session id inside the cookie payload.
const sessionIDValue = "sid"

// NewCookieStore creates a signed cookie store configured from cfg.
func NewCookieStore(cfg config.SessionConfig, hashKey []byte) *sessions.CookieStore {
	store := sessions.NewCookieStore(hashKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.MaxAge,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionMiddleware assigns every browser a stable session id kept in a
// signed cookie. The id is placed in the request context with
// shared.SetSessionID.
type SessionMiddleware struct {
	store      sessions.Store
	cookieName string
}

// NewSessionMiddleware creates a SessionMiddleware backed by store.
func NewSessionMiddleware(store sessions.Store, cookieName string) *SessionMiddleware {
	return &SessionMiddleware{store: store, cookieName: cookieName}
}

// Handle wraps next with session handling.
func (m *SessionMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), nil)

		// A cookie that fails to decode yields a fresh session alongside the error.
		session, err := m.store.Get(r, m.cookieName)
		if err != nil {
			log.Debug("discarding unreadable session cookie", slog.String("error", err.Error()))
		}
		if session == nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"Failed to start session", err)
			return
		}

		sessionID, _ := session.Values[sessionIDValue].(string)
		if sessionID == "" {
			sessionID = uuid.NewString()
			session.Values[sessionIDValue] = sessionID
			if err := session.Save(r, w); err != nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Failed to start session", err)
				return
			}
			log.Debug("started new session", slog.String("session_id", sessionID))
		}

		ctx := shared.SetSessionID(r.Context(), sessionID)
		ctx = logger.WithLogger(ctx, log.With(slog.String("session_id", sessionID)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
