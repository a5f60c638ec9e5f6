package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/flashgen/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// requestWithLogger returns a request whose context carries a trace id and a
// text logger writing to buf.
func requestWithLogger(buf *strings.Builder) *http.Request {
	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.WithValue(context.Background(), TraceIDKey, "test-trace-id")
	ctx = logger.WithLogger(ctx, log)
	return httptest.NewRequest(http.MethodGet, "/test", nil).WithContext(ctx)
}

func TestRespondWithJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{"is_loading": false, "count": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"is_loading":false,"count":2}`, w.Body.String())
}

func TestRespondWithJSONEncodingError(t *testing.T) {
	var logBuf strings.Builder
	req := requestWithLogger(&logBuf)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, make(chan int))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, logBuf.String(), "failed to encode JSON response")
}

func TestRespondWithError(t *testing.T) {
	var logBuf strings.Builder
	req := requestWithLogger(&logBuf)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Invalid request", response.Error)
	assert.Equal(t, "test-trace-id", response.TraceID)
}

func TestRespondWithErrorNoTraceID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Not found")

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Not found", response.Error)
	assert.Empty(t, response.TraceID)
	assert.NotContains(t, w.Body.String(), "trace_id")
}

func TestRespondWithErrorAndLog(t *testing.T) {
	tests := []struct {
		name             string
		statusCode       int
		message          string
		err              error
		expectedLogLevel string
		elevateLogLevel  bool
	}{
		{
			name:             "bad gateway",
			statusCode:       http.StatusBadGateway,
			message:          "Failed to generate flashcards.",
			err:              errors.New("gemini: upstream failed"),
			expectedLogLevel: "ERROR",
		},
		{
			name:             "client error with default log level",
			statusCode:       http.StatusBadRequest,
			message:          "Bad request",
			err:              errors.New("invalid input"),
			expectedLogLevel: "DEBUG",
		},
		{
			name:             "client error with elevated log level",
			statusCode:       http.StatusConflict,
			message:          "Superseded",
			err:              errors.New("superseded"),
			expectedLogLevel: "WARN",
			elevateLogLevel:  true,
		},
		{
			name:             "rate limiting error",
			statusCode:       http.StatusTooManyRequests,
			message:          "Too many requests",
			err:              errors.New("rate limit exceeded"),
			expectedLogLevel: "WARN",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var logBuf strings.Builder
			req := requestWithLogger(&logBuf)
			w := httptest.NewRecorder()

			var opts []ResponseOption
			if tc.elevateLogLevel {
				opts = append(opts, WithElevatedLogLevel())
			}
			RespondWithErrorAndLog(w, req, tc.statusCode, tc.message, tc.err, opts...)

			assert.Equal(t, tc.statusCode, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tc.message, response.Error)
			assert.Equal(t, "test-trace-id", response.TraceID)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, "level="+tc.expectedLogLevel)
			assert.Contains(t, logOutput, "trace_id=test-trace-id")
			assert.Contains(t, logOutput, "error_type=")
		})
	}
}

func TestRespondWithErrorAndLogRedactsSecrets(t *testing.T) {
	var logBuf strings.Builder
	req := requestWithLogger(&logBuf)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, req, http.StatusBadGateway, "Generation failed",
		errors.New("request failed: api_key=abcdef1234567890"))

	assert.NotContains(t, logBuf.String(), "abcdef1234567890")
	assert.NotContains(t, w.Body.String(), "api_key")
	assert.Contains(t, logBuf.String(), "[REDACTED_KEY]")
}
