// Package api exposes the study store over JSON.
//
// StudyHandler resolves the caller's store from the session id placed in the
// request context by the session middleware, applies one store action per
// request and replies with the resulting snapshot. GET /api/events streams
// every later snapshot of the same session as server-sent events.
//
// MapErrorToStatusCode and GetSafeErrorMessage translate domain, generation
// and extraction errors into HTTP statuses and fixed user-facing messages so
// raw model output and provider errors never reach clients.
package api
