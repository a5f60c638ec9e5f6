// Package gemini provides an implementation of the generation.Client interface
// that streams responses from Google's Gemini API.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's study logic to Google's external Gemini AI service
// without exposing the details of the external service to the core application.
//
// Every text part of every streamed response is forwarded to the caller's
// chunk handler in arrival order. Transport and service failures are wrapped
// in a generation.RequestError; a response stopped by the safety filters
// becomes generation.ErrContentBlocked. Requests are never retried.
//
// The package depends on Google's google.golang.org/genai client library for
// communicating with the Gemini API.
package gemini
