// Package events provides types and interfaces for state-change notification.
//
// The study store publishes an Event after every mutation so that presentation
// code can re-render without polling. Publishers depend only on the Emitter
// interface; InMemoryEmitter fans events out to subscribed handlers, such as
// the server-sent event stream of the HTTP API.
//
// The primary components are:
// - Event: a typed notification carrying a JSON payload and its session source
// - Handler: Interface for components that can handle events
// - Emitter: Interface for components that can emit events
package events
