// Package openai provides an implementation of the generation.Client interface
// backed by the OpenAI chat completions streaming API.
//
// Any server that speaks the same protocol (a local model gateway, for
// example) can be used by setting llm.openai_base_url.
package openai
