// Package generation defines the boundary between the study tool and the
// external AI/LLM text-generation service.
//
// A Client sends one prompt and delivers the model output as a stream of
// chunks. Collect concatenates those chunks, in arrival order, into the full
// response text that the extractor later parses. Provider adapters (Gemini,
// OpenAI-compatible) live under internal/platform and implement Client; the
// rest of the application only sees this interface.
//
// The package also owns the prompt contract: PromptBuilder renders the fixed
// template that asks the model for a bare JSON array of term/definition
// objects.
package generation
