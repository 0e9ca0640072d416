// Package openaicompat provides shared translation code for any
// OpenAI-compatible Chat Completions backend. It handles request
// serialization, response parsing and error mapping.
//
// Provider adapters (vLLM, LiteLLM) embed the Client from this package and
// delegate their Complete calls to it.
package openaicompat
