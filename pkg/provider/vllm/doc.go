// Package vllm implements the Provider interface for vLLM servers and other
// plain OpenAI-compatible Chat Completions endpoints.
package vllm
