// Package transport defines the handler contract and middleware chain that
// sit between the HTTP adapter and the orchestration engine.
//
// # Handler Interface
//
// ChatHandler runs one conversational turn. The HTTP adapter decodes the
// request body into an api.ChatRequest, invokes the (wrapped) handler and
// serializes the api.ChatResponse or error.
//
// # Middleware
//
// The middleware chain wraps ChatHandler with cross-cutting concerns. Built-in
// middleware provides panic recovery, request ID assignment (X-Request-ID)
// and structured logging via log/slog.
//
// # Errors
//
// Errors are written as flat {"error": "..."} bodies. Server-side failures
// are reported with a generic message so internal details never reach the
// client.
package transport
