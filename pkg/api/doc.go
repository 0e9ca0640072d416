// Package api defines the wire types for the sandchat service.
//
// It covers the two inbound endpoints (POST /execute and POST /chat), the
// structured side payloads a tool can attach to a chat reply (chart, diagram,
// quiz), and the error taxonomy shared by all HTTP handlers.
//
// The package performs no I/O. Error bodies on the wire are flat objects of
// the form {"error": "message"}.
//
// Core types:
//   - [ChatRequest], [ChatResponse]: one conversational turn
//   - [ExecuteRequest], [ExecuteResponse]: direct code execution
//   - [FunctionOutput]: the tool result surfaced next to a chat reply
//   - [APIError]: typed error mapped to an HTTP status by the transport layer
package api
