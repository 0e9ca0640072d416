// Package engine implements the orchestration loop for chat requests. The
// Engine implements transport.ChatHandler: it sends the conversation to the
// model service, dispatches any tool calls through the tool registry in the
// order the model emitted them, feeds the results back and returns the final
// reply together with the last tool output.
package engine
