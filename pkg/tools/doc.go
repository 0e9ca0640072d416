// Package tools defines the types shared by every tool the model can call:
// the invocation ([ToolCall]), its outcome ([ToolResult]), the declaration
// sent to the model ([ToolSpec]) and the typed parameter [Schema] that
// arguments are decoded against before a tool runs.
package tools
