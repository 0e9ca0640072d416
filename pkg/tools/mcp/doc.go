// Package mcp exposes the registered tools over the Model Context Protocol.
//
// Every tool in the registry is published on an MCP server built with the
// official Go SDK (github.com/modelcontextprotocol/go-sdk). Calls are routed
// through the same dispatch path as the chat engine, so sandbox policy,
// argument validation and metrics apply unchanged. The server is served over
// streamable HTTP, by default on /mcp.
package mcp
