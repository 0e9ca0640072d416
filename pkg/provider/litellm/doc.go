// Package litellm talks to a LiteLLM proxy on behalf of the orchestration
// loop. The proxy speaks the OpenAI Chat Completions dialect, so requests
// and tool-call decoding go through openaicompat.Client; this package only
// adds the model name mapping the proxy uses to route between backends.
package litellm
