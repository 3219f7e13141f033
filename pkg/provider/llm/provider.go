// Package llm defines the Provider interface for Large Language Model backends.
//
// A provider wraps a remote or local model API (e.g., OpenAI, Anthropic Claude,
// or a local Ollama instance) and exposes a uniform completion interface so the
// conversation loop never couples to a specific SDK. Responses are decoded once
// at the provider boundary into a [CompletionResponse] carrying text content
// and an ordered list of tool calls; transport or provider failures surface as
// plain Go errors.
package llm

import "context"

// CompletionRequest carries everything the LLM needs to produce a response.
// Messages must be non-empty and include the system message at index 0.
type CompletionRequest struct {
	// Messages is the ordered conversation history: system, user, assistant,
	// and tool messages accumulated so far.
	Messages []Message

	// Tools is the static set of tool definitions offered to the model. The
	// model may request one or more of them in its response.
	Tools []ToolDefinition

	// Temperature controls output randomness in the range [0.0, 2.0].
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// CompletionResponse is the decoded result of one completion call.
type CompletionResponse struct {
	// Content is the text of the assistant's reply. Empty when the model
	// responds exclusively with tool calls.
	Content string

	// ToolCalls lists the tool invocations requested by the model, in emission
	// order. The caller is responsible for executing them and appending the
	// results to the conversation.
	ToolCalls []ToolCall

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// Returns an error if the request cannot be sent, the provider rejects it,
	// or ctx is cancelled before the completion arrives.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
