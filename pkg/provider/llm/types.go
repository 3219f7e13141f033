package llm

// Role values used in conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a single turn in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string

	// Content is the text content of the message. May be empty for assistant
	// messages that carry only tool calls.
	Content string

	// ToolCalls contains any tool invocations requested by the assistant,
	// in the order the model emitted them.
	ToolCalls []ToolCall

	// ToolCallID is set when Role is "tool", identifying which tool call this
	// message answers. Every ToolCall in an assistant message must be answered
	// by exactly one subsequent tool message with a matching ToolCallID before
	// the next completion request is issued.
	ToolCallID string
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	// ID is the opaque correlation token assigned by the provider.
	ID string

	// Name is the tool name. It should match a registered tool; unknown names
	// are answered with an error payload rather than rejected.
	Name string

	// Arguments is the JSON-encoded arguments object string.
	Arguments string
}

// ToolDefinition describes a tool offered to the LLM via the function-calling
// convention. Definitions are static for the process lifetime.
type ToolDefinition struct {
	// Name is the tool's unique identifier.
	Name string

	// Description explains what the tool does (included in LLM prompts).
	Description string

	// Parameters is the JSON Schema describing the tool's argument object:
	// {"type": "object", "properties": {...}, "required": [...]}.
	Parameters map[string]any
}

// Usage holds token accounting returned by the LLM backend.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the input messages.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens.
	TotalTokens int
}
