package anyllm

import (
	"strings"
	"testing"

	"github.com/MrWong99/tinker/pkg/provider/llm"
)

// ── New ───────────────────────────────────────────────────────────────────────

func TestNew_EmptyProviderName(t *testing.T) {
	t.Parallel()
	if _, err := New("", "gpt-4o"); err == nil {
		t.Fatal("expected error for empty provider name, got nil")
	}
}

func TestNew_EmptyModel(t *testing.T) {
	t.Parallel()
	if _, err := New("openai", ""); err == nil {
		t.Fatal("expected error for empty model, got nil")
	}
}

func TestNew_UnsupportedProvider(t *testing.T) {
	t.Parallel()
	_, err := New("litellm", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for unsupported provider, got nil")
	}
	if !strings.Contains(err.Error(), "litellm") {
		t.Errorf("error should name the unsupported provider, got: %v", err)
	}
}

// ── convertMessage ────────────────────────────────────────────────────────────

func TestConvertMessage_System(t *testing.T) {
	t.Parallel()
	m := llm.Message{Role: "system", Content: "You are a coding assistant."}
	got := convertMessage(m)
	if got.Role != "system" {
		t.Errorf("expected role system, got %q", got.Role)
	}
	if got.ContentString() != "You are a coding assistant." {
		t.Errorf("unexpected content: %q", got.ContentString())
	}
}

func TestConvertMessage_AssistantWithToolCalls(t *testing.T) {
	t.Parallel()
	m := llm.Message{
		Role:    "assistant",
		Content: "Let me check.",
		ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "read_file", Arguments: `{"filename":"main.go"}`},
		},
	}
	got := convertMessage(m)
	if got.ContentString() != "Let me check." {
		t.Errorf("unexpected content: %q", got.ContentString())
	}
	if len(got.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(got.ToolCalls))
	}
	tc := got.ToolCalls[0]
	if tc.ID != "call_1" {
		t.Errorf("expected ID call_1, got %q", tc.ID)
	}
	if tc.Type != "function" {
		t.Errorf("expected type function, got %q", tc.Type)
	}
	if tc.Function.Name != "read_file" {
		t.Errorf("expected function name read_file, got %q", tc.Function.Name)
	}
	if tc.Function.Arguments != `{"filename":"main.go"}` {
		t.Errorf("unexpected arguments: %q", tc.Function.Arguments)
	}
}

func TestConvertMessage_ToolResult(t *testing.T) {
	t.Parallel()
	m := llm.Message{Role: "tool", Content: `{"path":"main.go","action":"edited"}`, ToolCallID: "call_1"}
	got := convertMessage(m)
	if got.Role != "tool" {
		t.Errorf("expected role tool, got %q", got.Role)
	}
	if got.ToolCallID != "call_1" {
		t.Errorf("expected ToolCallID call_1, got %q", got.ToolCallID)
	}
}

// ── buildParams ───────────────────────────────────────────────────────────────

func TestBuildParams_SamplingAndTools(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "gpt-4o"}
	req := llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: "hi"}},
		Temperature: 0.1,
		MaxTokens:   2000,
		Tools: []llm.ToolDefinition{
			{
				Name:        "list_files",
				Description: "Lists the files in a directory.",
				Parameters:  map[string]any{"type": "object"},
			},
		},
	}

	params := p.buildParams(req)

	if params.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %q", params.Model)
	}
	if params.Temperature == nil || *params.Temperature != 0.1 {
		t.Errorf("expected temperature 0.1, got %v", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 2000 {
		t.Errorf("expected max tokens 2000, got %v", params.MaxTokens)
	}
	if len(params.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(params.Tools))
	}
	if params.Tools[0].Type != "function" {
		t.Errorf("expected tool type function, got %q", params.Tools[0].Type)
	}
	if params.Tools[0].Function.Name != "list_files" {
		t.Errorf("expected tool name list_files, got %q", params.Tools[0].Function.Name)
	}
}

func TestBuildParams_ZeroSamplingOmitted(t *testing.T) {
	t.Parallel()
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "hi"}},
	})
	if params.Temperature != nil {
		t.Errorf("expected nil temperature, got %v", *params.Temperature)
	}
	if params.MaxTokens != nil {
		t.Errorf("expected nil max tokens, got %v", *params.MaxTokens)
	}
}
