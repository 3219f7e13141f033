// Package agent implements the conversation loop that drives the turn-taking
// protocol between the user, the completion gateway, and the tool registry.
//
// The loop owns the ordered message history: exactly one system message at
// index 0, then user, assistant, and tool messages appended in arrival order.
// Within one user turn it keeps calling the gateway until the model responds
// without tool calls, executing requested tools strictly sequentially in
// emission order and answering every tool call with exactly one tool message
// carrying the matching correlation ID.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/MrWong99/tinker/internal/observe"
	"github.com/MrWong99/tinker/internal/tools"
	"github.com/MrWong99/tinker/pkg/provider/llm"
)

// UI receives the user-visible events of a turn. Implementations write to the
// console; tests record calls. Methods are invoked from a single goroutine.
type UI interface {
	// Thinking signals that the loop is waiting on the completion gateway.
	Thinking()

	// AssistantSay shows assistant text to the user.
	AssistantSay(text string)

	// AssistantError shows a gateway failure as the assistant's utterance for
	// this turn. The text is not part of the conversation history.
	AssistantError(text string)

	// ToolBatchStart announces that count tool calls are about to execute.
	ToolBatchStart(count int)

	// ToolCallStart announces tool call number seq (1-based within the batch)
	// with a human-readable argument rendering.
	ToolCallStart(seq int, name, args string)

	// ToolCallError reports that tool call seq produced an error payload.
	ToolCallError(seq int, message string)
}

// Config holds the loop's fixed per-process parameters.
type Config struct {
	// SystemPrompt seeds the conversation at index 0. Must not be empty.
	SystemPrompt string

	// Temperature and MaxTokens are the fixed sampling parameters sent with
	// every completion request.
	Temperature float64
	MaxTokens   int

	// MaxToolRounds bounds gateway/tool round trips within one user turn. A
	// misbehaving model that never stops calling tools aborts the turn (not
	// the process) when the bound is hit. Must be positive.
	MaxToolRounds int
}

// Loop is the conversation state machine. It is not safe for concurrent use:
// there is exactly one logical actor, and tool side effects must not
// interleave against the linear history.
type Loop struct {
	provider llm.Provider
	registry *tools.Registry
	ui       UI
	metrics  *observe.Metrics
	cfg      Config

	// defs is the static tool schema, built once and reused for every call.
	defs []llm.ToolDefinition

	history []llm.Message
}

// New creates a Loop seeded with the system prompt.
func New(provider llm.Provider, registry *tools.Registry, ui UI, metrics *observe.Metrics, cfg Config) (*Loop, error) {
	if provider == nil {
		return nil, errors.New("agent: provider must not be nil")
	}
	if registry == nil {
		return nil, errors.New("agent: registry must not be nil")
	}
	if ui == nil {
		return nil, errors.New("agent: ui must not be nil")
	}
	if metrics == nil {
		return nil, errors.New("agent: metrics must not be nil")
	}
	if cfg.SystemPrompt == "" {
		return nil, errors.New("agent: system prompt must not be empty")
	}
	if cfg.MaxToolRounds <= 0 {
		return nil, errors.New("agent: max tool rounds must be positive")
	}

	return &Loop{
		provider: provider,
		registry: registry,
		ui:       ui,
		metrics:  metrics,
		cfg:      cfg,
		defs:     registry.Definitions(),
		history:  []llm.Message{{Role: llm.RoleSystem, Content: cfg.SystemPrompt}},
	}, nil
}

// History returns a copy of the conversation so far.
func (l *Loop) History() []llm.Message {
	out := make([]llm.Message, len(l.history))
	copy(out, l.history)
	return out
}

// RunTurn processes one user turn: it appends the user's message and drives
// the gateway/tool protocol until the model produces a final answer, the
// gateway fails, or the tool-round bound is hit. No outcome is an error to the
// caller — every failure mode is surfaced through the UI and the process keeps
// awaiting input. The returned error is reserved for context cancellation.
func (l *Loop) RunTurn(ctx context.Context, userText string) error {
	l.history = append(l.history, llm.Message{Role: llm.RoleUser, Content: userText})

	for round := 0; ; round++ {
		if round >= l.cfg.MaxToolRounds {
			l.ui.AssistantError(fmt.Sprintf("Stopped after %d tool rounds without a final answer. Giving up on this request.", l.cfg.MaxToolRounds))
			slog.Warn("tool round bound hit, aborting turn", "rounds", round)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("agent: %w", err)
		}

		l.ui.Thinking()
		start := time.Now()
		resp, err := l.provider.Complete(ctx, llm.CompletionRequest{
			Messages:    l.history,
			Tools:       l.defs,
			Temperature: l.cfg.Temperature,
			MaxTokens:   l.cfg.MaxTokens,
		})
		l.metrics.LLMDuration.Record(ctx, time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("agent: %w", ctx.Err())
			}
			// Transport/provider failure: shown as the assistant's utterance
			// for this turn, never appended to history, never retried.
			l.metrics.ProviderErrors.Add(ctx, 1)
			l.ui.AssistantError(fmt.Sprintf("LLM call failed: %v. Please check your API key configuration.", err))
			slog.Error("completion failed", "err", err)
			return nil
		}

		slog.Debug("completion received",
			"messages", len(l.history),
			"tool_calls", len(resp.ToolCalls),
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens,
		)

		// The assistant message is appended even when empty so conversation
		// indexing stays consistent.
		l.history = append(l.history, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})
		if strings.TrimSpace(resp.Content) != "" {
			l.ui.AssistantSay(resp.Content)
		}

		if len(resp.ToolCalls) == 0 {
			l.metrics.Turns.Add(ctx, 1)
			return nil
		}

		l.ui.ToolBatchStart(len(resp.ToolCalls))
		for i, tc := range resp.ToolCalls {
			l.history = append(l.history, l.executeToolCall(ctx, i+1, tc))
		}
	}
}

// executeToolCall runs one tool call and returns the tool message answering
// it. Every failure mode — unknown tool, malformed arguments, handler error —
// becomes an error payload in the message content rather than a fault; the
// batch always continues.
func (l *Loop) executeToolCall(ctx context.Context, seq int, tc llm.ToolCall) llm.Message {
	l.ui.ToolCallStart(seq, tc.Name, renderArgs(tc.Arguments))

	tool, ok := l.registry.Get(tc.Name)
	if !ok {
		msg := "Unknown tool: " + tc.Name
		l.ui.ToolCallError(seq, msg)
		l.metrics.RecordToolCall(ctx, tc.Name, "error", 0)
		return toolMessage(tc.ID, errorPayload(msg))
	}

	start := time.Now()
	out, err := tool.Handler(ctx, tc.Arguments)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		msg := "Tool execution failed: " + err.Error()
		l.ui.ToolCallError(seq, msg)
		l.metrics.RecordToolCall(ctx, tc.Name, "error", elapsed)
		slog.Debug("tool failed", "tool", tc.Name, "err", err)
		return toolMessage(tc.ID, errorPayload(msg))
	}

	l.metrics.RecordToolCall(ctx, tc.Name, "ok", elapsed)
	slog.Debug("tool executed", "tool", tc.Name, "duration_s", elapsed)
	return toolMessage(tc.ID, out)
}

// toolMessage builds the tool-role message answering the call with the given ID.
func toolMessage(callID, content string) llm.Message {
	return llm.Message{Role: llm.RoleTool, ToolCallID: callID, Content: content}
}

// errorPayload encodes a tool failure description as the JSON object placed in
// the tool message content.
func errorPayload(msg string) string {
	b, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		// map[string]string cannot fail to marshal; guard anyway.
		return `{"error":"internal encoding failure"}`
	}
	return string(b)
}

// renderArgs turns a JSON arguments string into a compact "k=v, k=v" display
// with keys sorted for stable output. Unparsable arguments are shown raw.
func renderArgs(argsJSON string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return argsJSON
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, ", ")
}
