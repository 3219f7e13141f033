package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/MrWong99/tinker/internal/agent"
	"github.com/MrWong99/tinker/internal/observe"
	"github.com/MrWong99/tinker/internal/tools"
	"github.com/MrWong99/tinker/pkg/provider/llm"
	"github.com/MrWong99/tinker/pkg/provider/llm/mock"
)

// recordingUI captures every UI event in order for inspection.
type recordingUI struct {
	said       []string
	errs       []string
	toolStarts []string
	toolErrs   []string
	batches    []int
	thinking   int
}

func (u *recordingUI) Thinking()                       { u.thinking++ }
func (u *recordingUI) AssistantSay(text string)        { u.said = append(u.said, text) }
func (u *recordingUI) AssistantError(text string)      { u.errs = append(u.errs, text) }
func (u *recordingUI) ToolBatchStart(count int)        { u.batches = append(u.batches, count) }
func (u *recordingUI) ToolCallStart(_ int, name, args string) {
	u.toolStarts = append(u.toolStarts, name+"("+args+")")
}
func (u *recordingUI) ToolCallError(_ int, message string) {
	u.toolErrs = append(u.toolErrs, message)
}

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

// echoRegistry returns a registry with one "probe" tool that echoes its args.
func echoRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	err := r.Register(tools.Tool{
		Definition: llm.ToolDefinition{
			Name:        "probe",
			Description: "Echoes its arguments.",
			Parameters:  map[string]any{"type": "object"},
		},
		Handler: func(_ context.Context, args string) (string, error) {
			return args, nil
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return r
}

func newLoop(t *testing.T, p llm.Provider, r *tools.Registry, ui agent.UI, rounds int) *agent.Loop {
	t.Helper()
	l, err := agent.New(p, r, ui, testMetrics(t), agent.Config{
		SystemPrompt:  "You are a coding assistant.",
		Temperature:   0.1,
		MaxTokens:     2000,
		MaxToolRounds: rounds,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return l
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{}
	r := tools.NewRegistry()
	ui := &recordingUI{}
	m := testMetrics(t)

	cfg := agent.Config{SystemPrompt: "x", MaxToolRounds: 1}
	if _, err := agent.New(nil, r, ui, m, cfg); err == nil {
		t.Error("expected error for nil provider")
	}
	if _, err := agent.New(p, nil, ui, m, cfg); err == nil {
		t.Error("expected error for nil registry")
	}
	if _, err := agent.New(p, r, ui, m, agent.Config{MaxToolRounds: 1}); err == nil {
		t.Error("expected error for empty system prompt")
	}
	if _, err := agent.New(p, r, ui, m, agent.Config{SystemPrompt: "x"}); err == nil {
		t.Error("expected error for non-positive tool rounds")
	}
}

func TestRunTurn_PlainAnswer(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{Content: "Hello!"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "hi"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	h := l.History()
	if len(h) != 3 {
		t.Fatalf("expected history of 3 (system, user, assistant), got %d", len(h))
	}
	if h[0].Role != llm.RoleSystem || h[1].Role != llm.RoleUser || h[2].Role != llm.RoleAssistant {
		t.Errorf("unexpected role sequence: %s, %s, %s", h[0].Role, h[1].Role, h[2].Role)
	}
	if len(ui.said) != 1 || ui.said[0] != "Hello!" {
		t.Errorf("expected assistant text shown once, got %q", ui.said)
	}
}

// TestRunTurn_ToolScenario mirrors a full tool round trip: the model requests
// one tool, the loop answers it, and the second completion is the final text.
func TestRunTurn_ToolScenario(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "probe", Arguments: `{"path":"."}`},
		}}},
		{Resp: &llm.CompletionResponse{Content: "Here are the files"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "list files in ."); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	h := l.History()
	if len(h) != 5 {
		t.Fatalf("expected history of 5 (system, user, assistant, tool, assistant), got %d", len(h))
	}
	if h[2].Role != llm.RoleAssistant || len(h[2].ToolCalls) != 1 {
		t.Errorf("history[2] should be the assistant message carrying the tool call")
	}
	if h[3].Role != llm.RoleTool || h[3].ToolCallID != "call_1" {
		t.Errorf("history[3] should answer call_1, got role %q id %q", h[3].Role, h[3].ToolCallID)
	}
	if h[3].Content != `{"path":"."}` {
		t.Errorf("tool result content = %q", h[3].Content)
	}
	if h[4].Role != llm.RoleAssistant || h[4].Content != "Here are the files" {
		t.Errorf("history[4] should be the final answer, got %+v", h[4])
	}

	// The second completion request must already include the tool answer.
	if len(p.CompleteCalls) != 2 {
		t.Fatalf("expected 2 completion calls, got %d", len(p.CompleteCalls))
	}
	second := p.CompleteCalls[1].Req.Messages
	if second[len(second)-1].Role != llm.RoleTool {
		t.Errorf("second request should end with the tool message, got role %q", second[len(second)-1].Role)
	}

	if len(ui.said) != 1 || ui.said[0] != "Here are the files" {
		t.Errorf("expected final text shown, got %q", ui.said)
	}
	if len(ui.batches) != 1 || ui.batches[0] != 1 {
		t.Errorf("expected one batch of one tool call, got %v", ui.batches)
	}
}

func TestRunTurn_BatchAnsweredInOrder(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{ToolCalls: []llm.ToolCall{
			{ID: "call_a", Name: "probe", Arguments: `{"n":1}`},
			{ID: "call_b", Name: "probe", Arguments: `{"n":2}`},
		}}},
		{Resp: &llm.CompletionResponse{Content: "done"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "go"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	h := l.History()
	// system, user, assistant(2 calls), tool, tool, assistant
	if len(h) != 6 {
		t.Fatalf("expected history of 6, got %d", len(h))
	}
	if h[3].ToolCallID != "call_a" || h[4].ToolCallID != "call_b" {
		t.Errorf("tool answers out of order: %q then %q", h[3].ToolCallID, h[4].ToolCallID)
	}
}

func TestRunTurn_UnknownTool(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "delete_file", Arguments: `{}`},
		}}},
		{Resp: &llm.CompletionResponse{Content: "sorry"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "delete it"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	h := l.History()
	if h[3].Role != llm.RoleTool || h[3].ToolCallID != "call_1" {
		t.Fatalf("expected tool answer for call_1, got %+v", h[3])
	}
	if !strings.Contains(h[3].Content, `"error"`) || !strings.Contains(h[3].Content, "Unknown tool: delete_file") {
		t.Errorf("tool answer should carry the unknown-tool error, got %q", h[3].Content)
	}
	// The batch did not abort the turn: a second completion was issued.
	if len(p.CompleteCalls) != 2 {
		t.Errorf("expected 2 completion calls, got %d", len(p.CompleteCalls))
	}
}

func TestRunTurn_HandlerFailureBecomesPayload(t *testing.T) {
	t.Parallel()
	r := tools.NewRegistry()
	if err := r.Register(tools.Tool{
		Definition: llm.ToolDefinition{Name: "boom", Parameters: map[string]any{"type": "object"}},
		Handler: func(context.Context, string) (string, error) {
			return "", errors.New("disk on fire")
		},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{ToolCalls: []llm.ToolCall{
			{ID: "call_1", Name: "boom", Arguments: `{}`},
		}}},
		{Resp: &llm.CompletionResponse{Content: "noted"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, r, ui, 25)

	if err := l.RunTurn(context.Background(), "run boom"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	h := l.History()
	if !strings.Contains(h[3].Content, "Tool execution failed") || !strings.Contains(h[3].Content, "disk on fire") {
		t.Errorf("tool answer should describe the failure, got %q", h[3].Content)
	}
	if len(ui.toolErrs) != 1 {
		t.Errorf("expected one tool error surfaced, got %v", ui.toolErrs)
	}
}

func TestRunTurn_TransportErrorNotAppended(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Err: errors.New("connection refused")},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "hi"); err != nil {
		t.Fatalf("RunTurn should swallow transport errors: %v", err)
	}

	h := l.History()
	if len(h) != 2 {
		t.Fatalf("transport error must not append an assistant message; history = %d", len(h))
	}
	if len(ui.errs) != 1 || !strings.Contains(ui.errs[0], "connection refused") {
		t.Errorf("expected failure shown as assistant utterance, got %v", ui.errs)
	}
}

func TestRunTurn_TextBeforeToolCallsShown(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{
			Content: "Let me look around.",
			ToolCalls: []llm.ToolCall{
				{ID: "call_1", Name: "probe", Arguments: `{}`},
			},
		}},
		{Resp: &llm.CompletionResponse{Content: "All done."}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "look"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if len(ui.said) != 2 || ui.said[0] != "Let me look around." {
		t.Errorf("commentary should be shown before tool use, got %q", ui.said)
	}
	h := l.History()
	if h[2].Content != "Let me look around." || len(h[2].ToolCalls) != 1 {
		t.Errorf("assistant message must retain both text and tool calls, got %+v", h[2])
	}
}

func TestRunTurn_BlankAssistantAppendedButNotShown(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{Content: "   "}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	if err := l.RunTurn(context.Background(), "hi"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(l.History()) != 3 {
		t.Errorf("blank assistant message must still be appended")
	}
	if len(ui.said) != 0 {
		t.Errorf("blank text must not be shown, got %q", ui.said)
	}
}

func TestRunTurn_ToolRoundBoundAbortsTurn(t *testing.T) {
	t.Parallel()
	relentless := mock.Response{Resp: &llm.CompletionResponse{ToolCalls: []llm.ToolCall{
		{ID: "call_x", Name: "probe", Arguments: `{}`},
	}}}
	p := &mock.Provider{Responses: []mock.Response{relentless, relentless, relentless}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 2)

	if err := l.RunTurn(context.Background(), "loop forever"); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}

	if len(p.CompleteCalls) != 2 {
		t.Errorf("expected the bound to stop after 2 completion calls, got %d", len(p.CompleteCalls))
	}
	if len(ui.errs) != 1 || !strings.Contains(ui.errs[0], "tool rounds") {
		t.Errorf("expected an abort notice, got %v", ui.errs)
	}
	// Every requested tool call was still answered, keeping the pairing
	// invariant for the next turn.
	h := l.History()
	last := h[len(h)-1]
	if last.Role != llm.RoleTool || last.ToolCallID != "call_x" {
		t.Errorf("history must end with the answered tool call, got %+v", last)
	}
}

func TestRunTurn_CancelledContext(t *testing.T) {
	t.Parallel()
	p := &mock.Provider{Responses: []mock.Response{
		{Resp: &llm.CompletionResponse{Content: "unused"}},
	}}
	ui := &recordingUI{}
	l := newLoop(t, p, echoRegistry(t), ui, 25)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.RunTurn(ctx, "hi"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
