// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify that the conversation loop sends correct
// CompletionRequests and to feed controlled responses without a live LLM
// backend. Because the loop may call Complete several times within one user
// turn (once per tool round), responses are scripted as an ordered queue.
//
// Example:
//
//	p := &mock.Provider{
//	    Responses: []mock.Response{
//	        {Resp: &llm.CompletionResponse{Content: "Hello!"}},
//	    },
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/MrWong99/tinker/pkg/provider/llm"
)

// Response is one scripted outcome for a Complete call: either a decoded
// completion or an injected error.
type Response struct {
	// Resp is returned when Err is nil.
	Resp *llm.CompletionResponse

	// Err, if non-nil, is returned instead of Resp.
	Err error
}

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context

	// Req is the CompletionRequest passed to Complete. The Messages slice is
	// copied at call time so later history growth does not alter the record.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider. Successive Complete calls
// consume Responses in order; calling past the end of the script returns an
// error so tests fail loudly instead of looping forever.
type Provider struct {
	mu sync.Mutex

	// Responses is the ordered script of outcomes, one per Complete call.
	Responses []Response

	// CompleteCalls records every invocation of Complete in order.
	CompleteCalls []CompleteCall

	next int
}

// Complete records the call and returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	recorded := req
	recorded.Messages = make([]llm.Message, len(req.Messages))
	copy(recorded.Messages, req.Messages)
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: recorded})

	if p.next >= len(p.Responses) {
		return nil, fmt.Errorf("mock: unscripted Complete call %d (only %d responses scripted)", p.next+1, len(p.Responses))
	}
	r := p.Responses[p.next]
	p.next++
	return r.Resp, r.Err
}

// Reset clears recorded calls and rewinds the response script. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = nil
	p.next = 0
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
