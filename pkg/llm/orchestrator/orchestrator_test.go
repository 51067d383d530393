package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-botbuilder-be/pkg/llm"
)

// scriptedProvider returns one scripted outcome per attempt, recording the
// model each attempt asked for.
type scriptedProvider struct {
	outcomes []outcome
	models   []string
	calls    int
}

type outcome struct {
	response string
	err      error
	hang     bool // block until the attempt context expires
}

func (p *scriptedProvider) Chat(ctx context.Context, _ []llm.Message, opts ...llm.Option) (string, error) {
	options := &llm.Options{}
	for _, o := range opts {
		o(options)
	}
	p.models = append(p.models, options.Model)

	idx := p.calls
	p.calls++
	if idx >= len(p.outcomes) {
		return "", errors.New("scripted provider exhausted")
	}
	o := p.outcomes[idx]
	if o.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return o.response, o.err
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

func testTiers() []Tier {
	return []Tier{
		{Model: "big", MaxTokens: 8192, Timeout: 50 * time.Millisecond},
		{Model: "mid", MaxTokens: 4096, Timeout: 50 * time.Millisecond},
		{Model: "small", MaxTokens: 2048, Timeout: 50 * time.Millisecond},
	}
}

func TestCallFirstTierSuccess(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{{response: "ok"}}}
	o := New(p, testTiers(), nil)

	got, err := o.Call(context.Background(), "prompt", "system")
	if err != nil || got != "ok" {
		t.Fatalf("Call = %q, %v", got, err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1", p.calls)
	}
}

func TestCallEscalatesOnTimeout(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{
		{hang: true},
		{hang: true},
		{response: "late but fine"},
	}}
	o := New(p, testTiers(), nil)

	got, err := o.Call(context.Background(), "prompt", "")
	if err != nil || got != "late but fine" {
		t.Fatalf("Call = %q, %v", got, err)
	}
	if len(p.models) != 3 || p.models[0] != "big" || p.models[2] != "small" {
		t.Errorf("models tried = %v, want strict declared order", p.models)
	}
}

func TestCallEscalatesOnStatusError(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{
		{err: &llm.StatusError{Status: 500, Body: "boom"}},
		{response: "recovered"},
	}}
	o := New(p, testTiers(), nil)

	got, err := o.Call(context.Background(), "prompt", "")
	if err != nil || got != "recovered" {
		t.Fatalf("Call = %q, %v", got, err)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestCallRateLimitShortCircuits(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{
		{err: &llm.RateLimitError{RetryAfter: 42 * time.Second}},
		{response: "must never be reached"},
	}}
	o := New(p, testTiers(), nil)

	_, err := o.Call(context.Background(), "prompt", "")
	var rateErr *llm.RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want rate-limit signal", err)
	}
	if rateErr.RetryAfter != 42*time.Second {
		t.Errorf("RetryAfter = %s", rateErr.RetryAfter)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, rate limit must not trigger attempt 2", p.calls)
	}
}

func TestCallAuthErrorShortCircuits(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{
		{err: &llm.AuthError{Status: 401, Body: "bad key"}},
	}}
	o := New(p, testTiers(), nil)

	_, err := o.Call(context.Background(), "prompt", "")
	var authErr *llm.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want auth signal", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, auth failure must not be retried", p.calls)
	}
}

func TestCallExhaustionTerminates(t *testing.T) {
	p := &scriptedProvider{outcomes: []outcome{
		{hang: true},
		{err: &llm.StatusError{Status: 503, Body: "unavailable"}},
		{hang: true},
	}}
	o := New(p, testTiers(), nil)

	_, err := o.Call(context.Background(), "prompt", "")
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, the loop must terminate after the declared tiers", p.calls)
	}
}

func TestCallRespectsCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &scriptedProvider{outcomes: []outcome{{response: "never"}}}
	o := New(p, testTiers(), nil)

	_, err := o.Call(ctx, "prompt", "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if p.calls != 0 {
		t.Errorf("calls = %d, a canceled caller must not start attempts", p.calls)
	}
}

func TestCallSystemInstructionsPrecedeTheUserTurn(t *testing.T) {
	var seen []llm.Message
	p := &recordingProvider{record: func(h []llm.Message) { seen = h }}
	o := New(p, testTiers()[:1], nil)

	if _, err := o.Call(context.Background(), "do it", "you are a table fixer"); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(seen) != 2 || seen[0].Role != "system" || seen[1].Role != "user" {
		t.Errorf("history = %+v", seen)
	}
}

type recordingProvider struct {
	record func([]llm.Message)
}

func (p *recordingProvider) Chat(_ context.Context, h []llm.Message, _ ...llm.Option) (string, error) {
	p.record(h)
	return "ok", nil
}

func (p *recordingProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
