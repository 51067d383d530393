package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ai-botbuilder-be/pkg/llm"
)

// Tier is one entry of the escalation table: which model to ask, how many
// tokens to allow it, and how long to wait for it. Earlier tiers prefer
// quality and patience; later tiers trade both for latency once time has
// already been spent.
type Tier struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// DefaultTiers builds the standard three-step escalation table.
func DefaultTiers(primary, fallback, fast string) []Tier {
	return []Tier{
		{Model: primary, MaxTokens: 8192, Timeout: 120 * time.Second},
		{Model: fallback, MaxTokens: 4096, Timeout: 60 * time.Second},
		{Model: fast, MaxTokens: 2048, Timeout: 30 * time.Second},
	}
}

// ExhaustedError is raised when every tier has been tried without success.
// It carries the last recorded failure.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Orchestrator drives a generation provider through the escalation table.
// Tiers are tried strictly in declared order, one at a time; there is no
// speculative parallel execution.
type Orchestrator struct {
	provider llm.LLMProvider
	tiers    []Tier
	logger   *log.Logger
}

func New(provider llm.LLMProvider, tiers []Tier, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		provider: provider,
		tiers:    tiers,
		logger:   logger,
	}
}

// Tiers returns the escalation table (read-only by convention).
func (o *Orchestrator) Tiers() []Tier { return o.tiers }

// Call runs one generation request through the tier loop.
//
// Classification per attempt:
//   - success: normalize and return, regardless of which tier answered
//   - rate limit: stop immediately, propagate the typed signal
//   - auth failure: stop immediately, propagate the typed signal
//   - timeout: abandon the attempt and move to the next tier
//   - any other failure: record it and move to the next tier
//
// Exhausting the table yields an ExhaustedError carrying the last failure.
func (o *Orchestrator) Call(ctx context.Context, prompt, systemInstructions string) (string, error) {
	if len(o.tiers) == 0 {
		return "", errors.New("orchestrator has no tiers configured")
	}

	history := buildHistory(prompt, systemInstructions)

	var lastErr error
	for i, tier := range o.tiers {
		// Respect a caller that already gave up.
		if err := ctx.Err(); err != nil {
			return "", err
		}

		attemptCtx, cancel := context.WithTimeout(ctx, tier.Timeout)
		started := time.Now()
		resp, err := o.provider.Chat(attemptCtx, history,
			llm.WithModel(tier.Model),
			llm.WithMaxTokens(tier.MaxTokens),
		)
		cancel()

		if err == nil {
			o.logger.Printf("[orchestrator] attempt %d/%d succeeded (model=%s, took=%s)",
				i+1, len(o.tiers), tier.Model, time.Since(started).Round(time.Millisecond))
			return resp, nil
		}

		var rateErr *llm.RateLimitError
		if errors.As(err, &rateErr) {
			o.logger.Printf("[orchestrator] attempt %d/%d rate limited (model=%s, retry_after=%s)",
				i+1, len(o.tiers), tier.Model, rateErr.RetryAfter)
			return "", err
		}

		var authErr *llm.AuthError
		if errors.As(err, &authErr) {
			o.logger.Printf("[orchestrator] attempt %d/%d auth failure (model=%s, status=%d)",
				i+1, len(o.tiers), tier.Model, authErr.Status)
			return "", err
		}

		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			// The tier's own budget fired, not the caller's. Abandon the
			// attempt and escalate.
			o.logger.Printf("[orchestrator] attempt %d/%d timed out after %s (model=%s)",
				i+1, len(o.tiers), tier.Timeout, tier.Model)
			lastErr = fmt.Errorf("tier %d (%s) timed out after %s", i+1, tier.Model, tier.Timeout)
			continue
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}

		o.logger.Printf("[orchestrator] attempt %d/%d failed (model=%s): %v",
			i+1, len(o.tiers), tier.Model, err)
		lastErr = err
	}

	return "", &ExhaustedError{Attempts: len(o.tiers), Last: lastErr}
}

func buildHistory(prompt, systemInstructions string) []llm.Message {
	var history []llm.Message
	if systemInstructions != "" {
		history = append(history, llm.Message{Role: "system", Content: systemInstructions})
	}
	history = append(history, llm.Message{Role: "user", Content: prompt})
	return history
}
