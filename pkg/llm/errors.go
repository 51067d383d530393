package llm

import (
	"fmt"
	"time"
)

// RateLimitError is terminal for the current call. It carries the wait the
// backend suggested (or a default) so the caller can surface it; retrying
// locally would only compound provider-side throttling.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("generation service rate limited, retry after %s", e.RetryAfter)
}

// AuthError means the credential itself was rejected. Retrying across model
// tiers cannot change that, so the orchestrator stops immediately.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("generation service rejected credentials (status %d): %s", e.Status, e.Body)
}

// StatusError covers every other non-success HTTP status. These are
// retryable: the orchestrator records them and escalates to the next tier.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation service error: status %d, body: %s", e.Status, e.Body)
}
