package infra

import (
	"time"
)

// Backoff computes reconnect delays as min(Base^attempt, Cap) seconds, with
// the attempt number clamped to MaxAttempts. It is a pure value so the delay
// sequence can be tested without any real network.
type Backoff struct {
	Base        time.Duration // delay of the first attempt
	Cap         time.Duration
	MaxAttempts int
}

// DefaultBackoff matches the exchange-friendly defaults: 2s base, 30s cap,
// attempt counter clamped at 6.
func DefaultBackoff() Backoff {
	return Backoff{Base: 2 * time.Second, Cap: 30 * time.Second, MaxAttempts: 6}
}

// NextAttempt advances the attempt counter, clamped to MaxAttempts.
// The counter only resets on a successful connect, never on trying.
func (b Backoff) NextAttempt(attempt int) int {
	attempt++
	if attempt > b.MaxAttempts {
		return b.MaxAttempts
	}
	return attempt
}

// Delay returns the wait before reconnect attempt n (n >= 1).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > b.MaxAttempts {
		attempt = b.MaxAttempts
	}

	base := b.Base.Seconds()
	secs := base
	for i := 1; i < attempt; i++ {
		secs *= base
		// Cap early so a long failure streak cannot overflow.
		if secs >= b.Cap.Seconds() {
			return b.Cap
		}
	}

	delay := time.Duration(secs * float64(time.Second))
	if delay > b.Cap {
		return b.Cap
	}
	return delay
}
