package resilience

import "time"

type Policy struct {
	MaxAttempts int
	Backoff     time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// SingleAttempt fails fast: breaker protection without retries.
func SingleAttempt() Policy {
	p := Policy{MaxAttempts: 1, BreakerEnabled: true}
	return p.normalize()
}

// Retrying re-runs retryable failures with a fixed backoff between attempts.
func Retrying(maxAttempts int, backoff time.Duration) Policy {
	p := Policy{
		MaxAttempts:    maxAttempts,
		Backoff:        backoff,
		BreakerEnabled: true,
	}
	return p.normalize()
}

func (p Policy) normalize() Policy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 1
	}
	if out.Backoff < 0 {
		out.Backoff = 0
	}

	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = 10
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = 0.5
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = 30 * time.Second
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = 2
	}
	return out
}
