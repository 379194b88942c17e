package infra

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BreakerState is the state of a Breaker.
//
//   - closed:    calls pass through
//   - open:      calls fail fast with ErrCircuitOpen
//   - half-open: calls probe whether the dependency recovered
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type BreakerConfig struct {
	Name             string        // used in logs and /health
	FailureThreshold int           // consecutive failures that open the breaker (default 5)
	SuccessThreshold int           // consecutive half-open successes that close it (default 2)
	OpenTimeout      time.Duration // time spent open before probing (default 60s)
}

// Breaker guards calls to a flaky dependency (the SMTP relay).
// Safe for concurrent use.
type Breaker struct {
	mu        sync.Mutex
	cfg       BreakerConfig
	state     BreakerState
	failures  int
	successes int
	openedAt  time.Time
	now       func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// State reports the current state, moving open → half-open once the
// timeout has elapsed.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.OpenTimeout {
		b.transition(BreakerHalfOpen)
	}
	return b.state
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(fn func() error) error {
	b.mu.Lock()
	if b.stateLocked() == BreakerOpen {
		b.mu.Unlock()
		return ErrCircuitOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failures++
		if b.state == BreakerHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.openedAt = b.now()
			b.transition(BreakerOpen)
		}
		return err
	}

	b.failures = 0
	if b.state == BreakerHalfOpen {
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.transition(BreakerClosed)
		}
	}
	return nil
}

// transition must be called with mu held.
func (b *Breaker) transition(to BreakerState) {
	if b.state == to {
		return
	}
	log.Warn().
		Str("breaker", b.cfg.Name).
		Str("from", b.state.String()).
		Str("to", to.String()).
		Msg("circuit breaker state change")
	b.state = to
	b.failures = 0
	b.successes = 0
}
