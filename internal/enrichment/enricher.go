// Package enrichment turns a tool name and URL into a validated catalog profile
// using a generative-text provider.
package enrichment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Enrichment outcomes recorded in metrics
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeInvalid  = "invalid"
	OutcomeRejected = "rejected"
)

// Options tune pacing and resilience of an Enricher
type Options struct {
	// Timeout bounds one generator call
	Timeout time.Duration
	// PerMinute caps generator calls; zero disables pacing
	PerMinute int
	// BreakerFailures consecutive failures open the circuit
	BreakerFailures uint32
	// BreakerCooldown is how long the circuit stays open
	BreakerCooldown time.Duration
}

// Enricher wraps a Generator with a rate limiter, a circuit breaker and strict parsing
type Enricher struct {
	gen     Generator
	breaker *gobreaker.CircuitBreaker[string]
	limiter *rate.Limiter
	timeout time.Duration
}

// NewEnricher creates an enricher around gen
func NewEnricher(gen Generator, opts Options) *Enricher {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 2 * time.Minute
	}

	var limiter *rate.Limiter
	if opts.PerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.PerMinute)), 1)
	}

	name := "enrichment-" + gen.Name()
	failures := opts.BreakerFailures
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log.Warn("Enrichment circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Enricher{
		gen:     gen,
		breaker: breaker,
		limiter: limiter,
		timeout: opts.Timeout,
	}
}

// Provider names the underlying generator
func (e *Enricher) Provider() string {
	return e.gen.Name()
}

// Enrich generates and validates a profile for in. Errors are safe to treat as
// "keep the unenriched data": generator failures, an open circuit and
// ErrInvalidProfile all surface here.
func (e *Enricher) Enrich(ctx context.Context, in Input) (*Profile, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for enrichment slot: %w", err)
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.breaker.Execute(func() (string, error) {
		return e.gen.Generate(callCtx, BuildPrompt(in))
	})
	metrics.RecordExternalCall(e.gen.Name(), start, err)
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = OutcomeRejected
		}
		metrics.RecordEnrichment(e.gen.Name(), outcome)
		return nil, err
	}

	profile, err := ParseProfile(text)
	if err != nil {
		metrics.RecordEnrichment(e.gen.Name(), OutcomeInvalid)
		return nil, err
	}

	metrics.RecordEnrichment(e.gen.Name(), OutcomeSuccess)
	return profile, nil
}
