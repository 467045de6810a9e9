package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ResilientConfig tunes the retry/timeout envelope around a provider.
type ResilientConfig struct {
	MaxRetries  int           // attempts before giving up
	Backoff     time.Duration // fixed delay between attempts
	CallTimeout time.Duration // per-attempt deadline
}

func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxRetries:  3,
		Backoff:     time.Second,
		CallTimeout: 30 * time.Second,
	}
}

// ResilientProvider decorates an LLMProvider with per-call timeouts,
// fixed-backoff retries and a circuit breaker. Fatal errors (bad key,
// rate limit, quota) abort immediately without further attempts.
type ResilientProvider struct {
	inner   LLMProvider
	cfg     ResilientConfig
	breaker *gobreaker.CircuitBreaker
	sleep   func(ctx context.Context, d time.Duration) error
}

var _ LLMProvider = &ResilientProvider{}

func NewResilientProvider(inner LLMProvider, cfg ResilientConfig) *ResilientProvider {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "llm",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &ResilientProvider{
		inner:   inner,
		cfg:     cfg,
		breaker: breaker,
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *ResilientProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return p.execute(ctx, func(callCtx context.Context) (string, error) {
		return p.inner.Chat(callCtx, history, options...)
	})
}

func (p *ResilientProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.execute(ctx, func(callCtx context.Context) (string, error) {
		return p.inner.Generate(callCtx, prompt, options...)
	})
}

func (p *ResilientProvider) execute(ctx context.Context, call func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxRetries; attempt++ {
		result, err := p.breaker.Execute(func() (interface{}, error) {
			callCtx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
			defer cancel()
			out, callErr := call(callCtx)
			return out, Classify(callErr)
		})
		if err == nil {
			return result.(string), nil
		}
		if IsFatal(err) {
			return "", err
		}
		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt < p.cfg.MaxRetries {
			if sleepErr := p.sleep(ctx, p.cfg.Backoff); sleepErr != nil {
				return "", sleepErr
			}
		}
	}
	return "", fmt.Errorf("llm call failed after %d attempts: %w", p.cfg.MaxRetries, lastErr)
}
