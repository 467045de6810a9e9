package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// scriptedProvider fails a fixed number of times before succeeding.
type scriptedProvider struct {
	failures int
	err      error
	calls    int
}

func (p *scriptedProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	return p.Generate(ctx, "", options...)
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	p.calls++
	if p.calls <= p.failures {
		return "", p.err
	}
	return "the laundry is in the basement", nil
}

func newTestResilient(inner LLMProvider) *ResilientProvider {
	p := NewResilientProvider(inner, ResilientConfig{
		MaxRetries:  3,
		Backoff:     time.Millisecond,
		CallTimeout: time.Second,
	})
	p.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return p
}

func TestResilientRetriesTransientErrors(t *testing.T) {
	inner := &scriptedProvider{failures: 2, err: errors.New("connection reset")}
	p := newTestResilient(inner)

	answer, err := p.Generate(context.Background(), "where is the laundry?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer == "" {
		t.Fatal("Generate() returned empty answer")
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want 3", inner.calls)
	}
}

func TestResilientBackoffIsFixed(t *testing.T) {
	inner := &scriptedProvider{failures: 10, err: errors.New("connection reset")}
	p := newTestResilient(inner)

	var delays []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	_, _ = p.Generate(context.Background(), "where is the laundry?")
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}
	for i, d := range delays {
		if d != time.Millisecond {
			t.Errorf("delay %d = %v, want %v", i, d, time.Millisecond)
		}
	}
}

func TestResilientGivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedProvider{failures: 10, err: errors.New("connection reset")}
	p := newTestResilient(inner)

	_, err := p.Generate(context.Background(), "where is the laundry?")
	if err == nil {
		t.Fatal("Generate() error = nil, want failure after exhausted retries")
	}
	if inner.calls != 3 {
		t.Errorf("inner called %d times, want exactly MaxRetries (3)", inner.calls)
	}
}

func TestResilientFatalErrorSkipsRetries(t *testing.T) {
	inner := &scriptedProvider{failures: 10, err: errors.New("401: Invalid API key provided")}
	p := newTestResilient(inner)

	_, err := p.Generate(context.Background(), "where is the laundry?")
	if !IsFatal(err) {
		t.Fatalf("Generate() error = %v, want fatal", err)
	}
	if inner.calls != 1 {
		t.Errorf("inner called %d times, want 1 (no retry on fatal)", inner.calls)
	}
}

func TestResilientStopsOnCancelledContext(t *testing.T) {
	inner := &scriptedProvider{failures: 10, err: errors.New("connection reset")}
	p := newTestResilient(inner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, "where is the laundry?")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
	if inner.calls > 1 {
		t.Errorf("inner called %d times after cancellation, want at most 1", inner.calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		fatal bool
	}{
		{name: "nil", err: nil, fatal: false},
		{name: "transient network", err: errors.New("dial tcp: connection refused"), fatal: false},
		{name: "invalid key", err: errors.New("Invalid API Key"), fatal: true},
		{name: "rate limited", err: errors.New("429: Rate Limit exceeded for model"), fatal: true},
		{name: "quota", err: errors.New("monthly quota exceeded"), fatal: true},
		{name: "already classified", err: &FatalError{Err: errors.New("quota exceeded")}, fatal: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if IsFatal(got) != tt.fatal {
				t.Errorf("Classify(%v) fatal = %v, want %v", tt.err, IsFatal(got), tt.fatal)
			}
			if tt.err != nil && !tt.fatal && got != tt.err {
				t.Errorf("Classify must return transient errors unchanged")
			}
		})
	}
}
