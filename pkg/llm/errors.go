package llm

import (
	"errors"
	"strings"
)

// FatalError marks a provider failure that retrying cannot fix, such as a
// bad credential or an exhausted quota. Everything else is treated as
// transient and eligible for retry.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "llm fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

var fatalMarkers = []string{
	"invalid api key",
	"rate limit",
	"quota exceeded",
}

// Classify wraps errors whose message indicates a non-retryable condition.
// Matching is case-insensitive on the full error chain text.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var fatal *FatalError
	if errors.As(err, &fatal) {
		return err
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range fatalMarkers {
		if strings.Contains(msg, marker) {
			return &FatalError{Err: err}
		}
	}
	return err
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
