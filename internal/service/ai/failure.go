package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when the provider answers without any choice.
var ErrEmptyResponse = errors.New("completion service returned no choices")

// DownstreamCallFailure is the single failure kind of a completion call:
// network errors, timeouts, provider errors and malformed responses alike.
type DownstreamCallFailure struct {
	Provider string
	Err      error
}

// AsFailure wraps err as a DownstreamCallFailure. Existing failures are returned as is.
func AsFailure(provider string, err error) *DownstreamCallFailure {
	if err == nil {
		return nil
	}
	var failure *DownstreamCallFailure
	if errors.As(err, &failure) {
		return failure
	}
	return &DownstreamCallFailure{Provider: provider, Err: err}
}

func (f *DownstreamCallFailure) Error() string {
	return f.Description()
}

func (f *DownstreamCallFailure) Unwrap() error {
	return f.Err
}

// Description is the human readable cause.
func (f *DownstreamCallFailure) Description() string {
	if f == nil || f.Err == nil {
		return "unknown error"
	}
	if errors.Is(f.Err, context.DeadlineExceeded) {
		return "request timed out: " + f.Err.Error()
	}
	if msg := strings.TrimSpace(f.Err.Error()); msg != "" {
		return msg
	}
	return "unknown error"
}

// DisplayText is the transcript content recorded in place of a reply.
func (f *DownstreamCallFailure) DisplayText() string {
	return "Error: " + f.Description()
}

// Timeout reports whether the call ran out of time.
func (f *DownstreamCallFailure) Timeout() bool {
	if f == nil {
		return false
	}
	if errors.Is(f.Err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(f.Err, &t) && t.Timeout()
}
