package ai

import "context"

// Unavailable stands in when a provider could not be constructed. Every call
// fails with Err, so the failure shows up in the transcript instead of at startup.
type Unavailable struct {
	Provider string
	Err      error
}

func (u Unavailable) Name() string { return u.Provider }

func (u Unavailable) Complete(context.Context, Request) (string, error) {
	return "", u.Err
}

func (u Unavailable) Stream(context.Context, Request, func(string)) (string, error) {
	return "", u.Err
}
