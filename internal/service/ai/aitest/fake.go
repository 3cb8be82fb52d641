// Package aitest provides a scriptable ai.Completer for tests.
package aitest

import (
	"context"
	"sync"

	"github.com/zhouzirui/qabot/internal/service/ai"
)

// Fake replies with Reply (streamed as Deltas when set) or fails with Err.
// Hook, when set, runs before the reply and may block or fail the call.
type Fake struct {
	Reply  string
	Deltas []string
	Err    error
	Hook   func(ctx context.Context, req ai.Request) error

	mu       sync.Mutex
	requests []ai.Request
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Complete(ctx context.Context, req ai.Request) (string, error) {
	if err := f.record(ctx, req); err != nil {
		return "", err
	}
	return f.Reply, nil
}

func (f *Fake) Stream(ctx context.Context, req ai.Request, onDelta func(string)) (string, error) {
	if err := f.record(ctx, req); err != nil {
		return "", err
	}
	if len(f.Deltas) == 0 {
		if onDelta != nil && f.Reply != "" {
			onDelta(f.Reply)
		}
		return f.Reply, nil
	}
	var reply string
	for _, d := range f.Deltas {
		reply += d
		if onDelta != nil {
			onDelta(d)
		}
	}
	return reply, nil
}

// Requests returns every request seen so far.
func (f *Fake) Requests() []ai.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ai.Request(nil), f.requests...)
}

func (f *Fake) record(ctx context.Context, req ai.Request) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if f.Hook != nil {
		if err := f.Hook(ctx, req); err != nil {
			return err
		}
	}
	return f.Err
}
