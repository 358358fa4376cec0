// Package runtimetest provides a scripted runtime for tests.
package runtimetest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SharminSirajudeen/nova/internal/runtime"
)

// Fake is a scripted runtime.Runtime.
type Fake struct {
	// Installed is returned by ListModels.
	Installed []string
	// ListErr, when set, is returned by ListModels.
	ListErr error
	// Handler answers requests that have no queued failure.
	// When nil, Invoke echoes the model name.
	Handler func(ctx context.Context, req runtime.Request) (string, error)

	mu       sync.Mutex
	failures map[string][]runtime.Kind
	calls    []runtime.Request
}

var _ runtime.Runtime = (*Fake)(nil)

// New creates a Fake reporting the given models as installed.
func New(installed ...string) *Fake {
	return &Fake{Installed: installed}
}

// FailNext queues failures for a model, consumed one per call.
func (f *Fake) FailNext(model string, kinds ...runtime.Kind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures == nil {
		f.failures = make(map[string][]runtime.Kind)
	}
	f.failures[model] = append(f.failures[model], kinds...)
}

// Invoke records the call, then fails or answers.
func (f *Fake) Invoke(ctx context.Context, req runtime.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	var (
		kind   runtime.Kind
		failed bool
	)
	if q := f.failures[req.Model]; len(q) > 0 {
		kind, failed = q[0], true
		f.failures[req.Model] = q[1:]
	}
	handler := f.Handler
	f.mu.Unlock()

	if failed {
		return "", &runtime.Error{Kind: kind, Model: req.Model, Err: errors.New("scripted failure")}
	}
	if handler != nil {
		return handler(ctx, req)
	}
	return fmt.Sprintf("%s: done", req.Model), nil
}

// ListModels returns Installed or ListErr.
func (f *Fake) ListModels(ctx context.Context) ([]string, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]string(nil), f.Installed...), nil
}

// Calls returns a copy of every request received.
func (f *Fake) Calls() []runtime.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]runtime.Request(nil), f.calls...)
}

// CallsFor counts requests made to a model.
func (f *Fake) CallsFor(model string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Model == model {
			n++
		}
	}
	return n
}

// Gate blocks a handler until released, and reports when it was entered.
type Gate struct {
	entered chan struct{}
	release chan struct{}
	inOnce  sync.Once
	outOnce sync.Once
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{entered: make(chan struct{}), release: make(chan struct{})}
}

// Wait marks the gate entered and blocks until Release or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	g.inOnce.Do(func() { close(g.entered) })
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entered is closed once Wait has been called.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release unblocks every current and future Wait.
func (g *Gate) Release() {
	g.outOnce.Do(func() { close(g.release) })
}
