// Package runtime is the boundary to the model-serving runtimes.
// The core only needs to invoke a model with a prompt and to list what is installed.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// Request is a single prompt sent to a model.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
}

// Invoker runs a prompt against a model.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Lister reports which models the runtime has installed.
type Lister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// Runtime is an Invoker that can also list models.
type Runtime interface {
	Invoker
	Lister
}

// Kind classifies invocation failures.
type Kind int

const (
	// KindOther is a generic failure, retried once before falling back.
	KindOther Kind = iota
	// KindUnavailable means the model is not installed or the runtime is unreachable.
	KindUnavailable
	// KindTimeout means the model did not answer in time.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Error is the structured failure returned by invokers.
type Error struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("model %s %s: %v", e.Model, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unavailable builds a KindUnavailable error.
func Unavailable(model string, err error) *Error {
	return &Error{Kind: KindUnavailable, Model: model, Err: err}
}

// KindOf classifies any error returned from an invoker.
// Unstructured errors are classified by inspecting the cause.
func KindOf(err error) Kind {
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return rtErr.Kind
	}
	return classify(err)
}

func classify(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return KindUnavailable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindUnavailable
	}
	return KindOther
}

// wrap converts a transport error into a structured *Error.
func wrap(model string, err error) error {
	if err == nil {
		return nil
	}
	var rtErr *Error
	if errors.As(err, &rtErr) {
		return err
	}
	return &Error{Kind: classify(err), Model: model, Err: err}
}
