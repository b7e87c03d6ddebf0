package session

import (
	"context"
	"fmt"
	"time"
)

// Result is the outcome of one collaborator call.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// call runs fn with its own deadline. The context passed to fn is detached
// from ctx's cancellation: an interrupt lets in-flight calls finish or time
// out. A panic in fn becomes the result's error.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (res Result[T]) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	defer func() {
		if p := recover(); p != nil {
			res = Result[T]{Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	v, err := fn(callCtx)
	return Result[T]{Value: v, Err: err}
}
