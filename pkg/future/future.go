package future

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// -----------------------------------------------------------------------------
// Future
// -----------------------------------------------------------------------------

// Future is a single-resolution deferred computation. It moves from Pending
// to Settled exactly once; later settle attempts are no-ops. Awaiting after
// settlement is cheap and repeatable, but the upstream computation itself
// never runs more than once regardless of how many combinators observe it.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

func (f *Future[T]) settle(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future settles or the caller's context is done,
// whichever comes first.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Settled reports whether the future has resolved, without blocking.
func (f *Future[T]) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

// Value returns an already-resolved future.
func Value[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.settle(value, nil)
	return f
}

// Reject returns an already-failed future.
func Reject[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.settle(zero, err)
	return f
}

// Go runs fn on its own goroutine and captures both its eventual success and
// failure. A panic inside fn settles the future with an error instead of
// crashing the process, so no future is ever left pending forever.
func Go[T any](fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.settle(zero, fmt.Errorf("future panicked: %v", r))
			}
		}()
		value, err := fn()
		f.settle(value, err)
	}()
	return f
}

// -----------------------------------------------------------------------------
// Combinators
// -----------------------------------------------------------------------------

// Map transforms the resolved value; failures pass through unchanged.
func Map[T, U any](f *Future[T], fn func(T) U) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			out.settle(zero, f.err)
			return
		}
		out.settle(fn(f.value), nil)
	}()
	return out
}

// FlatMap chains a future-producing continuation once the upstream resolves.
func FlatMap[T, U any](f *Future[T], fn func(T) *Future[U]) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			out.settle(zero, f.err)
			return
		}
		next := fn(f.value)
		<-next.done
		out.settle(next.value, next.err)
	}()
	return out
}

// Tap peeks at the resolved value without altering it.
func Tap[T any](f *Future[T], fn func(T)) *Future[T] {
	out := newFuture[T]()
	go func() {
		<-f.done
		if f.err == nil {
			fn(f.value)
		}
		out.settle(f.value, f.err)
	}()
	return out
}

// All joins a fixed set of futures into one resolving to their values in
// input order. It fails as soon as a failure is observed; it never resolves
// silently when one of its inputs failed.
func All[T any](futures ...*Future[T]) *Future[[]T] {
	out := newFuture[[]T]()
	go func() {
		values := make([]T, len(futures))
		for i, f := range futures {
			<-f.done
			if f.err != nil {
				out.settle(nil, f.err)
				return
			}
			values[i] = f.value
		}
		out.settle(values, nil)
	}()
	return out
}

// Race settles with whichever of the given futures settles first, value or
// error alike. Racing zero futures fails immediately; there is nothing that
// could ever settle the result.
func Race[T any](futures ...*Future[T]) *Future[T] {
	out := newFuture[T]()
	if len(futures) == 0 {
		var zero T
		out.settle(zero, errors.New("race needs at least one future"))
		return out
	}
	for _, f := range futures {
		go func() {
			<-f.done
			out.settle(f.value, f.err)
		}()
	}
	return out
}
