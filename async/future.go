package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
)

// PanicError is the error a Future fails with when its function panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("async: panic: %v", e.Value)
}

// Future is the eventual result of an asynchronous operation. It completes
// exactly once, with either a value or an error.
type Future[T any] struct {
	done      chan struct{}
	once      sync.Once
	mu        sync.Mutex
	value     T
	err       error
	callbacks []func(T, error)
}

// New returns a pending Future and the function that completes it. Only the
// first call to complete has an effect.
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	return f, f.complete
}

// Go runs fn on a new goroutine and returns its Future. A panic in fn fails
// the Future with a *PanicError.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f, complete := New[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				complete(zero, &PanicError{Value: r, Stack: debug.Stack()})
			}
		}()
		v, err := fn(ctx)
		complete(v, err)
	}()
	return f
}

// Completed returns a Future that has already succeeded with v.
func Completed[T any](v T) *Future[T] {
	f, complete := New[T]()
	complete(v, nil)
	return f
}

// Failed returns a Future that has already failed with err.
func Failed[T any](err error) *Future[T] {
	f, complete := New[T]()
	var zero T
	complete(zero, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.value, f.err = v, err
		callbacks := f.callbacks
		f.callbacks = nil
		close(f.done)
		f.mu.Unlock()

		for _, cb := range callbacks {
			cb(v, err)
		}
	})
}

// Done is closed when the Future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the Future completes or ctx is done. A canceled ctx
// returns ctx.Err() and leaves the operation running.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while pending.
func (f *Future[T]) Result() (value T, ok bool, err error) {
	select {
	case <-f.done:
		return f.value, true, f.err
	default:
		var zero T
		return zero, false, nil
	}
}

// OnComplete registers cb to run once the Future completes. Callbacks
// registered after completion run immediately on the caller's goroutine.
func (f *Future[T]) OnComplete(cb func(T, error)) {
	f.mu.Lock()
	select {
	case <-f.done:
		f.mu.Unlock()
		cb(f.value, f.err)
		return
	default:
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// Then returns a Future that applies fn to a successful result of f.
// Errors from f pass through unchanged.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	out, complete := New[U]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			var zero U
			complete(zero, err)
			return
		}
		u, err := fn(v)
		complete(u, err)
	})
	return out
}

// MapError returns a Future whose error, if any, is replaced by fn(err).
func MapError[T any](f *Future[T], fn func(error) error) *Future[T] {
	out, complete := New[T]()
	f.OnComplete(func(v T, err error) {
		if err != nil {
			err = fn(err)
		}
		complete(v, err)
	})
	return out
}
