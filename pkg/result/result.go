package result

// -----------------------------------------------------------------------------
// Result
// -----------------------------------------------------------------------------

// Result is a tagged variant holding either a success value or a failure
// value. The zero value is an Err carrying the zero value of E; callers are
// expected to construct results through Ok and Err.
type Result[T, E any] struct {
	ok    bool
	value T
	err   E
}

func Ok[T, E any](value T) Result[T, E] {
	return Result[T, E]{ok: true, value: value}
}

func Err[T, E any](err E) Result[T, E] {
	return Result[T, E]{err: err}
}

func (r Result[T, E]) IsOk() bool {
	return r.ok
}

func (r Result[T, E]) IsErr() bool {
	return !r.ok
}

// Match is the sanctioned way to extract a result's payload. Both branches
// are required; there is no partial variant.
func Match[T, E, R any](r Result[T, E], onOk func(T) R, onErr func(E) R) R {
	if r.ok {
		return onOk(r.value)
	}
	return onErr(r.err)
}

// Map transforms the success payload and passes failures through unchanged.
func Map[T, U, E any](r Result[T, E], fn func(T) U) Result[U, E] {
	if !r.ok {
		return Err[U, E](r.err)
	}
	return Ok[U, E](fn(r.value))
}

// MapErr transforms the failure payload and passes successes through unchanged.
func MapErr[T, E, F any](r Result[T, E], fn func(E) F) Result[T, F] {
	if r.ok {
		return Ok[T, F](r.value)
	}
	return Err[T, F](fn(r.err))
}

// FlatMap chains a result-producing continuation, short-circuiting on Err
// without invoking the continuation.
func FlatMap[T, U, E any](r Result[T, E], fn func(T) Result[U, E]) Result[U, E] {
	if !r.ok {
		return Err[U, E](r.err)
	}
	return fn(r.value)
}

// ToOption discards the failure detail, keeping only presence.
func (r Result[T, E]) ToOption() Option[T] {
	if r.ok {
		return Some(r.value)
	}
	return None[T]()
}

// -----------------------------------------------------------------------------
// Option
// -----------------------------------------------------------------------------

type Option[T any] struct {
	ok    bool
	value T
}

func Some[T any](value T) Option[T] {
	return Option[T]{ok: true, value: value}
}

func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) IsSome() bool {
	return o.ok
}

func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// GetOr returns the contained value or the given fallback.
func (o Option[T]) GetOr(fallback T) T {
	if o.ok {
		return o.value
	}
	return fallback
}
