package future

import (
	"github.com/taskpact/taskpact/pkg/result"
)

// Helpers for futures carrying an explicit Result payload. They thread the
// embedded success/failure channel through without re-exposing error-based
// control flow: a settled Err arm stays an Err arm, and the future's own
// error slot remains reserved for infrastructure failures.

// MapOk transforms the Ok arm of a resolved result.
func MapOk[T, U, E any](f *Future[result.Result[T, E]], fn func(T) U) *Future[result.Result[U, E]] {
	return Map(f, func(r result.Result[T, E]) result.Result[U, E] {
		return result.Map(r, fn)
	})
}

// MapErr transforms the Err arm of a resolved result.
func MapErr[T, E, F any](f *Future[result.Result[T, E]], fn func(E) F) *Future[result.Result[T, F]] {
	return Map(f, func(r result.Result[T, E]) result.Result[T, F] {
		return result.MapErr(r, fn)
	})
}

// FlatMapOk chains a future-producing continuation on the Ok arm,
// short-circuiting on Err without invoking the continuation.
func FlatMapOk[T, U, E any](
	f *Future[result.Result[T, E]],
	fn func(T) *Future[result.Result[U, E]],
) *Future[result.Result[U, E]] {
	return FlatMap(f, func(r result.Result[T, E]) *Future[result.Result[U, E]] {
		return result.Match(r,
			fn,
			func(e E) *Future[result.Result[U, E]] {
				return Value(result.Err[U, E](e))
			},
		)
	})
}

// TapOk peeks at the Ok arm without altering the result.
func TapOk[T, E any](f *Future[result.Result[T, E]], fn func(T)) *Future[result.Result[T, E]] {
	return Map(f, func(r result.Result[T, E]) result.Result[T, E] {
		result.Match(r,
			func(v T) struct{} { fn(v); return struct{}{} },
			func(E) struct{} { return struct{}{} },
		)
		return r
	})
}

// TapErr peeks at the Err arm without altering the result.
func TapErr[T, E any](f *Future[result.Result[T, E]], fn func(E)) *Future[result.Result[T, E]] {
	return Map(f, func(r result.Result[T, E]) result.Result[T, E] {
		result.Match(r,
			func(T) struct{} { return struct{}{} },
			func(e E) struct{} { fn(e); return struct{}{} },
		)
		return r
	})
}
