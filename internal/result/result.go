// Package result carries command outcomes as data. Every backend command
// resolves to a Result so callers branch on success/failure instead of
// relying on panics or sentinel checks at the call site.
package result

import "encoding/json"

// Unit is the payload of commands that succeed without returning data
// (play, pause, queue mutations, device selection).
type Unit struct{}

// Result is a two-variant envelope: exactly one of the success payload or
// the failure error is populated.
type Result[T any] struct {
	ok   bool
	data T
	err  error
}

// Ok wraps a success payload.
func Ok[T any](v T) Result[T] {
	return Result[T]{ok: true, data: v}
}

// Err wraps a failure. The error value is carried as-is and surfaced
// unmodified by Unwrap.
func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// IsOk reports whether the envelope holds a success payload.
func (r Result[T]) IsOk() bool { return r.ok }

// IsErr reports whether the envelope holds a failure.
func (r Result[T]) IsErr() bool { return !r.ok }

// Get returns the payload and the carried error, exactly one of which is
// meaningful. Callers that want non-panicking access use this.
func (r Result[T]) Get() (T, error) {
	return r.data, r.err
}

// Err returns the carried error, or nil for a success envelope.
func (r Result[T]) Error() error { return r.err }

// Unwrap returns the success payload or panics with the carried error
// value. The panic value is the original error, not a wrapped copy.
func (r Result[T]) Unwrap() T {
	if !r.ok {
		panic(r.err)
	}
	return r.data
}

// UnwrapOr returns the success payload, or fallback for a failure envelope.
func (r Result[T]) UnwrapOr(fallback T) T {
	if !r.ok {
		return fallback
	}
	return r.data
}

// Map applies fn to the payload of a success envelope and passes failure
// envelopes through with the error untouched.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	if !r.ok {
		return Result[U]{err: r.err}
	}
	return Ok(fn(r.data))
}

// MarshalJSON encodes the envelope in the wire shape the frontend
// discriminates on: {"status":"ok","data":...} or
// {"status":"error","error":"..."}.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.ok {
		return json.Marshal(struct {
			Status string `json:"status"`
			Data   T      `json:"data"`
		}{Status: "ok", Data: r.data})
	}
	msg := ""
	if r.err != nil {
		msg = r.err.Error()
	}
	return json.Marshal(struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}{Status: "error", Error: msg})
}
