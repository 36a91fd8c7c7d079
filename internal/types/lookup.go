package types

import "fmt"

// LookupStatus tags the outcome of a remote lookup.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupError
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	case LookupError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// LookupResult is the outcome of fetching something for a symbol from a provider.
// Err is set for LookupError and may carry the provider's reason for LookupNotFound.
type LookupResult[T any] struct {
	Status LookupStatus
	Value  T
	Err    error
}

// Found wraps a successful lookup.
func Found[T any](value T) LookupResult[T] {
	return LookupResult[T]{Status: LookupFound, Value: value, Err: nil}
}

// NotFound reports that the provider does not know the symbol.
func NotFound[T any](reason error) LookupResult[T] {
	var zero T

	return LookupResult[T]{Status: LookupNotFound, Value: zero, Err: reason}
}

// Failed reports a lookup that could not be completed.
func Failed[T any](err error) LookupResult[T] {
	var zero T

	return LookupResult[T]{Status: LookupError, Value: zero, Err: err}
}

func (r LookupResult[T]) IsFound() bool    { return r.Status == LookupFound }
func (r LookupResult[T]) IsNotFound() bool { return r.Status == LookupNotFound }
func (r LookupResult[T]) IsError() bool    { return r.Status == LookupError }
