package mutex

import (
	"cmp"
	"fmt"
)

// Value is an immutable wrapper around a single domain value of type T.
// T must support equality and a strict ordering, which cmp.Ordered covers
// for every concrete type this package is meant to carry: integers,
// strings, and timestamp scalars represented as int64 Unix values.
//
// There is no zero-value constructor; values are always produced by
// NewValue.
type Value[T cmp.Ordered] struct {
	payload T
}

// NewValue wraps payload in an immutable Value.
func NewValue[T cmp.Ordered](payload T) Value[T] {
	return Value[T]{payload: payload}
}

// Get returns the wrapped payload.
func (v Value[T]) Get() T {
	return v.payload
}

// Equal reports whether two values carry equal payloads.
func (v Value[T]) Equal(other Value[T]) bool {
	return v.payload == other.payload
}

// Less reports whether v's payload strictly precedes other's.
func (v Value[T]) Less(other Value[T]) bool {
	return v.payload < other.payload
}

// String renders the wrapped payload for diagnostics and trace output.
func (v Value[T]) String() string {
	return fmt.Sprint(v.payload)
}
