package mutex

import (
	"cmp"
	"fmt"
)

// valueEntry is one row of a ValueTable: the value itself, whether it is
// currently enabled, and the number of its mutex partners that are
// currently enabled (its "active mutex count"). The two are tracked
// separately so a caller can distinguish "this value was disabled
// directly" from "this value still has live mutex partners," which
// matters for deciding when to prune or unwind.
type valueEntry[T cmp.Ordered] struct {
	value         Value[T]
	enabled       bool
	activeMutexes int
}

// ValueTable is the dense sequence of (value, enabled?, active-mutex-count)
// entries indexed by global value id. Every accessor is bounds-checked and
// fails with ErrOutOfRange on violation.
type ValueTable[T cmp.Ordered] struct {
	entries []valueEntry[T]
}

// NewValueTable returns an empty value table.
func NewValueTable[T cmp.Ordered]() *ValueTable[T] {
	return &ValueTable[T]{}
}

// newValueTableWithCapacity preallocates the backing slice; used by
// Manager when WithCapacityHint is given.
func newValueTableWithCapacity[T cmp.Ordered](n int) *ValueTable[T] {
	return &ValueTable[T]{entries: make([]valueEntry[T], 0, n)}
}

// Size returns the number of values in this table.
func (vt *ValueTable[T]) Size() int {
	return len(vt.entries)
}

func (vt *ValueTable[T]) bounds(i int) error {
	if i < 0 || i >= len(vt.entries) {
		return fmt.Errorf("mutex: value index %d out of [0,%d): %w", i, len(vt.entries), ErrOutOfRange)
	}
	return nil
}

// Insert appends a new entry with enabled=true and zero active mutexes.
// It returns the index assigned to the value.
func (vt *ValueTable[T]) Insert(value Value[T]) int {
	vt.entries = append(vt.entries, valueEntry[T]{value: value, enabled: true})
	return len(vt.entries) - 1
}

// Value returns the wrapped Value at index i.
func (vt *ValueTable[T]) Value(i int) (Value[T], error) {
	if err := vt.bounds(i); err != nil {
		return Value[T]{}, err
	}
	return vt.entries[i].value, nil
}

// At returns the raw payload at index i, a shorthand for Value(i).Get()
// for callers that do not need the Value wrapper.
func (vt *ValueTable[T]) At(i int) (T, error) {
	var zero T
	if err := vt.bounds(i); err != nil {
		return zero, err
	}
	return vt.entries[i].value.payload, nil
}

// Status returns whether the value at index i is currently enabled.
func (vt *ValueTable[T]) Status(i int) (bool, error) {
	if err := vt.bounds(i); err != nil {
		return false, err
	}
	return vt.entries[i].enabled, nil
}

// SetStatus sets the enabled flag of the value at index i.
func (vt *ValueTable[T]) SetStatus(i int, enabled bool) error {
	if err := vt.bounds(i); err != nil {
		return err
	}
	vt.entries[i].enabled = enabled
	return nil
}

// NbMutexes returns the active-mutex count of the value at index i.
func (vt *ValueTable[T]) NbMutexes(i int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	return vt.entries[i].activeMutexes, nil
}

// SetNbMutexes sets the active-mutex count of the value at index i.
func (vt *ValueTable[T]) SetNbMutexes(i, n int) error {
	if err := vt.bounds(i); err != nil {
		return err
	}
	vt.entries[i].activeMutexes = n
	return nil
}

// IncrementNbMutexes increments the active-mutex count of the value at
// index i by 1 and returns the new count. There is no upper bound check:
// increment is only ever called while constructing mutexes, where the size
// of the value's adjacency list is the natural ceiling and is never
// exceeded by this package.
func (vt *ValueTable[T]) IncrementNbMutexes(i int) (int, error) {
	return vt.IncrementNbMutexesBy(i, 1)
}

// IncrementNbMutexesBy increments the active-mutex count of the value at
// index i by delta and returns the new count.
func (vt *ValueTable[T]) IncrementNbMutexesBy(i, delta int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	vt.entries[i].activeMutexes += delta
	return vt.entries[i].activeMutexes, nil
}

// DecrementNbMutexes decrements the active-mutex count of the value at
// index i by 1 and returns the new count. Fails with ErrOutOfRange
// (underflow guard) if the count would go negative.
func (vt *ValueTable[T]) DecrementNbMutexes(i int) (int, error) {
	return vt.DecrementNbMutexesBy(i, 1)
}

// DecrementNbMutexesBy decrements the active-mutex count of the value at
// index i by delta and returns the new count. Fails with ErrOutOfRange if
// delta exceeds the current count.
func (vt *ValueTable[T]) DecrementNbMutexesBy(i, delta int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	if delta > vt.entries[i].activeMutexes {
		return 0, fmt.Errorf("mutex: decrement %d exceeds active mutex count %d at index %d: %w",
			delta, vt.entries[i].activeMutexes, i, ErrOutOfRange)
	}
	vt.entries[i].activeMutexes -= delta
	return vt.entries[i].activeMutexes, nil
}

// Equal reports whether two value tables hold the same entries in the
// same order, comparing all three fields of each entry.
func (vt *ValueTable[T]) Equal(other *ValueTable[T]) bool {
	if other == nil || len(vt.entries) != len(other.entries) {
		return false
	}
	for i, e := range vt.entries {
		o := other.entries[i]
		if !e.value.Equal(o.value) || e.enabled != o.enabled || e.activeMutexes != o.activeMutexes {
			return false
		}
	}
	return true
}
