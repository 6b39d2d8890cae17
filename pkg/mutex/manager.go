// Package mutex implements the state manager for a binary-mutex
// constraint-satisfaction engine: CSP variables and their domains, the
// set of value pairs a user's binary predicates forbid, and transactional
// mutation with exact undo. The package does not search; it is the
// mechanism an external backtracking algorithm drives (see Manager and
// UndoStack).
package mutex

import (
	"cmp"
	"fmt"
	"log"
	"os"
)

// envTraceEnabled is a package-level flag checked once, flippable without
// a code change via an environment variable.
var envTraceEnabled = os.Getenv("CSPMUX_TRACE") == "1"

// Manager orchestrates one ValueTable[T], one VariableTable, and a
// lazily-constructed MutexStore. A Manager is exclusively owned by the
// search that uses it; concurrent access from multiple goroutines is
// unsupported and undefined, so Manager holds no locks.
type Manager[T cmp.Ordered] struct {
	values    *ValueTable[T]
	variables *VariableTable
	mutexes   *MutexStore // nil until the first constraint is posted
	trace     bool
}

// NewManager returns an empty Manager ready for registration.
func NewManager[T cmp.Ordered](opts ...Option[T]) *Manager[T] {
	var cfg managerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager[T]{trace: cfg.trace || envTraceEnabled}
	if cfg.valueHint > 0 {
		m.values = newValueTableWithCapacity[T](cfg.valueHint)
	} else {
		m.values = NewValueTable[T]()
	}
	if cfg.variableHint > 0 {
		m.variables = newVariableTableWithCapacity(cfg.variableHint)
	} else {
		m.variables = NewVariableTable()
	}
	return m
}

func (m *Manager[T]) tracef(format string, args ...any) {
	if !m.trace {
		return
	}
	log.Printf("[manager] "+format, args...)
}

// ValueTable returns the manager's table of values, for inspection by an
// external search. Mutation should go through AddVariable, AddConstraint,
// or the four restoration handlers, not through the table directly.
func (m *Manager[T]) ValueTable() *ValueTable[T] {
	return m.values
}

// VariableTable returns the manager's table of variables, for inspection
// by an external search.
func (m *Manager[T]) VariableTable() *VariableTable {
	return m.variables
}

// MutexStore returns the manager's mutex store, or nil if no constraint
// has been posted yet. Its presence is the "constrained" flag that blocks
// further AddVariable calls.
func (m *Manager[T]) MutexStore() *MutexStore {
	return m.mutexes
}

// Equal reports whether two managers hold structurally equal value
// tables, variable tables, and mutex stores (both present-and-equal or
// both absent). The name→slot map of the variable table is not compared.
func (m *Manager[T]) Equal(other *Manager[T]) bool {
	if other == nil {
		return false
	}
	if !m.values.Equal(other.values) || !m.variables.Equal(other.variables) {
		return false
	}
	if (m.mutexes == nil) != (other.mutexes == nil) {
		return false
	}
	if m.mutexes != nil && !m.mutexes.Equal(other.mutexes) {
		return false
	}
	return true
}

// AddVariable registers variable with the given domain. Values flow into
// the value table in order, and the resulting contiguous index range is
// recorded as variable's bounds in the variable table. Fails with
// ErrAlreadyConstrained if any constraint has already been posted
// (registration is a one-shot construction phase that closes once search
// begins); ErrInvalidArgument if domain is empty; ErrDuplicateVariable if
// the name is already registered; or ErrDuplicateValue if two values
// within domain compare equal. Every one of these failures leaves the
// manager exactly as it was before the call.
func (m *Manager[T]) AddVariable(variable Variable, domain []Value[T]) (int, error) {
	if m.mutexes != nil {
		return 0, fmt.Errorf("mutex: cannot add variable %q after constraints have been posted: %w",
			variable.Name(), ErrAlreadyConstrained)
	}
	if len(domain) == 0 {
		return 0, fmt.Errorf("mutex: variable %q has an empty domain: %w", variable.Name(), ErrInvalidArgument)
	}
	if _, err := m.variables.IndexByName(variable.Name()); err == nil {
		return 0, fmt.Errorf("mutex: variable %q already registered: %w", variable.Name(), ErrDuplicateVariable)
	}
	for i := 0; i < len(domain); i++ {
		for j := i + 1; j < len(domain); j++ {
			if domain[i].Equal(domain[j]) {
				return 0, fmt.Errorf("mutex: variable %q has duplicate value %v in its domain: %w",
					variable.Name(), domain[i], ErrDuplicateValue)
			}
		}
	}

	first := m.values.Size()
	for _, v := range domain {
		m.values.Insert(v)
	}
	last := m.values.Size() - 1

	idx, err := m.variables.Insert(variable, first, last)
	if err != nil {
		// Unreachable given the checks above. If it were reached, the
		// values inserted just before would stay in the value table.
		return 0, err
	}
	m.tracef("add_variable %q -> slot %d, values [%d,%d]", variable.Name(), idx, first, last)
	return idx, nil
}

// AddConstraint invokes predicate over every ordered pair of values drawn
// from var1's and var2's domains, recording a mutex for every pair it
// rejects. The mutex store is allocated on first use, sized to the value
// table's current size; its presence thereafter permanently forbids
// AddVariable. Fails with ErrUnregisteredVariable if either name is
// unknown, or ErrReflexiveMutex if var1 and var2 are the same variable.
//
// Posting the same predicate twice over the same pair of variables is a
// caller error this package does not detect: active-mutex counts and
// mutex[i] will double up silently.
func (m *Manager[T]) AddConstraint(predicate func(T, T) bool, var1, var2 Variable) error {
	idx1, err := m.variables.IndexByName(var1.Name())
	if err != nil {
		return fmt.Errorf("mutex: %w", ErrUnregisteredVariable)
	}
	idx2, err := m.variables.IndexByName(var2.Name())
	if err != nil {
		return fmt.Errorf("mutex: %w", ErrUnregisteredVariable)
	}
	if var1.Equal(var2) {
		return fmt.Errorf("mutex: constraint between %q and itself: %w", var1.Name(), ErrReflexiveMutex)
	}

	if m.mutexes == nil {
		m.mutexes = NewMutexStore(m.values.Size())
	}

	first1, _ := m.variables.First(idx1)
	last1, _ := m.variables.Last(idx1)
	first2, _ := m.variables.First(idx2)
	last2, _ := m.variables.Last(idx2)

	posted := 0
	for i := first1; i <= last1; i++ {
		vi, _ := m.values.At(i)
		for j := first2; j <= last2; j++ {
			vj, _ := m.values.At(j)
			if predicate(vi, vj) {
				continue
			}
			if err := m.mutexes.Set(i, j); err != nil {
				return err
			}
			if err := m.mutexes.Set(j, i); err != nil {
				return err
			}
			if _, err := m.values.IncrementNbMutexes(i); err != nil {
				return err
			}
			if _, err := m.values.IncrementNbMutexes(j); err != nil {
				return err
			}
			posted++
		}
	}
	m.tracef("add_constraint %q x %q -> %d mutexes", var1.Name(), var2.Name(), posted)
	return nil
}

// ValToVar returns the index of the unique variable whose domain contains
// valueIndex, via binary search over the variable table's [first, last]
// bounds. Fails with ErrOutOfRange if valueIndex lies outside the value
// table.
func (m *Manager[T]) ValToVar(valueIndex int) (int, error) {
	if valueIndex < 0 || valueIndex >= m.values.Size() {
		return 0, fmt.Errorf("mutex: value index %d out of [0,%d): %w", valueIndex, m.values.Size(), ErrOutOfRange)
	}
	lo, hi := 0, m.variables.Size()-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		first, _ := m.variables.First(mid)
		last, _ := m.variables.Last(mid)
		switch {
		case valueIndex < first:
			hi = mid - 1
		case valueIndex > last:
			lo = mid + 1
		default:
			return mid, nil
		}
	}
	return 0, fmt.Errorf("mutex: value index %d does not belong to any variable: %w", valueIndex, ErrOutOfRange)
}

// SetVarNbValues is the restoration handler for
// VariableTable[index].nbPlausible. It writes prev after checking the
// field currently holds next, failing with ErrInconsistentRestore
// otherwise.
func (m *Manager[T]) SetVarNbValues(index, prev, next int) error {
	cur, err := m.variables.NbValues(index)
	if err != nil {
		return err
	}
	if cur != next {
		return fmt.Errorf("mutex: restoring nb_plausible of variable %d: expected %d, found %d: %w",
			index, next, cur, ErrInconsistentRestore)
	}
	if err := m.variables.SetNbValues(index, prev); err != nil {
		return err
	}
	m.tracef("restore set_var_nb_values(%d, %d -> %d)", index, next, prev)
	return nil
}

// SetVarValue is the restoration handler for VariableTable[index].assigned.
func (m *Manager[T]) SetVarValue(index, prev, next int) error {
	cur, err := m.variables.Assigned(index)
	if err != nil {
		return err
	}
	if cur != next {
		return fmt.Errorf("mutex: restoring assignment of variable %d: expected %d, found %d: %w",
			index, next, cur, ErrInconsistentRestore)
	}
	if err := m.variables.Assign(index, prev); err != nil {
		return err
	}
	m.tracef("restore set_var_value(%d, %d -> %d)", index, next, prev)
	return nil
}

// SetValStatus is the restoration handler for ValueTable[index].enabled.
// prev and next are the 0/1 encoding every Action field uses uniformly.
func (m *Manager[T]) SetValStatus(index, prev, next int) error {
	cur, err := m.values.Status(index)
	if err != nil {
		return err
	}
	if boolToInt(cur) != next {
		return fmt.Errorf("mutex: restoring status of value %d: expected %d, found %d: %w",
			index, next, boolToInt(cur), ErrInconsistentRestore)
	}
	if err := m.values.SetStatus(index, intToBool(prev)); err != nil {
		return err
	}
	m.tracef("restore set_val_status(%d, %d -> %d)", index, next, prev)
	return nil
}

// SetValNbMutexes is the restoration handler for
// ValueTable[index].activeMutexes.
func (m *Manager[T]) SetValNbMutexes(index, prev, next int) error {
	cur, err := m.values.NbMutexes(index)
	if err != nil {
		return err
	}
	if cur != next {
		return fmt.Errorf("mutex: restoring active-mutex count of value %d: expected %d, found %d: %w",
			index, next, cur, ErrInconsistentRestore)
	}
	if err := m.values.SetNbMutexes(index, prev); err != nil {
		return err
	}
	m.tracef("restore set_val_nb_mutexes(%d, %d -> %d)", index, next, prev)
	return nil
}

// Assign performs the forward mutation of assigning valueIndex to the
// variable at varIndex, and returns the Frame of compensating actions
// that undoes it. It:
//
//  1. records the variable's previous assignment and assigns valueIndex;
//  2. disables every other currently-enabled value in the variable's
//     domain, decrementing the active-mutex count of each of their mutex
//     partners;
//  3. disables every currently-enabled mutex partner of valueIndex,
//     decrementing the plausible-value count of the variable owning each.
//
// Each value's actual current status is captured before disabling it,
// rather than assumed enabled. This keeps the returned Frame correct (and
// its actions consistency-checkable) even when Assign is called against a
// variable that already has some domain values disabled — e.g. by a
// previous forward-checking step — not only against a pristine variable.
//
// Assign does not check that valueIndex is currently enabled: that is the
// caller's responsibility.
func (m *Manager[T]) Assign(varIndex, valueIndex int) (*Frame, error) {
	first, err := m.variables.First(varIndex)
	if err != nil {
		return nil, err
	}
	last, err := m.variables.Last(varIndex)
	if err != nil {
		return nil, err
	}
	if valueIndex < first || valueIndex > last {
		return nil, fmt.Errorf("mutex: value %d is not in the domain of variable %d: %w",
			valueIndex, varIndex, ErrOutOfRange)
	}

	frame := NewFrame()

	prevAssigned, err := m.variables.Assigned(varIndex)
	if err != nil {
		return nil, err
	}
	if err := m.variables.Assign(varIndex, valueIndex); err != nil {
		return nil, err
	}
	frame.Push(NewAction(SetVarValue, varIndex, prevAssigned, valueIndex))

	for w := first; w <= last; w++ {
		if w == valueIndex {
			continue
		}
		enabled, err := m.values.Status(w)
		if err != nil {
			return nil, err
		}
		if !enabled {
			continue
		}
		if err := m.values.SetStatus(w, false); err != nil {
			return nil, err
		}
		frame.Push(NewStatusAction(w, true, false))

		partners, err := m.mutexPartners(w)
		if err != nil {
			return nil, err
		}
		for _, k := range partners {
			nBefore, err := m.values.NbMutexes(k)
			if err != nil {
				return nil, err
			}
			if _, err := m.values.DecrementNbMutexes(k); err != nil {
				return nil, err
			}
			frame.Push(NewAction(SetValNbMutexes, k, nBefore, nBefore-1))
		}
	}

	partners, err := m.mutexPartners(valueIndex)
	if err != nil {
		return nil, err
	}
	for _, mm := range partners {
		enabled, err := m.values.Status(mm)
		if err != nil {
			return nil, err
		}
		if err := m.values.SetStatus(mm, false); err != nil {
			return nil, err
		}
		frame.Push(NewStatusAction(mm, enabled, false))

		if !enabled {
			continue
		}
		owner, err := m.ValToVar(mm)
		if err != nil {
			return nil, err
		}
		nBefore, err := m.variables.NbValues(owner)
		if err != nil {
			return nil, err
		}
		if _, err := m.variables.DecrementNbValues(owner); err != nil {
			return nil, err
		}
		frame.Push(NewAction(SetVarNbValues, owner, nBefore, nBefore-1))
	}

	m.tracef("assign variable %d <- value %d (frame of %d actions)", varIndex, valueIndex, frame.Size())
	return frame, nil
}

// mutexPartners returns the adjacency list for value i, or an empty slice
// if no constraint has been posted yet (no mutex store exists).
func (m *Manager[T]) mutexPartners(i int) ([]int, error) {
	if m.mutexes == nil {
		return nil, nil
	}
	return m.mutexes.Get(i)
}
