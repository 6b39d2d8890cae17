package mutex

import "fmt"

// NoAssignment is the sentinel stored in a variable table entry's assigned
// field before any value has been assigned to it. -1 works as a named
// constant for "unassigned" since every real value index is non-negative.
const NoAssignment = -1

// varEntry is one row of a VariableTable.
type varEntry struct {
	variable    Variable
	first, last int
	nbPlausible int
	assigned    int
}

// VariableTable is the dense sequence of (variable, first-idx, last-idx,
// nb-plausible, assigned-idx) entries, plus a name→slot map for O(1) name
// resolution. Every accessor is bounds-checked and fails with
// ErrOutOfRange on violation.
type VariableTable struct {
	entries []varEntry
	byName  map[string]int
}

// NewVariableTable returns an empty variable table.
func NewVariableTable() *VariableTable {
	return &VariableTable{byName: make(map[string]int)}
}

func newVariableTableWithCapacity(n int) *VariableTable {
	return &VariableTable{
		entries: make([]varEntry, 0, n),
		byName:  make(map[string]int, n),
	}
}

// Size returns the number of variables in this table.
func (vt *VariableTable) Size() int {
	return len(vt.entries)
}

func (vt *VariableTable) bounds(i int) error {
	if i < 0 || i >= len(vt.entries) {
		return fmt.Errorf("mutex: variable index %d out of [0,%d): %w", i, len(vt.entries), ErrOutOfRange)
	}
	return nil
}

// Insert appends a new entry for variable with domain bounds [first, last]
// (inclusive) and returns its slot index. Fails with ErrInvalidArgument if
// last < first (an empty domain), or ErrDuplicateVariable if the name is
// already registered.
func (vt *VariableTable) Insert(variable Variable, first, last int) (int, error) {
	if last < first {
		return 0, fmt.Errorf("mutex: empty domain for variable %q (first=%d, last=%d): %w",
			variable.Name(), first, last, ErrInvalidArgument)
	}
	if _, exists := vt.byName[variable.Name()]; exists {
		return 0, fmt.Errorf("mutex: variable %q already registered: %w", variable.Name(), ErrDuplicateVariable)
	}
	vt.entries = append(vt.entries, varEntry{
		variable:    variable,
		first:       first,
		last:        last,
		nbPlausible: 1 + last - first,
		assigned:    NoAssignment,
	})
	idx := len(vt.entries) - 1
	vt.byName[variable.Name()] = idx
	return idx, nil
}

// IndexByName resolves a variable's name to its slot index. Fails with
// ErrNameNotFound if no such variable has been registered.
func (vt *VariableTable) IndexByName(name string) (int, error) {
	idx, ok := vt.byName[name]
	if !ok {
		return 0, fmt.Errorf("mutex: variable %q: %w", name, ErrNameNotFound)
	}
	return idx, nil
}

// Variable returns the variable stored at slot i.
func (vt *VariableTable) Variable(i int) (Variable, error) {
	if err := vt.bounds(i); err != nil {
		return Variable{}, err
	}
	return vt.entries[i].variable, nil
}

// First returns the index of the first value in the domain of variable i.
func (vt *VariableTable) First(i int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	return vt.entries[i].first, nil
}

// Last returns the index of the last value in the domain of variable i.
func (vt *VariableTable) Last(i int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	return vt.entries[i].last, nil
}

// NbValues returns the number of plausible values remaining in the domain
// of variable i.
func (vt *VariableTable) NbValues(i int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	return vt.entries[i].nbPlausible, nil
}

// Assigned returns the value index currently assigned to variable i, or
// NoAssignment if none.
func (vt *VariableTable) Assigned(i int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	return vt.entries[i].assigned, nil
}

// Assign sets the value index assigned to variable i. It performs no
// membership check against the variable's domain: whether the assigned
// index is currently enabled or even within [first, last] is the caller's
// responsibility, not this table's.
func (vt *VariableTable) Assign(i, valueIndex int) error {
	if err := vt.bounds(i); err != nil {
		return err
	}
	vt.entries[i].assigned = valueIndex
	return nil
}

// SetNbValues sets the number of plausible values remaining for variable i.
func (vt *VariableTable) SetNbValues(i, n int) error {
	if err := vt.bounds(i); err != nil {
		return err
	}
	vt.entries[i].nbPlausible = n
	return nil
}

// IncrementNbValues increments the plausible-value count of variable i by
// 1 and returns the new count.
func (vt *VariableTable) IncrementNbValues(i int) (int, error) {
	return vt.IncrementNbValuesBy(i, 1)
}

// IncrementNbValuesBy increments the plausible-value count of variable i
// by delta and returns the new count.
func (vt *VariableTable) IncrementNbValuesBy(i, delta int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	vt.entries[i].nbPlausible += delta
	return vt.entries[i].nbPlausible, nil
}

// DecrementNbValues decrements the plausible-value count of variable i by
// 1 and returns the new count. Fails with ErrOutOfRange (underflow guard)
// if the count would go negative.
func (vt *VariableTable) DecrementNbValues(i int) (int, error) {
	return vt.DecrementNbValuesBy(i, 1)
}

// DecrementNbValuesBy decrements the plausible-value count of variable i
// by delta and returns the new count. Fails with ErrOutOfRange if delta
// exceeds the current count.
func (vt *VariableTable) DecrementNbValuesBy(i, delta int) (int, error) {
	if err := vt.bounds(i); err != nil {
		return 0, err
	}
	if delta > vt.entries[i].nbPlausible {
		return 0, fmt.Errorf("mutex: decrement %d exceeds plausible count %d at variable %d: %w",
			delta, vt.entries[i].nbPlausible, i, ErrOutOfRange)
	}
	vt.entries[i].nbPlausible -= delta
	return vt.entries[i].nbPlausible, nil
}

// Equal reports whether two variable tables hold the same entries in the
// same order. The name→slot map is not part of equality, only the
// structural content of each entry.
func (vt *VariableTable) Equal(other *VariableTable) bool {
	if other == nil || len(vt.entries) != len(other.entries) {
		return false
	}
	for i, e := range vt.entries {
		o := other.entries[i]
		if !e.variable.Equal(o.variable) || e.first != o.first || e.last != o.last ||
			e.nbPlausible != o.nbPlausible || e.assigned != o.assigned {
			return false
		}
	}
	return true
}
