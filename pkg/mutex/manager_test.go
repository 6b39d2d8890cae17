package mutex

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustVariable(t *testing.T, name string) Variable {
	t.Helper()
	v, err := NewVariable(name)
	if err != nil {
		t.Fatalf("NewVariable(%q) error = %v", name, err)
	}
	return v
}

func domain(values ...int) []Value[int] {
	out := make([]Value[int], len(values))
	for i, v := range values {
		out[i] = NewValue(v)
	}
	return out
}

func TestManager_AddVariable(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")

	idx, err := m.AddVariable(x, domain(1, 2, 3))
	if err != nil {
		t.Fatalf("AddVariable() error = %v", err)
	}
	if idx != 0 {
		t.Fatalf("AddVariable() index = %d, want 0", idx)
	}
	if m.ValueTable().Size() != 3 {
		t.Errorf("ValueTable().Size() = %d, want 3", m.ValueTable().Size())
	}
	if n, _ := m.VariableTable().NbValues(0); n != 3 {
		t.Errorf("NbValues(0) = %d, want 3", n)
	}
}

func TestManager_AddVariable_EmptyDomain(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	if _, err := m.AddVariable(x, nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddVariable(nil domain) error = %v, want ErrInvalidArgument", err)
	}
}

func TestManager_AddVariable_DuplicateName(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	if _, err := m.AddVariable(x, domain(1)); err != nil {
		t.Fatalf("first AddVariable() error = %v", err)
	}

	before := snapshot(m)
	if _, err := m.AddVariable(x, domain(2)); !errors.Is(err, ErrDuplicateVariable) {
		t.Errorf("second AddVariable() error = %v, want ErrDuplicateVariable", err)
	}
	assertUnchanged(t, m, before)
}

func TestManager_AddVariable_DuplicateValue(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")

	before := snapshot(m)
	if _, err := m.AddVariable(x, domain(1, 1)); !errors.Is(err, ErrDuplicateValue) {
		t.Errorf("AddVariable(dup domain) error = %v, want ErrDuplicateValue", err)
	}
	assertUnchanged(t, m, before)
}

func TestManager_AddVariable_AfterConstraint(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2))
	m.AddVariable(y, domain(1, 2))
	if err := m.AddConstraint(func(a, b int) bool { return a != b }, x, y); err != nil {
		t.Fatalf("AddConstraint() error = %v", err)
	}

	z := mustVariable(t, "z")
	if _, err := m.AddVariable(z, domain(1)); !errors.Is(err, ErrAlreadyConstrained) {
		t.Errorf("AddVariable() after constraint error = %v, want ErrAlreadyConstrained", err)
	}
}

func TestManager_AddConstraint_UnregisteredVariable(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	m.AddVariable(x, domain(1, 2))
	ghost := mustVariable(t, "ghost")

	if err := m.AddConstraint(func(a, b int) bool { return true }, x, ghost); !errors.Is(err, ErrUnregisteredVariable) {
		t.Errorf("AddConstraint() error = %v, want ErrUnregisteredVariable", err)
	}
}

func TestManager_AddConstraint_Reflexive(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	m.AddVariable(x, domain(1, 2))

	if err := m.AddConstraint(func(a, b int) bool { return true }, x, x); !errors.Is(err, ErrReflexiveMutex) {
		t.Errorf("AddConstraint(x, x) error = %v, want ErrReflexiveMutex", err)
	}
}

// TestManager_AddConstraint_AllDifferent exercises the classic binary
// not-equal constraint between two 3-valued variables sharing a domain,
// as a search for an all-different assignment would post it.
func TestManager_AddConstraint_AllDifferent(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2, 3))
	m.AddVariable(y, domain(1, 2, 3))

	if err := m.AddConstraint(func(a, b int) bool { return a != b }, x, y); err != nil {
		t.Fatalf("AddConstraint() error = %v", err)
	}

	// x=1 (value 0) forbids y=1 (value 3) but not y=2 or y=3.
	found, err := m.MutexStore().Find(0, 3)
	if err != nil || !found {
		t.Errorf("mutex(0,3) = %v, %v, want true, nil", found, err)
	}
	found, err = m.MutexStore().Find(0, 4)
	if err != nil || found {
		t.Errorf("mutex(0,4) = %v, %v, want false, nil", found, err)
	}
	// Symmetric: mutex must be recorded from both endpoints.
	found, _ = m.MutexStore().Find(3, 0)
	if !found {
		t.Error("mutex(3,0) should mirror mutex(0,3)")
	}

	if n, _ := m.ValueTable().NbMutexes(0); n != 1 {
		t.Errorf("NbMutexes(value 0) = %d, want 1 (only x=1,y=1 collide)", n)
	}
}

// TestManager_AddConstraint_Deterministic builds the same all-different
// constraint over two independently constructed managers and asserts
// their mutex adjacency lists are identical, via go-cmp rather than a
// hand-rolled comparison loop.
func TestManager_AddConstraint_Deterministic(t *testing.T) {
	build := func() *Manager[int] {
		m := NewManager[int]()
		x := mustVariable(t, "x")
		y := mustVariable(t, "y")
		m.AddVariable(x, domain(1, 2, 3))
		m.AddVariable(y, domain(1, 2, 3))
		if err := m.AddConstraint(func(a, b int) bool { return a != b }, x, y); err != nil {
			t.Fatalf("AddConstraint() error = %v", err)
		}
		return m
	}
	m1, m2 := build(), build()

	adjacency := func(m *Manager[int]) [][]int {
		out := make([][]int, m.MutexStore().Size())
		for i := range out {
			out[i], _ = m.MutexStore().Get(i)
		}
		return out
	}

	if diff := cmp.Diff(adjacency(m1), adjacency(m2)); diff != "" {
		t.Errorf("mutex adjacency differs between two identically-built managers (-m1 +m2):\n%s", diff)
	}
}

func TestManager_ValToVar(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2, 3))
	m.AddVariable(y, domain(4, 5))

	for _, tt := range []struct {
		valueIndex  int
		wantVar     int
		wantErr     bool
	}{
		{0, 0, false},
		{2, 0, false},
		{3, 1, false},
		{4, 1, false},
		{5, 0, true},
		{-1, 0, true},
	} {
		got, err := m.ValToVar(tt.valueIndex)
		if tt.wantErr {
			if !errors.Is(err, ErrOutOfRange) {
				t.Errorf("ValToVar(%d) error = %v, want ErrOutOfRange", tt.valueIndex, err)
			}
			continue
		}
		if err != nil || got != tt.wantVar {
			t.Errorf("ValToVar(%d) = %d, %v, want %d, nil", tt.valueIndex, got, err, tt.wantVar)
		}
	}
}

// TestManager_Assign_UndoRestoresSnapshot asserts the core round-trip
// guarantee of the undo machinery: assigning a value and then unwinding
// the resulting frame must return the manager to a state structurally
// equal to the pre-assignment snapshot.
func TestManager_Assign_UndoRestoresSnapshot(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2, 3))
	m.AddVariable(y, domain(1, 2, 3))
	if err := m.AddConstraint(func(a, b int) bool { return a != b }, x, y); err != nil {
		t.Fatalf("AddConstraint() error = %v", err)
	}

	before := snapshot(m)

	frame, err := m.Assign(0, 0) // x = 1
	if err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if frame.Size() == 0 {
		t.Fatal("Assign() returned an empty frame for a constrained variable")
	}

	// The assignment must actually have changed something observable.
	if diff := cmp.Diff(before, snapshot(m), snapshotCmpOpts); diff == "" {
		t.Fatal("manager state did not change after Assign()")
	}

	stack := NewUndoStack()
	stack.Push(frame)
	if err := stack.Unwind(m); err != nil {
		t.Fatalf("Unwind() error = %v", err)
	}

	if diff := cmp.Diff(before, snapshot(m), snapshotCmpOpts); diff != "" {
		t.Errorf("manager state after Unwind() does not match the pre-assignment snapshot (-before +after):\n%s", diff)
	}
}

func TestManager_Assign_DisablesMutexPartners(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2)) // values 0, 1
	m.AddVariable(y, domain(1, 2)) // values 2, 3
	if err := m.AddConstraint(func(a, b int) bool { return a != b }, x, y); err != nil {
		t.Fatalf("AddConstraint() error = %v", err)
	}

	// x = 1 (value 0) is mutex with y = 1 (value 2); assigning it should
	// disable value 2 and leave value 3 (y = 2) enabled.
	if _, err := m.Assign(0, 0); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}

	enabled, _ := m.ValueTable().Status(2)
	if enabled {
		t.Error("value 2 (y=1) should be disabled after assigning x=1")
	}
	enabled, _ = m.ValueTable().Status(3)
	if !enabled {
		t.Error("value 3 (y=2) should remain enabled after assigning x=1")
	}
	enabled, _ = m.ValueTable().Status(1)
	if enabled {
		t.Error("value 1 (the other value of x) should be disabled by the assignment itself")
	}

	if n, _ := m.VariableTable().NbValues(1); n != 1 {
		t.Errorf("NbValues(y) = %d, want 1 (one value eliminated)", n)
	}
}

func TestManager_Assign_OutOfDomain(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	y := mustVariable(t, "y")
	m.AddVariable(x, domain(1, 2))
	m.AddVariable(y, domain(3, 4))

	if _, err := m.Assign(0, 2); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Assign(var 0, value 2) error = %v, want ErrOutOfRange", err)
	}
}

func TestManager_RestorationHandlers_InconsistentRestore(t *testing.T) {
	m := NewManager[int]()
	x := mustVariable(t, "x")
	m.AddVariable(x, domain(1, 2))

	// The value's current status is true (1); claiming it was 0 must fail.
	if err := m.SetValStatus(0, 1, 0); !errors.Is(err, ErrInconsistentRestore) {
		t.Errorf("SetValStatus() error = %v, want ErrInconsistentRestore", err)
	}
	if err := m.SetVarValue(0, 0, 5); !errors.Is(err, ErrInconsistentRestore) {
		t.Errorf("SetVarValue() error = %v, want ErrInconsistentRestore", err)
	}
}

// --- snapshot helpers -------------------------------------------------
//
// snapshot captures the manager's tables by copying their private entry
// slices directly, and comparisons go through cmp.Diff with
// cmp.AllowUnexported rather than a hand-rolled field-by-field walker.

type tableSnapshot struct {
	values    []valueEntry[int]
	variables []varEntry
}

var snapshotCmpOpts = cmp.AllowUnexported(tableSnapshot{}, valueEntry[int]{}, varEntry{}, Value[int]{})

func snapshot(m *Manager[int]) tableSnapshot {
	return tableSnapshot{
		values:    append([]valueEntry[int](nil), m.values.entries...),
		variables: append([]varEntry(nil), m.variables.entries...),
	}
}

func assertUnchanged(t *testing.T, m *Manager[int], before tableSnapshot) {
	t.Helper()
	if diff := cmp.Diff(before, snapshot(m), snapshotCmpOpts); diff != "" {
		t.Errorf("manager state changed despite the call failing; it must leave the manager in its pre-call state (-before +after):\n%s", diff)
	}
}
