// Package main demonstrates basic pkg/mutex usage patterns.
//
// This example shows how to register variables and domains, post binary
// mutex constraints, make and undo a tentative assignment, and enable
// trace logging — the core building blocks an external search algorithm
// composes into a solver.
package main

import (
	"fmt"

	"cspmux/pkg/mutex"
)

func main() {
	fmt.Println("=== cspmux examples ===")
	fmt.Println()

	registeringVariables()
	postingConstraints()
	assignAndUndo()
	inconsistentRestore()
	tracedManager()
}

// registeringVariables demonstrates building a small variable table.
func registeringVariables() {
	fmt.Println("1. Registering Variables:")

	m := mutex.NewManager[int]()
	x, _ := mutex.NewVariable("x")
	idx, err := m.AddVariable(x, []mutex.Value[int]{
		mutex.NewValue(1), mutex.NewValue(2), mutex.NewValue(3),
	})
	if err != nil {
		fmt.Printf("   error: %v\n", err)
		return
	}

	n, _ := m.VariableTable().NbValues(idx)
	fmt.Printf("   x registered at slot %d with %d plausible values\n", idx, n)
	fmt.Println()
}

// postingConstraints demonstrates a binary not-equal constraint between
// two variables and inspects the resulting mutex adjacency.
func postingConstraints() {
	fmt.Println("2. Posting a Constraint (Disjunction of Incompatible Pairs):")

	m := mutex.NewManager[int]()
	x, _ := mutex.NewVariable("x")
	y, _ := mutex.NewVariable("y")
	m.AddVariable(x, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})
	m.AddVariable(y, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})

	neq := func(a, b int) bool { return a != b }
	if err := m.AddConstraint(neq, x, y); err != nil {
		fmt.Printf("   error: %v\n", err)
		return
	}

	partners, _ := m.MutexStore().Get(0) // x=1
	fmt.Printf("   value 0 (x=1) is mutex with value ids %v (y=1)\n", partners)
	fmt.Println()
}

// assignAndUndo demonstrates the Assign/Unwind round trip: a forward
// mutation and its exact compensating undo.
func assignAndUndo() {
	fmt.Println("3. Assign and Undo:")

	m := mutex.NewManager[int]()
	x, _ := mutex.NewVariable("x")
	y, _ := mutex.NewVariable("y")
	m.AddVariable(x, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})
	m.AddVariable(y, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})
	m.AddConstraint(func(a, b int) bool { return a != b }, x, y)

	stack := mutex.NewUndoStack()

	frame, err := m.Assign(0, 0) // x = 1
	if err != nil {
		fmt.Printf("   error: %v\n", err)
		return
	}
	stack.Push(frame)

	before, _ := m.VariableTable().NbValues(1)
	fmt.Printf("   after x=1, variable y has %d plausible value(s) left\n", before)

	if err := stack.Unwind(m); err != nil {
		fmt.Printf("   unwind error: %v\n", err)
		return
	}
	after, _ := m.VariableTable().NbValues(1)
	fmt.Printf("   after undo, variable y has %d plausible value(s) left\n", after)
	fmt.Println()
}

// inconsistentRestore demonstrates the consistency check a restoration
// handler performs: replaying the same frame twice is rejected.
func inconsistentRestore() {
	fmt.Println("4. Detecting an Inconsistent Restore:")

	m := mutex.NewManager[int]()
	x, _ := mutex.NewVariable("x")
	m.AddVariable(x, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})

	stack := mutex.NewUndoStack()
	frame, _ := m.Assign(0, 0)
	stack.Push(frame)

	if err := stack.Unwind(m); err != nil {
		fmt.Printf("   unexpected error: %v\n", err)
		return
	}
	// Replaying the already-undone frame finds value 1 enabled again rather
	// than disabled, so its restoration handler fails with
	// ErrInconsistentRestore.
	if err := frame.Exec(m); err != nil {
		fmt.Printf("   replaying the frame correctly failed: %v\n", err)
	}
	fmt.Println()
}

// tracedManager demonstrates WithTrace, which logs every registration,
// assignment, and restoration call through the standard log package.
func tracedManager() {
	fmt.Println("5. Trace-Enabled Manager:")

	m := mutex.NewManager[int](mutex.WithTrace[int]())
	x, _ := mutex.NewVariable("x")
	m.AddVariable(x, []mutex.Value[int]{mutex.NewValue(1), mutex.NewValue(2)})

	stack := mutex.NewUndoStack()
	frame, _ := m.Assign(0, 0)
	stack.Push(frame)
	stack.Unwind(m)
	fmt.Println("   (see log output above for the traced add_variable, assign, and restore calls)")
}
