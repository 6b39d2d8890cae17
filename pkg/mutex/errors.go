package mutex

import "errors"

// Error kinds surfaced by this package. Every accessor and mutator in
// pkg/mutex reports failures through one of these sentinels, wrapped with
// call-specific detail via fmt.Errorf("...: %w", Err...) so that callers
// can still recover the kind with errors.Is.
var (
	// ErrOutOfRange is returned by any index-bearing accessor when the
	// index falls outside the table it addresses.
	ErrOutOfRange = errors.New("mutex: index out of range")

	// ErrNameNotFound is returned by name-based variable lookup when no
	// variable with the given name has been registered.
	ErrNameNotFound = errors.New("mutex: variable name not found")

	// ErrDuplicateVariable is returned by VariableTable.Insert, and by
	// Manager.AddVariable, when the variable name is already registered.
	ErrDuplicateVariable = errors.New("mutex: duplicate variable name")

	// ErrDuplicateValue is returned by Manager.AddVariable when two values
	// supplied in the same domain compare equal.
	ErrDuplicateValue = errors.New("mutex: duplicate value in domain")

	// ErrInvalidArgument is returned by VariableTable.Insert, and by
	// Manager.AddVariable, when a variable's domain is empty.
	ErrInvalidArgument = errors.New("mutex: invalid argument")

	// ErrUnregisteredVariable is returned by Manager.AddConstraint when
	// either variable name has not been registered via AddVariable.
	ErrUnregisteredVariable = errors.New("mutex: unregistered variable")

	// ErrReflexiveMutex is returned by Manager.AddConstraint when both
	// variables given are the same variable.
	ErrReflexiveMutex = errors.New("mutex: reflexive constraint")

	// ErrAlreadyConstrained is returned by Manager.AddVariable once any
	// constraint has been posted; registration is permanently closed.
	ErrAlreadyConstrained = errors.New("mutex: manager already constrained")

	// ErrInconsistentRestore is returned by the four restoration handlers
	// when the field being restored does not currently hold the value the
	// action expects, indicating a misused or double-executed undo stack.
	ErrInconsistentRestore = errors.New("mutex: inconsistent restore")

	// ErrEmptyStack is returned by UndoStack.Unwind when the stack holds
	// no frames.
	ErrEmptyStack = errors.New("mutex: empty undo stack")
)
