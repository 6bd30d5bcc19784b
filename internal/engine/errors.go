package engine

import "fmt"

// ValidationError reports invalid user input, e.g. saving a project
// with an empty name. Recoverable: the user corrects the input; no
// state changed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ErrNameRequired is returned when a save is attempted with an empty
// or whitespace-only project name.
var ErrNameRequired = &ValidationError{Msg: "project name must not be empty"}

// StoreError wraps an adapter I/O failure. Recoverable: in-memory
// state is retained, so nothing is lost; the next mutation or an
// explicit save re-attempts the write.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a load or delete referencing a project id
// that no longer exists. Recoverable: the engine substitutes a
// sensible default.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %s not found", e.ID)
}
