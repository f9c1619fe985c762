package checkout

import "errors"

// IdentityError is returned when no persisted customer can be resolved for the run.
type IdentityError struct{}

func (IdentityError) Error() string {
	return "to create an instant order, the customer must be logged in"
}

// PersistenceError wraps a failed cart write.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// PlacementError wraps a rejection from the order placer.
type PlacementError struct {
	Err error
}

func (e *PlacementError) Error() string { return e.Err.Error() }
func (e *PlacementError) Unwrap() error { return e.Err }

// Error is returned by Execute for every failed run. Its message is the
// message of the step error; RollbackErr is set when deactivating the cart
// failed as well.
type Error struct {
	Step        string
	Err         error
	RollbackErr error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() []error {
	if e.RollbackErr != nil {
		return []error{e.Err, e.RollbackErr}
	}
	return []error{e.Err}
}

// IsIdentity reports whether err was caused by a missing customer identity.
func IsIdentity(err error) bool {
	var idErr IdentityError
	return errors.As(err, &idErr)
}
