package core

import "fmt"

var (
	// ErrNotFound is returned when a session or user aggregate does not
	// exist in the underlying store. Absence is a normal negative result,
	// not a failure: expired sessions surface as ErrNotFound too.
	ErrNotFound = fmt.Errorf("not found")

	// ErrMissingUserID is returned when an operation that requires a user
	// identifier is called with an empty one.
	ErrMissingUserID = fmt.Errorf("user id is required")
)
