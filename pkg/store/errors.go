package store

import "fmt"

// NamespaceNotFoundError is fatal: the root namespace object could not be
// fetched, so there is nothing to export.
type NamespaceNotFoundError struct {
	Namespace string
	Err       error
}

func (e *NamespaceNotFoundError) Error() string {
	return fmt.Sprintf("namespace %q not found: %v", e.Namespace, e.Err)
}

func (e *NamespaceNotFoundError) Unwrap() error { return e.Err }

// PartialAccessError records a single resource type that could not be listed.
// It degrades that type to unavailable; the run continues with the remainder.
type PartialAccessError struct {
	Resource string
	Err      error
}

func (e *PartialAccessError) Error() string {
	return fmt.Sprintf("cannot list %s: %v", e.Resource, e.Err)
}

func (e *PartialAccessError) Unwrap() error { return e.Err }
