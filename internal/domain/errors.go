package domain

import "fmt"

// InputValidationError rejects malformed raw input at value-object
// construction time.
type InputValidationError struct {
	Field string
	Msg   string
}

func (e InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// NotFoundError indicates a referenced entity does not exist, or is
// archived where archived entities are not allowed.
type NotFoundError struct {
	Kind string
	Ref  Ref
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.Ref)
}

// AlreadyExistsError indicates a uniqueness violation, e.g. a second
// journal for the same date/period combination.
type AlreadyExistsError struct {
	Kind string
	Key  string
}

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s already exists for %s", e.Kind, e.Key)
}

// ConflictError indicates an optimistic concurrency violation on save.
// Callers are expected to retry.
type ConflictError struct {
	Kind    string
	Ref     Ref
	Version int
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s %d was modified concurrently (version %d is stale)", e.Kind, e.Ref, e.Version)
}

// CannotModifyError refuses edits to fields owned by another process,
// such as schedule-derived fields on generated tasks.
type CannotModifyError struct {
	Kind string
	Ref  Ref
	What string
}

func (e CannotModifyError) Error() string {
	return fmt.Sprintf("cannot modify %s %d: %s", e.Kind, e.Ref, e.What)
}

// FeatureUnavailableError refuses a use case gated behind a feature flag
// the user or workspace has not enabled.
type FeatureUnavailableError struct {
	Feature Feature
}

func (e FeatureUnavailableError) Error() string {
	return fmt.Sprintf("feature '%s' is not enabled", e.Feature)
}
