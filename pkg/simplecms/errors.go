package simplecms

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrNotFound indicates an entity was not found
	ErrNotFound = errors.New("entity not found")

	// ErrNotRegistered indicates the entity name is not registered
	ErrNotRegistered = errors.New("entity not registered")

	// ErrDuplicateEntity indicates a duplicate: an entity name registered
	// twice, or a created entity whose id is already stored
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrInvalidID indicates an id could not be parsed for the entity's id field
	ErrInvalidID = errors.New("invalid entity id")

	// ErrBadFilter indicates a list filter referenced an unknown or non-filterable column
	ErrBadFilter = errors.New("invalid list filter")

	// ErrDecode indicates a request body or form could not be decoded into the entity
	ErrDecode = errors.New("decode failed")

	// ErrWrongType indicates a value of the wrong Go type was passed for the named entity
	ErrWrongType = errors.New("value type does not match entity")

	// ErrNoID indicates an entity type has no field tagged cms:"id"
	ErrNoID = errors.New("entity has no id field")

	// ErrMultipleIDs indicates an entity type has more than one cms:"id" field
	ErrMultipleIDs = errors.New("entity has more than one id field")

	// ErrUnsupportedField indicates a field type the CMS cannot map to an input or column
	ErrUnsupportedField = errors.New("unsupported field type")

	// ErrBlobNotFound indicates an uploaded blob does not exist in the blob store
	ErrBlobNotFound = errors.New("blob not found")
)

// EntityError represents an error related to an entity operation
type EntityError struct {
	Entity string
	Op     string
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("entity operation %s failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

// HookError marks an error returned by a before hook or OnCreate, so
// transport layers can report a veto as a client error rather than a
// server failure.
type HookError struct {
	Err error
}

func (e *HookError) Error() string {
	return e.Err.Error()
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// SchemaError represents an error found while parsing an entity type
type SchemaError struct {
	Type  string
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid entity type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("invalid entity type %s: field %s: %v", e.Type, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
