package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrWouldCreateCycle is wrapped by a ConflictError when an edge would close a cycle
	ErrWouldCreateCycle = errors.New("would create cycle")

	// ErrUnsupportedSlot is wrapped by a ConflictError when a node kind lacks the requested slot
	ErrUnsupportedSlot = errors.New("unsupported slot")

	// ErrTopologicalOrder is wrapped by an EncodingError when the sort does not cover every node
	ErrTopologicalOrder = errors.New("topological order does not cover every node")
)

// ValidationError lists every invariant a graph violates
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Issues, "; "))
}

// NewValidationError creates a new ValidationError
func NewValidationError(issues []string) error {
	return &ValidationError{Issues: issues}
}

// InvariantError reports an internal inconsistency that normal use cannot produce
type InvariantError struct {
	// Op is the operation that detected the breach
	Op string
	// Err is the underlying error
	Err error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s: %v", e.Op, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}

// NewInvariantError creates a new InvariantError
func NewInvariantError(op string, err error) error {
	return &InvariantError{Op: op, Err: err}
}

// EncodingError is returned when lowering fails for a reason other than validation
type EncodingError struct {
	// Op is the lowering phase that failed
	Op string
	// Node is the ID of the node involved (if any)
	Node string
	// Err is the underlying error
	Err error
}

func (e *EncodingError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("encoding failed: %s: node '%s': %v", e.Op, e.Node, e.Err)
	}
	return fmt.Sprintf("encoding failed: %s: %v", e.Op, e.Err)
}

func (e *EncodingError) Unwrap() error {
	return e.Err
}

// NewEncodingError creates a new EncodingError
func NewEncodingError(op string, node string, err error) error {
	return &EncodingError{Op: op, Node: node, Err: err}
}

// NotFoundError is returned when an operation references an absent entity
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// ConflictError is returned when a mutation is structurally illegal
type ConflictError struct {
	Message string
	// Err is one of ErrWouldCreateCycle or ErrUnsupportedSlot
	Err error
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, err error) error {
	return &ConflictError{Message: message, Err: err}
}
