package spatial

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors below via errors.Is.
var (
	ErrConfiguration     = errors.New("configuration error")
	ErrUnknownDependency = errors.New("unknown dependency")
	ErrCyclicDependency  = errors.New("cyclic dependency")
	ErrUnknownType       = errors.New("unknown spatial type")
	ErrUnknownEvent      = errors.New("unknown event")
	ErrUnknownOperation  = errors.New("unknown operation")
	ErrTypeMismatch      = errors.New("type mismatch")
)

// ConfigurationError reports an invalid spatial type declaration,
// such as registering the same name twice.
type ConfigurationError struct {
	Type   string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("spatial type %q: %s", e.Type, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// UnknownDependencyError reports a declared dependency that is not registered.
type UnknownDependencyError struct {
	Type       string
	Dependency string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("spatial type %q depends on unregistered type %q", e.Type, e.Dependency)
}

func (e *UnknownDependencyError) Is(target error) bool { return target == ErrUnknownDependency }

// CyclicDependencyError reports a dependency cycle. Cycle starts and ends
// with the same type name, e.g. [a b a].
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return "dependency cycle: " + strings.Join(e.Cycle, " -> ")
}

func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// UnknownTypeError is returned by lookups of spatial type names that were
// never registered or were not produced by a run.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("no such spatial type %q", e.Name)
}

func (e *UnknownTypeError) Is(target error) bool { return target == ErrUnknownType }

// UnknownEventError reports a listener registered for an event name the
// document source never emits.
type UnknownEventError struct {
	Type  string
	Event string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("spatial type %q listens for unknown event %q", e.Type, e.Event)
}

func (e *UnknownEventError) Is(target error) bool { return target == ErrUnknownEvent }

// UnknownOperationError reports an alter operation name outside the
// recognized set.
type UnknownOperationError struct {
	Attribute string
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("attribute %q: unknown operation %q", e.Attribute, e.Operation)
}

func (e *UnknownOperationError) Is(target error) bool { return target == ErrUnknownOperation }

// TypeMismatchError reports a numeric operation applied to an attribute
// that is not numeric.
type TypeMismatchError struct {
	Attribute string
	Operation Operation
	Kind      Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("attribute %q: %s requires a number, have %s", e.Attribute, e.Operation, e.Kind)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }
