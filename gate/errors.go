package gate

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.
var (
	// ErrDenied is the normal "no" outcome of Checker.Authorize.
	ErrDenied = errors.New("authorization denied")

	ErrUnknownRole  = errors.New("unknown role")
	ErrMissingRule  = errors.New("no rule defined")
	ErrUndeclared   = errors.New("resource or action not declared in registry")
	ErrInstanceType = errors.New("unexpected resource instance type")
)

// ConfigError reports a policy configuration defect: a missing or undeclared
// rule, or an unrecognized role. It is never caused by the subject.
type ConfigError struct {
	Role       string
	Permission Permission
	Err        error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Permission != "" && e.Role != "":
		return fmt.Sprintf("gate: role %q, %s: %v", e.Role, e.Permission, e.Err)
	case e.Permission != "":
		return fmt.Sprintf("gate: %s: %v", e.Permission, e.Err)
	case e.Role != "":
		return fmt.Sprintf("gate: role %q: %v", e.Role, e.Err)
	default:
		return fmt.Sprintf("gate: %v", e.Err)
	}
}

func (e *ConfigError) Unwrap() error { return e.Err }

// PredicateError reports a dynamic rule that panicked while being evaluated.
type PredicateError struct {
	Permission Permission
	Value      any
}

func (e *PredicateError) Error() string {
	return fmt.Sprintf("gate: predicate for %s failed: %v", e.Permission, e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PredicateError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
