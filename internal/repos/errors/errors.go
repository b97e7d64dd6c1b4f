package errors

import (
	stdErrors "errors"
	"fmt"
)

// Operation identifies the logical operation producing a contextual error.
type Operation string

const (
	// OperationRegistryLoad denotes reading the persisted registry.
	OperationRegistryLoad Operation = "registry.load"
	// OperationRegistrySave denotes writing the persisted registry.
	OperationRegistrySave Operation = "registry.save"
	// OperationRegister denotes adding a path to the registry.
	OperationRegister Operation = "registry.register"
	// OperationUnregister denotes removing a path from the registry.
	OperationUnregister Operation = "registry.unregister"
	// OperationInspect denotes querying checkout state.
	OperationInspect Operation = "checkout.inspect"
	// OperationFanOut denotes running an operation across checkouts.
	OperationFanOut Operation = "checkout.fanout"
	// OperationScopeResolve denotes resolving the working set.
	OperationScopeResolve Operation = "checkout.resolve"
)

// Sentinel describes a stable error code shared across components.
type Sentinel string

// Error returns the sentinel code string.
func (sentinel Sentinel) Error() string {
	return string(sentinel)
}

// Code exposes the sentinel code string.
func (sentinel Sentinel) Code() string {
	return string(sentinel)
}

// OperationError annotates an error with operation metadata.
type OperationError struct {
	operation Operation
	subject   string
	err       error
	message   string
}

// Error renders "operation[subject]: detail", omitting the brackets without a subject.
func (operationError OperationError) Error() string {
	prefix := string(operationError.operation)
	if len(operationError.subject) > 0 {
		prefix += "[" + operationError.subject + "]"
	}
	return prefix + ": " + operationError.detail()
}

func (operationError OperationError) detail() string {
	if len(operationError.message) > 0 {
		return operationError.message
	}
	return fmt.Sprint(operationError.err)
}

// Unwrap exposes the underlying error chain.
func (operationError OperationError) Unwrap() error {
	return operationError.err
}

// Operation returns the originating operation identifier.
func (operationError OperationError) Operation() Operation {
	return operationError.operation
}

// Subject returns the path the error relates to.
func (operationError OperationError) Subject() string {
	return operationError.subject
}

// Code returns the code of the first Sentinel in the chain, or "" when there is none.
func (operationError OperationError) Code() string {
	var sentinel Sentinel
	if operationError.err != nil && stdErrors.As(operationError.err, &sentinel) {
		return sentinel.Code()
	}
	return ""
}

// Wrap constructs an OperationError combining the provided metadata with the base sentinel.
func Wrap(operation Operation, subject string, sentinel Sentinel, detail error) error {
	if len(sentinel) == 0 {
		return OperationError{operation: operation, subject: subject, err: detail}
	}
	baseError := error(sentinel)
	if detail != nil {
		baseError = fmt.Errorf("%w: %w", sentinel, detail)
	}
	return OperationError{operation: operation, subject: subject, err: baseError}
}

// WrapMessage constructs an OperationError combining the provided metadata with a formatted message.
func WrapMessage(operation Operation, subject string, sentinel Sentinel, message string) error {
	if len(message) == 0 {
		return Wrap(operation, subject, sentinel, nil)
	}
	return OperationError{operation: operation, subject: subject, err: fmt.Errorf("%w: %s", sentinel, message), message: message}
}

var (
	// ErrRegistryUnreadable indicates the registry file could not be read.
	ErrRegistryUnreadable Sentinel = "registry_unreadable"
	// ErrRegistryMalformed indicates the registry file could not be decoded.
	ErrRegistryMalformed Sentinel = "registry_malformed"
	// ErrRegistryWriteFailed indicates the registry file could not be written.
	ErrRegistryWriteFailed Sentinel = "registry_write_failed"
	// ErrRegistryLockFailed indicates the registry lock could not be acquired.
	ErrRegistryLockFailed Sentinel = "registry_lock_failed"
	// ErrPathMissing indicates a path argument was empty or could not be resolved.
	ErrPathMissing Sentinel = "path_missing"
	// ErrInspectionFailed indicates a state query failed for a checkout.
	ErrInspectionFailed Sentinel = "inspection_failed"
	// ErrCommandMissing indicates an operation was requested without a command.
	ErrCommandMissing Sentinel = "command_missing"
	// ErrCommandFailed indicates an operation exited unsuccessfully in a checkout.
	ErrCommandFailed Sentinel = "command_failed"
	// ErrUserConfirmationFailed indicates an error occurred while prompting the user.
	ErrUserConfirmationFailed Sentinel = "user_confirmation_failed"
	// ErrScopeConflict indicates a scope override was combined with a registry mutation.
	ErrScopeConflict Sentinel = "scope_conflict"
)
