package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("action store is not configured")
	// ErrGateNotConfigured indicates the service is missing the registry gate.
	ErrGateNotConfigured = errors.New("service registry gate is not configured")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("action id generator is not configured")
	// ErrServiceRequired indicates a service name is required.
	ErrServiceRequired = errors.New("service name is required")
	// ErrActionIDRequired indicates an action ID is required.
	ErrActionIDRequired = errors.New("action id is required")
	// ErrEmptyUpdate indicates an update carried neither status nor metadata.
	ErrEmptyUpdate = errors.New("update requires a status or metadata")
	// ErrActionClosed marks a store write rejected because the stored
	// status was no longer active. The service resolves it into an
	// AlreadyClosedError naming the closing status.
	ErrActionClosed = errors.New("action is closed")
)

// NotFoundError indicates the referenced action does not exist.
type NotFoundError struct {
	ActionID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("action %s not found", e.ActionID)
}

// AlreadyClosedError indicates an update targeted an action that was
// already closed. Status carries the status the action closed with.
type AlreadyClosedError struct {
	ActionID string
	Status   Status
}

func (e AlreadyClosedError) Error() string {
	return fmt.Sprintf("action %s already closed with status %s", e.ActionID, e.Status)
}

// UnknownServiceError indicates a create request named a service the
// registry does not recognize.
type UnknownServiceError struct {
	Service string
}

func (e UnknownServiceError) Error() string {
	return fmt.Sprintf("service %q is not registered", e.Service)
}
