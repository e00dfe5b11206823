// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package errors declares the sentinel errors of the runtime. Callers branch
// on them with errors.Is; the NewErrX constructors attach context without
// hiding the sentinel.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates a malformed directive, route spec or transition target.
	ErrValidation = errors.New("validation failed")

	// ErrExecution indicates an action run failure, a directive application failure
	// or a child spawn/kill failure.
	ErrExecution = errors.New("execution failed")

	// ErrQueueOverflow is returned when the mailbox has reached its capacity.
	// The enqueue is rejected and the queue is left unchanged.
	ErrQueueOverflow = errors.New("queue overflow: mailbox is full")

	// ErrInvalidTransition is returned when a status transition is not in the
	// allowed transition table. The status is left unchanged.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNoMatchingRoute is returned when a signal's type matches none of the
	// installed routes. The agent survives; the current signal fails.
	ErrNoMatchingRoute = errors.New("no matching route")

	// ErrChildNotFound is returned when a child handle cannot be resolved.
	ErrChildNotFound = errors.New("child not found")

	// ErrAgentNotFound indicates that the specified agent could not be found in the system.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrActionNotFound is returned when an instruction references a capability
	// id that is not registered with the agent.
	ErrActionNotFound = errors.New("action not found")

	// ErrDead indicates that the agent is no longer alive or has been terminated.
	ErrDead = errors.New("agent is not alive")

	// ErrBootFailure is returned when the agent's boot sequence (capability
	// registration, skill installation, mount hook) fails. The spawn is aborted.
	ErrBootFailure = errors.New("boot failed")

	// ErrRequestTimeout indicates that a synchronous call timed out while
	// waiting for the agent to process its signal.
	ErrRequestTimeout = errors.New("request timed out")

	// ErrInvalidTimeout is returned when a timeout value is less than or equal to zero.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidRoute is returned when a route pattern cannot be installed.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInvalidDirective is returned when a directive fails validation before
	// application.
	ErrInvalidDirective = errors.New("invalid directive")

	// ErrNameRequired is returned when an agent or system name is required but not provided.
	ErrNameRequired = errors.New("name is required")

	// ErrAgentAlreadyExists is returned when spawning an agent with a name that already exists.
	ErrAgentAlreadyExists = errors.New("agent already exists")

	// ErrSystemNotStarted indicates that the agent system has not been started before use.
	ErrSystemNotStarted = errors.New("agent system is not running")

	// ErrSystemAlreadyStarted is returned when attempting to start an agent system that is already running.
	ErrSystemAlreadyStarted = errors.New("agent system has already started")

	// ErrMailboxDisposed is returned when operations are attempted on a disposed mailbox.
	ErrMailboxDisposed = errors.New("mailbox has been disposed")

	// ErrAlreadyProcessing is returned by Step when the agent is already busy
	// processing a signal.
	ErrAlreadyProcessing = errors.New("agent is already processing")

	// ErrInvalidSystemName is returned when the agent system name contains invalid characters.
	// A valid name must consist of only alphanumeric characters ([a-zA-Z0-9]), with optional
	// hyphens or underscores that are not leading.
	ErrInvalidSystemName = errors.New("invalid system name, must contain only word characters (i.e. [a-zA-Z0-9] plus non-leading '-' or '_')")
)

// NewErrInvalidTransition formats an ErrInvalidTransition with the current and
// desired status.
func NewErrInvalidTransition(current, desired fmt.Stringer) error {
	return fmt.Errorf("transition=(%s -> %s) %w", current.String(), desired.String(), ErrInvalidTransition)
}

// NewErrQueueOverflow formats an ErrQueueOverflow with the mailbox capacity.
func NewErrQueueOverflow(capacity int64) error {
	return fmt.Errorf("capacity=(%d) %w", capacity, ErrQueueOverflow)
}

// NewErrNoMatchingRoute formats an ErrNoMatchingRoute with the signal type.
func NewErrNoMatchingRoute(signalType string) error {
	return fmt.Errorf("signal type=(%s) %w", signalType, ErrNoMatchingRoute)
}

// NewErrChildNotFound formats an ErrChildNotFound with the given handle.
func NewErrChildNotFound(handle string) error {
	return fmt.Errorf("handle=(%s) %w", handle, ErrChildNotFound)
}

// NewErrAgentNotFound formats an ErrAgentNotFound with the given agent name.
func NewErrAgentNotFound(name string) error {
	return fmt.Errorf("agent=(%s) %w", name, ErrAgentNotFound)
}

// NewErrActionNotFound formats an ErrActionNotFound with the given capability id.
func NewErrActionNotFound(id string) error {
	return fmt.Errorf("action=(%s) %w", id, ErrActionNotFound)
}

// NewErrAgentAlreadyExists formats an ErrAgentAlreadyExists for the given agent name.
func NewErrAgentAlreadyExists(name string) error {
	return fmt.Errorf("agent=(%s) %w", name, ErrAgentAlreadyExists)
}

// NewErrBootFailure wraps a base error with ErrBootFailure to indicate a startup failure.
func NewErrBootFailure(err error) error {
	return errors.Join(ErrBootFailure, err)
}

// NewErrExecution wraps a base error with ErrExecution for additional context.
func NewErrExecution(err error) error {
	return errors.Join(ErrExecution, err)
}

// NewErrValidation wraps a base error with ErrValidation for additional context.
func NewErrValidation(err error) error {
	return errors.Join(ErrValidation, err)
}

// NewErrInvalidRoute formats an ErrInvalidRoute with the offending pattern and reason.
func NewErrInvalidRoute(pattern, reason string) error {
	return fmt.Errorf("pattern=(%s) %s: %w", pattern, reason, ErrInvalidRoute)
}

// NewErrInvalidDirective wraps a base error with ErrInvalidDirective.
func NewErrInvalidDirective(err error) error {
	return errors.Join(ErrInvalidDirective, err)
}

// PanicError defines the panic error
// wrapping the underlying error
type PanicError struct {
	err error
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError
func NewPanicError(err error) *PanicError {
	return &PanicError{err}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

func (e *PanicError) Unwrap() error {
	return e.err
}

// InternalError defines an error that is explicit to the application
type InternalError struct {
	err error
}

// enforce compilation error
var _ error = (*InternalError)(nil)

// NewInternalError returns an instance of InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{
		err: fmt.Errorf("internal error: %w", err),
	}
}

// Error implements the standard error interface
func (i *InternalError) Error() string {
	return i.err.Error()
}

func (i *InternalError) Unwrap() error {
	return i.err
}

// SpawnError defines an error when re/creating an agent
type SpawnError struct {
	err error
}

// enforce compilation error
var _ error = (*SpawnError)(nil)

// NewSpawnError returns an instance of SpawnError
func NewSpawnError(err error) *SpawnError {
	return &SpawnError{
		err: fmt.Errorf("spawn error: %w", err),
	}
}

// Error implements the standard error interface
func (s *SpawnError) Error() string {
	return s.err.Error()
}

func (s *SpawnError) Unwrap() error {
	return s.err
}
