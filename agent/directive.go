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

package agent

import (
	"errors"
	"fmt"

	gerrors "github.com/tochemey/agentic/errors"
)

// Directive instructs the agent to mutate its own bookkeeping or state,
// enqueue more work, or manage a child process. The set of variants is closed:
// Enqueue, RegisterCapability, DeregisterCapability, SpawnChild, KillChild and
// StateMutation. Directives are immutable and validated before application.
type Directive interface {
	// Validate reports whether the directive can be applied.
	Validate() error

	isDirective()
}

// enforce closed-sum compliance
var (
	_ Directive = (*Enqueue)(nil)
	_ Directive = (*RegisterCapability)(nil)
	_ Directive = (*DeregisterCapability)(nil)
	_ Directive = (*SpawnChild)(nil)
	_ Directive = (*KillChild)(nil)
	_ Directive = (*StateMutation)(nil)
)

// Enqueue re-enqueues the carried instruction at the front of the mailbox so
// it is processed before any signal that arrived after it.
type Enqueue struct {
	Instruction *Instruction
}

func (*Enqueue) isDirective() {}

// Validate implements Directive.
func (d *Enqueue) Validate() error {
	if d.Instruction == nil {
		return gerrors.NewErrInvalidDirective(errors.New("enqueue directive carries no instruction"))
	}
	if err := d.Instruction.Validate(); err != nil {
		return gerrors.NewErrInvalidDirective(err)
	}
	return nil
}

// RegisterCapability adds an action id to the agent's capability set.
// Registering an already-registered capability is a no-op success.
type RegisterCapability struct {
	ID string
}

func (*RegisterCapability) isDirective() {}

// Validate implements Directive.
func (d *RegisterCapability) Validate() error {
	if d.ID == "" {
		return gerrors.NewErrInvalidDirective(errors.New("capability id is required"))
	}
	return nil
}

// DeregisterCapability removes an action id from the agent's capability set.
// Deregistering an unknown capability is a no-op success.
type DeregisterCapability struct {
	ID string
}

func (*DeregisterCapability) isDirective() {}

// Validate implements Directive.
func (d *DeregisterCapability) Validate() error {
	if d.ID == "" {
		return gerrors.NewErrInvalidDirective(errors.New("capability id is required"))
	}
	return nil
}

// SpawnChild starts a child process owned by the agent's supervisor.
type SpawnChild struct {
	Spec ChildSpec
}

func (*SpawnChild) isDirective() {}

// Validate implements Directive.
func (d *SpawnChild) Validate() error {
	if err := d.Spec.Validate(); err != nil {
		return gerrors.NewErrInvalidDirective(err)
	}
	return nil
}

// KillChild stops the child process identified by Handle.
type KillChild struct {
	Handle string
}

func (*KillChild) isDirective() {}

// Validate implements Directive.
func (d *KillChild) Validate() error {
	if d.Handle == "" {
		return gerrors.NewErrInvalidDirective(errors.New("child handle is required"))
	}
	return nil
}

// MutationOp enumerates the state mutation operations.
type MutationOp int

const (
	// MutationSet writes Value at Path, creating intermediate map segments as
	// needed.
	MutationSet MutationOp = iota
	// MutationUpdate applies a transform function to the value at Path.
	MutationUpdate
	// MutationDelete removes the value at Path.
	MutationDelete
	// MutationReset writes nil at Path.
	MutationReset
)

// String returns the string representation of the mutation operation.
func (op MutationOp) String() string {
	switch op {
	case MutationSet:
		return "set"
	case MutationUpdate:
		return "update"
	case MutationDelete:
		return "delete"
	case MutationReset:
		return "reset"
	default:
		return fmt.Sprintf("unknown(%d)", int(op))
	}
}

// UpdateFunc transforms the current value at a path into a new one. It is the
// required Value type of a MutationUpdate.
type UpdateFunc func(current any) any

// StateMutation mutates the agent-owned state tree at a dot-path. State is
// mutated exclusively through these directives, applied by the agent loop
// itself; action code never writes state directly.
type StateMutation struct {
	Op    MutationOp
	Path  []string
	Value any
}

func (*StateMutation) isDirective() {}

// Validate implements Directive. A mutation with an empty path is valid and
// applies as a no-op.
func (d *StateMutation) Validate() error {
	switch d.Op {
	case MutationSet, MutationDelete, MutationReset:
	case MutationUpdate:
		if _, ok := d.Value.(UpdateFunc); !ok {
			if _, ok := d.Value.(func(any) any); !ok {
				return gerrors.NewErrInvalidDirective(errors.New("update mutation requires a transform function value"))
			}
		}
	default:
		return gerrors.NewErrInvalidDirective(fmt.Errorf("unknown mutation op %q", d.Op))
	}
	for _, segment := range d.Path {
		if segment == "" {
			return gerrors.NewErrInvalidDirective(errors.New("mutation path contains an empty segment"))
		}
	}
	return nil
}

// transform resolves the update transform carried by the mutation.
func (d *StateMutation) transform() (UpdateFunc, bool) {
	switch fn := d.Value.(type) {
	case UpdateFunc:
		return fn, fn != nil
	case func(any) any:
		return fn, fn != nil
	default:
		return nil, false
	}
}
