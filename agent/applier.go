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
	"context"
	"fmt"

	gerrors "github.com/tochemey/agentic/errors"
)

// instructionSignalType is the type of the internal signal wrapping a
// front-enqueued instruction.
const instructionSignalType = "agentic.instruction"

// applyDirectives applies a run's directives in production order. Application
// halts on the first directive that fails validation or application;
// directives already applied stay applied, there is no rollback.
func (pid *PID) applyDirectives(ctx context.Context, directives []Directive) error {
	for i, directive := range directives {
		if directive == nil {
			return gerrors.NewErrInvalidDirective(fmt.Errorf("directive at index=(%d) is nil", i))
		}
		if err := directive.Validate(); err != nil {
			return fmt.Errorf("directive=(%d): %w", i, err)
		}
		if err := pid.applyDirective(ctx, directive); err != nil {
			return fmt.Errorf("directive=(%d): %w", i, err)
		}
	}
	return nil
}

func (pid *PID) applyDirective(ctx context.Context, directive Directive) error {
	switch d := directive.(type) {
	case *Enqueue:
		return pid.applyEnqueue(d)
	case *RegisterCapability:
		pid.capabilities.enable(d.ID)
		return nil
	case *DeregisterCapability:
		pid.capabilities.disable(d.ID)
		return nil
	case *StateMutation:
		return pid.applyMutation(d)
	case *SpawnChild:
		return pid.applySpawnChild(ctx, d)
	case *KillChild:
		return pid.supervisor.kill(ctx, d.Handle)
	default:
		return gerrors.NewErrInvalidDirective(fmt.Errorf("unsupported directive %T", directive))
	}
}

// applyEnqueue wraps the carried instruction in an internal signal and puts
// it at the front of the mailbox so self-issued work runs before anything
// enqueued afterwards.
func (pid *PID) applyEnqueue(d *Enqueue) error {
	signal := NewSignal(instructionSignalType,
		WithSource(pid.Name()),
		WithData(d.Instruction),
	)
	if err := pid.mailbox.EnqueueFront(signal); err != nil {
		pid.publishEvent(NewQueueOverflow(pid.Name(), signal, pid.mailbox.Capacity()))
		return err
	}
	return nil
}

func (pid *PID) applyMutation(d *StateMutation) error {
	switch d.Op {
	case MutationSet:
		pid.state.set(d.Path, d.Value)
	case MutationUpdate:
		fn, ok := d.transform()
		if !ok {
			return gerrors.NewErrInvalidDirective(fmt.Errorf("state mutation op=(%s) value is not a transform", d.Op))
		}
		pid.state.update(d.Path, fn)
	case MutationDelete:
		pid.state.delete(d.Path)
	case MutationReset:
		pid.state.reset(d.Path)
	default:
		return gerrors.NewErrInvalidDirective(fmt.Errorf("unknown state mutation op=(%d)", d.Op))
	}
	return nil
}

func (pid *PID) applySpawnChild(ctx context.Context, d *SpawnChild) error {
	handle, err := pid.supervisor.spawn(ctx, d.Spec)
	if err != nil {
		return err
	}
	ref := ChildRef{Handle: handle, Name: d.Spec.Name, Restart: d.Spec.Restart}
	pid.publishEvent(NewChildSpawned(pid.Name(), ref))
	return nil
}
