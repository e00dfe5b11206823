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
	"errors"
	"fmt"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/internal/syncmap"
	"github.com/tochemey/agentic/log"
)

// RestartPolicy governs what the supervisor does when a child exits
// unexpectedly.
type RestartPolicy int

const (
	// Temporary children are never restarted.
	Temporary RestartPolicy = iota
	// Permanent children are restarted on any unexpected exit, within the
	// supervisor's restart budget.
	Permanent
)

// String returns the string representation of the restart policy.
func (p RestartPolicy) String() string {
	switch p {
	case Temporary:
		return "temporary"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ChildSpec describes a child process owned by an agent's supervisor.
// Exactly one of Run and Task must be set: Run is a supervised long-running
// process, Task is the bare-callable special case executed once on the shared
// task pool and never restarted.
type ChildSpec struct {
	// Name identifies the child in logs and events. Optional.
	Name string
	// Restart is the restart policy for supervised processes.
	Restart RestartPolicy
	// Run is the child's main loop. It blocks until the child stops or its
	// context is canceled. Returning while the context is still live is an
	// unexpected exit.
	Run func(ctx context.Context) error
	// Task runs once and terminates.
	Task func(ctx context.Context) error
}

// Validate reports whether the spec can be spawned.
func (s ChildSpec) Validate() error {
	switch {
	case s.Run == nil && s.Task == nil:
		return gerrors.NewErrValidation(errors.New("child spec requires a Run or Task function"))
	case s.Run != nil && s.Task != nil:
		return gerrors.NewErrValidation(errors.New("child spec cannot carry both Run and Task"))
	}
	return nil
}

// ChildRef is an observable snapshot of a running child.
type ChildRef struct {
	// Handle is the unique id KillChild directives address.
	Handle string
	// Name is the spec name.
	Name string
	// Restart is the spec restart policy.
	Restart RestartPolicy
	// StartedAt is when the child was spawned.
	StartedAt time.Time
}

// errChildExited marks a clean-but-unexpected child return so the restart
// retrier treats it like a failure.
var errChildExited = errors.New("child exited")

type child struct {
	handle    string
	spec      ChildSpec
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

func (c *child) ref() ChildRef {
	return ChildRef{
		Handle:    c.handle,
		Name:      c.spec.Name,
		Restart:   c.spec.Restart,
		StartedAt: c.startedAt,
	}
}

// supervisor owns the children of one agent. Termination of the agent tears
// down the supervisor and all of its children; a child exiting unexpectedly
// is reported to the agent as an event, never as a crash of the agent itself.
type supervisor struct {
	children    *syncmap.SyncMap[string, *child]
	pool        *ants.Pool
	logger      log.Logger
	maxRestarts int
	restartWait time.Duration
	onExit      func(ref ChildRef, err error)
}

func newSupervisor(logger log.Logger, pool *ants.Pool, maxRestarts int, restartWait time.Duration, onExit func(ChildRef, error)) *supervisor {
	if onExit == nil {
		onExit = func(ChildRef, error) {}
	}
	return &supervisor{
		children:    syncmap.New[string, *child](),
		pool:        pool,
		logger:      logger,
		maxRestarts: maxRestarts,
		restartWait: restartWait,
		onExit:      onExit,
	}
}

// spawn starts the child described by spec and returns its handle.
func (s *supervisor) spawn(ctx context.Context, spec ChildSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", err
	}

	childCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &child{
		handle:    uuid.NewString(),
		spec:      spec,
		ctx:       childCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now(),
	}
	s.children.Set(c.handle, c)

	if spec.Task != nil {
		if err := s.submitTask(c); err != nil {
			s.children.Delete(c.handle)
			cancel()
			return "", gerrors.NewErrExecution(err)
		}
		return c.handle, nil
	}

	go s.supervise(c)
	return c.handle, nil
}

// kill stops the child identified by handle and waits for it to finish.
func (s *supervisor) kill(ctx context.Context, handle string) error {
	c, ok := s.children.Get(handle)
	if !ok {
		return gerrors.NewErrChildNotFound(handle)
	}
	c.cancel()
	select {
	case <-c.done:
	case <-ctx.Done():
		return gerrors.NewErrExecution(fmt.Errorf("killing child=(%s): %w", handle, ctx.Err()))
	}
	return nil
}

// stopAll cancels every child and waits for them to finish.
func (s *supervisor) stopAll(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	s.children.Range(func(_ string, c *child) {
		c.cancel()
		eg.Go(func() error {
			select {
			case <-c.done:
				return nil
			case <-egCtx.Done():
				return fmt.Errorf("stopping child=(%s): %w", c.handle, egCtx.Err())
			}
		})
	})
	err := eg.Wait()
	s.children.Reset()
	return err
}

// count returns the number of live children.
func (s *supervisor) count() int {
	return s.children.Len()
}

// refs returns an observable snapshot of the live children.
func (s *supervisor) refs() []ChildRef {
	children := s.children.Values()
	refs := make([]ChildRef, 0, len(children))
	for _, c := range children {
		refs = append(refs, c.ref())
	}
	return refs
}

// submitTask runs a bare-callable child once on the shared pool, falling back
// to a plain goroutine when no pool is attached.
func (s *supervisor) submitTask(c *child) error {
	run := func() {
		defer close(c.done)
		err := safeChildRun(c.ctx, c.spec.Task)
		s.children.Delete(c.handle)
		s.onExit(c.ref(), err)
	}
	if s.pool == nil {
		go run()
		return nil
	}
	return s.pool.Submit(run)
}

// supervise runs a child's main loop and applies its restart policy.
func (s *supervisor) supervise(c *child) {
	defer close(c.done)

	run := func(ctx context.Context) error {
		err := safeChildRun(ctx, c.spec.Run)
		if ctx.Err() != nil {
			// deliberate stop
			return nil
		}
		if err == nil {
			err = errChildExited
		}
		return err
	}

	err := run(c.ctx)
	if err != nil && c.spec.Restart == Permanent && s.maxRestarts > 0 {
		s.logger.Warnf("child=(%s) name=(%s) exited unexpectedly: %v; restarting", c.handle, c.spec.Name, err)
		retrier := retry.NewRetrier(s.maxRestarts, 100*time.Millisecond, s.restartWait)
		err = retrier.RunContext(c.ctx, run)
	}

	s.children.Delete(c.handle)
	s.onExit(c.ref(), err)
}

// safeChildRun shields the supervisor from panicking children.
func safeChildRun(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toPanicError(r)
		}
	}()
	return fn(ctx)
}
