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

// Package exec wraps an Action with the optional execution concerns the core
// loop deliberately stays out of: parameter and output validation hooks,
// per-attempt timeouts, bounded retries with backoff, and compensation when
// the final attempt fails. A wrapped action is still a plain Action and
// registers on an agent like any other capability.
package exec

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/flowchartsman/retry"

	"github.com/tochemey/agentic/agent"
	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/log"
)

const (
	// DefaultRetryInitialDelay is the initial backoff between run attempts.
	DefaultRetryInitialDelay = 100 * time.Millisecond
	// DefaultRetryMaxDelay caps the backoff between run attempts.
	DefaultRetryMaxDelay = time.Second
)

// Wrapper decorates an Action with validation hooks, timeout, retries and
// compensation. Hooks declared by the wrapped action itself
// (ParamsValidator, OutputValidator, PostRunner, Compensator) are discovered
// by type assertion and invoked at the matching stage.
type Wrapper struct {
	action agent.Action

	timeout      time.Duration
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration

	validateParams func(ctx context.Context, params map[string]any) error
	validateOutput func(ctx context.Context, output map[string]any) error

	runOpts agent.RunOptions
	logger  log.Logger
}

// enforce compilation error
var _ agent.Action = (*Wrapper)(nil)

// Wrap decorates the given action. Without options the wrapper runs the
// action exactly once, unbounded, with only the action's own hooks applied.
func Wrap(action agent.Action, opts ...Option) *Wrapper {
	wrapper := &Wrapper{
		action:       action,
		maxAttempts:  1,
		initialDelay: DefaultRetryInitialDelay,
		maxDelay:     DefaultRetryMaxDelay,
		logger:       log.DefaultLogger,
	}
	for _, opt := range opts {
		opt.Apply(wrapper)
	}
	return wrapper
}

// Name returns the capability id of the wrapped action.
func (w *Wrapper) Name() string {
	return w.action.Name()
}

// Run executes the wrapped action. Parameter hooks and validation run first
// and fail fast, since nothing has happened yet that would need undoing. The
// run stage is retried within the configured budget; a failure of the run
// stage or of any later stage triggers the action's compensation hook once
// before the cause is returned.
func (w *Wrapper) Run(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []agent.Directive, error) {
	params, err := w.prepareParams(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	result, directives, err := w.runAction(ctx, params, actionCtx)
	if err != nil {
		return nil, nil, w.compensate(ctx, params, actionCtx, err)
	}

	if result, err = w.checkOutput(ctx, result); err != nil {
		return nil, nil, w.compensate(ctx, params, actionCtx, err)
	}

	if postRunner, ok := w.action.(agent.PostRunner); ok {
		if err := postRunner.AfterRun(ctx, params, result); err != nil {
			return nil, nil, w.compensate(ctx, params, actionCtx, err)
		}
	}
	return result, directives, nil
}

// prepareParams folds the parameters through the action's params hooks and
// the configured validation.
func (w *Wrapper) prepareParams(ctx context.Context, params map[string]any) (map[string]any, error) {
	validator, isValidator := w.action.(agent.ParamsValidator)
	if isValidator {
		updated, err := validator.BeforeValidateParams(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("action=(%s) params pre-validation: %w", w.action.Name(), err)
		}
		params = updated
	}
	if w.validateParams != nil {
		if err := w.validateParams(ctx, params); err != nil {
			return nil, fmt.Errorf("action=(%s) params validation: %w", w.action.Name(), err)
		}
	}
	if isValidator {
		updated, err := validator.AfterValidateParams(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("action=(%s) params post-validation: %w", w.action.Name(), err)
		}
		params = updated
	}
	return params, nil
}

// runAction runs the action within the attempt budget. Each attempt gets its
// own timeout when one is configured, and a panicking attempt is recovered
// into an error so the remaining attempts still run.
func (w *Wrapper) runAction(ctx context.Context, params map[string]any, actionCtx map[string]any) (map[string]any, []agent.Directive, error) {
	var result map[string]any
	var directives []agent.Directive

	run := func(attemptCtx context.Context) error {
		cctx := attemptCtx
		if w.timeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(attemptCtx, w.timeout)
			defer cancel()
		}
		var err error
		result, directives, err = w.invoke(cctx, params, actionCtx)
		return err
	}

	var err error
	if w.maxAttempts > 1 {
		retrier := retry.NewRetrier(w.maxAttempts, w.initialDelay, w.maxDelay)
		err = retrier.RunContext(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		return nil, nil, err
	}
	return result, directives, nil
}

// checkOutput folds the result through the action's output hooks and the
// configured validation.
func (w *Wrapper) checkOutput(ctx context.Context, output map[string]any) (map[string]any, error) {
	validator, isValidator := w.action.(agent.OutputValidator)
	if isValidator {
		updated, err := validator.BeforeValidateOutput(ctx, output)
		if err != nil {
			return nil, fmt.Errorf("action=(%s) output pre-validation: %w", w.action.Name(), err)
		}
		output = updated
	}
	if w.validateOutput != nil {
		if err := w.validateOutput(ctx, output); err != nil {
			return nil, fmt.Errorf("action=(%s) output validation: %w", w.action.Name(), err)
		}
	}
	if isValidator {
		updated, err := validator.AfterValidateOutput(ctx, output)
		if err != nil {
			return nil, fmt.Errorf("action=(%s) output post-validation: %w", w.action.Name(), err)
		}
		output = updated
	}
	return output, nil
}

// compensate hands the failure to the action's compensation hook when it
// declares one. The original cause is always returned; a compensation
// failure is logged, not propagated.
func (w *Wrapper) compensate(ctx context.Context, params map[string]any, actionCtx map[string]any, cause error) error {
	compensator, ok := w.action.(agent.Compensator)
	if !ok {
		return cause
	}
	if err := compensator.OnError(ctx, params, cause, actionCtx, w.runOpts); err != nil {
		w.logger.Warnf("action=(%s) compensation failed: %v", w.action.Name(), err)
	}
	return cause
}

func (w *Wrapper) invoke(ctx context.Context, params map[string]any, actionCtx map[string]any) (result map[string]any, directives []agent.Directive, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, directives = nil, nil
			err = recoveredError(r)
		}
	}()
	return w.action.Run(ctx, params, actionCtx)
}

// recoveredError converts a recovered panic value into a PanicError enriched
// with the panic site for rich logging.
func recoveredError(r any) error {
	switch err, ok := r.(error); {
	case ok:
		var pe *gerrors.PanicError
		if errors.As(err, &pe) {
			// in case a PanicError was raised just forward it
			return pe
		}
		pc, fn, line, _ := runtime.Caller(2)
		return gerrors.NewPanicError(fmt.Errorf("%w at %s[%s:%d]", err, runtime.FuncForPC(pc).Name(), fn, line))
	default:
		pc, fn, line, _ := runtime.Caller(2)
		return gerrors.NewPanicError(fmt.Errorf("%#v at %s[%s:%d]", r, runtime.FuncForPC(pc).Name(), fn, line))
	}
}
