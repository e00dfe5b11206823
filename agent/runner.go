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

	"github.com/tochemey/agentic/log"
)

// Runner is an execution strategy consuming a signal's resolved instructions.
// Implementations must be safe for reuse across signals.
type Runner interface {
	// Name identifies the strategy in logs.
	Name() string
	// Run consumes the pending instructions and returns the final result plus
	// the directives accumulated across steps.
	Run(ctx context.Context, rctx *RunContext) (*RunOutcome, error)
}

// RunOutcome is what a runner hands back to the processing loop.
type RunOutcome struct {
	// Result is the final step result, nil when nothing ran.
	Result map[string]any
	// Directives accumulate in production order.
	Directives []Directive
}

// PartialOutcome reports a chain halted by a step failure together with the
// directives accumulated before the halt. A runner returns it instead of the
// bare step error when ApplyDirectives is set, so the caller can apply what
// was produced before the failure; by default accumulated directives are
// dropped and the step error propagates unchanged.
type PartialOutcome struct {
	// Step is the zero-based index of the failed instruction.
	Step int
	// Action is the failed instruction's action id.
	Action string
	// Directives were produced by the steps before the failed one.
	Directives []Directive
	// Err is the failure that halted the run.
	Err error
}

func (p *PartialOutcome) Error() string {
	return fmt.Sprintf("chain halted at step=(%d) action=(%s): %v", p.Step, p.Action, p.Err)
}

func (p *PartialOutcome) Unwrap() error {
	return p.Err
}

// RunContext carries one signal's resolved work through a runner.
type RunContext struct {
	signal       *Signal
	pending      []*Instruction
	capabilities *capabilityRegistry
	pipeline     *pipeline
	opts         RunOptions
	logger       log.Logger
}

func newRunContext(signal *Signal, pending []*Instruction, capabilities *capabilityRegistry, pipeline *pipeline, opts RunOptions, logger log.Logger) *RunContext {
	return &RunContext{
		signal:       signal,
		pending:      pending,
		capabilities: capabilities,
		pipeline:     pipeline,
		opts:         opts,
		logger:       logger,
	}
}

// Signal returns the signal whose routing produced the pending instructions.
func (rc *RunContext) Signal() *Signal {
	return rc.signal
}

// Pending returns the instructions awaiting execution, in routing order.
func (rc *RunContext) Pending() []*Instruction {
	return rc.pending
}

// Options returns the run options in effect.
func (rc *RunContext) Options() RunOptions {
	return rc.opts
}

// Logger returns the owning agent's logger.
func (rc *RunContext) Logger() log.Logger {
	return rc.logger
}

// Execute resolves and runs a single instruction, folding the result hooks
// over the step result. Strategies compose it; panics inside the action are
// recovered and returned as errors.
func (rc *RunContext) Execute(ctx context.Context, instruction *Instruction) (map[string]any, []Directive, error) {
	if err := instruction.Validate(); err != nil {
		return nil, nil, err
	}
	action, err := rc.capabilities.resolve(instruction.Action)
	if err != nil {
		return nil, nil, err
	}
	if timeout := rc.opts.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	result, directives, err := invokeAction(ctx, action, instruction)
	if err != nil {
		return nil, nil, err
	}
	if rc.pipeline != nil {
		result = rc.pipeline.transformResult(ctx, rc.signal, result)
	}
	return result, directives, nil
}

func invokeAction(ctx context.Context, action Action, instruction *Instruction) (result map[string]any, directives []Directive, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, directives, err = nil, nil, toPanicError(r)
		}
	}()
	return action.Run(ctx, instruction.Params, instruction.Context)
}

// SingleRunner executes exactly one instruction per invocation: the highest
// priority pending instruction runs inline, the rest are lifted into Enqueue
// directives so the remaining work lands back on the mailbox instead of
// running synchronously. An empty pending list is a deliberate no-op.
type SingleRunner struct{}

var _ Runner = (*SingleRunner)(nil)

// NewSingleRunner creates a single-instruction execution strategy.
func NewSingleRunner() *SingleRunner {
	return &SingleRunner{}
}

// Name returns the strategy name.
func (r *SingleRunner) Name() string {
	return "single"
}

// Run implements Runner.
func (r *SingleRunner) Run(ctx context.Context, rctx *RunContext) (*RunOutcome, error) {
	pending := rctx.Pending()
	if len(pending) == 0 {
		return &RunOutcome{}, nil
	}

	result, directives, err := rctx.Execute(ctx, pending[0])
	if err != nil {
		return nil, fmt.Errorf("action=(%s): %w", pending[0].Action, err)
	}

	for _, forwarded := range pending[1:] {
		directives = append(directives, &Enqueue{Instruction: forwarded})
	}
	return &RunOutcome{Result: result, Directives: directives}, nil
}

// ChainRunner executes the pending instructions strictly in order. With
// MergeResults each step's result map is shallow-merged into the next
// instruction's params, later keys winning. The first step error halts the
// chain, discarding the remaining instructions; directives accumulated before
// the halt survive only behind ApplyDirectives, carried by a PartialOutcome.
type ChainRunner struct{}

var _ Runner = (*ChainRunner)(nil)

// NewChainRunner creates a chained execution strategy.
func NewChainRunner() *ChainRunner {
	return &ChainRunner{}
}

// Name returns the strategy name.
func (r *ChainRunner) Name() string {
	return "chain"
}

// Run implements Runner.
func (r *ChainRunner) Run(ctx context.Context, rctx *RunContext) (*RunOutcome, error) {
	pending := rctx.Pending()
	if len(pending) == 0 {
		return &RunOutcome{}, nil
	}

	var (
		directives []Directive
		result     map[string]any
	)
	opts := rctx.Options()
	for i, instruction := range pending {
		step := instruction
		if opts.MergeResults && len(result) > 0 {
			step = step.withMergedParams(result)
		}
		stepResult, stepDirectives, err := rctx.Execute(ctx, step)
		if err != nil {
			if opts.ApplyDirectives {
				return nil, &PartialOutcome{Step: i, Action: step.Action, Directives: directives, Err: err}
			}
			return nil, fmt.Errorf("chain step=(%d) action=(%s): %w", i, step.Action, err)
		}
		directives = append(directives, stepDirectives...)
		result = stepResult
	}
	return &RunOutcome{Result: result, Directives: directives}, nil
}
