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

package exec

import (
	"context"
	"time"

	"github.com/tochemey/agentic/agent"
	"github.com/tochemey/agentic/log"
)

// Option is the interface that applies a Wrapper configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(wrapper *Wrapper)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Wrapper)

func (f OptionFunc) Apply(wrapper *Wrapper) {
	f(wrapper)
}

// WithTimeout bounds each run attempt of the wrapped action
func WithTimeout(timeout time.Duration) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.timeout = timeout
	})
}

// WithRetry sets the run attempt budget and the backoff window between
// attempts
func WithRetry(maxAttempts int, initialDelay, maxDelay time.Duration) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.maxAttempts = maxAttempts
		wrapper.initialDelay = initialDelay
		wrapper.maxDelay = maxDelay
	})
}

// WithParamsValidation sets the validation run against the call parameters
// before the action runs
func WithParamsValidation(validate func(ctx context.Context, params map[string]any) error) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.validateParams = validate
	})
}

// WithOutputValidation sets the validation run against the action's result
// after a successful run
func WithOutputValidation(validate func(ctx context.Context, output map[string]any) error) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.validateOutput = validate
	})
}

// WithRunOptions sets the run options handed to the wrapped action's
// compensation hook
func WithRunOptions(opts agent.RunOptions) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.runOpts = opts
	})
}

// WithLogger sets the wrapper custom logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(wrapper *Wrapper) {
		wrapper.logger = logger
	})
}
