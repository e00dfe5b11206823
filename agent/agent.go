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

// Package agent implements a runtime for long-lived, stateful agent actors.
// Each agent owns private state, accepts signals through a bounded mailbox
// and processes them one at a time through a pipeline of routing, execution
// and directive application. Concurrency comes from running many independent
// agents; a single agent is logically single-threaded.
package agent

import "context"

// Agent is the behavior an agent instance plugs into the runtime.
// Implementations embed BaseAgent and override what they need.
type Agent interface {
	// PreStart is the mount hook, run once during boot before the agent
	// becomes Idle. It receives the initial state and returns the state to
	// install. An error aborts the spawn entirely.
	PreStart(ctx context.Context, state map[string]any) (map[string]any, error)

	// HandleSignal observes or transforms a signal before routing. It runs
	// first in the callback pipeline, ahead of any skill. An error or panic
	// is swallowed: the signal as it was before the hook is kept.
	HandleSignal(ctx context.Context, signal *Signal) (*Signal, error)

	// TransformResult observes or transforms a result after execution, with
	// the same swallow-on-failure semantics as HandleSignal. It is applied to
	// per-instruction results and to the final run result.
	TransformResult(ctx context.Context, signal *Signal, result map[string]any) (map[string]any, error)

	// PostStop is the shutdown hook. It receives a final snapshot of the
	// agent state for logging or metrics. A failure here is logged fatal at
	// exit time and returned from Shutdown.
	PostStop(ctx context.Context, state map[string]any) error
}

// BaseAgent provides identity implementations of every Agent hook. Embed it
// and override selectively.
type BaseAgent struct{}

// enforce compilation error
var _ Agent = (*BaseAgent)(nil)

// PreStart implements Agent and keeps the initial state unchanged.
func (BaseAgent) PreStart(_ context.Context, state map[string]any) (map[string]any, error) {
	return state, nil
}

// HandleSignal implements Agent and keeps the signal unchanged.
func (BaseAgent) HandleSignal(_ context.Context, signal *Signal) (*Signal, error) {
	return signal, nil
}

// TransformResult implements Agent and keeps the result unchanged.
func (BaseAgent) TransformResult(_ context.Context, _ *Signal, result map[string]any) (map[string]any, error) {
	return result, nil
}

// PostStop implements Agent and does nothing.
func (BaseAgent) PostStop(context.Context, map[string]any) error {
	return nil
}
