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
	"runtime"

	gerrors "github.com/tochemey/agentic/errors"
	"github.com/tochemey/agentic/log"
)

// pipeline runs the two callback hook points: handleSignal before routing and
// transformResult after execution. Each hook point folds the agent's own hook
// first, then the hook of every skill whose patterns match the signal type.
// A hook that returns an error or panics is logged at warn and skipped; the
// fold keeps the value it had before that hook. Broken extension code can
// therefore fail to transform, never fail the run.
type pipeline struct {
	agent  Agent
	skills []Skill
	logger log.Logger
}

func newPipeline(agent Agent, skills []Skill, logger log.Logger) *pipeline {
	return &pipeline{
		agent:  agent,
		skills: skills,
		logger: logger,
	}
}

// handleSignal runs the pre-routing hooks over the signal.
func (p *pipeline) handleSignal(ctx context.Context, signal *Signal) *Signal {
	current := signal
	next, err := runSignalHook(ctx, p.agent.HandleSignal, current)
	switch {
	case err != nil:
		p.logger.Warnf("agent signal hook failed on signal=(%s) type=(%s): %v", current.ID(), current.Type(), err)
	case next != nil:
		current = next
	}

	for _, skill := range p.skills {
		handler, ok := skill.(SignalHandler)
		if !ok || !skillObserves(skill, current.Type()) {
			continue
		}
		next, err := runSignalHook(ctx, handler.HandleSignal, current)
		switch {
		case err != nil:
			p.logger.Warnf("skill=(%s) signal hook failed on signal=(%s) type=(%s): %v", skill.Name(), current.ID(), current.Type(), err)
		case next != nil:
			current = next
		}
	}
	return current
}

// transformResult runs the post-execution hooks over a result map. It is
// applied to per-instruction results and to the final run result alike.
func (p *pipeline) transformResult(ctx context.Context, signal *Signal, result map[string]any) map[string]any {
	current := result
	next, err := runResultHook(ctx, p.agent.TransformResult, signal, current)
	switch {
	case err != nil:
		p.logger.Warnf("agent result hook failed on signal=(%s) type=(%s): %v", signal.ID(), signal.Type(), err)
	case next != nil:
		current = next
	}

	for _, skill := range p.skills {
		transformer, ok := skill.(ResultTransformer)
		if !ok || !skillObserves(skill, signal.Type()) {
			continue
		}
		next, err := runResultHook(ctx, transformer.TransformResult, signal, current)
		switch {
		case err != nil:
			p.logger.Warnf("skill=(%s) result hook failed on signal=(%s) type=(%s): %v", skill.Name(), signal.ID(), signal.Type(), err)
		case next != nil:
			current = next
		}
	}
	return current
}

// skillObserves reports whether one of the skill's declared patterns matches
// the signal type. A skill declaring no patterns observes nothing.
func skillObserves(skill Skill, signalType string) bool {
	for _, pattern := range skill.SignalPatterns() {
		if matchPattern(pattern, signalType) {
			return true
		}
	}
	return false
}

func runSignalHook(ctx context.Context, hook func(context.Context, *Signal) (*Signal, error), signal *Signal) (next *Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, toPanicError(r)
		}
	}()
	return hook(ctx, signal)
}

func runResultHook(ctx context.Context, hook func(context.Context, *Signal, map[string]any) (map[string]any, error), signal *Signal, result map[string]any) (next map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			next, err = nil, toPanicError(r)
		}
	}()
	return hook(ctx, signal, result)
}

// toPanicError converts a recovered panic value into a PanicError enriched
// with the panic site for rich logging.
func toPanicError(r any) error {
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
